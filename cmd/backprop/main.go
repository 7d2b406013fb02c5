// Package main provides the backprop CLI.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/born-ml/backprop/internal/autodiff"
	"github.com/born-ml/backprop/internal/gradcheck"
	"github.com/born-ml/backprop/internal/parallel"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

// jitterScale bounds the noise added with -seed.
const jitterScale = 0.02

var (
	flagWorkers  = flag.Int("workers", parallel.DefaultConfig().NumWorkers, "Number of workers for data-parallel kernels. 1 or less runs sequentially.")
	flagMinChunk = flag.Int("min-chunk", parallel.DefaultConfig().MinChunkSize, "Minimum number of elements handed to a worker.")
	flagFilter   = flag.String("filter", "", "Only run gradient checks whose name contains this substring.")
	flagEpsilon  = flag.Float64("eps", float64(gradcheck.DefaultConfig().Epsilon), "Half-width of the central difference.")
	flagRelTol   = flag.Float64("rtol", gradcheck.DefaultConfig().RelTol, "Allowed relative error.")
	flagAbsTol   = flag.Float64("atol", gradcheck.DefaultConfig().AbsTol, "Allowed absolute error.")
	flagSeed     = flag.Int64("seed", 0, "If not 0, evaluate every check at its point plus small noise drawn with this seed.")
	flagQuiet    = flag.Bool("quiet", false, "Hide the progress bar.")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "backprop %s - reverse-mode differentiable nodes\n\n", version)
	fmt.Fprintln(out, "Usage: backprop [flags] <command>")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "  gradcheck  Compare every node's analytic gradient with central differences")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Flags:")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()

	switch flag.Arg(0) {
	case "version":
		fmt.Printf("backprop %s\n", version)
	case "gradcheck":
		parallel.SetDefault(parallel.Config{
			Enabled:      *flagWorkers > 1,
			NumWorkers:   *flagWorkers,
			MinChunkSize: *flagMinChunk,
		})
		cfg := gradcheck.Config{
			Epsilon: float32(*flagEpsilon),
			RelTol:  *flagRelTol,
			AbsTol:  *flagAbsTol,
		}
		var failed int
		err := exceptions.TryCatch[error](func() {
			failed = runChecks(cfg, *flagFilter, *flagSeed, *flagQuiet)
		})
		if err != nil {
			klog.Fatalf("gradcheck failed with error: %+v", err)
		}
		if failed > 0 {
			os.Exit(1)
		}
	default:
		flag.Usage()
		if flag.NArg() > 0 {
			os.Exit(2)
		}
	}
}

// runChecks runs the gradient-check suite and prints one line per check.
// It returns the number of failed checks.
func runChecks(cfg gradcheck.Config, filter string, seed int64, quiet bool) int {
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	var checks []autodiff.Check
	for _, c := range autodiff.Checks() {
		if !strings.Contains(c.Name, filter) {
			continue
		}
		if rng != nil {
			c = c.Jitter(rng, jitterScale)
		}
		checks = append(checks, c)
	}
	if len(checks) == 0 {
		klog.Warningf("no gradient check matches %q", filter)
		return 0
	}

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.NewOptions(len(checks),
			progressbar.OptionSetDescription("gradcheck"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.ThemeASCII),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	type result struct {
		name     string
		elements int
		m        gradcheck.Mismatch
		err      error
	}
	results := make([]result, 0, len(checks))
	var elements int
	for _, c := range checks {
		if bar != nil {
			bar.Describe(c.Name)
		}
		m, err := c.Run(cfg)
		n := c.Input().Len()
		elements += n
		results = append(results, result{name: c.Name, elements: n, m: m, err: err})
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	var failed int
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = "FAIL"
			failed++
		}
		fmt.Printf("%-28s %-4s %3d elems  worst abs err %.3g at %d (analytic %.5g, numeric %.5g)\n",
			r.name, status, r.elements, r.m.AbsErr, r.m.Index, r.m.Analytic, r.m.Numeric)
		if r.err != nil {
			klog.Errorf("%v", r.err)
		}
	}
	fmt.Printf("\n%d/%d checks passed, %s elements perturbed (eps=%g, rtol=%g, atol=%g)\n",
		len(results)-failed, len(results), humanize.Comma(int64(elements)), cfg.Epsilon, cfg.RelTol, cfg.AbsTol)
	return failed
}
