// Package parallel provides the data-parallel loop used by elementwise node kernels.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"

	"k8s.io/klog/v2"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096, // Elementwise float32 kernels are memory bound.
	}
}

var current atomic.Pointer[Config]

func init() {
	cfg := DefaultConfig()
	current.Store(&cfg)
}

// Default returns the process-wide configuration used by node kernels.
func Default() Config {
	return *current.Load()
}

// SetDefault replaces the process-wide configuration and returns the previous one.
// Non-positive NumWorkers or MinChunkSize disable parallelism.
func SetDefault(cfg Config) Config {
	if cfg.NumWorkers <= 0 || cfg.MinChunkSize <= 0 {
		cfg.Enabled = false
	}
	klog.V(1).Infof("parallel: enabled=%v workers=%d min_chunk=%d", cfg.Enabled, cfg.NumWorkers, cfg.MinChunkSize)
	return *current.Swap(&cfg)
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	Range(n, func(start, end int) {
		for i := start; i < end; i++ {
			f(i)
		}
	}, cfg)
}

// Range splits [0, n) into contiguous chunks and calls f(start, end) once per
// chunk, concurrently when cfg allows it. Chunks never overlap, so f may write
// to disjoint slices of a shared output without synchronization.
func Range(n int, f func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*cfg.MinChunkSize {
		// Sequential fallback.
		f(0, n)
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			f(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForLanes executes f(o, i) for every (outer, inner) pair of a lane
// decomposition. Lane kernels such as softmax use it to process independent
// lanes concurrently.
func ForLanes(outer, inner int, f func(o, i int), cfg Config) {
	n := outer * inner
	For(n, func(k int) {
		f(k/inner, k%inner)
	}, cfg)
}
