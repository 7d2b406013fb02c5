// Package gradcheck compares analytic gradients with central-difference estimates.
package gradcheck

import (
	"math"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Config controls the finite-difference step and the comparison tolerances.
type Config struct {
	Epsilon float32 // Half-width of the central difference.
	RelTol  float64 // Allowed relative error.
	AbsTol  float64 // Allowed absolute error, for gradients near zero.
}

// DefaultConfig returns tolerances suited to float32 arithmetic.
func DefaultConfig() Config {
	return Config{
		Epsilon: 1e-2,
		RelTol:  2e-2,
		AbsTol:  2e-3,
	}
}

// Func is a scalar function of one tensor. It must not retain or modify x.
type Func func(x *tensor.Tensor) float32

// Numeric returns the central-difference gradient of f at x.
// x is restored before Numeric returns.
func Numeric(f Func, x *tensor.Tensor, eps float32) *tensor.Tensor {
	grad := tensor.ZerosLike(x.Shape())
	xd, gd := x.Data(), grad.Data()
	for i, orig := range xd {
		xd[i] = orig + eps
		plus := float64(f(x))
		xd[i] = orig - eps
		minus := float64(f(x))
		xd[i] = orig
		gd[i] = float32((plus - minus) / (2 * float64(eps)))
	}
	return grad
}

// Mismatch describes the worst disagreement found by Compare.
type Mismatch struct {
	Index             int
	Analytic, Numeric float32
	AbsErr, RelErr    float64
}

// Compare checks analytic against numeric elementwise. It returns the worst
// mismatch and an error if any element is outside both tolerances.
func Compare(analytic, numeric *tensor.Tensor, cfg Config) (Mismatch, error) {
	var worst Mismatch
	if !analytic.Shape().Equal(numeric.Shape()) {
		return worst, errors.Errorf("gradient shape %v does not match numeric shape %v", analytic.Shape(), numeric.Shape())
	}
	var failed bool
	for i, a := range analytic.Data() {
		n := numeric.Data()[i]
		absErr, relErr := distance(float64(a), float64(n))
		ok := within(absErr, cfg.AbsTol) || within(relErr, cfg.RelTol)
		m := Mismatch{Index: i, Analytic: a, Numeric: n, AbsErr: absErr, RelErr: relErr}
		switch {
		case !ok && (!failed || absErr > worst.AbsErr):
			worst, failed = m, true
		case ok && !failed && absErr > worst.AbsErr:
			worst = m
		}
	}
	if failed {
		return worst, errors.Errorf("gradient mismatch at flat index %d: analytic %g, numeric %g (abs err %.3g, rel err %.3g)",
			worst.Index, worst.Analytic, worst.Numeric, worst.AbsErr, worst.RelErr)
	}
	return worst, nil
}

// Check runs Numeric on f at x and compares the result with analytic.
func Check(f Func, x, analytic *tensor.Tensor, cfg Config) error {
	_, err := Compare(analytic, Numeric(f, x, cfg.Epsilon), cfg)
	return err
}

func distance(a, b float64) (absErr, relErr float64) {
	absErr = math.Abs(a - b)
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale == 0 {
		return absErr, 0
	}
	return absErr, absErr / scale
}

// within reports whether err is finite and at most tol.
func within[T constraints.Float](err, tol T) bool {
	return err == err && err <= tol
}
