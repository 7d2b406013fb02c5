package tensor

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
)

// Randn creates a tensor with values drawn from a normal distribution
// (mean=0, std=1) using the Box-Muller transform.
//
// Example:
//
//	rng := rand.New(rand.NewSource(42))
//	t := tensor.Randn(rng, 100, 100)
func Randn(rng *rand.Rand, shape ...int) *Tensor {
	t := Zeros(shape...)
	for i := 0; i < len(t.data); i += 2 {
		u1 := 1 - rng.Float32() // (0, 1]: keeps the log finite
		u2 := rng.Float32()
		r := math32.Sqrt(-2 * math32.Log(u1))
		t.data[i] = r * math32.Cos(2*math32.Pi*u2)
		if i+1 < len(t.data) {
			t.data[i+1] = r * math32.Sin(2*math32.Pi*u2)
		}
	}
	return t
}

// Rand creates a tensor with values uniformly distributed in [lo, hi).
//
// Example:
//
//	t := tensor.Rand(rng, -1, 1, 10, 10)
func Rand(rng *rand.Rand, lo, hi float32, shape ...int) *Tensor {
	t := Zeros(shape...)
	for i := range t.data {
		t.data[i] = lo + (hi-lo)*rng.Float32()
	}
	return t
}

// Arange creates a 1D tensor with values from start to end (exclusive) in steps of 1.
//
// Example:
//
//	t := tensor.Arange(0, 10) // [0, 1, 2, ..., 9]
func Arange(start, end float32) *Tensor {
	n := int(math32.Ceil(end - start))
	if n <= 0 {
		exceptions.Panicf("tensor.Arange(%g, %g): end must be greater than start", start, end)
	}
	t := Zeros(n)
	for i := range t.data {
		t.data[i] = start + float32(i)
	}
	return t
}

// Eye creates a 2D identity matrix.
//
// Example:
//
//	t := tensor.Eye(3) // 3x3 identity matrix
func Eye(n int) *Tensor {
	t := Zeros(n, n)
	for i := 0; i < n; i++ {
		t.Set(1, i, i)
	}
	return t
}
