package tensor

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRand(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	x := Rand(rng, -2, 3, 10, 10)
	assert.Equal(t, Shape{10, 10}, x.Shape())
	for _, v := range x.Data() {
		assert.GreaterOrEqual(t, v, float32(-2))
		assert.Less(t, v, float32(3))
	}

	again := Rand(rand.New(rand.NewSource(1)), -2, 3, 10, 10)
	assert.True(t, x.Equal(again), "same seed gives the same tensor")
}

func TestRandn(t *testing.T) {
	x := Randn(rand.New(rand.NewSource(7)), 101, 99)
	var mean, sq float64
	for _, v := range x.Data() {
		assert.False(t, v != v, "no NaN")
		mean += float64(v)
		sq += float64(v) * float64(v)
	}
	n := float64(x.Len())
	mean /= n
	variance := sq/n - mean*mean
	assert.InDelta(t, 0, mean, 0.05)
	assert.InDelta(t, 1, variance, 0.1)
}

func TestArangeEye(t *testing.T) {
	assert.Equal(t, []float32{0, 1, 2, 3}, Arange(0, 4).Data())
	assert.Equal(t, []float32{-1, 0, 1}, Arange(-1, 1.5).Data())
	assert.Panics(t, func() { Arange(2, 2) })

	eye := Eye(3)
	assert.Equal(t, Shape{3, 3}, eye.Shape())
	assert.Equal(t, []float32{1, 0, 0, 0, 1, 0, 0, 0, 1}, eye.Data())
}
