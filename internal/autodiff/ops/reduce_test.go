package ops

import (
	"testing"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		dst  tensor.Shape
		src  *tensor.Tensor
		want []float32
	}{
		{"leading and kept axes", tensor.Shape{1, 3}, tensor.Ones(2, 2, 3), []float32{4, 4, 4}},
		{"leading axis only", tensor.Shape{3}, tensor.Ones(2, 3), []float32{2, 2, 2}},
		{"column", tensor.Shape{2, 1}, tensor.Linspace(1, 6, 6).Reshape(tensor.Shape{2, 3}), []float32{6, 15}},
		{"to scalar", tensor.Shape{}, tensor.Ones(3, 2), []float32{6}},
		{"to ones", tensor.Shape{1, 1}, tensor.Ones(4, 5), []float32{20}},
		{"identity", tensor.Shape{2, 2}, tensor.Ones(2, 2), []float32{1, 1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduce(tt.dst, tt.src)
			assert.Equal(t, tt.dst, got.Shape())
			assertValues(t, tt.want, got)
		})
	}
}

func TestReduceMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { reduce(tensor.Shape{2}, tensor.Ones(3)) })
	assert.Panics(t, func() { reduce(tensor.Shape{2, 3}, tensor.Ones(3)) })
	assert.Panics(t, func() { reduce(tensor.Shape{3, 2}, tensor.Ones(2, 3)) })
}
