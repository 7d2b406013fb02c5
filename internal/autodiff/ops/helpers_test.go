package ops

import (
	"testing"

	"github.com/born-ml/backprop/internal/gradcheck"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-4

// newInput creates a leaf holding values in the given shape.
func newInput(shape tensor.Shape, values ...float32) *Input {
	return NewInput(must.M1(tensor.FromSlice(values, shape)))
}

// fullInput creates a leaf filled with value.
func fullInput(shape tensor.Shape, value float32) *Input {
	return NewInput(tensor.Full(shape, value))
}

// seed sets every element of a node's gradient to value.
func seed(node Gradient, value float32) {
	g, release := node.GradientMut()
	defer release()
	g.Fill(value)
}

// seedWith sets a node's gradient to values.
func seedWith(node Gradient, values ...float32) {
	g, release := node.GradientMut()
	defer release()
	copy(g.Data(), values)
}

func gradOf(node Gradient) *tensor.Tensor {
	g, release := node.Gradient()
	defer release()
	return g.Clone()
}

func dataOf(node Data) *tensor.Tensor {
	d, release := node.Data()
	defer release()
	return d.Clone()
}

func assertValues(t *testing.T, want []float32, got *tensor.Tensor, msgAndArgs ...any) {
	t.Helper()
	require.Equal(t, len(want), got.Len(), msgAndArgs...)
	assert.InDeltaSlice(t, want, got.Data(), tolerance, msgAndArgs...)
}

func assertAll(t *testing.T, want float32, got *tensor.Tensor, msgAndArgs ...any) {
	t.Helper()
	for i, v := range got.Data() {
		if !assert.InDelta(t, want, v, tolerance, msgAndArgs...) {
			t.Logf("first mismatch at flat index %d of %v", i, got)
			return
		}
	}
}

// forwardNode is a forward node exposing its value.
type forwardNode interface {
	Forward
	Data
}

// unaryCase describes an activation-like op for numeric gradient checking.
type unaryCase struct {
	name     string
	forward  func(x Data) forwardNode
	backward func(operand GradientNode, x Data, y Data) Backward
}

// checkUnary verifies the analytic gradient of a unary op against central
// differences of f(x) = Σ w * op(x), with fixed non-uniform weights w.
func checkUnary(t *testing.T, c unaryCase, x *tensor.Tensor) {
	t.Helper()
	weights := tensor.Linspace(-1, 2, x.Len()).Reshape(x.Shape())

	input := NewInput(x.Clone())
	y := c.forward(input)
	y.Forward()
	dx := input.Differentiable()
	b := c.backward(dx, input, y)
	seedWith(b.(Gradient), weights.Data()...)
	b.Backward()

	f := func(xp *tensor.Tensor) float32 {
		node := c.forward(NewInput(xp.Clone()))
		node.Forward()
		out := dataOf(node)
		var s float32
		for i, v := range out.Data() {
			s += v * weights.Data()[i]
		}
		return s
	}
	require.NoError(t, gradcheck.Check(f, x.Clone(), gradOf(dx), gradcheck.DefaultConfig()), c.name)
}
