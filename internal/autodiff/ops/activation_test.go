package ops

import (
	"testing"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestActivationValues(t *testing.T) {
	tests := []struct {
		name     string
		forward  func(x Data) forwardNode
		backward func(operand GradientNode, x, y Data) Backward
		x        []float32
		want     []float32
		grad     []float32
	}{
		{
			name:     "ReLU",
			forward:  func(x Data) forwardNode { return NewReLU(x) },
			backward: func(o GradientNode, x, _ Data) Backward { return NewReLUBackward(o, x) },
			x:        []float32{-1, 0, 2},
			want:     []float32{0, 0, 2},
			grad:     []float32{0, 0, 1},
		},
		{
			name:     "LeakyReLU",
			forward:  func(x Data) forwardNode { return NewLeakyReLU(x) },
			backward: func(o GradientNode, x, _ Data) Backward { return NewLeakyReLUBackward(o, x) },
			x:        []float32{-1, 0, 2},
			want:     []float32{-0.01, 0, 2},
			grad:     []float32{0.01, 0.01, 1},
		},
		{
			name:     "Sigmoid",
			forward:  func(x Data) forwardNode { return NewSigmoid(x) },
			backward: func(o GradientNode, _, y Data) Backward { return NewSigmoidBackward(o, y) },
			x:        []float32{-20, 0, 20},
			want:     []float32{0, 0.5, 1},
			grad:     []float32{0, 0.25, 0},
		},
		{
			name:     "SoftPlus",
			forward:  func(x Data) forwardNode { return NewSoftPlus(x) },
			backward: func(o GradientNode, x, _ Data) Backward { return NewSoftPlusBackward(o, x) },
			x:        []float32{-20, 0, 20},
			want:     []float32{0, 0.693147, 20},
			grad:     []float32{0, 0.5, 1},
		},
		{
			name:     "TanH",
			forward:  func(x Data) forwardNode { return NewTanH(x) },
			backward: func(o GradientNode, _, y Data) Backward { return NewTanHBackward(o, y) },
			x:        []float32{-20, 0, 0.5},
			want:     []float32{-1, 0, 0.462117},
			grad:     []float32{0, 1, 0.786448},
		},
		{
			name:     "Exp",
			forward:  func(x Data) forwardNode { return NewExp(x) },
			backward: func(o GradientNode, _, y Data) Backward { return NewExpBackward(o, y) },
			x:        []float32{0, 1, -1},
			want:     []float32{1, 2.718282, 0.367879},
			grad:     []float32{1, 2.718282, 0.367879},
		},
		{
			name:     "Logn",
			forward:  func(x Data) forwardNode { return NewLogn(x) },
			backward: func(o GradientNode, x, _ Data) Backward { return NewLognBackward(o, x) },
			x:        []float32{1, 2, 0.5},
			want:     []float32{0, 0.693147, -0.693147},
			grad:     []float32{1, 0.5, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := newInput(tensor.Shape{len(tt.x)}, tt.x...)
			y := tt.forward(x)
			y.Forward()
			assertValues(t, tt.want, dataOf(y))

			dx := x.Differentiable()
			node := tt.backward(dx, x, y)
			seed(node.(Gradient), 1)
			node.Backward()
			assertValues(t, tt.grad, gradOf(dx))
		})
	}
}

func TestActivationGradients(t *testing.T) {
	// No point lies within the finite-difference step of the ReLU kink.
	mixed := tensor.Linspace(-1.5, 1.7, 6).Reshape(tensor.Shape{2, 3})
	positive := tensor.Linspace(0.5, 3, 6).Reshape(tensor.Shape{2, 3})

	cases := []struct {
		unaryCase
		x *tensor.Tensor
	}{
		{unaryCase{"ReLU",
			func(x Data) forwardNode { return NewReLU(x) },
			func(o GradientNode, x, _ Data) Backward { return NewReLUBackward(o, x) }}, mixed},
		{unaryCase{"LeakyReLU",
			func(x Data) forwardNode { return NewLeakyReLU(x) },
			func(o GradientNode, x, _ Data) Backward { return NewLeakyReLUBackward(o, x) }}, mixed},
		{unaryCase{"Sigmoid",
			func(x Data) forwardNode { return NewSigmoid(x) },
			func(o GradientNode, _, y Data) Backward { return NewSigmoidBackward(o, y) }}, mixed},
		{unaryCase{"SoftPlus",
			func(x Data) forwardNode { return NewSoftPlus(x) },
			func(o GradientNode, x, _ Data) Backward { return NewSoftPlusBackward(o, x) }}, mixed},
		{unaryCase{"TanH",
			func(x Data) forwardNode { return NewTanH(x) },
			func(o GradientNode, _, y Data) Backward { return NewTanHBackward(o, y) }}, mixed},
		{unaryCase{"Exp",
			func(x Data) forwardNode { return NewExp(x) },
			func(o GradientNode, _, y Data) Backward { return NewExpBackward(o, y) }}, mixed},
		{unaryCase{"Logn",
			func(x Data) forwardNode { return NewLogn(x) },
			func(o GradientNode, x, _ Data) Backward { return NewLognBackward(o, x) }}, positive},
		{unaryCase{"Softmax/axis0",
			func(x Data) forwardNode { return NewSoftmax(x, 0) },
			func(o GradientNode, _, y Data) Backward { return NewSoftmaxBackward(o, y, 0) }}, mixed},
		{unaryCase{"Softmax/axis1",
			func(x Data) forwardNode { return NewSoftmax(x, 1) },
			func(o GradientNode, _, y Data) Backward { return NewSoftmaxBackward(o, y, 1) }}, mixed},
		{unaryCase{"LogSoftmax/axis0",
			func(x Data) forwardNode { return NewLogSoftmax(x, 0) },
			func(o GradientNode, _, y Data) Backward { return NewLogSoftmaxBackward(o, y, 0) }}, mixed},
		{unaryCase{"LogSoftmax/axis1",
			func(x Data) forwardNode { return NewLogSoftmax(x, 1) },
			func(o GradientNode, _, y Data) Backward { return NewLogSoftmaxBackward(o, y, 1) }}, mixed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			checkUnary(t, c.unaryCase, c.x)
		})
	}
}

func TestSoftmax(t *testing.T) {
	x := newInput(tensor.Shape{2, 3}, 1, 2, 3, 1, 2, 3)
	s := NewSoftmax(x, 1)
	s.Forward()
	out := dataOf(s)
	assertValues(t, []float32{0.090031, 0.244728, 0.665241, 0.090031, 0.244728, 0.665241}, out)
	assertValues(t, []float32{1, 1}, out.SumAxis(1), "every lane sums to one")

	s0 := NewSoftmax(x, 0)
	s0.Forward()
	assertAll(t, 0.5, dataOf(s0))
}

func TestSoftmaxLargeInputs(t *testing.T) {
	x := newInput(tensor.Shape{3}, 1000, 1000, -1000)
	s := NewSoftmax(x, 0)
	s.Forward()
	assertValues(t, []float32{0.5, 0.5, 0}, dataOf(s))
}

func TestSoftmaxBackward(t *testing.T) {
	x := newInput(tensor.Shape{1, 3}, 1, 2, 3)
	s := NewSoftmax(x, 1)
	s.Forward()

	dx := x.Differentiable()
	node := NewSoftmaxBackward(dx, s, 1)
	seed(node, 0)
	node.Backward()
	assertAll(t, 0, gradOf(dx), "zero upstream gives a zero gradient")

	// A uniform upstream gradient is orthogonal to the simplex.
	dx.SetOverwrite(true)
	seed(node, 1)
	node.Backward()
	assertAll(t, 0, gradOf(dx))
}

func TestLogSoftmax(t *testing.T) {
	x := newInput(tensor.Shape{3}, 1, 2, 3)
	s := NewLogSoftmax(x, 0)
	s.Forward()
	assertValues(t, []float32{-2.407606, -1.407606, -0.407606}, dataOf(s))

	dx := x.Differentiable()
	node := NewLogSoftmaxBackward(dx, s, 0)
	seed(node, 1)
	node.Backward()
	assertValues(t, []float32{0.729908, 0.265815, -0.995723}, gradOf(dx))

	assert.Panics(t, func() { NewLogSoftmax(x, 1) })
}
