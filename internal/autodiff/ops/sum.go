package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Sum reduces all elements of its operand to a 0-d tensor.
type Sum struct {
	computation
	output
	operand Data
}

// NewSum creates a Sum node.
func NewSum(operand Data) *Sum {
	return &Sum{output: newOutput(tensor.Shape{}), operand: operand}
}

// Forward implements Forward.
func (n *Sum) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()
	out.Data()[0] = x.Sum()
}

// SumBackward broadcasts its single gradient value over the operand.
type SumBackward struct {
	gradient
	operand GradientNode
	shape   tensor.Shape
}

// NewSumBackward creates a SumBackward node.
func NewSumBackward(operand GradientNode) *SumBackward {
	return &SumBackward{
		gradient: newGradient(tensor.Shape{}),
		operand:  operand,
		shape:    gradShapeOf(operand),
	}
}

// Backward implements Backward.
func (n *SumBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	g0 := g.Data()[0]
	pushFunc(n.operand, n.shape, func(int) float32 { return g0 })
}
