package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Addition computes left + right with broadcasting.
type Addition struct {
	binary
}

// NewAddition creates an Addition node. It panics if the operand shapes do not broadcast.
func NewAddition(left, right Data) *Addition {
	return &Addition{binary: newBinary(left, right)}
}

// Forward implements Forward.
func (n *Addition) Forward() {
	n.eval(func(l, r float32) float32 { return l + r })
}

// AdditionBackward propagates into both operands of an addition.
//
// d(a+b)/da = d(a+b)/db = 1, so each operand receives the gradient folded
// back onto its own shape.
type AdditionBackward struct {
	gradient
	left, right GradientNode
}

// NewAdditionBackward creates an AdditionBackward node.
func NewAdditionBackward(left, right GradientNode) *AdditionBackward {
	shape := tensor.MustBroadcastShapes(gradShapeOf(left), gradShapeOf(right))
	return &AdditionBackward{gradient: newGradient(shape), left: left, right: right}
}

// Backward implements Backward.
func (n *AdditionBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	push(n.left, g)
	push(n.right, g)
}

// AdditionBackwardUnary propagates into the only differentiable operand of an
// addition. Addition is symmetric, so one type serves both sides.
type AdditionBackwardUnary struct {
	gradient
	diff GradientNode
}

// NewAdditionBackwardUnary creates an AdditionBackwardUnary node. noDiff is the
// forward value of the other operand, used only for shape inference.
func NewAdditionBackwardUnary(diff GradientNode, noDiff Data) *AdditionBackwardUnary {
	shape := tensor.MustBroadcastShapes(gradShapeOf(diff), shapeOf(noDiff))
	return &AdditionBackwardUnary{gradient: newGradient(shape), diff: diff}
}

// Backward implements Backward.
func (n *AdditionBackwardUnary) Backward() {
	g, release := n.Gradient()
	defer release()
	push(n.diff, g)
}
