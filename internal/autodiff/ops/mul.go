package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Multiplication computes left * right elementwise with broadcasting.
type Multiplication struct {
	binary
}

// NewMultiplication creates a Multiplication node.
func NewMultiplication(left, right Data) *Multiplication {
	return &Multiplication{binary: newBinary(left, right)}
}

// Forward implements Forward.
func (n *Multiplication) Forward() {
	n.eval(func(l, r float32) float32 { return l * r })
}

// MultiplicationBackward propagates g*right into left and g*left into right.
type MultiplicationBackward struct {
	gradient
	operandPair
	left, right GradientNode
}

// NewMultiplicationBackward creates a MultiplicationBackward node from each
// operand's gradient and forward value.
func NewMultiplicationBackward(left GradientNode, leftData Data, right GradientNode, rightData Data) *MultiplicationBackward {
	shape := tensor.MustBroadcastShapes(gradShapeOf(left), gradShapeOf(right))
	return &MultiplicationBackward{
		gradient:    newGradient(shape),
		operandPair: newOperandPair(leftData, rightData, shape),
		left:        left,
		right:       right,
	}
}

// Backward implements Backward.
func (n *MultiplicationBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	l, r, releaseValues := n.values()
	defer releaseValues()

	gd := g.Data()
	pushFunc(n.left, g.Shape(), func(i int) float32 { return gd[i] * r(i) })
	pushFunc(n.right, g.Shape(), func(i int) float32 { return gd[i] * l(i) })
}

// MultiplicationBackwardUnary propagates into the only differentiable operand
// of a product. Multiplication is commutative, so one type serves both sides.
type MultiplicationBackwardUnary struct {
	gradient
	operandValue
	diff GradientNode
}

// NewMultiplicationBackwardUnary creates a MultiplicationBackwardUnary node.
// noDiff is the forward value of the other operand.
func NewMultiplicationBackwardUnary(diff GradientNode, noDiff Data) *MultiplicationBackwardUnary {
	shape := tensor.MustBroadcastShapes(gradShapeOf(diff), shapeOf(noDiff))
	return &MultiplicationBackwardUnary{
		gradient:     newGradient(shape),
		operandValue: newOperandValue(noDiff, shape),
		diff:         diff,
	}
}

// Backward implements Backward.
func (n *MultiplicationBackwardUnary) Backward() {
	g, release := n.Gradient()
	defer release()
	other, releaseOther := n.value()
	defer releaseOther()

	gd := g.Data()
	pushFunc(n.diff, g.Shape(), func(i int) float32 { return gd[i] * other(i) })
}
