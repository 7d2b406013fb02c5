package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Division computes left / right elementwise with broadcasting.
// Division by zero follows IEEE semantics.
type Division struct {
	binary
}

// NewDivision creates a Division node.
func NewDivision(left, right Data) *Division {
	return &Division{binary: newBinary(left, right)}
}

// Forward implements Forward.
func (n *Division) Forward() {
	n.eval(func(l, r float32) float32 { return l / r })
}

// DivisionBackward propagates g/r into left and -g*l/r^2 into right.
type DivisionBackward struct {
	gradient
	operandPair
	left, right GradientNode
}

// NewDivisionBackward creates a DivisionBackward node from each operand's
// gradient and forward value.
func NewDivisionBackward(left GradientNode, leftData Data, right GradientNode, rightData Data) *DivisionBackward {
	shape := tensor.MustBroadcastShapes(gradShapeOf(left), gradShapeOf(right))
	return &DivisionBackward{
		gradient:    newGradient(shape),
		operandPair: newOperandPair(leftData, rightData, shape),
		left:        left,
		right:       right,
	}
}

// Backward implements Backward.
func (n *DivisionBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	l, r, releaseValues := n.values()
	defer releaseValues()

	gd := g.Data()
	pushFunc(n.left, g.Shape(), func(i int) float32 { return gd[i] / r(i) })
	pushFunc(n.right, g.Shape(), func(i int) float32 {
		ri := r(i)
		return -gd[i] * l(i) / (ri * ri)
	})
}

// DivisionBackwardLeft propagates g/r into the left operand only.
type DivisionBackwardLeft struct {
	gradient
	operandValue
	left GradientNode
}

// NewDivisionBackwardLeft creates a DivisionBackwardLeft node. rightData is the divisor.
func NewDivisionBackwardLeft(left GradientNode, rightData Data) *DivisionBackwardLeft {
	shape := tensor.MustBroadcastShapes(gradShapeOf(left), shapeOf(rightData))
	return &DivisionBackwardLeft{
		gradient:     newGradient(shape),
		operandValue: newOperandValue(rightData, shape),
		left:         left,
	}
}

// Backward implements Backward.
func (n *DivisionBackwardLeft) Backward() {
	g, release := n.Gradient()
	defer release()
	r, releaseR := n.value()
	defer releaseR()

	gd := g.Data()
	pushFunc(n.left, g.Shape(), func(i int) float32 { return gd[i] / r(i) })
}

// DivisionBackwardRight propagates -g*l/r^2 into the right operand only.
type DivisionBackwardRight struct {
	gradient
	operandPair
	right GradientNode
}

// NewDivisionBackwardRight creates a DivisionBackwardRight node.
func NewDivisionBackwardRight(leftData Data, right GradientNode, rightData Data) *DivisionBackwardRight {
	shape := tensor.MustBroadcastShapes(shapeOf(leftData), gradShapeOf(right))
	return &DivisionBackwardRight{
		gradient:    newGradient(shape),
		operandPair: newOperandPair(leftData, rightData, shape),
		right:       right,
	}
}

// Backward implements Backward.
func (n *DivisionBackwardRight) Backward() {
	g, release := n.Gradient()
	defer release()
	l, r, releaseValues := n.values()
	defer releaseValues()

	gd := g.Data()
	pushFunc(n.right, g.Shape(), func(i int) float32 {
		ri := r(i)
		return -gd[i] * l(i) / (ri * ri)
	})
}
