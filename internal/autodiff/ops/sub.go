package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Subtraction computes left - right with broadcasting.
type Subtraction struct {
	binary
}

// NewSubtraction creates a Subtraction node.
func NewSubtraction(left, right Data) *Subtraction {
	return &Subtraction{binary: newBinary(left, right)}
}

// Forward implements Forward.
func (n *Subtraction) Forward() {
	n.eval(func(l, r float32) float32 { return l - r })
}

// SubtractionBackward propagates g into left and -g into right.
type SubtractionBackward struct {
	gradient
	left, right GradientNode
}

// NewSubtractionBackward creates a SubtractionBackward node.
func NewSubtractionBackward(left, right GradientNode) *SubtractionBackward {
	shape := tensor.MustBroadcastShapes(gradShapeOf(left), gradShapeOf(right))
	return &SubtractionBackward{gradient: newGradient(shape), left: left, right: right}
}

// Backward implements Backward.
func (n *SubtractionBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	gd := g.Data()
	push(n.left, g)
	pushFunc(n.right, g.Shape(), func(i int) float32 { return -gd[i] })
}

// SubtractionBackwardLeft propagates into the left operand only.
type SubtractionBackwardLeft struct {
	gradient
	left GradientNode
}

// NewSubtractionBackwardLeft creates a SubtractionBackwardLeft node.
func NewSubtractionBackwardLeft(left GradientNode, right Data) *SubtractionBackwardLeft {
	shape := tensor.MustBroadcastShapes(gradShapeOf(left), shapeOf(right))
	return &SubtractionBackwardLeft{gradient: newGradient(shape), left: left}
}

// Backward implements Backward.
func (n *SubtractionBackwardLeft) Backward() {
	g, release := n.Gradient()
	defer release()
	push(n.left, g)
}

// SubtractionBackwardRight propagates -g into the right operand only.
type SubtractionBackwardRight struct {
	gradient
	right GradientNode
}

// NewSubtractionBackwardRight creates a SubtractionBackwardRight node.
func NewSubtractionBackwardRight(left Data, right GradientNode) *SubtractionBackwardRight {
	shape := tensor.MustBroadcastShapes(shapeOf(left), gradShapeOf(right))
	return &SubtractionBackwardRight{gradient: newGradient(shape), right: right}
}

// Backward implements Backward.
func (n *SubtractionBackwardRight) Backward() {
	g, release := n.Gradient()
	defer release()
	gd := g.Data()
	pushFunc(n.right, g.Shape(), func(i int) float32 { return -gd[i] })
}
