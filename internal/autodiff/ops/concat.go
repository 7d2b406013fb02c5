package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// join is the forward state shared by Concatenate and Stack.
type join struct {
	computation
	output
	left, right Data
	axis        int
}

func (n *join) eval() {
	if !n.begin() {
		return
	}
	l, releaseL := n.left.Data()
	defer releaseL()
	r, releaseR := n.right.Data()
	defer releaseR()
	out, release := n.data.BorrowMut()
	defer release()
	tensor.Join(out, l, r, n.axis)
}

// Concatenate joins two tensors along an existing axis.
type Concatenate struct {
	join
}

// NewConcatenate creates a Concatenate node. All axes but axis must match.
func NewConcatenate(left, right Data, axis int) *Concatenate {
	shape := tensor.ConcatShape(shapeOf(left), shapeOf(right), axis)
	return &Concatenate{join: join{output: newOutput(shape), left: left, right: right, axis: axis}}
}

// Forward implements Forward.
func (n *Concatenate) Forward() {
	n.eval()
}

// Stack joins two tensors of the same shape along a new axis of size 2.
type Stack struct {
	join
}

// NewStack creates a Stack node.
func NewStack(left, right Data, axis int) *Stack {
	shape := tensor.StackShape(shapeOf(left), shapeOf(right), axis)
	return &Stack{join: join{output: newOutput(shape), left: left, right: right, axis: axis}}
}

// Forward implements Forward.
func (n *Stack) Forward() {
	n.eval()
}

// split is the backward state shared by the concatenate and stack families:
// it writes one side of the gradient into an operand.
type split struct {
	gradient
	axis                  int
	leftShape, rightShape tensor.Shape
}

func (s *split) pushSide(operand GradientNode, first bool) {
	g, release := s.Gradient()
	defer release()
	dst, releaseDst := operand.GradientMut()
	defer releaseDst()

	d := dst.Data()
	if operand.CanOverwrite() {
		tensor.SplitInto(g, s.axis, s.leftShape, s.rightShape, first, func(i int, v float32) { d[i] = v })
		operand.SetOverwrite(false)
		return
	}
	tensor.SplitInto(g, s.axis, s.leftShape, s.rightShape, first, func(i int, v float32) { d[i] += v })
}

func newConcatSplit(left, right tensor.Shape, axis int) split {
	return split{gradient: newGradient(tensor.ConcatShape(left, right, axis)), axis: axis, leftShape: left, rightShape: right}
}

func newStackSplit(left, right tensor.Shape, axis int) split {
	return split{gradient: newGradient(tensor.StackShape(left, right, axis)), axis: axis, leftShape: left, rightShape: right}
}

// ConcatenateBackward splits the gradient at the left operand's length along
// the axis and writes each portion into its operand.
type ConcatenateBackward struct {
	split
	left, right GradientNode
}

// NewConcatenateBackward creates a ConcatenateBackward node.
func NewConcatenateBackward(left, right GradientNode, axis int) *ConcatenateBackward {
	return &ConcatenateBackward{
		split: newConcatSplit(gradShapeOf(left), gradShapeOf(right), axis),
		left:  left,
		right: right,
	}
}

// Backward implements Backward.
func (n *ConcatenateBackward) Backward() {
	n.pushSide(n.left, true)
	n.pushSide(n.right, false)
}

// ConcatenateBackwardLeft writes the left portion of the gradient only.
type ConcatenateBackwardLeft struct {
	split
	left GradientNode
}

// NewConcatenateBackwardLeft creates a ConcatenateBackwardLeft node.
func NewConcatenateBackwardLeft(left GradientNode, right Data, axis int) *ConcatenateBackwardLeft {
	return &ConcatenateBackwardLeft{split: newConcatSplit(gradShapeOf(left), shapeOf(right), axis), left: left}
}

// Backward implements Backward.
func (n *ConcatenateBackwardLeft) Backward() {
	n.pushSide(n.left, true)
}

// ConcatenateBackwardRight writes the right portion of the gradient only.
type ConcatenateBackwardRight struct {
	split
	right GradientNode
}

// NewConcatenateBackwardRight creates a ConcatenateBackwardRight node.
func NewConcatenateBackwardRight(left Data, right GradientNode, axis int) *ConcatenateBackwardRight {
	return &ConcatenateBackwardRight{split: newConcatSplit(shapeOf(left), gradShapeOf(right), axis), right: right}
}

// Backward implements Backward.
func (n *ConcatenateBackwardRight) Backward() {
	n.pushSide(n.right, false)
}

// StackBackward writes index 0 of the new axis into left and index 1 into right.
type StackBackward struct {
	split
	left, right GradientNode
}

// NewStackBackward creates a StackBackward node.
func NewStackBackward(left, right GradientNode, axis int) *StackBackward {
	return &StackBackward{
		split: newStackSplit(gradShapeOf(left), gradShapeOf(right), axis),
		left:  left,
		right: right,
	}
}

// Backward implements Backward.
func (n *StackBackward) Backward() {
	n.pushSide(n.left, true)
	n.pushSide(n.right, false)
}

// StackBackwardLeft writes index 0 of the new axis into left only.
type StackBackwardLeft struct {
	split
	left GradientNode
}

// NewStackBackwardLeft creates a StackBackwardLeft node.
func NewStackBackwardLeft(left GradientNode, right Data, axis int) *StackBackwardLeft {
	return &StackBackwardLeft{split: newStackSplit(gradShapeOf(left), shapeOf(right), axis), left: left}
}

// Backward implements Backward.
func (n *StackBackwardLeft) Backward() {
	n.pushSide(n.left, true)
}

// StackBackwardRight writes index 1 of the new axis into right only.
type StackBackwardRight struct {
	split
	right GradientNode
}

// NewStackBackwardRight creates a StackBackwardRight node.
func NewStackBackwardRight(left Data, right GradientNode, axis int) *StackBackwardRight {
	return &StackBackwardRight{split: newStackSplit(shapeOf(left), gradShapeOf(right), axis), right: right}
}

// Backward implements Backward.
func (n *StackBackwardRight) Backward() {
	n.pushSide(n.right, false)
}
