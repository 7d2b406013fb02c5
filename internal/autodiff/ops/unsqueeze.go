package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Unsqueeze inserts a size-1 axis.
type Unsqueeze struct {
	computation
	output
	operand Data
}

// NewUnsqueeze creates an Unsqueeze node inserting an axis at position axis,
// which may equal the operand's rank.
func NewUnsqueeze(operand Data, axis int) *Unsqueeze {
	return &Unsqueeze{output: newOutput(shapeOf(operand).InsertAxis(axis, 1)), operand: operand}
}

// Forward implements Forward.
func (n *Unsqueeze) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()
	copy(out.Data(), x.Data())
}

// UnsqueezeBackward drops the inserted axis from the gradient.
type UnsqueezeBackward struct {
	gradient
	operand GradientNode
	shape   tensor.Shape
}

// NewUnsqueezeBackward creates an UnsqueezeBackward node.
func NewUnsqueezeBackward(operand GradientNode, axis int) *UnsqueezeBackward {
	shape := gradShapeOf(operand)
	return &UnsqueezeBackward{gradient: newGradient(shape.InsertAxis(axis, 1)), operand: operand, shape: shape}
}

// Backward implements Backward.
func (n *UnsqueezeBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	// Index 0 of a size-1 axis holds every element in the same order.
	push(n.operand, g.Reshape(n.shape))
}
