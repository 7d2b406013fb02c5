package ops

// Transpose reverses the axes of its operand.
type Transpose struct {
	computation
	output
	operand Data
}

// NewTranspose creates a Transpose node.
func NewTranspose(operand Data) *Transpose {
	return &Transpose{output: newOutput(shapeOf(operand).Reversed()), operand: operand}
}

// Forward implements Forward.
func (n *Transpose) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()
	out.Assign(x.Transposed())
}

// TransposeBackward writes the transposed gradient into its operand.
type TransposeBackward struct {
	gradient
	operand GradientNode
}

// NewTransposeBackward creates a TransposeBackward node.
func NewTransposeBackward(operand GradientNode) *TransposeBackward {
	return &TransposeBackward{gradient: newGradient(gradShapeOf(operand).Reversed()), operand: operand}
}

// Backward implements Backward.
func (n *TransposeBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	push(n.operand, g.Transposed())
}
