package ops

// Negation computes -x.
type Negation struct {
	computation
	output
	operand Data
}

// NewNegation creates a Negation node.
func NewNegation(operand Data) *Negation {
	return &Negation{output: newOutput(shapeOf(operand)), operand: operand}
}

// Forward implements Forward.
func (n *Negation) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()

	xd := x.Data()
	fill(out.Data(), func(i int) float32 { return -xd[i] })
}

// NegationBackward propagates -g.
type NegationBackward struct {
	gradient
	operand GradientNode
}

// NewNegationBackward creates a NegationBackward node.
func NewNegationBackward(operand GradientNode) *NegationBackward {
	return &NegationBackward{gradient: newGradient(gradShapeOf(operand)), operand: operand}
}

// Backward implements Backward.
func (n *NegationBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	gd := g.Data()
	pushFunc(n.operand, g.Shape(), func(i int) float32 { return -gd[i] })
}
