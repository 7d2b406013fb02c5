package ops

// unary is the state shared by the elementwise activation forward nodes.
type unary struct {
	computation
	output
	operand Data
}

func newUnary(operand Data) unary {
	return unary{output: newOutput(shapeOf(operand)), operand: operand}
}

// eval computes out[i] = f(x[i]) once per epoch.
func (n *unary) eval(f func(x float32) float32) {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()

	xd := x.Data()
	fill(out.Data(), func(i int) float32 { return f(xd[i]) })
}

// unaryBackward is the state shared by the elementwise activation backward
// nodes. data is whichever forward value the derivative depends on: the
// operand's value for ReLU, LeakyReLU, SoftPlus and Logn, the node's own output
// for Sigmoid, TanH and Exp.
type unaryBackward struct {
	gradient
	operand GradientNode
	data    Data
}

func newUnaryBackward(operand GradientNode, data Data) unaryBackward {
	return unaryBackward{gradient: newGradient(gradShapeOf(operand)), operand: operand, data: data}
}

// propagate pushes f(g[i], v[i]) into the operand, where v is the forward value.
func (n *unaryBackward) propagate(f func(g, v float32) float32) {
	g, release := n.Gradient()
	defer release()
	v, releaseV := n.data.Data()
	defer releaseV()

	gd, vd := g.Data(), v.Data()
	pushFunc(n.operand, g.Shape(), func(i int) float32 { return f(gd[i], vd[i]) })
}
