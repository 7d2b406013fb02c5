package ops

import (
	"github.com/chewxy/math32"
)

// Power raises every element to an integer exponent.
// A zero base with a negative exponent yields +Inf.
type Power struct {
	computation
	output
	operand Data
	exp     int
}

// NewPower creates a Power node computing x^exp.
func NewPower(operand Data, exp int) *Power {
	return &Power{output: newOutput(shapeOf(operand)), operand: operand, exp: exp}
}

// Forward implements Forward.
func (n *Power) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()

	xd, e := x.Data(), float32(n.exp)
	fill(out.Data(), func(i int) float32 { return math32.Pow(xd[i], e) })
}

// PowerBackward propagates g * exp * x^(exp-1).
type PowerBackward struct {
	gradient
	operand GradientNode
	data    Data
	exp     int
}

// NewPowerBackward creates a PowerBackward node. data is the operand's forward value.
func NewPowerBackward(operand GradientNode, data Data, exp int) *PowerBackward {
	return &PowerBackward{
		gradient: newGradient(gradShapeOf(operand)),
		operand:  operand,
		data:     data,
		exp:      exp,
	}
}

// Backward implements Backward.
func (n *PowerBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	x, releaseX := n.data.Data()
	defer releaseX()

	gd, xd := g.Data(), x.Data()
	e := float32(n.exp)
	pushFunc(n.operand, g.Shape(), func(i int) float32 {
		return gd[i] * e * math32.Pow(xd[i], e-1)
	})
}
