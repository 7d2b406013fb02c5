package ops

import (
	"github.com/chewxy/math32"
)

// TanH computes the hyperbolic tangent.
type TanH struct {
	unary
}

// NewTanH creates a TanH node.
func NewTanH(operand Data) *TanH {
	return &TanH{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *TanH) Forward() {
	n.eval(math32.Tanh)
}

// TanHBackward propagates g*(1-y^2).
type TanHBackward struct {
	unaryBackward
}

// NewTanHBackward creates a TanHBackward node. data is the TanH node's output.
func NewTanHBackward(operand GradientNode, data Data) *TanHBackward {
	return &TanHBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *TanHBackward) Backward() {
	n.propagate(func(g, y float32) float32 { return g * (1 - y*y) })
}
