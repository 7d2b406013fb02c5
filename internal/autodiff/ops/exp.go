package ops

import (
	"github.com/chewxy/math32"
)

// Exp computes e^x.
type Exp struct {
	unary
}

// NewExp creates an Exp node.
func NewExp(operand Data) *Exp {
	return &Exp{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *Exp) Forward() {
	n.eval(math32.Exp)
}

// ExpBackward propagates g*y.
type ExpBackward struct {
	unaryBackward
}

// NewExpBackward creates an ExpBackward node. data is the Exp node's output.
func NewExpBackward(operand GradientNode, data Data) *ExpBackward {
	return &ExpBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *ExpBackward) Backward() {
	n.propagate(func(g, y float32) float32 { return g * y })
}
