package ops

import (
	"github.com/chewxy/math32"
)

// Beyond this magnitude the sigmoid and softplus saturate in float32.
const saturation = 15

// sigmoid is the logistic function, clamped to exactly 0 or 1 in saturation.
func sigmoid(x float32) float32 {
	switch {
	case x >= saturation:
		return 1
	case x <= -saturation:
		return 0
	default:
		return 1 / (1 + math32.Exp(-x))
	}
}

// Sigmoid computes 1 / (1 + e^-x).
type Sigmoid struct {
	unary
}

// NewSigmoid creates a Sigmoid node.
func NewSigmoid(operand Data) *Sigmoid {
	return &Sigmoid{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *Sigmoid) Forward() {
	n.eval(sigmoid)
}

// SigmoidBackward propagates g*y*(1-y).
type SigmoidBackward struct {
	unaryBackward
}

// NewSigmoidBackward creates a SigmoidBackward node. data is the Sigmoid node's output.
func NewSigmoidBackward(operand GradientNode, data Data) *SigmoidBackward {
	return &SigmoidBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *SigmoidBackward) Backward() {
	n.propagate(func(g, y float32) float32 { return g * y * (1 - y) })
}

// SoftPlus computes log(1 + e^x).
type SoftPlus struct {
	unary
}

// NewSoftPlus creates a SoftPlus node.
func NewSoftPlus(operand Data) *SoftPlus {
	return &SoftPlus{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *SoftPlus) Forward() {
	n.eval(func(x float32) float32 {
		switch {
		case x >= saturation:
			return x
		case x <= -saturation:
			return 0
		default:
			return math32.Log1p(math32.Exp(x))
		}
	})
}

// SoftPlusBackward propagates g*sigmoid(x).
type SoftPlusBackward struct {
	unaryBackward
}

// NewSoftPlusBackward creates a SoftPlusBackward node. data is the operand's forward value.
func NewSoftPlusBackward(operand GradientNode, data Data) *SoftPlusBackward {
	return &SoftPlusBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *SoftPlusBackward) Backward() {
	n.propagate(func(g, x float32) float32 { return g * sigmoid(x) })
}
