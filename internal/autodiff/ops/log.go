package ops

import (
	"github.com/chewxy/math32"
)

// Logn computes the natural logarithm. log(0) is -Inf, negative inputs give NaN.
type Logn struct {
	unary
}

// NewLogn creates a Logn node.
func NewLogn(operand Data) *Logn {
	return &Logn{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *Logn) Forward() {
	n.eval(math32.Log)
}

// LognBackward propagates g/x.
type LognBackward struct {
	unaryBackward
}

// NewLognBackward creates a LognBackward node. data is the operand's forward value.
func NewLognBackward(operand GradientNode, data Data) *LognBackward {
	return &LognBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *LognBackward) Backward() {
	n.propagate(func(g, x float32) float32 { return g / x })
}
