package ops

// leakySlope is the negative-side slope of LeakyReLU.
const leakySlope = 0.01

// ReLU computes max(0, x).
type ReLU struct {
	unary
}

// NewReLU creates a ReLU node.
func NewReLU(operand Data) *ReLU {
	return &ReLU{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *ReLU) Forward() {
	n.eval(func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// ReLUBackward propagates g where x > 0 and 0 elsewhere.
type ReLUBackward struct {
	unaryBackward
}

// NewReLUBackward creates a ReLUBackward node. data is the operand's forward value.
func NewReLUBackward(operand GradientNode, data Data) *ReLUBackward {
	return &ReLUBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *ReLUBackward) Backward() {
	n.propagate(func(g, x float32) float32 {
		if x > 0 {
			return g
		}
		return 0
	})
}

// LeakyReLU computes x for x > 0 and 0.01*x otherwise.
type LeakyReLU struct {
	unary
}

// NewLeakyReLU creates a LeakyReLU node.
func NewLeakyReLU(operand Data) *LeakyReLU {
	return &LeakyReLU{unary: newUnary(operand)}
}

// Forward implements Forward.
func (n *LeakyReLU) Forward() {
	n.eval(func(x float32) float32 {
		if x > 0 {
			return x
		}
		return leakySlope * x
	})
}

// LeakyReLUBackward propagates g where x > 0 and 0.01*g elsewhere.
type LeakyReLUBackward struct {
	unaryBackward
}

// NewLeakyReLUBackward creates a LeakyReLUBackward node. data is the operand's forward value.
func NewLeakyReLUBackward(operand GradientNode, data Data) *LeakyReLUBackward {
	return &LeakyReLUBackward{unaryBackward: newUnaryBackward(operand, data)}
}

// Backward implements Backward.
func (n *LeakyReLUBackward) Backward() {
	n.propagate(func(g, x float32) float32 {
		if x > 0 {
			return g
		}
		return leakySlope * g
	})
}
