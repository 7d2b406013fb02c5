package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
)

// Reduction selects how a loss folds its elementwise terms into a scalar.
type Reduction int

const (
	// ReductionMean divides the summed terms by the number of elements.
	ReductionMean Reduction = iota
	// ReductionSum leaves the summed terms as they are.
	ReductionSum
)

// String implements fmt.Stringer.
func (r Reduction) String() string {
	switch r {
	case ReductionMean:
		return "mean"
	case ReductionSum:
		return "sum"
	default:
		return "unknown"
	}
}

const (
	// bceEpsilon bounds the BCE gradient denominator away from zero.
	bceEpsilon = 1.1920929e-07
	// bceLogFloor clamps log(0) in the BCE loss.
	bceLogFloor = -100
)

// lossTerms defines one loss: its elementwise term and the term's derivative
// with respect to the input.
type lossTerms struct {
	name  string
	term  func(x, t float32) float32
	deriv func(x, t float32) float32
}

var (
	maeTerms = lossTerms{
		name: "MAELoss",
		term: func(x, t float32) float32 { return math32.Abs(x - t) },
		deriv: func(x, t float32) float32 {
			switch d := x - t; {
			case d == 0:
				return 0
			case math32.IsNaN(d):
				return d
			default:
				return math32.Copysign(1, d)
			}
		},
	}
	mseTerms = lossTerms{
		name:  "MSELoss",
		term:  func(x, t float32) float32 { d := x - t; return d * d },
		deriv: func(x, t float32) float32 { return 2 * (x - t) },
	}
	bceTerms = lossTerms{
		name: "BCELoss",
		term: func(x, t float32) float32 {
			return -(t*max(math32.Log(x), bceLogFloor) + (1-t)*max(math32.Log(1-x), bceLogFloor))
		},
		deriv: func(x, t float32) float32 {
			return (x - t) / max((1-x)*x, bceEpsilon)
		},
	}
	bceWithLogitsTerms = lossTerms{
		name: "BCEWithLogitsLoss",
		term: func(x, t float32) float32 {
			return max(x, 0) - x*t + math32.Log1p(math32.Exp(-math32.Abs(x)))
		},
		deriv: func(x, t float32) float32 { return sigmoid(x) - t },
	}
)

// loss is the forward state shared by every loss node.
type loss struct {
	computation
	output
	lossTerms
	input, target Data
	reduction     Reduction
}

func newLoss(terms lossTerms, input, target Data, reduction Reduction) *loss {
	is, ts := shapeOf(input), shapeOf(target)
	if !is.Equal(ts) {
		exceptions.Panicf("%s: input %v and target %v must have the same shape", terms.name, is, ts)
	}
	return &loss{
		output:    newOutput(tensor.Shape{}),
		lossTerms: terms,
		input:     input,
		target:    target,
		reduction: reduction,
	}
}

// Forward implements Forward.
func (n *loss) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.input.Data()
	defer releaseX()
	t, releaseT := n.target.Data()
	defer releaseT()
	out, release := n.data.BorrowMut()
	defer release()

	xd, td := x.Data(), t.Data()
	var total float32
	for i, v := range xd {
		total += n.term(v, td[i])
	}
	if n.reduction == ReductionMean && len(xd) > 0 {
		total /= float32(len(xd))
	}
	out.Data()[0] = total
}

// Reduction returns the loss reduction.
func (n *loss) Reduction() Reduction {
	return n.reduction
}

// MAELoss is the mean absolute error |input - target|.
type MAELoss struct{ *loss }

// NewMAELoss creates an MAELoss node. input and target must have the same shape.
func NewMAELoss(input, target Data, reduction Reduction) *MAELoss {
	return &MAELoss{newLoss(maeTerms, input, target, reduction)}
}

// MSELoss is the mean squared error (input - target)^2.
type MSELoss struct{ *loss }

// NewMSELoss creates an MSELoss node.
func NewMSELoss(input, target Data, reduction Reduction) *MSELoss {
	return &MSELoss{newLoss(mseTerms, input, target, reduction)}
}

// BCELoss is the binary cross entropy of probabilities. Logarithms are floored at -100.
type BCELoss struct{ *loss }

// NewBCELoss creates a BCELoss node. input holds probabilities in [0, 1].
func NewBCELoss(input, target Data, reduction Reduction) *BCELoss {
	return &BCELoss{newLoss(bceTerms, input, target, reduction)}
}

// BCEWithLogitsLoss is the binary cross entropy of sigmoid(input), computed stably from logits.
type BCEWithLogitsLoss struct{ *loss }

// NewBCEWithLogitsLoss creates a BCEWithLogitsLoss node. input holds logits.
func NewBCEWithLogitsLoss(input, target Data, reduction Reduction) *BCEWithLogitsLoss {
	return &BCEWithLogitsLoss{newLoss(bceWithLogitsTerms, input, target, reduction)}
}

// lossBackward is the backward state shared by every loss node. Its gradient
// is a 0-d tensor that can be switched off when the loss is only monitored.
type lossBackward struct {
	gradient
	lossTerms
	operand       GradientNode
	input, target Data
	reduction     Reduction
}

func newLossBackward(terms lossTerms, operand GradientNode, input, target Data, reduction Reduction) *lossBackward {
	gs, is, ts := gradShapeOf(operand), shapeOf(input), shapeOf(target)
	if !gs.Equal(is) || !is.Equal(ts) {
		exceptions.Panicf("%sBackward: gradient %v, input %v and target %v must have the same shape", terms.name, gs, is, ts)
	}
	return &lossBackward{
		gradient:  newGradient(tensor.Shape{}),
		lossTerms: terms,
		operand:   operand,
		input:     input,
		target:    target,
		reduction: reduction,
	}
}

// Backward implements Backward. It does nothing while the gradient is disabled.
func (n *lossBackward) Backward() {
	if !n.grad.Present() {
		return
	}
	g, release := n.Gradient()
	defer release()
	x, releaseX := n.input.Data()
	defer releaseX()
	t, releaseT := n.target.Data()
	defer releaseT()

	xd, td := x.Data(), t.Data()
	factor := g.Data()[0]
	if n.reduction == ReductionMean && len(xd) > 0 {
		factor /= float32(len(xd))
	}
	pushFunc(n.operand, x.Shape(), func(i int) float32 {
		return factor * n.deriv(xd[i], td[i])
	})
}

// NoGrad implements Switchable: it releases the gradient's storage.
func (n *lossBackward) NoGrad() {
	n.grad.Clear()
}

// WithGrad implements Switchable: it restores a zeroed gradient.
func (n *lossBackward) WithGrad() {
	n.grad.Restore()
}

// MAELossBackward propagates sign(input - target), zero at equality.
type MAELossBackward struct{ *lossBackward }

// NewMAELossBackward creates an MAELossBackward node writing into operand, the
// gradient of input.
func NewMAELossBackward(operand GradientNode, input, target Data, reduction Reduction) *MAELossBackward {
	return &MAELossBackward{newLossBackward(maeTerms, operand, input, target, reduction)}
}

// MSELossBackward propagates 2*(input - target).
type MSELossBackward struct{ *lossBackward }

// NewMSELossBackward creates an MSELossBackward node.
func NewMSELossBackward(operand GradientNode, input, target Data, reduction Reduction) *MSELossBackward {
	return &MSELossBackward{newLossBackward(mseTerms, operand, input, target, reduction)}
}

// BCELossBackward propagates (input - target) / ((1 - input) * input), with the
// denominator bounded below by the float32 machine epsilon.
type BCELossBackward struct{ *lossBackward }

// NewBCELossBackward creates a BCELossBackward node.
func NewBCELossBackward(operand GradientNode, input, target Data, reduction Reduction) *BCELossBackward {
	return &BCELossBackward{newLossBackward(bceTerms, operand, input, target, reduction)}
}

// BCEWithLogitsLossBackward propagates sigmoid(input) - target.
type BCEWithLogitsLossBackward struct{ *lossBackward }

// NewBCEWithLogitsLossBackward creates a BCEWithLogitsLossBackward node.
func NewBCEWithLogitsLossBackward(operand GradientNode, input, target Data, reduction Reduction) *BCEWithLogitsLossBackward {
	return &BCEWithLogitsLossBackward{newLossBackward(bceWithLogitsTerms, operand, input, target, reduction)}
}
