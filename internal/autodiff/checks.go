package autodiff

import (
	"math/rand"

	"github.com/born-ml/backprop/internal/autodiff/ops"
	"github.com/born-ml/backprop/internal/gradcheck"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
)

// Check is a small graph over one differentiable input whose analytic
// gradient can be compared with central differences.
type Check struct {
	Name  string
	input *tensor.Tensor
	// build records the graph of f(x) on the tape and returns its output
	// together with the backward node receiving the output's gradient.
	build func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode)
}

// Input returns a copy of the point the check is evaluated at.
func (c Check) Input() *tensor.Tensor {
	return c.input.Clone()
}

// Jitter returns a copy of the check evaluated at its point plus uniform
// noise in [-scale, scale). Scales up to 0.02 keep every point clear of the
// kinks of ReLU and MAE.
func (c Check) Jitter(rng *rand.Rand, scale float32) Check {
	shape := c.input.Shape()
	noise := tensor.Rand(rng, -scale, scale, shape...)
	noise.AddAssign(c.input)
	c.input = noise
	return c
}

// Run builds the graph, reduces its output to Σ w*f(x) with fixed
// non-uniform weights w, and compares the gradient obtained by one backward
// epoch with the numeric estimate.
func (c Check) Run(cfg gradcheck.Config) (gradcheck.Mismatch, error) {
	tape := NewTape()
	x := ops.NewInput(c.input.Clone())
	dx := x.Differentiable()
	tape.Track(dx)

	out, outGrad := c.build(tape, x, dx)
	shape := shapeOf(out)
	w := ops.NewInput(tensor.Linspace(-1, 2, shape.NumElements()).Reshape(shape))
	weighted := ops.NewMultiplication(out, w)
	weightedGrad := ops.NewMultiplicationBackwardUnary(outGrad, w)
	tape.Record(weighted, weightedGrad)
	tape.Record(ops.NewSum(weighted), ops.NewSumBackward(weightedGrad))

	if err := tape.TryForward(); err != nil {
		return gradcheck.Mismatch{}, errors.WithMessage(err, c.Name)
	}
	if err := tape.TryBackward(1); err != nil {
		return gradcheck.Mismatch{}, errors.WithMessage(err, c.Name)
	}
	g, release := dx.Gradient()
	analytic := g.Clone()
	release()

	f := func(xp *tensor.Tensor) float32 {
		setInput(x, xp)
		tape.Forward()
		return tape.Output().Item()
	}
	numeric := gradcheck.Numeric(f, c.input.Clone(), cfg.Epsilon)
	setInput(x, c.input)

	m, err := gradcheck.Compare(analytic, numeric, cfg)
	return m, errors.WithMessage(err, c.Name)
}

func setInput(x *ops.Input, value *tensor.Tensor) {
	data, release := x.Buffer().BorrowMut()
	defer release()
	data.Assign(value)
}

func shapeOf(d ops.Data) tensor.Shape {
	t, release := d.Data()
	defer release()
	return t.Shape().Clone()
}

// Points the checks are evaluated at. No element of mixed lies within a
// finite-difference step of zero.
var (
	mixed    = func(shape ...int) *tensor.Tensor { return spread(-1.5, 1.7, shape) }
	positive = func(shape ...int) *tensor.Tensor { return spread(0.5, 3, shape) }
	unit     = func(shape ...int) *tensor.Tensor { return spread(0.2, 0.8, shape) }
)

func spread(lo, hi float32, shape tensor.Shape) *tensor.Tensor {
	return tensor.Linspace(lo, hi, shape.NumElements()).Reshape(shape)
}

func constant(shape tensor.Shape, lo, hi float32) *ops.Input {
	return ops.NewInput(spread(lo, hi, shape))
}

// unaryCheck checks y = op(x) for an elementwise or lane-wise op. fromOutput
// selects whether the backward node reads the op's output or its operand.
func unaryCheck[F interface {
	ops.Forward
	ops.Data
}, B interface {
	ops.Backward
	ops.GradientNode
}](name string, input *tensor.Tensor, fwd func(ops.Data) F, bwd func(ops.GradientNode, ops.Data) B, fromOutput bool) Check {
	return Check{
		Name:  name,
		input: input,
		build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
			y := fwd(x)
			var data ops.Data = x
			if fromOutput {
				data = y
			}
			b := bwd(dx, data)
			tape.Record(y, b)
			return y, b
		},
	}
}

// Checks returns the gradient-check suite covering every node pair.
func Checks() []Check {
	checks := []Check{
		{
			Name:  "addition/broadcast",
			input: mixed(2, 3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				c := constant(tensor.Shape{2, 1}, 1, 2)
				y := ops.NewAddition(x, c)
				b := ops.NewAdditionBackwardUnary(dx, c)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "multiplication/self",
			input: mixed(2, 3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				y := ops.NewMultiplication(x, x)
				b := ops.NewMultiplicationBackward(dx, x, dx, x)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			// (x - c) / e^x reaches x through two paths.
			Name:  "subtraction/division/exp",
			input: mixed(3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				c := constant(tensor.Shape{3}, -1, 1)
				diff := ops.NewSubtraction(x, c)
				diffGrad := ops.NewSubtractionBackwardLeft(dx, c)
				tape.Record(diff, diffGrad)
				e := ops.NewExp(x)
				eGrad := ops.NewExpBackward(dx, e)
				tape.Record(e, eGrad)
				q := ops.NewDivision(diff, e)
				qGrad := ops.NewDivisionBackward(diffGrad, diff, eGrad, e)
				tape.Record(q, qGrad)
				return q, qGrad
			},
		},
		{
			Name:  "division/constant-numerator",
			input: positive(4),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				c := constant(tensor.Shape{4}, 1, 2)
				y := ops.NewDivision(c, x)
				b := ops.NewDivisionBackwardRight(c, dx, x)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "power/negation",
			input: mixed(2, 2),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				p := ops.NewPower(x, 3)
				pGrad := ops.NewPowerBackward(dx, x, 3)
				tape.Record(p, pGrad)
				n := ops.NewNegation(p)
				nGrad := ops.NewNegationBackward(pGrad)
				tape.Record(n, nGrad)
				return n, nGrad
			},
		},
		{
			Name:  "transpose/unsqueeze",
			input: mixed(2, 3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				tr := ops.NewTranspose(x)
				trGrad := ops.NewTransposeBackward(dx)
				tape.Record(tr, trGrad)
				u := ops.NewUnsqueeze(tr, 1)
				uGrad := ops.NewUnsqueezeBackward(trGrad, 1)
				tape.Record(u, uGrad)
				return u, uGrad
			},
		},
		{
			// Product of the two halves of x: both chunks write into one gradient.
			Name:  "chunk",
			input: mixed(4, 3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				half := tensor.Shape{2, 3}
				top, bottom := ops.NewChunk(x, half, 0), ops.NewChunk(x, half, 1)
				topGrad, bottomGrad := ops.NewChunkBackward(dx, half, 0), ops.NewChunkBackward(dx, half, 1)
				tape.Record(top, topGrad)
				tape.Record(bottom, bottomGrad)
				y := ops.NewMultiplication(top, bottom)
				b := ops.NewMultiplicationBackward(topGrad, top, bottomGrad, bottom)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "concatenate",
			input: mixed(2, 2),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				c := constant(tensor.Shape{2, 1}, 3, 4)
				y := ops.NewConcatenate(x, c, 1)
				b := ops.NewConcatenateBackwardLeft(dx, c, 1)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "stack/self",
			input: mixed(3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				y := ops.NewStack(x, x, 1)
				b := ops.NewStackBackward(dx, dx, 1)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "matrix-matrix",
			input: mixed(2, 3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				w := constant(tensor.Shape{3, 2}, -1, 1)
				y := ops.NewMatrixMatrixMul(x, w)
				b := ops.NewMatrixMatrixMulBackwardLeft(dx, w)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "matrix-matrix/self",
			input: mixed(2, 2),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				y := ops.NewMatrixMatrixMul(x, x)
				b := ops.NewMatrixMatrixMulBackward(dx, x, dx, x)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "matrix-vector",
			input: mixed(3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				m := constant(tensor.Shape{2, 3}, -1, 1)
				y := ops.NewMatrixVectorMul(m, x)
				b := ops.NewMatrixVectorMulBackwardRight(m, dx)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "vector-matrix",
			input: mixed(3),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				m := constant(tensor.Shape{3, 2}, -1, 1)
				y := ops.NewVectorMatrixMul(x, m)
				b := ops.NewVectorMatrixMulBackwardLeft(dx, m)
				tape.Record(y, b)
				return y, b
			},
		},
		{
			Name:  "vector-vector/self",
			input: mixed(4),
			build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
				y := ops.NewVectorVectorMul(x, x)
				b := ops.NewVectorVectorMulBackward(dx, x, dx, x)
				tape.Record(y, b)
				return y, b
			},
		},
		unaryCheck("relu", mixed(2, 3), ops.NewReLU, ops.NewReLUBackward, false),
		unaryCheck("leaky-relu", mixed(2, 3), ops.NewLeakyReLU, ops.NewLeakyReLUBackward, false),
		unaryCheck("softplus", mixed(2, 3), ops.NewSoftPlus, ops.NewSoftPlusBackward, false),
		unaryCheck("sigmoid", mixed(2, 3), ops.NewSigmoid, ops.NewSigmoidBackward, true),
		unaryCheck("tanh", mixed(2, 3), ops.NewTanH, ops.NewTanHBackward, true),
		unaryCheck("exp", mixed(2, 3), ops.NewExp, ops.NewExpBackward, true),
		unaryCheck("logn", positive(2, 3), ops.NewLogn, ops.NewLognBackward, false),
		unaryCheck("softmax", mixed(2, 3),
			func(x ops.Data) *ops.Softmax { return ops.NewSoftmax(x, 1) },
			func(o ops.GradientNode, y ops.Data) *ops.SoftmaxBackward { return ops.NewSoftmaxBackward(o, y, 1) },
			true),
		unaryCheck("log-softmax", mixed(2, 3),
			func(x ops.Data) *ops.LogSoftmax { return ops.NewLogSoftmax(x, 0) },
			func(o ops.GradientNode, y ops.Data) *ops.LogSoftmaxBackward { return ops.NewLogSoftmaxBackward(o, y, 0) },
			true),
	}
	return append(checks, lossChecks()...)
}

func lossChecks() []Check {
	// Targets stay clear of the inputs so MAE never sits on its kink.
	target := must.M1(tensor.FromSlice([]float32{1, 0, 1, 0, 1, 0}, tensor.Shape{2, 3}))
	type lossPair struct {
		name  string
		input *tensor.Tensor
		build func(x, t ops.Data, dx ops.GradientNode, r ops.Reduction) (ops.Forward, ops.Data, ops.Backward, ops.GradientNode)
	}
	pairs := []lossPair{
		{"mae", mixed(2, 3), func(x, t ops.Data, dx ops.GradientNode, r ops.Reduction) (ops.Forward, ops.Data, ops.Backward, ops.GradientNode) {
			f, b := ops.NewMAELoss(x, t, r), ops.NewMAELossBackward(dx, x, t, r)
			return f, f, b, b
		}},
		{"mse", mixed(2, 3), func(x, t ops.Data, dx ops.GradientNode, r ops.Reduction) (ops.Forward, ops.Data, ops.Backward, ops.GradientNode) {
			f, b := ops.NewMSELoss(x, t, r), ops.NewMSELossBackward(dx, x, t, r)
			return f, f, b, b
		}},
		{"bce", unit(2, 3), func(x, t ops.Data, dx ops.GradientNode, r ops.Reduction) (ops.Forward, ops.Data, ops.Backward, ops.GradientNode) {
			f, b := ops.NewBCELoss(x, t, r), ops.NewBCELossBackward(dx, x, t, r)
			return f, f, b, b
		}},
		{"bce-with-logits", mixed(2, 3), func(x, t ops.Data, dx ops.GradientNode, r ops.Reduction) (ops.Forward, ops.Data, ops.Backward, ops.GradientNode) {
			f, b := ops.NewBCEWithLogitsLoss(x, t, r), ops.NewBCEWithLogitsLossBackward(dx, x, t, r)
			return f, f, b, b
		}},
	}

	var checks []Check
	for _, p := range pairs {
		for _, r := range []ops.Reduction{ops.ReductionMean, ops.ReductionSum} {
			checks = append(checks, Check{
				Name:  p.name + "/" + r.String(),
				input: p.input,
				build: func(tape *Tape, x *ops.Input, dx *ops.InputBackward) (ops.Data, ops.GradientNode) {
					fwd, out, bwd, grad := p.build(x, ops.NewInput(target.Clone()), dx, r)
					tape.Record(fwd, bwd)
					return out, grad
				},
			})
		}
	}
	return checks
}
