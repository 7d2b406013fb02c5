package ops

import (
	"github.com/born-ml/backprop/internal/parallel"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/chewxy/math32"
)

// lanes describes the 1-d lanes of a tensor along an axis: lane (o, i) holds
// the elements at o*size*inner + a*inner + i for a in [0, size).
type lanes struct {
	outer, size, inner int
}

func newLanes(shape tensor.Shape, axis int) lanes {
	outer, size, inner := tensor.Lanes(shape, axis)
	return lanes{outer: outer, size: size, inner: inner}
}

// each calls f for every lane with the offset of its first element and its stride.
func (l lanes) each(f func(base, stride int)) {
	parallel.ForLanes(l.outer, l.inner, func(o, i int) {
		f(o*l.size*l.inner+i, l.inner)
	}, parallel.Default())
}

// softmaxLane writes the softmax of in's lane into out's lane. With logOutput
// it writes the log-softmax instead.
func softmaxLane(in, out []float32, base, stride, size int, logOutput bool) {
	maxVal := float32(-math32.MaxFloat32)
	for a := 0; a < size; a++ {
		maxVal = max(maxVal, in[base+a*stride])
	}
	var sum float32
	for a := 0; a < size; a++ {
		sum += math32.Exp(in[base+a*stride] - maxVal)
	}
	if logOutput {
		logSum := math32.Log(sum)
		for a := 0; a < size; a++ {
			idx := base + a*stride
			out[idx] = in[idx] - maxVal - logSum
		}
		return
	}
	for a := 0; a < size; a++ {
		idx := base + a*stride
		out[idx] = math32.Exp(in[idx]-maxVal) / sum
	}
}

// softmax is the forward state shared by Softmax and LogSoftmax.
type softmax struct {
	unary
	lanes
	logOutput bool
}

func newSoftmax(operand Data, axis int, logOutput bool) softmax {
	shape := shapeOf(operand)
	return softmax{unary: newUnary(operand), lanes: newLanes(shape, axis), logOutput: logOutput}
}

func (n *softmax) eval() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()

	in, od := x.Data(), out.Data()
	n.each(func(base, stride int) {
		softmaxLane(in, od, base, stride, n.size, n.logOutput)
	})
}

// Softmax normalizes every lane along an axis into a probability distribution.
// The lane maximum is subtracted first for numerical stability.
type Softmax struct {
	softmax
}

// NewSoftmax creates a Softmax node over axis.
func NewSoftmax(operand Data, axis int) *Softmax {
	return &Softmax{softmax: newSoftmax(operand, axis, false)}
}

// Forward implements Forward.
func (n *Softmax) Forward() {
	n.eval()
}

// LogSoftmax computes the logarithm of Softmax along an axis.
type LogSoftmax struct {
	softmax
}

// NewLogSoftmax creates a LogSoftmax node over axis.
func NewLogSoftmax(operand Data, axis int) *LogSoftmax {
	return &LogSoftmax{softmax: newSoftmax(operand, axis, true)}
}

// Forward implements Forward.
func (n *LogSoftmax) Forward() {
	n.eval()
}

// softmaxBackward is the backward state shared by the softmax family. data is
// the forward node's output.
type softmaxBackward struct {
	unaryBackward
	lanes
}

func newSoftmaxBackward(operand GradientNode, data Data, axis int) softmaxBackward {
	ub := newUnaryBackward(operand, data)
	return softmaxBackward{unaryBackward: ub, lanes: newLanes(ub.grad.Shape(), axis)}
}

// propagate materializes the per-lane contribution computed by lane and pushes it.
func (n *softmaxBackward) propagate(lane func(g, y, out []float32, base, stride int)) {
	g, release := n.Gradient()
	defer release()
	y, releaseY := n.data.Data()
	defer releaseY()

	contribution := tensor.ZerosLike(g.Shape())
	gd, yd, cd := g.Data(), y.Data(), contribution.Data()
	n.each(func(base, stride int) {
		lane(gd, yd, cd, base, stride)
	})
	push(n.operand, contribution)
}

// SoftmaxBackward propagates y*(g - Σ g*y) per lane.
type SoftmaxBackward struct {
	softmaxBackward
}

// NewSoftmaxBackward creates a SoftmaxBackward node. data is the Softmax node's output.
func NewSoftmaxBackward(operand GradientNode, data Data, axis int) *SoftmaxBackward {
	return &SoftmaxBackward{softmaxBackward: newSoftmaxBackward(operand, data, axis)}
}

// Backward implements Backward.
func (n *SoftmaxBackward) Backward() {
	size := n.size
	n.propagate(func(g, y, out []float32, base, stride int) {
		var dot float32
		for a := 0; a < size; a++ {
			idx := base + a*stride
			dot += g[idx] * y[idx]
		}
		for a := 0; a < size; a++ {
			idx := base + a*stride
			out[idx] = y[idx] * (g[idx] - dot)
		}
	})
}

// LogSoftmaxBackward propagates g - exp(y)*Σ g per lane.
type LogSoftmaxBackward struct {
	softmaxBackward
}

// NewLogSoftmaxBackward creates a LogSoftmaxBackward node. data is the LogSoftmax node's output.
func NewLogSoftmaxBackward(operand GradientNode, data Data, axis int) *LogSoftmaxBackward {
	return &LogSoftmaxBackward{softmaxBackward: newSoftmaxBackward(operand, data, axis)}
}

// Backward implements Backward.
func (n *LogSoftmaxBackward) Backward() {
	size := n.size
	n.propagate(func(g, y, out []float32, base, stride int) {
		var sum float32
		for a := 0; a < size; a++ {
			sum += g[base+a*stride]
		}
		for a := 0; a < size; a++ {
			idx := base + a*stride
			out[idx] = g[idx] - math32.Exp(y[idx])*sum
		}
	})
}
