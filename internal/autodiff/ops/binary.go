package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// binary is the state shared by the broadcasting elementwise forward nodes.
type binary struct {
	computation
	output
	left, right Data
	// Broadcast offset tables from output index to operand index, nil when
	// the operand already has the output shape.
	leftAt, rightAt []int
}

func newBinary(left, right Data) binary {
	ls, rs := shapeOf(left), shapeOf(right)
	shape := tensor.MustBroadcastShapes(ls, rs)
	return binary{
		output:  newOutput(shape),
		left:    left,
		right:   right,
		leftAt:  tensor.BroadcastOffsets(ls, shape),
		rightAt: tensor.BroadcastOffsets(rs, shape),
	}
}

// eval computes out[i] = f(left[i], right[i]) under broadcasting, once per epoch.
func (b *binary) eval(f func(l, r float32) float32) {
	if !b.begin() {
		return
	}
	l, releaseL := b.left.Data()
	defer releaseL()
	r, releaseR := b.right.Data()
	defer releaseR()
	out, releaseOut := b.data.BorrowMut()
	defer releaseOut()

	ld, rd := l.Data(), r.Data()
	fill(out.Data(), func(i int) float32 {
		return f(ld[at(b.leftAt, i)], rd[at(b.rightAt, i)])
	})
}

// operandPair holds the forward values a product-rule backward node reads,
// with their broadcast tables onto the gradient shape.
type operandPair struct {
	leftData, rightData Data
	leftAt, rightAt     []int
}

func newOperandPair(leftData, rightData Data, shape tensor.Shape) operandPair {
	return operandPair{
		leftData:  leftData,
		rightData: rightData,
		leftAt:    tensor.BroadcastOffsets(shapeOf(leftData), shape),
		rightAt:   tensor.BroadcastOffsets(shapeOf(rightData), shape),
	}
}

// values borrows both operands and returns accessors indexed by gradient
// position, along with a release function.
func (p *operandPair) values() (left, right func(i int) float32, release func()) {
	l, releaseL := p.leftData.Data()
	r, releaseR := p.rightData.Data()
	ld, rd := l.Data(), r.Data()
	left = func(i int) float32 { return ld[at(p.leftAt, i)] }
	right = func(i int) float32 { return rd[at(p.rightAt, i)] }
	return left, right, func() {
		releaseR()
		releaseL()
	}
}

// operandValue is the one-sided operandPair.
type operandValue struct {
	data Data
	idx  []int
}

func newOperandValue(data Data, shape tensor.Shape) operandValue {
	return operandValue{data: data, idx: tensor.BroadcastOffsets(shapeOf(data), shape)}
}

func (v *operandValue) value() (func(i int) float32, func()) {
	t, release := v.data.Data()
	d := t.Data()
	return func(i int) float32 { return d[at(v.idx, i)] }, release
}
