package ops

import (
	"testing"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestTranspose(t *testing.T) {
	x := newInput(tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	xt := NewTranspose(x)
	xt.Forward()
	assert.Equal(t, tensor.Shape{3, 2}, dataOf(xt).Shape())
	assertValues(t, []float32{1, 4, 2, 5, 3, 6}, dataOf(xt))

	dx := x.Differentiable()
	node := NewTransposeBackward(dx)
	assert.Equal(t, tensor.Shape{3, 2}, gradOf(node).Shape())
	seedWith(node, 1, 4, 2, 5, 3, 6)
	node.Backward()
	assertValues(t, []float32{1, 2, 3, 4, 5, 6}, gradOf(dx))
}

func TestTransposeRoundTrip(t *testing.T) {
	dx := fullInput(tensor.Shape{2, 3, 4}, 0).Differentiable()
	inner := NewTransposeBackward(dx)
	outer := NewTransposeBackward(inner)
	assert.Equal(t, tensor.Shape{2, 3, 4}, gradOf(outer).Shape())

	want := tensor.Linspace(0, 23, 24)
	seedWith(outer, want.Data()...)
	outer.Backward()
	inner.Backward()
	assertValues(t, want.Data(), gradOf(dx), "transpose of transpose returns the gradient unchanged")
}

func TestUnsqueeze(t *testing.T) {
	x := newInput(tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	for axis := 0; axis <= 2; axis++ {
		u := NewUnsqueeze(x, axis)
		u.Forward()
		shape := tensor.Shape{2, 3}.InsertAxis(axis, 1)
		assert.Equal(t, shape, dataOf(u).Shape())
		assertValues(t, []float32{1, 2, 3, 4, 5, 6}, dataOf(u))

		dx := x.Differentiable()
		node := NewUnsqueezeBackward(dx, axis)
		seedWith(node, 6, 5, 4, 3, 2, 1)
		node.Backward()
		assert.Equal(t, tensor.Shape{2, 3}, gradOf(dx).Shape())
		assertValues(t, []float32{6, 5, 4, 3, 2, 1}, gradOf(dx), "axis %d", axis)
	}
	assert.Panics(t, func() { NewUnsqueeze(x, 3) })
}

func TestChunk(t *testing.T) {
	x := newInput(tensor.Shape{4, 4},
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
		12, 13, 14, 15)
	c := NewChunk(x, tensor.Shape{2, 2}, 3)
	c.Forward()
	assertValues(t, []float32{10, 11, 14, 15}, dataOf(c))

	assert.Panics(t, func() { NewChunk(x, tensor.Shape{3, 2}, 0) }, "chunk must tile the operand")
	assert.Panics(t, func() { NewChunk(x, tensor.Shape{2, 2}, 4) })
}

func TestChunkBackwardDisjoint(t *testing.T) {
	x := fullInput(tensor.Shape{4, 3}, 0)
	dx := x.Differentiable()
	chunks := make([]*ChunkBackward, 4)
	for i := range chunks {
		chunks[i] = NewChunkBackward(dx, tensor.Shape{1, 3}, i)
	}
	want := []float32{1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4}

	for epoch := 0; epoch < 3; epoch++ {
		dx.SetOverwrite(true)
		for i, c := range chunks {
			c.SetOverwrite(true)
			seed(c, float32(i+1))
		}
		for _, c := range chunks {
			c.Backward()
		}
		assertValues(t, want, gradOf(dx), "epoch %d", epoch)
	}
}

func TestChunkBackwardClearsStaleValues(t *testing.T) {
	x := fullInput(tensor.Shape{2, 2}, 0)
	dx := x.Differentiable()
	seed(dx, 9)

	// Only chunk 0 runs: the rest of the gradient must not keep the stale 9s.
	c := NewChunkBackward(dx, tensor.Shape{1, 2}, 0)
	seed(c, 1)
	c.Backward()
	assertValues(t, []float32{1, 1, 0, 0}, gradOf(dx))
}

func TestConcatenate(t *testing.T) {
	l := newInput(tensor.Shape{2, 2}, 1, 2, 3, 4)
	r := newInput(tensor.Shape{2, 1}, 5, 6)
	cat := NewConcatenate(l, r, 1)
	cat.Forward()
	assert.Equal(t, tensor.Shape{2, 3}, dataOf(cat).Shape())
	assertValues(t, []float32{1, 2, 5, 3, 4, 6}, dataOf(cat))

	dl, dr := l.Differentiable(), r.Differentiable()
	node := NewConcatenateBackward(dl, dr, 1)
	seedWith(node, 1, 2, 3, 4, 5, 6)
	node.Backward()
	assertValues(t, []float32{1, 2, 4, 5}, gradOf(dl))
	assertValues(t, []float32{3, 6}, gradOf(dr))

	node.Backward()
	assertValues(t, []float32{2, 4, 8, 10}, gradOf(dl), "accumulates without reset")

	dl2 := l.Differentiable()
	left := NewConcatenateBackwardLeft(dl2, r, 1)
	seedWith(left, 1, 2, 3, 4, 5, 6)
	left.Backward()
	assertValues(t, []float32{1, 2, 4, 5}, gradOf(dl2))

	dr2 := r.Differentiable()
	right := NewConcatenateBackwardRight(l, dr2, 1)
	seedWith(right, 1, 2, 3, 4, 5, 6)
	right.Backward()
	assertValues(t, []float32{3, 6}, gradOf(dr2))

	assert.Panics(t, func() { NewConcatenate(l, r, 0) })
}

func TestConcatenateAxis0(t *testing.T) {
	l := newInput(tensor.Shape{1, 2}, 1, 2)
	r := newInput(tensor.Shape{2, 2}, 3, 4, 5, 6)
	cat := NewConcatenate(l, r, 0)
	cat.Forward()
	assertValues(t, []float32{1, 2, 3, 4, 5, 6}, dataOf(cat))

	dl, dr := l.Differentiable(), r.Differentiable()
	node := NewConcatenateBackward(dl, dr, 0)
	seedWith(node, 1, 2, 3, 4, 5, 6)
	node.Backward()
	assertValues(t, []float32{1, 2}, gradOf(dl))
	assertValues(t, []float32{3, 4, 5, 6}, gradOf(dr))
}

func TestStack(t *testing.T) {
	l := newInput(tensor.Shape{2}, 1, 2)
	r := newInput(tensor.Shape{2}, 3, 4)

	s0 := NewStack(l, r, 0)
	s0.Forward()
	assert.Equal(t, tensor.Shape{2, 2}, dataOf(s0).Shape())
	assertValues(t, []float32{1, 2, 3, 4}, dataOf(s0))

	s1 := NewStack(l, r, 1)
	s1.Forward()
	assertValues(t, []float32{1, 3, 2, 4}, dataOf(s1))

	dl, dr := l.Differentiable(), r.Differentiable()
	node := NewStackBackward(dl, dr, 1)
	seedWith(node, 1, 3, 2, 4)
	node.Backward()
	assertValues(t, []float32{1, 2}, gradOf(dl))
	assertValues(t, []float32{3, 4}, gradOf(dr))

	dl2 := l.Differentiable()
	left := NewStackBackwardLeft(dl2, r, 0)
	seedWith(left, 1, 2, 3, 4)
	left.Backward()
	assertValues(t, []float32{1, 2}, gradOf(dl2))

	dr2 := r.Differentiable()
	right := NewStackBackwardRight(l, dr2, 0)
	seedWith(right, 1, 2, 3, 4)
	right.Backward()
	assertValues(t, []float32{3, 4}, gradOf(dr2))

	assert.Panics(t, func() { NewStack(l, newInput(tensor.Shape{3}, 1, 2, 3), 0) })
}
