package tensor

import (
	"github.com/gomlx/exceptions"
)

// Lanes decomposes shape around axis into (outer, size, inner) so that the
// element at (o, a, i) lives at flat offset o*size*inner + a*inner + i.
func Lanes(shape Shape, axis int) (outer, size, inner int) {
	shape.checkAxis("Lanes", axis)
	return product(shape[:axis]), shape[axis], product(shape[axis+1:])
}

// SumAxis sums over axis and drops it.
func (t *Tensor) SumAxis(axis int) *Tensor {
	return t.sumAxis(axis, t.shape.RemoveAxis(axis))
}

// SumAxisKeep sums over axis and keeps it as a size-1 axis.
func (t *Tensor) SumAxisKeep(axis int) *Tensor {
	keep := t.shape.Clone()
	t.shape.checkAxis("SumAxisKeep", axis)
	keep[axis] = 1
	return t.sumAxis(axis, keep)
}

func (t *Tensor) sumAxis(axis int, shape Shape) *Tensor {
	outer, size, inner := Lanes(t.shape, axis)
	out := ZerosLike(shape)
	for o := 0; o < outer; o++ {
		dst := out.data[o*inner : (o+1)*inner]
		for a := 0; a < size; a++ {
			base := (o*size + a) * inner
			for i, v := range t.data[base : base+inner] {
				dst[i] += v
			}
		}
	}
	return out
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float32 {
	var s float32
	for _, v := range t.data {
		s += v
	}
	return s
}

// Transposed returns a copy of t with its axes reversed.
func (t *Tensor) Transposed() *Tensor {
	out := ZerosLike(t.shape.Reversed())
	rank := len(t.shape)
	if rank < 2 {
		copy(out.data, t.data)
		return out
	}
	idx := make([]int, rank)
	for i := range out.data {
		tmp := i
		src := 0
		for j := rank - 1; j >= 0; j-- {
			idx[j] = tmp % out.shape[j]
			tmp /= out.shape[j]
			src += idx[j] * t.strides[rank-1-j]
		}
		out.data[i] = t.data[src]
	}
	return out
}

// BroadcastOffsets returns, for every flat index of a tensor shaped out, the
// flat offset of the element of a tensor shaped src that broadcasts onto it.
// It returns nil when both shapes are equal, meaning the identity mapping.
func BroadcastOffsets(src, out Shape) []int {
	if src.Equal(out) {
		return nil
	}
	if len(src) > len(out) {
		exceptions.Panicf("tensor.BroadcastOffsets: cannot broadcast %v to %v", src, out)
	}
	pad := len(out) - len(src)
	padded := make(Shape, len(out))
	for i := range padded {
		padded[i] = 1
	}
	copy(padded[pad:], src)
	for i, dim := range padded {
		if dim != 1 && dim != out[i] {
			exceptions.Panicf("tensor.BroadcastOffsets: cannot broadcast %v to %v", src, out)
		}
	}
	strides := padded.ComputeStrides()
	offsets := make([]int, out.NumElements())
	for i := range offsets {
		tmp := i
		off := 0
		for j := len(out) - 1; j >= 0; j-- {
			k := tmp % out[j]
			tmp /= out[j]
			if padded[j] != 1 {
				off += k * strides[j]
			}
		}
		offsets[i] = off
	}
	return offsets
}

// ChunkOffsets returns the flat offsets, inside a tensor shaped shape, of the
// elements of chunk number no when shape is tiled into blocks shaped chunk.
// Blocks are numbered in row-major order over the tiling grid. Every axis of
// shape must be an exact multiple of the matching chunk axis.
func ChunkOffsets(shape, chunk Shape, no int) []int {
	if len(shape) != len(chunk) {
		exceptions.Panicf("tensor.ChunkOffsets: chunk %v has a different rank than %v", chunk, shape)
	}
	grid := make(Shape, len(shape))
	for i, dim := range shape {
		if chunk[i] <= 0 || dim%chunk[i] != 0 {
			exceptions.Panicf("tensor.ChunkOffsets: chunk %v does not tile %v exactly", chunk, shape)
		}
		grid[i] = dim / chunk[i]
	}
	if no < 0 || no >= grid.NumElements() {
		exceptions.Panicf("tensor.ChunkOffsets: chunk %d out of range, %v has %d chunks of %v",
			no, shape, grid.NumElements(), chunk)
	}

	// Origin of the block in shape coordinates.
	origin := make([]int, len(shape))
	tmp := no
	for j := len(grid) - 1; j >= 0; j-- {
		origin[j] = (tmp % grid[j]) * chunk[j]
		tmp /= grid[j]
	}

	strides := shape.ComputeStrides()
	offsets := make([]int, chunk.NumElements())
	for i := range offsets {
		tmp := i
		off := 0
		for j := len(chunk) - 1; j >= 0; j-- {
			off += (origin[j] + tmp%chunk[j]) * strides[j]
			tmp /= chunk[j]
		}
		offsets[i] = off
	}
	return offsets
}

// ConcatShape returns the shape of left and right joined along axis. All other
// axes must match.
func ConcatShape(left, right Shape, axis int) Shape {
	if len(left) != len(right) {
		exceptions.Panicf("tensor.Concatenate: rank mismatch %v vs %v", left, right)
	}
	left.checkAxis("Concatenate", axis)
	out := left.Clone()
	for i := range left {
		if i != axis && left[i] != right[i] {
			exceptions.Panicf("tensor.Concatenate: %v and %v differ on axis %d", left, right, i)
		}
	}
	out[axis] += right[axis]
	return out
}

// StackShape returns the shape of left and right stacked along a new axis.
func StackShape(left, right Shape, axis int) Shape {
	if !left.Equal(right) {
		exceptions.Panicf("tensor.Stack: shape mismatch %v vs %v", left, right)
	}
	return left.InsertAxis(axis, 2)
}

// Join writes left followed by right along axis into dst. Both operands are
// viewed as (outer, block) matrices where outer is the product of the axes
// before axis, so the same routine serves concatenation and stacking.
func Join(dst, left, right *Tensor, axis int) {
	outer := product(dst.shape[:axis])
	lBlock, rBlock := blockSize(left, outer), blockSize(right, outer)
	if outer > 0 && (lBlock+rBlock)*outer != dst.Len() {
		exceptions.Panicf("tensor.Join: %v and %v do not fill %v along axis %d", left.shape, right.shape, dst.shape, axis)
	}
	off := 0
	for o := 0; o < outer; o++ {
		off += copy(dst.data[off:off+lBlock], left.data[o*lBlock:(o+1)*lBlock])
		off += copy(dst.data[off:off+rBlock], right.data[o*rBlock:(o+1)*rBlock])
	}
}

// SplitInto is the inverse of Join for one side: it visits, in order, the
// elements of src that belong to the left (first) or right (second) operand
// and calls f with the operand's flat index and the value.
func SplitInto(src *Tensor, axis int, left, right Shape, first bool, f func(i int, v float32)) {
	outer := product(src.shape[:axis])
	if outer == 0 {
		return
	}
	lBlock := left.NumElements() / outer
	rBlock := right.NumElements() / outer
	block, skip := lBlock, 0
	if !first {
		block, skip = rBlock, lBlock
	}
	i := 0
	for o := 0; o < outer; o++ {
		base := o*(lBlock+rBlock) + skip
		for _, v := range src.data[base : base+block] {
			f(i, v)
			i++
		}
	}
}

func blockSize(t *Tensor, outer int) int {
	if outer == 0 {
		return 0
	}
	return t.Len() / outer
}
