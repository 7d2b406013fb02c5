package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Chunk extracts one block of its operand. The operand is tiled, in row-major
// order, into blocks of the chunk shape; no selects the block.
type Chunk struct {
	computation
	output
	operand Data
	offsets []int
}

// NewChunk creates a Chunk node. It panics unless chunkShape tiles the operand exactly.
func NewChunk(operand Data, chunkShape tensor.Shape, no int) *Chunk {
	return &Chunk{
		output:  newOutput(chunkShape),
		operand: operand,
		offsets: tensor.ChunkOffsets(shapeOf(operand), chunkShape, no),
	}
}

// Forward implements Forward.
func (n *Chunk) Forward() {
	if !n.begin() {
		return
	}
	x, releaseX := n.operand.Data()
	defer releaseX()
	out, release := n.data.BorrowMut()
	defer release()

	xd := x.Data()
	fill(out.Data(), func(i int) float32 { return xd[n.offsets[i]] })
}

// ChunkBackward writes its gradient into its own region of the operand gradient.
//
// Several ChunkBackward nodes usually share one operand, each owning a disjoint
// region. The first of them to run in an epoch finds the operand's overwrite
// flag set: it zeroes the whole operand gradient before writing its region and
// clears the flag, so later chunks only add into their own regions and no
// stale values survive from the previous epoch. Outside its own region a chunk
// only ever writes zeros, and only on that first write.
type ChunkBackward struct {
	gradient
	operand GradientNode
	offsets []int
}

// NewChunkBackward creates a ChunkBackward node for block no of chunkShape.
func NewChunkBackward(operand GradientNode, chunkShape tensor.Shape, no int) *ChunkBackward {
	return &ChunkBackward{
		gradient: newGradient(chunkShape),
		operand:  operand,
		offsets:  tensor.ChunkOffsets(gradShapeOf(operand), chunkShape, no),
	}
}

// Backward implements Backward.
func (n *ChunkBackward) Backward() {
	g, release := n.Gradient()
	defer release()
	dst, releaseDst := n.operand.GradientMut()
	defer releaseDst()

	d := dst.Data()
	if n.operand.CanOverwrite() {
		dst.Fill(0)
		n.operand.SetOverwrite(false)
	}
	for i, v := range g.Data() {
		d[n.offsets[i]] += v
	}
}
