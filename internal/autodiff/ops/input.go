package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Input is a leaf of the graph: its value is set from outside and Forward does nothing.
type Input struct {
	output
}

// NewInput creates a leaf holding t.
func NewInput(t *tensor.Tensor) *Input {
	return &Input{output: output{data: tensor.NewBuffer(t)}}
}

// NewInputFromBuffer creates a leaf sharing an existing buffer.
func NewInputFromBuffer(buf *tensor.Buffer) *Input {
	return &Input{output: output{data: buf}}
}

// Forward implements Forward. It is a no-op.
func (*Input) Forward() {}

// WasComputed implements Forward. A leaf is always computed.
func (*Input) WasComputed() bool { return true }

// ResetComputation implements Forward. It is a no-op.
func (*Input) ResetComputation() {}

// Differentiable creates the gradient slot of the leaf, zeroed and shaped like its value.
func (i *Input) Differentiable() *InputBackward {
	return &InputBackward{gradient: newGradient(i.data.Shape())}
}

// InputBackward is the gradient of a differentiable leaf.
type InputBackward struct {
	gradient
}

// ZeroGrad sets the gradient to zero.
func (b *InputBackward) ZeroGrad() {
	g, release := b.GradientMut()
	defer release()
	g.Fill(0)
}
