// Package ops implements the differentiable nodes of the computation graph.
//
// Every operation comes as a pair: a forward node computing and caching its
// output from the outputs of its operands, and one or more backward nodes
// propagating a gradient into the gradients of the operands that require it.
//
// Nodes are driven by an executor that calls Forward in topological order and
// Backward in reverse topological order. Before each backward epoch the
// executor sets every overwrite flag back to true; before each forward epoch it
// calls ResetComputation on every forward node.
package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
)

// Data is implemented by nodes exposing a forward value.
// The returned function releases the shared borrow.
type Data interface {
	Data() (*tensor.Tensor, func())
}

// Forward is implemented by every forward node.
type Forward interface {
	// Forward computes the node's output, unless it was already computed this epoch.
	Forward()
	// WasComputed reports whether Forward ran since the last ResetComputation.
	WasComputed() bool
	// ResetComputation clears the computed flag.
	ResetComputation()
}

// Gradient gives scoped access to a node's gradient.
type Gradient interface {
	Gradient() (*tensor.Tensor, func())
	GradientMut() (*tensor.Tensor, func())
}

// Overwrite is the per-node flag selecting between assigning (true) and
// accumulating (false) the next gradient written into the node.
type Overwrite interface {
	CanOverwrite() bool
	SetOverwrite(state bool)
}

// Backward is implemented by every backward node.
type Backward interface {
	Overwrite
	// Backward propagates the node's gradient into its operands' gradients.
	Backward()
}

// GradientNode is anything a backward node can propagate into: another
// backward node or a differentiable leaf.
type GradientNode interface {
	Gradient
	Overwrite
}

// Differentiable is implemented by leaves that can produce a gradient slot.
type Differentiable interface {
	Differentiable() *InputBackward
}

// Switchable is implemented by nodes whose gradient can be disabled, releasing its storage.
type Switchable interface {
	NoGrad()
	WithGrad()
}

// computation is the memo flag embedded in every forward node.
type computation struct {
	computed bool
}

// WasComputed implements Forward.
func (c *computation) WasComputed() bool {
	return c.computed
}

// ResetComputation implements Forward.
func (c *computation) ResetComputation() {
	c.computed = false
}

// begin marks the node computed, returning false if it already was.
func (c *computation) begin() bool {
	if c.computed {
		return false
	}
	c.computed = true
	return true
}

// output is the forward value owned by a forward node.
type output struct {
	data *tensor.Buffer
}

func newOutput(shape tensor.Shape) output {
	return output{data: tensor.NewZeroBuffer(shape)}
}

// Data implements Data.
func (o *output) Data() (*tensor.Tensor, func()) {
	return o.data.Borrow()
}

// Buffer returns the shared buffer holding the output.
func (o *output) Buffer() *tensor.Buffer {
	return o.data
}

// overwrite implements Overwrite. New nodes start with the flag set.
type overwrite struct {
	can bool
}

// CanOverwrite implements Overwrite.
func (o *overwrite) CanOverwrite() bool {
	return o.can
}

// SetOverwrite implements Overwrite.
func (o *overwrite) SetOverwrite(state bool) {
	o.can = state
}

// gradient is the gradient slot owned by a backward node.
type gradient struct {
	overwrite
	grad *tensor.Buffer
}

func newGradient(shape tensor.Shape) gradient {
	return gradient{overwrite: overwrite{can: true}, grad: tensor.NewZeroBuffer(shape)}
}

// Gradient implements Gradient.
func (g *gradient) Gradient() (*tensor.Tensor, func()) {
	return g.grad.Borrow()
}

// GradientMut implements Gradient.
func (g *gradient) GradientMut() (*tensor.Tensor, func()) {
	return g.grad.BorrowMut()
}

// GradientBuffer returns the shared buffer holding the gradient.
func (g *gradient) GradientBuffer() *tensor.Buffer {
	return g.grad
}

// shapeOf returns a copy of the shape of a node's forward value.
func shapeOf(d Data) tensor.Shape {
	t, release := d.Data()
	defer release()
	return t.Shape().Clone()
}

// gradShapeOf returns a copy of the shape of a node's gradient.
func gradShapeOf(g Gradient) tensor.Shape {
	t, release := g.Gradient()
	defer release()
	return t.Shape().Clone()
}
