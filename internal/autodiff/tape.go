package autodiff

import (
	"github.com/born-ml/backprop/internal/autodiff/ops"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Tape records forward nodes and their backward counterparts in topological
// order and drives whole epochs over them.
//
// Usage:
//
//	tape := NewTape()
//	x := ops.NewInput(t)
//	dx := x.Differentiable()
//	tape.Track(dx)
//	sq := ops.NewMultiplication(x, x)
//	tape.Record(sq, ops.NewMultiplicationBackward(dx, x, dx, x))
//	tape.Forward()
//	tape.Backward(1) // dx now holds 2x
type Tape struct {
	forward   []ops.Forward  // Recorded forward nodes (in execution order)
	backward  []ops.Backward // Recorded backward nodes (in execution order)
	leaves    []ops.Overwrite
	recording bool
}

// NewTape creates a new tape. Recording is on.
func NewTape() *Tape {
	return &Tape{
		forward:   make([]ops.Forward, 0, 64),
		backward:  make([]ops.Backward, 0, 64),
		recording: true,
	}
}

// StartRecording enables node recording.
func (t *Tape) StartRecording() {
	t.recording = true
}

// StopRecording disables node recording.
func (t *Tape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording nodes.
func (t *Tape) IsRecording() bool {
	return t.recording
}

// NoGrad runs fn with recording disabled, then restores the previous state.
func (t *Tape) NoGrad(fn func()) {
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()
	fn()
}

// Record appends a forward node and, if bwd is not nil, its backward node.
// Nodes must be recorded in topological order; the tape does not sort them.
// Only records if the tape is currently recording.
func (t *Tape) Record(fwd ops.Forward, bwd ops.Backward) {
	if !t.recording {
		return
	}
	if fwd != nil {
		t.forward = append(t.forward, fwd)
	}
	if bwd != nil {
		t.backward = append(t.backward, bwd)
	}
}

// Track registers a differentiable leaf whose overwrite flag must be reset
// before every backward epoch. It is a no-op while the tape is not recording.
func (t *Tape) Track(leaf ops.Overwrite) {
	if !t.recording {
		return
	}
	t.leaves = append(t.leaves, leaf)
}

// Clear removes all recorded nodes and tracked leaves.
// Recording state is preserved.
func (t *Tape) Clear() {
	t.forward = t.forward[:0]
	t.backward = t.backward[:0]
	t.leaves = t.leaves[:0]
}

// Len returns the number of recorded forward and backward nodes.
func (t *Tape) Len() (forward, backward int) {
	return len(t.forward), len(t.backward)
}

// Forward runs a forward epoch: every node is marked stale, then evaluated in order.
func (t *Tape) Forward() {
	for _, node := range t.forward {
		node.ResetComputation()
	}
	for _, node := range t.forward {
		node.Forward()
	}
	klog.V(1).Infof("tape: forward epoch over %d nodes", len(t.forward))
}

// Output returns a copy of the value of the last recorded forward node.
func (t *Tape) Output() *tensor.Tensor {
	if len(t.forward) == 0 {
		exceptions.Panicf("tape: Output called with no forward nodes recorded")
	}
	last, ok := t.forward[len(t.forward)-1].(ops.Data)
	if !ok {
		exceptions.Panicf("tape: last forward node %T exposes no value", t.forward[len(t.forward)-1])
	}
	value, release := last.Data()
	defer release()
	return value.Clone()
}

// Backward runs a backward epoch seeded with seed.
//
// Algorithm:
//  1. Set the overwrite flag of every backward node and tracked leaf.
//  2. Fill the gradient of the last backward node with seed.
//  3. Call Backward on every node in reverse order: the first write into a
//     gradient assigns, later writes in the same epoch accumulate.
func (t *Tape) Backward(seed float32) {
	if len(t.backward) == 0 {
		klog.Warningf("tape: backward called with no backward nodes recorded")
		return
	}
	for _, node := range t.backward {
		node.SetOverwrite(true)
	}
	for _, leaf := range t.leaves {
		leaf.SetOverwrite(true)
	}
	t.seed(t.backward[len(t.backward)-1], seed)
	for i := len(t.backward) - 1; i >= 0; i-- {
		t.backward[i].Backward()
	}
	klog.V(1).Infof("tape: backward epoch over %d nodes, %d leaves", len(t.backward), len(t.leaves))
}

// gradientBuffer is implemented by backward nodes whose gradient can be switched off.
type gradientBuffer interface {
	GradientBuffer() *tensor.Buffer
}

func (t *Tape) seed(node ops.Backward, value float32) {
	if b, ok := node.(gradientBuffer); ok && !b.GradientBuffer().Present() {
		klog.V(2).Infof("tape: %T has no gradient, not seeding", node)
		return
	}
	g, ok := node.(ops.Gradient)
	if !ok {
		exceptions.Panicf("tape: last backward node %T has no gradient to seed", node)
	}
	grad, release := g.GradientMut()
	defer release()
	grad.Fill(value)
}

// TryForward is Forward returning contract violations as an error.
func (t *Tape) TryForward() error {
	return tryEpoch("forward", t.Forward)
}

// TryBackward is Backward returning contract violations as an error.
func (t *Tape) TryBackward(seed float32) error {
	return tryEpoch("backward", func() { t.Backward(seed) })
}

func tryEpoch(name string, fn func()) error {
	err := exceptions.TryCatch[error](fn)
	if err != nil {
		return errors.Wrapf(err, "tape %s epoch", name)
	}
	return nil
}
