// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation over
// explicit graphs of differentiable nodes.
//
// Every operation is a pair of nodes: a forward node caching its output and a
// backward node propagating a gradient into the gradients of its operands.
// Graphs are wired by hand and driven by a Tape.
//
// Example:
//
//	import (
//	    "github.com/born-ml/backprop/autodiff"
//	    "github.com/born-ml/backprop/tensor"
//	)
//
//	func main() {
//	    x := autodiff.NewInput(tensor.Full(tensor.Shape{2, 3}, 2))
//	    dx := x.Differentiable()
//
//	    tape := autodiff.NewTape()
//	    tape.Track(dx)
//	    sq := autodiff.NewMultiplication(x, x)
//	    sqGrad := autodiff.NewMultiplicationBackward(dx, x, dx, x)
//	    tape.Record(sq, sqGrad)
//	    tape.Record(autodiff.NewSum(sq), autodiff.NewSumBackward(sqGrad))
//
//	    tape.Forward()
//	    tape.Backward(1) // dx holds 2x = 4 everywhere
//	}
package autodiff

import (
	"github.com/born-ml/backprop/internal/autodiff"
)

// Tape records nodes in topological order and drives forward and backward epochs.
type Tape = autodiff.Tape

// NewTape creates a new recording tape.
func NewTape() *Tape {
	return autodiff.NewTape()
}

// Check is one graph of the gradient-check suite.
type Check = autodiff.Check

// Checks returns the gradient-check suite covering every node pair.
func Checks() []Check {
	return autodiff.Checks()
}
