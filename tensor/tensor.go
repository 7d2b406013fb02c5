// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the dense float32 tensors
// flowing through differentiable nodes.
//
// The package defines:
//   - Shape: tensor dimensions, with NumPy-style broadcasting
//   - Tensor: contiguous row-major float32 storage
//   - Buffer: a tensor shared between nodes under a runtime borrow check
//
// Example:
//
//	x := tensor.Zeros(2, 3)
//	y := tensor.Ones(2, 3)
//	x.AddAssign(y)
//	buf := tensor.NewBuffer(x)
//	value, release := buf.Borrow()
//	defer release()
package tensor

import (
	"math/rand"

	"github.com/born-ml/backprop/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Tensor is a dense row-major float32 tensor.
type Tensor = tensor.Tensor

// Buffer is a tensor shared between nodes. Any number of shared borrows or
// one exclusive borrow may be live at a time; a conflicting borrow panics.
type Buffer = tensor.Buffer

// BroadcastShapes returns the broadcast of a and b.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape ...int) *Tensor {
	return tensor.Zeros(shape...)
}

// Ones creates a tensor filled with ones.
func Ones(shape ...int) *Tensor {
	return tensor.Ones(shape...)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Scalar creates a 0-d tensor.
func Scalar(value float32) *Tensor {
	return tensor.Scalar(value)
}

// FromSlice creates a tensor of the given shape holding a copy of data.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// Linspace creates n evenly spaced values from start to end inclusive.
func Linspace(start, end float32, n int) *Tensor {
	return tensor.Linspace(start, end, n)
}

// Arange creates a 1D tensor with values from start to end (exclusive).
func Arange(start, end float32) *Tensor {
	return tensor.Arange(start, end)
}

// Eye creates a 2D identity matrix.
func Eye(n int) *Tensor {
	return tensor.Eye(n)
}

// Rand creates a tensor with values uniformly distributed in [lo, hi).
func Rand(rng *rand.Rand, lo, hi float32, shape ...int) *Tensor {
	return tensor.Rand(rng, lo, hi, shape...)
}

// Randn creates a tensor with values from the standard normal distribution.
func Randn(rng *rand.Rand, shape ...int) *Tensor {
	return tensor.Randn(rng, shape...)
}

// NewBuffer wraps t in a Buffer.
func NewBuffer(t *Tensor) *Buffer {
	return tensor.NewBuffer(t)
}

// NewZeroBuffer creates a Buffer holding zeros of the given shape.
func NewZeroBuffer(shape Shape) *Buffer {
	return tensor.NewZeroBuffer(shape)
}
