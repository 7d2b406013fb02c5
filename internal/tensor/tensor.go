// Package tensor implements the dense float32 n-dimensional arrays the
// differentiable nodes compute on, together with the borrow-checked Buffer
// that nodes use to share them.
package tensor

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Tensor is a dense, row-major array of float32 values.
//
// The rank is fixed at construction. A 0-d tensor (empty shape) holds exactly
// one element.
type Tensor struct {
	shape   Shape
	strides []int
	data    []float32
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(3, 4)
func Zeros(shape ...int) *Tensor {
	return ZerosLike(Shape(shape))
}

// ZerosLike creates a zero tensor of the given shape.
func ZerosLike(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		exceptions.Panicf("tensor.Zeros: %v", err)
	}
	return &Tensor{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]float32, shape.NumElements()),
	}
}

// Ones creates a tensor filled with ones.
func Ones(shape ...int) *Tensor {
	return Full(Shape(shape), 1)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{3, 3}, 3.14)
func Full(shape Shape, value float32) *Tensor {
	t := ZerosLike(shape)
	t.Fill(value)
	return t
}

// Scalar creates a 0-d tensor.
func Scalar(value float32) *Tensor {
	t := ZerosLike(Shape{})
	t.data[0] = value
	return t
}

// FromSlice creates a tensor of the given shape from data, which is copied.
// It fails if the shape is invalid or len(data) does not match it.
//
// Example:
//
//	t, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if len(data) != shape.NumElements() {
		return nil, errors.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	t := ZerosLike(shape)
	copy(t.data, data)
	return t, nil
}

// Linspace creates a 1-d tensor with n evenly spaced values in [start, end].
func Linspace(start, end float32, n int) *Tensor {
	t := Zeros(n)
	if n == 1 {
		t.data[0] = start
		return t
	}
	step := (end - start) / float32(n-1)
	for i := range t.data {
		t.data[i] = start + float32(i)*step
	}
	return t
}

// Shape returns the tensor's shape. Callers must not modify it.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Strides returns the tensor's row-major strides.
func (t *Tensor) Strides() []int {
	return t.strides
}

// Rank returns the number of axes.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Data returns the underlying storage in row-major order.
// WARNING: Direct access to underlying memory.
func (t *Tensor) Data() []float32 {
	return t.data
}

// offset converts a multi-index into a flat offset, panicking when out of range.
func (t *Tensor) offset(index []int) int {
	if len(index) != len(t.shape) {
		exceptions.Panicf("tensor%v: index %v has wrong rank", t.shape, index)
	}
	off := 0
	for axis, i := range index {
		if i < 0 || i >= t.shape[axis] {
			exceptions.Panicf("tensor%v: index %v out of range on axis %d", t.shape, index, axis)
		}
		off += i * t.strides[axis]
	}
	return off
}

// At returns the element at the given multi-index.
func (t *Tensor) At(index ...int) float32 {
	return t.data[t.offset(index)]
}

// Set stores value at the given multi-index.
func (t *Tensor) Set(value float32, index ...int) {
	t.data[t.offset(index)] = value
}

// Item returns the single value of a tensor with exactly one element.
func (t *Tensor) Item() float32 {
	if len(t.data) != 1 {
		exceptions.Panicf("tensor%v.Item: tensor has %d elements, want 1", t.shape, len(t.data))
	}
	return t.data[0]
}

// Fill sets every element to value.
func (t *Tensor) Fill(value float32) {
	for i := range t.data {
		t.data[i] = value
	}
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := ZerosLike(t.shape)
	copy(c.data, t.data)
	return c
}

// Reshape returns a copy of the tensor with a new shape holding the same number of elements.
func (t *Tensor) Reshape(shape Shape) *Tensor {
	if shape.NumElements() != len(t.data) {
		exceptions.Panicf("tensor%v.Reshape(%v): element count mismatch", t.shape, shape)
	}
	c := ZerosLike(shape)
	copy(c.data, t.data)
	return c
}

// Assign copies src into t. Shapes must be equal.
func (t *Tensor) Assign(src *Tensor) {
	t.mustMatch("Assign", src)
	copy(t.data, src.data)
}

// AddAssign adds src into t elementwise. Shapes must be equal.
func (t *Tensor) AddAssign(src *Tensor) {
	t.mustMatch("AddAssign", src)
	for i, v := range src.data {
		t.data[i] += v
	}
}

// Equal reports whether both tensors have the same shape and identical values.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i, v := range t.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

func (t *Tensor) mustMatch(op string, other *Tensor) {
	if !t.shape.Equal(other.shape) {
		exceptions.Panicf("tensor%v.%s: shape mismatch with %v", t.shape, op, other.shape)
	}
}

// String implements fmt.Stringer.
func (t *Tensor) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tensor%v", t.shape)
	const maxShown = 16
	values := t.data
	if len(values) > maxShown {
		values = values[:maxShown]
	}
	fmt.Fprintf(&sb, "%v", values)
	if len(t.data) > maxShown {
		sb.WriteString("...")
	}
	return sb.String()
}
