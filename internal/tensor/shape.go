package tensor

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// Shape represents the dimensions of a tensor. A nil or empty Shape is a 0-d
// tensor holding a single element.
type Shape []int

// product multiplies all values together; the empty product is 1.
func product[T constraints.Integer](values []T) T {
	var n T = 1
	for _, v := range values {
		n *= v
	}
	return n
}

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	return product(s)
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks that no dimension is negative. Zero-sized axes are allowed.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be >= 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// InsertAxis returns a new shape with an axis of the given size inserted at position axis.
func (s Shape) InsertAxis(axis, size int) Shape {
	if axis < 0 || axis > len(s) {
		exceptions.Panicf("Shape%v.InsertAxis(%d): axis out of range for rank %d", s, axis, len(s))
	}
	out := make(Shape, 0, len(s)+1)
	out = append(out, s[:axis]...)
	out = append(out, size)
	return append(out, s[axis:]...)
}

// RemoveAxis returns a new shape with the given axis dropped.
func (s Shape) RemoveAxis(axis int) Shape {
	s.checkAxis("RemoveAxis", axis)
	out := make(Shape, 0, len(s)-1)
	out = append(out, s[:axis]...)
	return append(out, s[axis+1:]...)
}

// Reversed returns the shape with its axes in reverse order.
func (s Shape) Reversed() Shape {
	out := make(Shape, len(s))
	for i, dim := range s {
		out[len(s)-1-i] = dim
	}
	return out
}

// String implements fmt.Stringer, e.g. "(2, 3)" or "()" for a 0-d shape.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprint(dim)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Shape) checkAxis(op string, axis int) {
	if axis < 0 || axis >= len(s) {
		exceptions.Panicf("Shape%v.%s(%d): axis out of range for rank %d", s, op, axis, len(s))
	}
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, errors.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// MustBroadcastShapes is BroadcastShapes for graph construction: an incompatible
// pair of shapes is a contract violation and panics.
func MustBroadcastShapes(a, b Shape) Shape {
	shape, _, err := BroadcastShapes(a, b)
	if err != nil {
		exceptions.Panicf("%+v", err)
	}
	return shape
}
