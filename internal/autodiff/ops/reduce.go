package ops

import (
	"github.com/born-ml/backprop/internal/parallel"
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/gomlx/exceptions"
)

// reduce folds a broadcast gradient back onto the shape of the operand it came from.
//
// Leading axes src has in excess are summed away first, then every axis where
// dst has size 1 is summed and kept. The result has exactly shape dst, or reduce
// panics.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along axis 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along axis 1)
func reduce(dst tensor.Shape, src *tensor.Tensor) *tensor.Tensor {
	out := src
	for out.Rank() > len(dst) {
		out = out.SumAxis(0)
	}
	for axis, size := range dst {
		if size == 1 && out.Rank() > axis && out.Shape()[axis] != 1 {
			out = out.SumAxisKeep(axis)
		}
	}
	if !out.Shape().Equal(dst) {
		exceptions.Panicf("reduce: cannot fold gradient %v onto %v", src.Shape(), dst)
	}
	return out
}

// push writes contribution into the gradient of operand, assigning when the
// operand's overwrite flag is set (and clearing it) and accumulating otherwise.
// The contribution is broadcast-reduced to the operand's shape first.
func push(operand GradientNode, contribution *tensor.Tensor) {
	dst, release := operand.GradientMut()
	defer release()
	write(operand, dst.Data(), reduce(dst.Shape(), contribution).Data())
}

// pushFunc is push for a contribution given elementwise over shape: f(i) is
// the contribution at flat index i. When shape matches the operand the values
// are written in place, otherwise they are materialized and reduced.
func pushFunc(operand GradientNode, shape tensor.Shape, f func(i int) float32) {
	dst, release := operand.GradientMut()
	defer release()
	if !dst.Shape().Equal(shape) {
		tmp := tensor.ZerosLike(shape)
		fill(tmp.Data(), f)
		write(operand, dst.Data(), reduce(dst.Shape(), tmp).Data())
		return
	}

	d := dst.Data()
	cfg := parallel.Default()
	if operand.CanOverwrite() {
		parallel.Range(len(d), func(start, end int) {
			for i := start; i < end; i++ {
				d[i] = f(i)
			}
		}, cfg)
		operand.SetOverwrite(false)
		return
	}
	parallel.Range(len(d), func(start, end int) {
		for i := start; i < end; i++ {
			d[i] += f(i)
		}
	}, cfg)
}

func write(operand Overwrite, dst, src []float32) {
	cfg := parallel.Default()
	if operand.CanOverwrite() {
		parallel.Range(len(dst), func(start, end int) {
			copy(dst[start:end], src[start:end])
		}, cfg)
		operand.SetOverwrite(false)
		return
	}
	parallel.Range(len(dst), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] += src[i]
		}
	}, cfg)
}

// fill sets out[i] = f(i) for every i, in parallel.
func fill(out []float32, f func(i int) float32) {
	parallel.Range(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = f(i)
		}
	}, parallel.Default())
}

// at maps a flat output index through a broadcast offset table; nil is the identity.
func at(offsets []int, i int) int {
	if offsets == nil {
		return i
	}
	return offsets[i]
}
