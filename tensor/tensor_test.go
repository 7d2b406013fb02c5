// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/backprop/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicConstructors(t *testing.T) {
	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{3})
	assert.Error(t, err)

	x.AddAssign(tensor.Ones(2, 3))
	assert.Equal(t, []float32{2, 3, 4, 5, 6, 7}, x.Data())
	assert.Equal(t, float32(7), tensor.Scalar(7).Item())
	assert.Equal(t, []float32{1, 0, 0, 1}, tensor.Eye(2).Data())
}

func TestPublicBroadcast(t *testing.T) {
	out, ok, err := tensor.BroadcastShapes(tensor.Shape{3}, tensor.Shape{2, 1})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tensor.Shape{2, 3}, out)

	_, _, err = tensor.BroadcastShapes(tensor.Shape{2}, tensor.Shape{3})
	assert.Error(t, err)
}

func TestPublicBuffer(t *testing.T) {
	buf := tensor.NewZeroBuffer(tensor.Shape{2})
	value, release := buf.BorrowMut()
	value.Fill(3)
	assert.Panics(t, func() { buf.Borrow() }, "exclusive borrow blocks readers")
	release()

	shared, release := buf.Borrow()
	defer release()
	assert.Equal(t, []float32{3, 3}, shared.Data())
}
