package tensor

import (
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	tests := []struct {
		name     string
		shape    Shape
		elements int
		strides  []int
		str      string
	}{
		{"scalar", Shape{}, 1, []int{}, "()"},
		{"vector", Shape{5}, 5, []int{1}, "(5)"},
		{"matrix", Shape{2, 3}, 6, []int{3, 1}, "(2, 3)"},
		{"rank3", Shape{2, 3, 4}, 24, []int{12, 4, 1}, "(2, 3, 4)"},
		{"empty axis", Shape{3, 0}, 0, []int{0, 1}, "(3, 0)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.elements, tt.shape.NumElements())
			assert.Equal(t, tt.strides, tt.shape.ComputeStrides())
			assert.Equal(t, tt.str, tt.shape.String())
			assert.NoError(t, tt.shape.Validate())
		})
	}

	assert.Error(t, Shape{2, -1}.Validate())
	assert.Equal(t, Shape{2, 1, 3}, Shape{2, 3}.InsertAxis(1, 1))
	assert.Equal(t, Shape{2, 3, 2}, Shape{2, 3}.InsertAxis(2, 2))
	assert.Equal(t, Shape{3}, Shape{2, 3}.RemoveAxis(0))
	assert.Equal(t, Shape{4, 3, 2}, Shape{2, 3, 4}.Reversed())
	assert.Panics(t, func() { Shape{2, 3}.InsertAxis(3, 1) })
	assert.Panics(t, func() { Shape{2, 3}.RemoveAxis(2) })
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{Shape{5}, Shape{2, 3, 5}, Shape{2, 3, 5}, true, false},
		{Shape{}, Shape{2, 2}, Shape{2, 2}, true, false},
		{Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		got, broadcast, err := BroadcastShapes(tt.a, tt.b)
		if tt.wantErr {
			assert.Error(t, err, "%v vs %v", tt.a, tt.b)
			assert.Panics(t, func() { MustBroadcastShapes(tt.a, tt.b) })
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.broadcast, broadcast, "%v vs %v", tt.a, tt.b)
	}
}

func TestFromSlice(t *testing.T) {
	x := must.M1(FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}))
	assert.Equal(t, Shape{2, 3}, x.Shape())
	assert.Equal(t, float32(6), x.At(1, 2))
	assert.Equal(t, float32(2), x.At(0, 1))

	_, err := FromSlice([]float32{1, 2, 3}, Shape{2, 2})
	assert.Error(t, err)
	_, err = FromSlice(nil, Shape{-1})
	assert.Error(t, err)

	// The input slice is copied.
	data := []float32{1, 2}
	y := must.M1(FromSlice(data, Shape{2}))
	data[0] = 100
	assert.Equal(t, float32(1), y.At(0))
}

func TestTensorBasics(t *testing.T) {
	x := Full(Shape{2, 2}, 3)
	assert.Equal(t, []float32{3, 3, 3, 3}, x.Data())
	assert.Equal(t, 4, x.Len())
	assert.Equal(t, 2, x.Rank())

	s := Scalar(7)
	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, float32(7), s.Item())

	c := x.Clone()
	c.Set(1, 0, 0)
	assert.Equal(t, float32(3), x.At(0, 0))
	assert.False(t, c.Equal(x))

	c.AddAssign(x)
	assert.Equal(t, []float32{4, 6, 6, 6}, c.Data())
	c.Assign(x)
	assert.True(t, c.Equal(x))

	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.AddAssign(Zeros(4)) })
	assert.Panics(t, func() { x.Item() })

	r := x.Reshape(Shape{4})
	assert.Equal(t, Shape{4}, r.Shape())
	assert.Equal(t, []float32{0, 0.5, 1}, Linspace(0, 1, 3).Data())
}

func TestSumAxis(t *testing.T) {
	x := must.M1(FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}))

	rows := x.SumAxis(0)
	assert.Equal(t, Shape{3}, rows.Shape())
	assert.Equal(t, []float32{5, 7, 9}, rows.Data())

	cols := x.SumAxisKeep(1)
	assert.Equal(t, Shape{2, 1}, cols.Shape())
	assert.Equal(t, []float32{6, 15}, cols.Data())

	assert.Equal(t, float32(21), x.Sum())

	ones := Ones(2, 2, 3)
	reduced := ones.SumAxis(0).SumAxisKeep(0)
	assert.Equal(t, Shape{1, 3}, reduced.Shape())
	assert.Equal(t, []float32{4, 4, 4}, reduced.Data())
}

func TestTransposed(t *testing.T) {
	x := must.M1(FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}))
	xt := x.Transposed()
	assert.Equal(t, Shape{3, 2}, xt.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, xt.Data())
	assert.True(t, xt.Transposed().Equal(x))

	cube := Linspace(0, 23, 24).Reshape(Shape{2, 3, 4})
	ct := cube.Transposed()
	assert.Equal(t, Shape{4, 3, 2}, ct.Shape())
	assert.Equal(t, cube.At(1, 2, 3), ct.At(3, 2, 1))
	assert.Equal(t, cube.At(0, 1, 2), ct.At(2, 1, 0))
}

func TestBroadcastOffsets(t *testing.T) {
	assert.Nil(t, BroadcastOffsets(Shape{2, 3}, Shape{2, 3}))
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, BroadcastOffsets(Shape{3}, Shape{2, 3}))
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, BroadcastOffsets(Shape{2, 1}, Shape{2, 3}))
	assert.Equal(t, []int{0, 0, 0, 0}, BroadcastOffsets(Shape{}, Shape{2, 2}))
	assert.Panics(t, func() { BroadcastOffsets(Shape{2}, Shape{2, 3}) })
	assert.Panics(t, func() { BroadcastOffsets(Shape{2, 3}, Shape{3}) })
}

func TestChunkOffsets(t *testing.T) {
	// (4, 3) in (1, 3) blocks: one row each.
	assert.Equal(t, []int{6, 7, 8}, ChunkOffsets(Shape{4, 3}, Shape{1, 3}, 2))

	// (4, 4) in (2, 2) blocks, numbered row-major over the 2x2 grid.
	assert.Equal(t, []int{0, 1, 4, 5}, ChunkOffsets(Shape{4, 4}, Shape{2, 2}, 0))
	assert.Equal(t, []int{2, 3, 6, 7}, ChunkOffsets(Shape{4, 4}, Shape{2, 2}, 1))
	assert.Equal(t, []int{10, 11, 14, 15}, ChunkOffsets(Shape{4, 4}, Shape{2, 2}, 3))

	assert.Panics(t, func() { ChunkOffsets(Shape{4, 3}, Shape{3, 3}, 0) })
	assert.Panics(t, func() { ChunkOffsets(Shape{4, 3}, Shape{1, 3}, 4) })
}

func TestJoinAndSplit(t *testing.T) {
	left := must.M1(FromSlice([]float32{1, 2, 3, 4}, Shape{2, 2}))
	right := must.M1(FromSlice([]float32{5, 6}, Shape{2, 1}))

	out := ZerosLike(ConcatShape(left.Shape(), right.Shape(), 1))
	Join(out, left, right, 1)
	assert.Equal(t, Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{1, 2, 5, 3, 4, 6}, out.Data())

	var gotLeft, gotRight []float32
	SplitInto(out, 1, left.Shape(), right.Shape(), true, func(_ int, v float32) { gotLeft = append(gotLeft, v) })
	SplitInto(out, 1, left.Shape(), right.Shape(), false, func(_ int, v float32) { gotRight = append(gotRight, v) })
	assert.Equal(t, left.Data(), gotLeft)
	assert.Equal(t, right.Data(), gotRight)

	stacked := ZerosLike(StackShape(left.Shape(), left.Shape(), 0))
	Join(stacked, left, left, 0)
	assert.Equal(t, Shape{2, 2, 2}, stacked.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 1, 2, 3, 4}, stacked.Data())

	assert.Panics(t, func() { ConcatShape(Shape{2, 2}, Shape{3, 1}, 1) })
	assert.Panics(t, func() { StackShape(Shape{2, 2}, Shape{2, 1}, 0) })
}

func TestShapeErrorsCarryStack(t *testing.T) {
	err := exceptions.TryCatch[error](func() { Zeros(2, -2) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= 0")
}
