package ops

import (
	"testing"

	"github.com/born-ml/backprop/internal/tensor"
	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertClose compares with a tolerance relative to the magnitude of want.
func assertClose(t *testing.T, want []float32, got *tensor.Tensor, msgAndArgs ...any) {
	t.Helper()
	require.Equal(t, len(want), got.Len(), msgAndArgs...)
	for i, w := range want {
		delta := max(tolerance, 1e-5*float64(math32.Abs(w)))
		assert.InDelta(t, w, got.Data()[i], delta, msgAndArgs...)
	}
}

func bceFixture() (input, target *Input) {
	shape := tensor.Shape{3, 3}
	input = newInput(shape, 0.1, 0.9, 0.9, 0, 0, 0, 0.8, 0, 0)
	target = newInput(shape, 1, 1, 0, 0, 0, 1, 0, 0, 1)
	return input, target
}

func TestBCELoss(t *testing.T) {
	sumGrads := []float32{-10, -1.111111, 10, 0, 0, -8388608, 5, 0, -8388608}
	meanGrads := make([]float32, len(sumGrads))
	for i, g := range sumGrads {
		meanGrads[i] = g / 9
	}
	tests := []struct {
		reduction Reduction
		loss      float32
		grads     []float32
	}{
		{ReductionMean, 22.924441, meanGrads},
		{ReductionSum, 206.319969, sumGrads},
	}
	for _, tt := range tests {
		t.Run(tt.reduction.String(), func(t *testing.T) {
			input, target := bceFixture()
			loss := NewBCELoss(input, target, tt.reduction)
			loss.Forward()
			assert.Equal(t, tt.reduction, loss.Reduction())
			assertClose(t, []float32{tt.loss}, dataOf(loss))

			dx := input.Differentiable()
			node := NewBCELossBackward(dx, input, target, tt.reduction)
			seed(node, 1)
			node.Backward()
			assertClose(t, tt.grads, gradOf(dx))

			doubled := make([]float32, len(tt.grads))
			for i, g := range tt.grads {
				doubled[i] = 2 * g
			}
			node.Backward()
			assertClose(t, doubled, gradOf(dx), "second backward without reset accumulates")

			dx.SetOverwrite(true)
			node.Backward()
			assertClose(t, tt.grads, gradOf(dx), "reset restores a single contribution")
		})
	}
}

func TestRegressionLosses(t *testing.T) {
	tests := []struct {
		name      string
		forward   func(x, t Data, r Reduction) forwardNode
		backward  func(o GradientNode, x, t Data, r Reduction) Backward
		reduction Reduction
		loss      float32
		grads     []float32
	}{
		{"MAE/sum",
			func(x, t Data, r Reduction) forwardNode { return NewMAELoss(x, t, r) },
			func(o GradientNode, x, t Data, r Reduction) Backward { return NewMAELossBackward(o, x, t, r) },
			ReductionSum, 3, []float32{-1, 0, 1}},
		{"MAE/mean",
			func(x, t Data, r Reduction) forwardNode { return NewMAELoss(x, t, r) },
			func(o GradientNode, x, t Data, r Reduction) Backward { return NewMAELossBackward(o, x, t, r) },
			ReductionMean, 1, []float32{-1.0 / 3, 0, 1.0 / 3}},
		{"MSE/sum",
			func(x, t Data, r Reduction) forwardNode { return NewMSELoss(x, t, r) },
			func(o GradientNode, x, t Data, r Reduction) Backward { return NewMSELossBackward(o, x, t, r) },
			ReductionSum, 5, []float32{-2, 0, 4}},
		{"MSE/mean",
			func(x, t Data, r Reduction) forwardNode { return NewMSELoss(x, t, r) },
			func(o GradientNode, x, t Data, r Reduction) Backward { return NewMSELossBackward(o, x, t, r) },
			ReductionMean, 5.0 / 3, []float32{-2.0 / 3, 0, 4.0 / 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := newInput(tensor.Shape{3}, 1, 2, 3)
			target := newInput(tensor.Shape{3}, 2, 2, 1)
			loss := tt.forward(input, target, tt.reduction)
			loss.Forward()
			assertValues(t, []float32{tt.loss}, dataOf(loss))

			dx := input.Differentiable()
			node := tt.backward(dx, input, target, tt.reduction)
			seed(node.(Gradient), 1)
			node.Backward()
			assertValues(t, tt.grads, gradOf(dx))
		})
	}
}

func TestMAELossPropagatesNaN(t *testing.T) {
	input := newInput(tensor.Shape{3}, math32.NaN(), 1, 0)
	target := newInput(tensor.Shape{3}, 0, 0, 0)
	loss := NewMAELoss(input, target, ReductionSum)
	loss.Forward()
	assert.True(t, math32.IsNaN(dataOf(loss).Item()))

	dx := input.Differentiable()
	node := NewMAELossBackward(dx, input, target, ReductionSum)
	seed(node, 1)
	node.Backward()
	g := gradOf(dx).Data()
	assert.True(t, math32.IsNaN(g[0]), "NaN difference yields a NaN gradient")
	assert.Equal(t, []float32{1, 0}, g[1:])
}

func TestBCEWithLogitsLoss(t *testing.T) {
	input := newInput(tensor.Shape{2}, 0, 2)
	target := newInput(tensor.Shape{2}, 1, 0)
	loss := NewBCEWithLogitsLoss(input, target, ReductionSum)
	loss.Forward()
	assertValues(t, []float32{2.820075}, dataOf(loss))

	dx := input.Differentiable()
	node := NewBCEWithLogitsLossBackward(dx, input, target, ReductionSum)
	seed(node, 1)
	node.Backward()
	assertValues(t, []float32{-0.5, 0.880797}, gradOf(dx))

	// Large logits stay finite.
	big := newInput(tensor.Shape{2}, 100, -100)
	flipped := newInput(tensor.Shape{2}, 0, 1)
	stable := NewBCEWithLogitsLoss(big, flipped, ReductionMean)
	stable.Forward()
	assertValues(t, []float32{100}, dataOf(stable))
}

func TestLossNoGrad(t *testing.T) {
	input, target := bceFixture()
	dx := input.Differentiable()
	node := NewMSELossBackward(dx, input, target, ReductionMean)

	var sw Switchable = node
	sw.NoGrad()
	require.NotPanics(t, node.Backward)
	assertAll(t, 0, gradOf(dx))
	assert.True(t, dx.CanOverwrite(), "a disabled loss leaves the operand untouched")

	sw.WithGrad()
	assertValues(t, []float32{0}, gradOf(node), "gradient comes back zeroed")
	seed(node, 9)
	node.Backward()
	assertValues(t, []float32{-1.8, -0.2, 1.8, 0, 0, -2, 1.6, 0, -2}, gradOf(dx))
}

func TestLossShapeMismatchPanics(t *testing.T) {
	input := newInput(tensor.Shape{2}, 1, 2)
	target := newInput(tensor.Shape{3}, 1, 2, 3)
	assert.Panics(t, func() { NewMSELoss(input, target, ReductionMean) })
	assert.Panics(t, func() { NewMSELossBackward(input.Differentiable(), input, target, ReductionMean) })
}
