// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff

import (
	"github.com/born-ml/backprop/internal/autodiff/ops"
)

// Node capabilities.
type (
	Data           = ops.Data
	Forward        = ops.Forward
	Gradient       = ops.Gradient
	Overwrite      = ops.Overwrite
	Backward       = ops.Backward
	GradientNode   = ops.GradientNode
	Differentiable = ops.Differentiable
	Switchable     = ops.Switchable
)

// Reduction selects how a loss folds its elementwise terms.
type Reduction = ops.Reduction

// Loss reductions.
const (
	ReductionMean = ops.ReductionMean
	ReductionSum  = ops.ReductionSum
)

// Forward and backward nodes.
type (
	Addition                     = ops.Addition
	AdditionBackward             = ops.AdditionBackward
	AdditionBackwardUnary        = ops.AdditionBackwardUnary
	Chunk                        = ops.Chunk
	ChunkBackward                = ops.ChunkBackward
	Concatenate                  = ops.Concatenate
	Stack                        = ops.Stack
	ConcatenateBackward          = ops.ConcatenateBackward
	ConcatenateBackwardLeft      = ops.ConcatenateBackwardLeft
	ConcatenateBackwardRight     = ops.ConcatenateBackwardRight
	StackBackward                = ops.StackBackward
	StackBackwardLeft            = ops.StackBackwardLeft
	StackBackwardRight           = ops.StackBackwardRight
	Division                     = ops.Division
	DivisionBackward             = ops.DivisionBackward
	DivisionBackwardLeft         = ops.DivisionBackwardLeft
	DivisionBackwardRight        = ops.DivisionBackwardRight
	Exp                          = ops.Exp
	ExpBackward                  = ops.ExpBackward
	Input                        = ops.Input
	InputBackward                = ops.InputBackward
	Logn                         = ops.Logn
	LognBackward                 = ops.LognBackward
	MAELoss                      = ops.MAELoss
	MSELoss                      = ops.MSELoss
	BCELoss                      = ops.BCELoss
	BCEWithLogitsLoss            = ops.BCEWithLogitsLoss
	MAELossBackward              = ops.MAELossBackward
	MSELossBackward              = ops.MSELossBackward
	BCELossBackward              = ops.BCELossBackward
	BCEWithLogitsLossBackward    = ops.BCEWithLogitsLossBackward
	MatrixMatrixMul              = ops.MatrixMatrixMul
	MatrixVectorMul              = ops.MatrixVectorMul
	VectorMatrixMul              = ops.VectorMatrixMul
	VectorVectorMul              = ops.VectorVectorMul
	MatrixMatrixMulBackward      = ops.MatrixMatrixMulBackward
	MatrixMatrixMulBackwardLeft  = ops.MatrixMatrixMulBackwardLeft
	MatrixMatrixMulBackwardRight = ops.MatrixMatrixMulBackwardRight
	MatrixVectorMulBackward      = ops.MatrixVectorMulBackward
	MatrixVectorMulBackwardLeft  = ops.MatrixVectorMulBackwardLeft
	MatrixVectorMulBackwardRight = ops.MatrixVectorMulBackwardRight
	VectorMatrixMulBackward      = ops.VectorMatrixMulBackward
	VectorMatrixMulBackwardLeft  = ops.VectorMatrixMulBackwardLeft
	VectorMatrixMulBackwardRight = ops.VectorMatrixMulBackwardRight
	VectorVectorMulBackward      = ops.VectorVectorMulBackward
	VectorVectorMulBackwardUnary = ops.VectorVectorMulBackwardUnary
	Multiplication               = ops.Multiplication
	MultiplicationBackward       = ops.MultiplicationBackward
	MultiplicationBackwardUnary  = ops.MultiplicationBackwardUnary
	Negation                     = ops.Negation
	NegationBackward             = ops.NegationBackward
	Power                        = ops.Power
	PowerBackward                = ops.PowerBackward
	ReLU                         = ops.ReLU
	ReLUBackward                 = ops.ReLUBackward
	LeakyReLU                    = ops.LeakyReLU
	LeakyReLUBackward            = ops.LeakyReLUBackward
	Sigmoid                      = ops.Sigmoid
	SigmoidBackward              = ops.SigmoidBackward
	SoftPlus                     = ops.SoftPlus
	SoftPlusBackward             = ops.SoftPlusBackward
	Softmax                      = ops.Softmax
	LogSoftmax                   = ops.LogSoftmax
	SoftmaxBackward              = ops.SoftmaxBackward
	LogSoftmaxBackward           = ops.LogSoftmaxBackward
	Subtraction                  = ops.Subtraction
	SubtractionBackward          = ops.SubtractionBackward
	SubtractionBackwardLeft      = ops.SubtractionBackwardLeft
	SubtractionBackwardRight     = ops.SubtractionBackwardRight
	Sum                          = ops.Sum
	SumBackward                  = ops.SumBackward
	TanH                         = ops.TanH
	TanHBackward                 = ops.TanHBackward
	Transpose                    = ops.Transpose
	TransposeBackward            = ops.TransposeBackward
	Unsqueeze                    = ops.Unsqueeze
	UnsqueezeBackward            = ops.UnsqueezeBackward
)

// Node constructors.
var (
	NewAddition                     = ops.NewAddition
	NewAdditionBackward             = ops.NewAdditionBackward
	NewAdditionBackwardUnary        = ops.NewAdditionBackwardUnary
	NewChunk                        = ops.NewChunk
	NewChunkBackward                = ops.NewChunkBackward
	NewConcatenate                  = ops.NewConcatenate
	NewStack                        = ops.NewStack
	NewConcatenateBackward          = ops.NewConcatenateBackward
	NewConcatenateBackwardLeft      = ops.NewConcatenateBackwardLeft
	NewConcatenateBackwardRight     = ops.NewConcatenateBackwardRight
	NewStackBackward                = ops.NewStackBackward
	NewStackBackwardLeft            = ops.NewStackBackwardLeft
	NewStackBackwardRight           = ops.NewStackBackwardRight
	NewDivision                     = ops.NewDivision
	NewDivisionBackward             = ops.NewDivisionBackward
	NewDivisionBackwardLeft         = ops.NewDivisionBackwardLeft
	NewDivisionBackwardRight        = ops.NewDivisionBackwardRight
	NewExp                          = ops.NewExp
	NewExpBackward                  = ops.NewExpBackward
	NewInput                        = ops.NewInput
	NewInputFromBuffer              = ops.NewInputFromBuffer
	NewLogn                         = ops.NewLogn
	NewLognBackward                 = ops.NewLognBackward
	NewMAELoss                      = ops.NewMAELoss
	NewMSELoss                      = ops.NewMSELoss
	NewBCELoss                      = ops.NewBCELoss
	NewBCEWithLogitsLoss            = ops.NewBCEWithLogitsLoss
	NewMAELossBackward              = ops.NewMAELossBackward
	NewMSELossBackward              = ops.NewMSELossBackward
	NewBCELossBackward              = ops.NewBCELossBackward
	NewBCEWithLogitsLossBackward    = ops.NewBCEWithLogitsLossBackward
	NewMatrixMatrixMul              = ops.NewMatrixMatrixMul
	NewMatrixVectorMul              = ops.NewMatrixVectorMul
	NewVectorMatrixMul              = ops.NewVectorMatrixMul
	NewVectorVectorMul              = ops.NewVectorVectorMul
	NewMatrixMatrixMulBackward      = ops.NewMatrixMatrixMulBackward
	NewMatrixMatrixMulBackwardLeft  = ops.NewMatrixMatrixMulBackwardLeft
	NewMatrixMatrixMulBackwardRight = ops.NewMatrixMatrixMulBackwardRight
	NewMatrixVectorMulBackward      = ops.NewMatrixVectorMulBackward
	NewMatrixVectorMulBackwardLeft  = ops.NewMatrixVectorMulBackwardLeft
	NewMatrixVectorMulBackwardRight = ops.NewMatrixVectorMulBackwardRight
	NewVectorMatrixMulBackward      = ops.NewVectorMatrixMulBackward
	NewVectorMatrixMulBackwardLeft  = ops.NewVectorMatrixMulBackwardLeft
	NewVectorMatrixMulBackwardRight = ops.NewVectorMatrixMulBackwardRight
	NewVectorVectorMulBackward      = ops.NewVectorVectorMulBackward
	NewVectorVectorMulBackwardUnary = ops.NewVectorVectorMulBackwardUnary
	NewMultiplication               = ops.NewMultiplication
	NewMultiplicationBackward       = ops.NewMultiplicationBackward
	NewMultiplicationBackwardUnary  = ops.NewMultiplicationBackwardUnary
	NewNegation                     = ops.NewNegation
	NewNegationBackward             = ops.NewNegationBackward
	NewPower                        = ops.NewPower
	NewPowerBackward                = ops.NewPowerBackward
	NewReLU                         = ops.NewReLU
	NewReLUBackward                 = ops.NewReLUBackward
	NewLeakyReLU                    = ops.NewLeakyReLU
	NewLeakyReLUBackward            = ops.NewLeakyReLUBackward
	NewSigmoid                      = ops.NewSigmoid
	NewSigmoidBackward              = ops.NewSigmoidBackward
	NewSoftPlus                     = ops.NewSoftPlus
	NewSoftPlusBackward             = ops.NewSoftPlusBackward
	NewSoftmax                      = ops.NewSoftmax
	NewLogSoftmax                   = ops.NewLogSoftmax
	NewSoftmaxBackward              = ops.NewSoftmaxBackward
	NewLogSoftmaxBackward           = ops.NewLogSoftmaxBackward
	NewSubtraction                  = ops.NewSubtraction
	NewSubtractionBackward          = ops.NewSubtractionBackward
	NewSubtractionBackwardLeft      = ops.NewSubtractionBackwardLeft
	NewSubtractionBackwardRight     = ops.NewSubtractionBackwardRight
	NewSum                          = ops.NewSum
	NewSumBackward                  = ops.NewSumBackward
	NewTanH                         = ops.NewTanH
	NewTanHBackward                 = ops.NewTanHBackward
	NewTranspose                    = ops.NewTranspose
	NewTransposeBackward            = ops.NewTransposeBackward
	NewUnsqueeze                    = ops.NewUnsqueeze
	NewUnsqueezeBackward            = ops.NewUnsqueezeBackward
)
