package ops

import (
	"github.com/born-ml/backprop/internal/tensor"
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Matrix and vector products run on gonum's BLAS. Backward nodes select
// beta = 0 (overwrite) or beta = 1 (accumulate) from the operand's flag, so the
// overwrite protocol costs nothing extra.

func general(t *tensor.Tensor) blas32.General {
	s := t.Shape()
	return blas32.General{Rows: s[0], Cols: s[1], Stride: max(1, s[1]), Data: t.Data()}
}

func vector(t *tensor.Tensor) blas32.Vector {
	return blas32.Vector{N: t.Len(), Inc: 1, Data: t.Data()}
}

// gemm computes c = a·b (with optional transposes) + beta*c.
func gemm(tA, tB blas.Transpose, a, b *tensor.Tensor, beta float32, c *tensor.Tensor) {
	cs := c.Shape()
	k := a.Shape()[1]
	if tA == blas.Trans {
		k = a.Shape()[0]
	}
	switch {
	case cs[0] == 0 || cs[1] == 0:
		return
	case k == 0:
		scale(c, beta)
		return
	}
	blas32.Gemm(tA, tB, 1, general(a), general(b), beta, general(c))
}

// gemv computes y = op(a)·x + beta*y.
func gemv(t blas.Transpose, a, x *tensor.Tensor, beta float32, y *tensor.Tensor) {
	if y.Len() == 0 {
		return
	}
	if x.Len() == 0 {
		scale(y, beta)
		return
	}
	blas32.Gemv(t, 1, general(a), vector(x), beta, vector(y))
}

// ger computes a = x·yᵀ + beta*a.
func ger(x, y *tensor.Tensor, beta float32, a *tensor.Tensor) {
	scale(a, beta)
	if x.Len() == 0 || y.Len() == 0 {
		return
	}
	blas32.Ger(1, vector(x), vector(y), general(a))
}

// scale multiplies t by beta, where beta is 0 or 1. Zero resets t even if it held NaNs.
func scale(t *tensor.Tensor, beta float32) {
	if beta == 0 {
		t.Fill(0)
	}
}

// betaFor returns the BLAS beta implementing the overwrite protocol for operand,
// clearing its flag.
func betaFor(operand Overwrite) float32 {
	if operand.CanOverwrite() {
		operand.SetOverwrite(false)
		return 0
	}
	return 1
}

func mustRank(op string, shape tensor.Shape, rank int) {
	if len(shape) != rank {
		exceptions.Panicf("%s: operand %v must have rank %d", op, shape, rank)
	}
}

func mustContract(op string, left, right tensor.Shape, lAxis, rAxis int) {
	if left[lAxis] != right[rAxis] {
		exceptions.Panicf("%s: cannot contract %v with %v", op, left, right)
	}
}

// matMulShape validates a (left rank, right rank) pair and returns the product shape.
func matMulShape(op string, left, right tensor.Shape, lRank, rRank int) tensor.Shape {
	mustRank(op, left, lRank)
	mustRank(op, right, rRank)
	switch {
	case lRank == 2 && rRank == 2:
		mustContract(op, left, right, 1, 0)
		return tensor.Shape{left[0], right[1]}
	case lRank == 2:
		mustContract(op, left, right, 1, 0)
		return tensor.Shape{left[0]}
	case rRank == 2:
		mustContract(op, left, right, 0, 0)
		return tensor.Shape{right[1]}
	default:
		mustContract(op, left, right, 0, 0)
		return tensor.Shape{1}
	}
}

// product is the forward state shared by the product nodes.
type product struct {
	computation
	output
	left, right Data
}

func newProduct(op string, left, right Data, lRank, rRank int) product {
	shape := matMulShape(op, shapeOf(left), shapeOf(right), lRank, rRank)
	return product{output: newOutput(shape), left: left, right: right}
}

func (n *product) eval(f func(l, r, out *tensor.Tensor)) {
	if !n.begin() {
		return
	}
	l, releaseL := n.left.Data()
	defer releaseL()
	r, releaseR := n.right.Data()
	defer releaseR()
	out, release := n.data.BorrowMut()
	defer release()
	f(l, r, out)
}

// MatrixMatrixMul computes [m,k]·[k,n] -> [m,n].
type MatrixMatrixMul struct {
	product
}

// NewMatrixMatrixMul creates a MatrixMatrixMul node.
func NewMatrixMatrixMul(left, right Data) *MatrixMatrixMul {
	return &MatrixMatrixMul{product: newProduct("MatrixMatrixMul", left, right, 2, 2)}
}

// Forward implements Forward.
func (n *MatrixMatrixMul) Forward() {
	n.eval(func(l, r, out *tensor.Tensor) { gemm(blas.NoTrans, blas.NoTrans, l, r, 0, out) })
}

// MatrixVectorMul computes [m,k]·[k] -> [m].
type MatrixVectorMul struct {
	product
}

// NewMatrixVectorMul creates a MatrixVectorMul node.
func NewMatrixVectorMul(left, right Data) *MatrixVectorMul {
	return &MatrixVectorMul{product: newProduct("MatrixVectorMul", left, right, 2, 1)}
}

// Forward implements Forward.
func (n *MatrixVectorMul) Forward() {
	n.eval(func(l, r, out *tensor.Tensor) { gemv(blas.NoTrans, l, r, 0, out) })
}

// VectorMatrixMul computes [k]·[k,n] -> [n].
type VectorMatrixMul struct {
	product
}

// NewVectorMatrixMul creates a VectorMatrixMul node.
func NewVectorMatrixMul(left, right Data) *VectorMatrixMul {
	return &VectorMatrixMul{product: newProduct("VectorMatrixMul", left, right, 1, 2)}
}

// Forward implements Forward.
func (n *VectorMatrixMul) Forward() {
	n.eval(func(l, r, out *tensor.Tensor) { gemv(blas.Trans, r, l, 0, out) })
}

// VectorVectorMul computes the dot product [k]·[k] -> [1].
type VectorVectorMul struct {
	product
}

// NewVectorVectorMul creates a VectorVectorMul node.
func NewVectorVectorMul(left, right Data) *VectorVectorMul {
	return &VectorVectorMul{product: newProduct("VectorVectorMul", left, right, 1, 1)}
}

// Forward implements Forward.
func (n *VectorVectorMul) Forward() {
	n.eval(func(l, r, out *tensor.Tensor) { out.Data()[0] = dot(l, r) })
}

func dot(l, r *tensor.Tensor) float32 {
	if l.Len() == 0 {
		return 0
	}
	return blas32.Dot(vector(l), vector(r))
}

// pushProduct borrows the gradient of operand and writes f's result into it,
// with beta chosen by the overwrite protocol.
func pushProduct(operand GradientNode, f func(beta float32, dst *tensor.Tensor)) {
	dst, release := operand.GradientMut()
	defer release()
	f(betaFor(operand), dst)
}

// productBackward is the state shared by the product backward nodes: the
// gradient, and the forward values of whichever operands the adjoints read.
type productBackward struct {
	gradient
	leftData, rightData Data
}

func (n *productBackward) borrow() (g, l, r *tensor.Tensor, release func()) {
	var releases []func()
	g, rel := n.Gradient()
	releases = append(releases, rel)
	if n.leftData != nil {
		l, rel = n.leftData.Data()
		releases = append(releases, rel)
	}
	if n.rightData != nil {
		r, rel = n.rightData.Data()
		releases = append(releases, rel)
	}
	return g, l, r, func() {
		for _, rel := range releases {
			rel()
		}
	}
}

// MatrixMatrixMulBackward propagates g·rightᵀ into left and leftᵀ·g into right.
type MatrixMatrixMulBackward struct {
	productBackward
	left, right GradientNode
}

// NewMatrixMatrixMulBackward creates a MatrixMatrixMulBackward node.
func NewMatrixMatrixMulBackward(left GradientNode, leftData Data, right GradientNode, rightData Data) *MatrixMatrixMulBackward {
	shape := matMulShape("MatrixMatrixMulBackward", gradShapeOf(left), gradShapeOf(right), 2, 2)
	return &MatrixMatrixMulBackward{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData, rightData: rightData},
		left:            left,
		right:           right,
	}
}

// Backward implements Backward.
func (n *MatrixMatrixMulBackward) Backward() {
	g, l, r, release := n.borrow()
	defer release()
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { gemm(blas.NoTrans, blas.Trans, g, r, beta, dst) })
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { gemm(blas.Trans, blas.NoTrans, l, g, beta, dst) })
}

// MatrixMatrixMulBackwardLeft propagates g·rightᵀ into left only.
type MatrixMatrixMulBackwardLeft struct {
	productBackward
	left GradientNode
}

// NewMatrixMatrixMulBackwardLeft creates a MatrixMatrixMulBackwardLeft node.
func NewMatrixMatrixMulBackwardLeft(left GradientNode, rightData Data) *MatrixMatrixMulBackwardLeft {
	shape := matMulShape("MatrixMatrixMulBackwardLeft", gradShapeOf(left), shapeOf(rightData), 2, 2)
	return &MatrixMatrixMulBackwardLeft{
		productBackward: productBackward{gradient: newGradient(shape), rightData: rightData},
		left:            left,
	}
}

// Backward implements Backward.
func (n *MatrixMatrixMulBackwardLeft) Backward() {
	g, _, r, release := n.borrow()
	defer release()
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { gemm(blas.NoTrans, blas.Trans, g, r, beta, dst) })
}

// MatrixMatrixMulBackwardRight propagates leftᵀ·g into right only.
type MatrixMatrixMulBackwardRight struct {
	productBackward
	right GradientNode
}

// NewMatrixMatrixMulBackwardRight creates a MatrixMatrixMulBackwardRight node.
func NewMatrixMatrixMulBackwardRight(leftData Data, right GradientNode) *MatrixMatrixMulBackwardRight {
	shape := matMulShape("MatrixMatrixMulBackwardRight", shapeOf(leftData), gradShapeOf(right), 2, 2)
	return &MatrixMatrixMulBackwardRight{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData},
		right:           right,
	}
}

// Backward implements Backward.
func (n *MatrixMatrixMulBackwardRight) Backward() {
	g, l, _, release := n.borrow()
	defer release()
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { gemm(blas.Trans, blas.NoTrans, l, g, beta, dst) })
}

// MatrixVectorMulBackward propagates the outer product g·rightᵀ into left and
// leftᵀ·g into right.
type MatrixVectorMulBackward struct {
	productBackward
	left, right GradientNode
}

// NewMatrixVectorMulBackward creates a MatrixVectorMulBackward node.
func NewMatrixVectorMulBackward(left GradientNode, leftData Data, right GradientNode, rightData Data) *MatrixVectorMulBackward {
	shape := matMulShape("MatrixVectorMulBackward", gradShapeOf(left), gradShapeOf(right), 2, 1)
	return &MatrixVectorMulBackward{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData, rightData: rightData},
		left:            left,
		right:           right,
	}
}

// Backward implements Backward.
func (n *MatrixVectorMulBackward) Backward() {
	g, l, r, release := n.borrow()
	defer release()
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { ger(g, r, beta, dst) })
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { gemv(blas.Trans, l, g, beta, dst) })
}

// MatrixVectorMulBackwardLeft propagates g·rightᵀ into left only.
type MatrixVectorMulBackwardLeft struct {
	productBackward
	left GradientNode
}

// NewMatrixVectorMulBackwardLeft creates a MatrixVectorMulBackwardLeft node.
func NewMatrixVectorMulBackwardLeft(left GradientNode, rightData Data) *MatrixVectorMulBackwardLeft {
	shape := matMulShape("MatrixVectorMulBackwardLeft", gradShapeOf(left), shapeOf(rightData), 2, 1)
	return &MatrixVectorMulBackwardLeft{
		productBackward: productBackward{gradient: newGradient(shape), rightData: rightData},
		left:            left,
	}
}

// Backward implements Backward.
func (n *MatrixVectorMulBackwardLeft) Backward() {
	g, _, r, release := n.borrow()
	defer release()
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { ger(g, r, beta, dst) })
}

// MatrixVectorMulBackwardRight propagates leftᵀ·g into right only.
type MatrixVectorMulBackwardRight struct {
	productBackward
	right GradientNode
}

// NewMatrixVectorMulBackwardRight creates a MatrixVectorMulBackwardRight node.
func NewMatrixVectorMulBackwardRight(leftData Data, right GradientNode) *MatrixVectorMulBackwardRight {
	shape := matMulShape("MatrixVectorMulBackwardRight", shapeOf(leftData), gradShapeOf(right), 2, 1)
	return &MatrixVectorMulBackwardRight{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData},
		right:           right,
	}
}

// Backward implements Backward.
func (n *MatrixVectorMulBackwardRight) Backward() {
	g, l, _, release := n.borrow()
	defer release()
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { gemv(blas.Trans, l, g, beta, dst) })
}

// VectorMatrixMulBackward propagates right·g into left and the outer product
// left·gᵀ into right.
type VectorMatrixMulBackward struct {
	productBackward
	left, right GradientNode
}

// NewVectorMatrixMulBackward creates a VectorMatrixMulBackward node.
func NewVectorMatrixMulBackward(left GradientNode, leftData Data, right GradientNode, rightData Data) *VectorMatrixMulBackward {
	shape := matMulShape("VectorMatrixMulBackward", gradShapeOf(left), gradShapeOf(right), 1, 2)
	return &VectorMatrixMulBackward{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData, rightData: rightData},
		left:            left,
		right:           right,
	}
}

// Backward implements Backward.
func (n *VectorMatrixMulBackward) Backward() {
	g, l, r, release := n.borrow()
	defer release()
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { gemv(blas.NoTrans, r, g, beta, dst) })
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { ger(l, g, beta, dst) })
}

// VectorMatrixMulBackwardLeft propagates right·g into left only.
type VectorMatrixMulBackwardLeft struct {
	productBackward
	left GradientNode
}

// NewVectorMatrixMulBackwardLeft creates a VectorMatrixMulBackwardLeft node.
func NewVectorMatrixMulBackwardLeft(left GradientNode, rightData Data) *VectorMatrixMulBackwardLeft {
	shape := matMulShape("VectorMatrixMulBackwardLeft", gradShapeOf(left), shapeOf(rightData), 1, 2)
	return &VectorMatrixMulBackwardLeft{
		productBackward: productBackward{gradient: newGradient(shape), rightData: rightData},
		left:            left,
	}
}

// Backward implements Backward.
func (n *VectorMatrixMulBackwardLeft) Backward() {
	g, _, r, release := n.borrow()
	defer release()
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { gemv(blas.NoTrans, r, g, beta, dst) })
}

// VectorMatrixMulBackwardRight propagates left·gᵀ into right only.
type VectorMatrixMulBackwardRight struct {
	productBackward
	right GradientNode
}

// NewVectorMatrixMulBackwardRight creates a VectorMatrixMulBackwardRight node.
func NewVectorMatrixMulBackwardRight(leftData Data, right GradientNode) *VectorMatrixMulBackwardRight {
	shape := matMulShape("VectorMatrixMulBackwardRight", shapeOf(leftData), gradShapeOf(right), 1, 2)
	return &VectorMatrixMulBackwardRight{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData},
		right:           right,
	}
}

// Backward implements Backward.
func (n *VectorMatrixMulBackwardRight) Backward() {
	g, l, _, release := n.borrow()
	defer release()
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { ger(l, g, beta, dst) })
}

// VectorVectorMulBackward scales each operand's partner by g[0].
type VectorVectorMulBackward struct {
	productBackward
	left, right GradientNode
}

// NewVectorVectorMulBackward creates a VectorVectorMulBackward node.
func NewVectorVectorMulBackward(left GradientNode, leftData Data, right GradientNode, rightData Data) *VectorVectorMulBackward {
	shape := matMulShape("VectorVectorMulBackward", gradShapeOf(left), gradShapeOf(right), 1, 1)
	return &VectorVectorMulBackward{
		productBackward: productBackward{gradient: newGradient(shape), leftData: leftData, rightData: rightData},
		left:            left,
		right:           right,
	}
}

// Backward implements Backward.
func (n *VectorVectorMulBackward) Backward() {
	g, l, r, release := n.borrow()
	defer release()
	g0 := g.Data()[0]
	pushProduct(n.left, func(beta float32, dst *tensor.Tensor) { axpy(g0, r, beta, dst) })
	pushProduct(n.right, func(beta float32, dst *tensor.Tensor) { axpy(g0, l, beta, dst) })
}

// VectorVectorMulBackwardUnary propagates into the only differentiable operand
// of a dot product, which is symmetric.
type VectorVectorMulBackwardUnary struct {
	productBackward
	diff GradientNode
}

// NewVectorVectorMulBackwardUnary creates a VectorVectorMulBackwardUnary node.
// noDiff is the forward value of the other operand.
func NewVectorVectorMulBackwardUnary(diff GradientNode, noDiff Data) *VectorVectorMulBackwardUnary {
	shape := matMulShape("VectorVectorMulBackwardUnary", gradShapeOf(diff), shapeOf(noDiff), 1, 1)
	return &VectorVectorMulBackwardUnary{
		productBackward: productBackward{gradient: newGradient(shape), rightData: noDiff},
		diff:            diff,
	}
}

// Backward implements Backward.
func (n *VectorVectorMulBackwardUnary) Backward() {
	g, _, other, release := n.borrow()
	defer release()
	g0 := g.Data()[0]
	pushProduct(n.diff, func(beta float32, dst *tensor.Tensor) { axpy(g0, other, beta, dst) })
}

// axpy computes y = alpha*x + beta*y.
func axpy(alpha float32, x *tensor.Tensor, beta float32, y *tensor.Tensor) {
	scale(y, beta)
	if x.Len() == 0 {
		return
	}
	blas32.Axpy(alpha, vector(x), vector(y))
}
