package tensor

import (
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"
)

// Borrow states stored in Buffer.borrows: 0 means free, n > 0 means n shared
// borrows are live, exclusive means one exclusive borrow is live.
const exclusive int32 = -1

// Buffer is a shared cell holding a tensor, with runtime borrow checking.
//
// A forward node owns the Buffer holding its output and every downstream node
// reading that output holds the same pointer. Gradient buffers work the same
// way, except that they may be logically absent (see Clear and Restore).
//
// Any number of shared borrows may coexist. An exclusive borrow excludes every
// other borrow. Violations panic immediately: they indicate overlapping node
// evaluation, which the graph executor must never do.
type Buffer struct {
	value   *Tensor
	shape   Shape
	borrows atomic.Int32
	mu      sync.Mutex // Serializes Clear and Restore.
}

// NewBuffer wraps t in a new Buffer.
func NewBuffer(t *Tensor) *Buffer {
	return &Buffer{value: t, shape: t.shape.Clone()}
}

// NewZeroBuffer creates a Buffer holding a zero tensor of the given shape.
func NewZeroBuffer(shape Shape) *Buffer {
	return NewBuffer(ZerosLike(shape))
}

// Shape returns the shape of the held tensor, remembered even while the buffer is absent.
func (b *Buffer) Shape() Shape {
	return b.shape.Clone()
}

// Present reports whether the buffer currently holds a tensor.
func (b *Buffer) Present() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value != nil
}

// Borrow takes a shared borrow and returns the tensor with its release function.
// The release function is idempotent.
//
// Example:
//
//	data, release := buf.Borrow()
//	defer release()
func (b *Buffer) Borrow() (*Tensor, func()) {
	for {
		n := b.borrows.Load()
		if n == exclusive {
			exceptions.Panicf("tensor.Buffer%v: already mutably borrowed", b.shape)
		}
		if b.borrows.CompareAndSwap(n, n+1) {
			break
		}
	}
	value := b.value
	if value == nil {
		b.borrows.Add(-1)
		exceptions.Panicf("tensor.Buffer%v: borrowed while absent", b.shape)
	}
	var once sync.Once
	return value, func() { once.Do(func() { b.borrows.Add(-1) }) }
}

// BorrowMut takes an exclusive borrow and returns the tensor with its release function.
func (b *Buffer) BorrowMut() (*Tensor, func()) {
	if !b.borrows.CompareAndSwap(0, exclusive) {
		if b.borrows.Load() == exclusive {
			exceptions.Panicf("tensor.Buffer%v: already mutably borrowed", b.shape)
		}
		exceptions.Panicf("tensor.Buffer%v: already borrowed", b.shape)
	}
	value := b.value
	if value == nil {
		b.borrows.Store(0)
		exceptions.Panicf("tensor.Buffer%v: borrowed while absent", b.shape)
	}
	var once sync.Once
	return value, func() { once.Do(func() { b.borrows.Store(0) }) }
}

// Replace swaps the held tensor for t, which must have the same shape.
func (b *Buffer) Replace(t *Tensor) {
	if !t.shape.Equal(b.shape) {
		exceptions.Panicf("tensor.Buffer%v.Replace: shape mismatch with %v", b.shape, t.shape)
	}
	b.acquireIdle("Replace")
	defer b.borrows.Store(0)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = t
}

// Clear drops the held tensor, making the buffer logically absent and letting
// its storage be collected.
func (b *Buffer) Clear() {
	b.acquireIdle("Clear")
	defer b.borrows.Store(0)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.value != nil && klog.V(2).Enabled() {
		klog.Infof("tensor.Buffer%v: cleared, releasing %s", b.shape,
			humanize.Bytes(uint64(4*len(b.value.data))))
	}
	b.value = nil
}

// Restore makes an absent buffer present again, holding a fresh zero tensor.
// It is a no-op if the buffer already holds a tensor.
func (b *Buffer) Restore() {
	b.acquireIdle("Restore")
	defer b.borrows.Store(0)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.value != nil {
		return
	}
	b.value = ZerosLike(b.shape)
	klog.V(2).Infof("tensor.Buffer%v: restored", b.shape)
}

func (b *Buffer) acquireIdle(op string) {
	if !b.borrows.CompareAndSwap(0, exclusive) {
		exceptions.Panicf("tensor.Buffer%v.%s: buffer is borrowed", b.shape, op)
	}
}
