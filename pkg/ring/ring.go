// Package ring implements the bounded single-producer single-consumer ring
// buffer that backs furrow channels. The producer and the consumer each own
// one monotonic counter, so the full capacity is usable and the only
// coordination is a pair of atomic loads per operation.
package ring

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/aretw0/furrow/pkg/stream"
	"github.com/aretw0/furrow/pkg/typetag"
)

// Buffer is a bounded SPSC ring implementing stream.Channel plus the typed
// stream.Producer and stream.Consumer ends. Exactly one goroutine pushes
// and one pops; the two may differ.
type Buffer[T any] struct {
	buf    []T
	tag    typetag.Tag
	kind   stream.StorageKind
	head   atomic.Uint64 // next pop slot, owned by the consumer
	tail   atomic.Uint64 // next push slot, owned by the producer
	closed atomic.Bool
}

// New returns a heap-backed ring holding up to capacity elements.
// Capacities below one are raised to one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{
		buf:  make([]T, capacity),
		tag:  typetag.Of[T](),
		kind: stream.StorageHeap,
	}
}

// FromSlice wraps buf in place: elements are stored directly in the
// caller's memory and the capacity is len(buf). kind records where that
// memory lives. Used for pre-allocated partition views and shared mappings.
func FromSlice[T any](buf []T, kind stream.StorageKind) (*Buffer[T], error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("ring: empty backing slice")
	}
	return &Buffer[T]{buf: buf, tag: typetag.Of[T](), kind: kind}, nil
}

// Tag implements stream.Channel.
func (b *Buffer[T]) Tag() typetag.Tag { return b.tag }

// Kind implements stream.Channel.
func (b *Buffer[T]) Kind() stream.StorageKind { return b.kind }

// Cap implements stream.Channel.
func (b *Buffer[T]) Cap() int { return len(b.buf) }

// Len implements stream.Channel.
func (b *Buffer[T]) Len() int {
	return int(b.tail.Load() - b.head.Load())
}

// Close marks the producing side done. Buffered elements remain readable.
func (b *Buffer[T]) Close() error {
	b.closed.Store(true)
	return nil
}

// Closed implements stream.Channel.
func (b *Buffer[T]) Closed() bool { return b.closed.Load() }

// Push appends v, blocking while the ring is full.
// Fails with stream.ErrClosed once Close has been called.
func (b *Buffer[T]) Push(v T) error {
	for spins := 0; ; spins++ {
		ok, err := b.TryPush(v)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		wait(spins)
	}
}

// TryPush appends v without blocking; ok is false while the ring is full.
func (b *Buffer[T]) TryPush(v T) (bool, error) {
	if b.closed.Load() {
		return false, stream.ErrClosed
	}
	tail := b.tail.Load()
	if tail-b.head.Load() >= uint64(len(b.buf)) {
		return false, nil
	}
	b.buf[tail%uint64(len(b.buf))] = v
	// The store below publishes the element: the consumer reads the slot
	// only after observing the new tail.
	b.tail.Store(tail + 1)
	return true, nil
}

// Pop removes and returns the oldest element, blocking while the ring is
// empty. Once closed and drained it fails with stream.ErrClosed.
func (b *Buffer[T]) Pop() (T, error) {
	for spins := 0; ; spins++ {
		v, ok, err := b.TryPop()
		if err != nil || ok {
			return v, err
		}
		wait(spins)
	}
}

// TryPop removes the oldest element without blocking; ok is false while
// nothing is buffered.
func (b *Buffer[T]) TryPop() (T, bool, error) {
	var zero T
	head := b.head.Load()
	if b.tail.Load() > head {
		v := b.buf[head%uint64(len(b.buf))]
		b.head.Store(head + 1)
		return v, true, nil
	}
	// Empty. Closed wins only if nothing arrived in between: the producer
	// closes after its final push, so re-checking tail after the closed
	// flag cannot lose elements.
	if b.closed.Load() && b.tail.Load() == head {
		return zero, false, stream.ErrClosed
	}
	return zero, false, nil
}

// Peek returns the oldest element without removing it.
func (b *Buffer[T]) Peek() (T, bool) {
	var zero T
	head := b.head.Load()
	if b.tail.Load() > head {
		return b.buf[head%uint64(len(b.buf))], true
	}
	return zero, false
}

func wait(spins int) {
	if spins < 64 {
		runtime.Gosched()
		return
	}
	time.Sleep(50 * time.Microsecond)
}
