// Package stream defines the channel vocabulary shared by ports, kernels
// and channel implementations: the untyped Channel handle a registry hands
// out, the typed Producer/Consumer views kernels work with, storage kinds,
// and the factory table a port carries until its channel is constructed.
package stream

import (
	"fmt"

	"github.com/aretw0/furrow/pkg/typetag"
)

// StorageKind selects where a channel's element storage lives.
type StorageKind int

const (
	// StorageHeap backs the channel with ordinary heap memory.
	StorageHeap StorageKind = iota
	// StorageShared backs the channel with caller-provided pre-allocated
	// memory or an anonymous process-shared mapping.
	StorageShared
)

func (k StorageKind) String() string {
	switch k {
	case StorageHeap:
		return "heap"
	case StorageShared:
		return "shared"
	default:
		return fmt.Sprintf("storage(%d)", int(k))
	}
}

// ParseStorageKind maps the manifest spelling of a storage kind.
func ParseStorageKind(s string) (StorageKind, error) {
	switch s {
	case "", "heap":
		return StorageHeap, nil
	case "shared":
		return StorageShared, nil
	default:
		return 0, fmt.Errorf("unknown storage kind %q", s)
	}
}

// FactoryKey selects one backing construction out of a factory table.
type FactoryKey struct {
	Kind         StorageKind
	Instrumented bool
}

func (k FactoryKey) String() string {
	if k.Instrumented {
		return k.Kind.String() + "+metrics"
	}
	return k.Kind.String()
}

// Factory constructs a channel on demand. Factories are registered at port
// declaration time and invoked at most once per port, on first lookup.
type Factory func() (Channel, error)

// FactoryTable maps backing selections to their deferred constructors.
type FactoryTable map[FactoryKey]Factory

// Channel is the untyped handle to a data stream between two kernels.
// Kernels obtain typed ends with AsProducer and AsConsumer.
type Channel interface {
	// Tag identifies the element type flowing through the channel.
	Tag() typetag.Tag
	// Kind reports where the element storage lives.
	Kind() StorageKind
	// Cap is the fixed capacity in elements.
	Cap() int
	// Len is the number of elements currently buffered.
	Len() int
	// Close signals end-of-stream from the producing side. Buffered
	// elements stay readable; further pushes fail with ErrClosed.
	Close() error
	// Closed reports whether Close was called.
	Closed() bool
}

// Producer is the writing end of a channel. One goroutine at a time.
type Producer[T any] interface {
	// Push appends v, blocking while the channel is full.
	// Fails with ErrClosed after Close.
	Push(v T) error
	// TryPush appends v without blocking. ok is false when the channel is
	// full; a closed channel reports ErrClosed instead.
	TryPush(v T) (ok bool, err error)
	// Close signals end-of-stream.
	Close() error
}

// Consumer is the reading end of a channel. One goroutine at a time.
type Consumer[T any] interface {
	// Pop removes and returns the oldest element, blocking while the
	// channel is empty. Once the channel is closed and drained it fails
	// with ErrClosed.
	Pop() (T, error)
	// TryPop removes the oldest element without blocking. ok is false when
	// nothing is buffered; a closed and drained channel reports ErrClosed.
	TryPop() (v T, ok bool, err error)
}

// AsProducer returns the typed writing end of ch.
// Fails with ErrTypeMismatch when T does not carry the channel's tag.
func AsProducer[T any](ch Channel) (Producer[T], error) {
	if want := typetag.Of[T](); ch.Tag() != want {
		return nil, fmt.Errorf("%w: channel carries %s, want %s", ErrTypeMismatch, ch.Tag(), want)
	}
	p, ok := ch.(Producer[T])
	if !ok {
		return nil, fmt.Errorf("%w: %T has no producer end for %s", ErrTypeMismatch, ch, typetag.Of[T]())
	}
	return p, nil
}

// AsConsumer returns the typed reading end of ch.
// Fails with ErrTypeMismatch when T does not carry the channel's tag.
func AsConsumer[T any](ch Channel) (Consumer[T], error) {
	if want := typetag.Of[T](); ch.Tag() != want {
		return nil, fmt.Errorf("%w: channel carries %s, want %s", ErrTypeMismatch, ch.Tag(), want)
	}
	c, ok := ch.(Consumer[T])
	if !ok {
		return nil, fmt.Errorf("%w: %T has no consumer end for %s", ErrTypeMismatch, ch, typetag.Of[T]())
	}
	return c, nil
}
