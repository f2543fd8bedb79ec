// Package kernels ships the stock processing units pipelines are usually
// assembled from: sources, transforms, filters and sinks, plus the
// scatter/gather pair for pre-allocated blocks. All of them follow the same
// loop: resolve the typed channel ends once, then move elements until the
// stream drains or the context is cancelled.
package kernels

import (
	"context"
	"errors"

	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
)

type source[T any] struct {
	kernel.Base
	next func() (T, bool)
}

// Source builds a kernel with one output port "out" driven by next, which
// returns false once the stream is exhausted.
func Source[T any](label string, next func() (T, bool), opts ...kernel.Option) kernel.Kernel {
	s := &source[T]{next: next}
	s.Init(s, label, opts...)
	_ = port.Declare[T](s.Out(), "out")
	return s
}

func (s *source[T]) Run(ctx context.Context) error {
	out, err := producer[T](s.Out(), "out")
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok := s.next()
		if !ok {
			return nil
		}
		if err := out.Push(v); err != nil {
			return downstreamGone(err)
		}
	}
}

type transform[T, U any] struct {
	kernel.Base
	fn func(T) U
}

// Transform builds a kernel applying fn to every element of "in" and
// emitting the result on "out".
func Transform[T, U any](label string, fn func(T) U, opts ...kernel.Option) kernel.Kernel {
	k := &transform[T, U]{fn: fn}
	k.Init(k, label, opts...)
	_ = port.Declare[T](k.In(), "in")
	_ = port.Declare[U](k.Out(), "out")
	return k
}

func (k *transform[T, U]) Run(ctx context.Context) error {
	in, err := consumer[T](k.In(), "in")
	if err != nil {
		return err
	}
	out, err := producer[U](k.Out(), "out")
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := in.Pop()
		if err != nil {
			return upstreamDone(err)
		}
		if err := out.Push(k.fn(v)); err != nil {
			return downstreamGone(err)
		}
	}
}

type filter[T any] struct {
	kernel.Base
	keep func(T) bool
}

// Filter builds a kernel passing through the elements of "in" that keep
// accepts.
func Filter[T any](label string, keep func(T) bool, opts ...kernel.Option) kernel.Kernel {
	k := &filter[T]{keep: keep}
	k.Init(k, label, opts...)
	_ = port.Declare[T](k.In(), "in")
	_ = port.Declare[T](k.Out(), "out")
	return k
}

func (k *filter[T]) Run(ctx context.Context) error {
	in, err := consumer[T](k.In(), "in")
	if err != nil {
		return err
	}
	out, err := producer[T](k.Out(), "out")
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := in.Pop()
		if err != nil {
			return upstreamDone(err)
		}
		if !k.keep(v) {
			continue
		}
		if err := out.Push(v); err != nil {
			return downstreamGone(err)
		}
	}
}

type sink[T any] struct {
	kernel.Base
	fn func(T) error
}

// Sink builds a kernel consuming "in" with fn. A fn error stops the
// pipeline.
func Sink[T any](label string, fn func(T) error, opts ...kernel.Option) kernel.Kernel {
	k := &sink[T]{fn: fn}
	k.Init(k, label, opts...)
	_ = port.Declare[T](k.In(), "in")
	return k
}

func (k *sink[T]) Run(ctx context.Context) error {
	in, err := consumer[T](k.In(), "in")
	if err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, err := in.Pop()
		if err != nil {
			return upstreamDone(err)
		}
		if err := k.fn(v); err != nil {
			return err
		}
	}
}

func producer[T any](r *port.Registry, name string) (stream.Producer[T], error) {
	ch, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return stream.AsProducer[T](ch)
}

func consumer[T any](r *port.Registry, name string) (stream.Consumer[T], error) {
	ch, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	return stream.AsConsumer[T](ch)
}

// upstreamDone maps the closed-and-drained signal to a clean exit.
func upstreamDone(err error) error {
	if errors.Is(err, stream.ErrClosed) {
		return nil
	}
	return err
}

// downstreamGone maps a closed downstream to a clean exit; the elements
// still buffered are the consumer's to drain.
func downstreamGone(err error) error {
	if errors.Is(err, stream.ErrClosed) {
		return nil
	}
	return err
}
