package kernels

import (
	"context"
	"errors"
	"strconv"

	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
)

type scatter[T any] struct {
	kernel.Base
	n int
}

// Scatter builds a kernel that owns a pre-allocated block and fans its
// elements out across n partitioned output ports named "0" through "n-1".
// Port i streams its own stripe of the block: total/n elements, with the
// last port also carrying the remainder. The partitions default to the
// shared backing, which runs directly over the block's memory.
func Scatter[T any](label string, buf []T, n int, opts ...kernel.Option) (kernel.Kernel, error) {
	s := &scatter[T]{n: n}
	opts = append(opts, kernel.WithOutputBlock(stream.BlockOf(buf)))
	s.Init(s, label, opts...)
	if err := port.DeclarePartitioned[T](s.Out(), n); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *scatter[T]) Run(ctx context.Context) error {
	for i := 0; i < s.n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := strconv.Itoa(i)
		d, err := s.Out().Access().Descriptor(name)
		if err != nil {
			return err
		}
		block, off, count, _ := d.View()
		stripe, err := stream.Slice[T](block, off, count)
		if err != nil {
			return err
		}
		out, err := producer[T](s.Out(), name)
		if err != nil {
			return err
		}
		for _, v := range stripe {
			if err := out.Push(v); err != nil {
				return downstreamGone(err)
			}
		}
	}
	return nil
}

type gather[T any] struct {
	kernel.Base
	n int
}

// Gather builds the counterpart of Scatter: n input ports named "0"
// through "n-1" drained in order onto a single "out" port, concatenating
// the stripes back into one stream.
func Gather[T any](label string, n int, opts ...kernel.Option) kernel.Kernel {
	g := &gather[T]{n: n}
	g.Init(g, label, opts...)
	for i := 0; i < n; i++ {
		_ = port.Declare[T](g.In(), strconv.Itoa(i))
	}
	_ = port.Declare[T](g.Out(), "out")
	return g
}

func (g *gather[T]) Run(ctx context.Context) error {
	out, err := producer[T](g.Out(), "out")
	if err != nil {
		return err
	}
	for i := 0; i < g.n; i++ {
		in, err := consumer[T](g.In(), strconv.Itoa(i))
		if err != nil {
			return err
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := in.Pop()
			if err != nil {
				// This stripe is drained; move to the next one.
				if errors.Is(err, stream.ErrClosed) {
					break
				}
				return err
			}
			if err := out.Push(v); err != nil {
				return downstreamGone(err)
			}
		}
	}
	return nil
}
