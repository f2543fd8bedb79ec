// Package kernel defines the processing unit of a furrow pipeline: a named
// owner of an input and an output port registry plus a Run loop that moves
// elements between them.
package kernel

import (
	"context"

	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
)

// Kernel is one processing unit. Implementations usually embed Base and
// provide only Run. Every Kernel satisfies port.Owner, so descriptors can
// point back at their kernel without the port package knowing this one.
type Kernel interface {
	// Label names the kernel uniquely within its graph.
	Label() string
	// In returns the input port registry.
	In() *port.Registry
	// Out returns the output port registry.
	Out() *port.Registry
	// Run executes the kernel until its inputs drain, its work completes or
	// ctx is cancelled. The runtime closes the kernel's output channels
	// after Run returns, which propagates end-of-stream downstream.
	Run(ctx context.Context) error
}

// Base carries the label and the two registries so concrete kernels only
// implement Run. Embed it and initialize with the outer value:
//
//	type doubler struct{ kernel.Base }
//
//	func newDoubler() *doubler {
//		d := &doubler{}
//		d.Init(d, "doubler")
//		_ = port.Declare[int](d.In(), "in")
//		_ = port.Declare[int](d.Out(), "out")
//		return d
//	}
type Base struct {
	label string
	in    *port.Registry
	out   *port.Registry
}

// Option configures the registries a Base builds at Init.
type Option func(*config)

type config struct {
	inOpts  []port.Option
	outOpts []port.Option
}

// WithInputBlock hands the input registry a borrowed block for partitioned
// declarations.
func WithInputBlock(b *stream.Block) Option {
	return func(c *config) { c.inOpts = append(c.inOpts, port.WithBlock(b)) }
}

// WithOutputBlock hands the output registry a borrowed block for
// partitioned declarations.
func WithOutputBlock(b *stream.Block) Option {
	return func(c *config) { c.outOpts = append(c.outOpts, port.WithBlock(b)) }
}

// WithProfile applies a backing profile to both registries.
func WithProfile(p backing.Profile) Option {
	return func(c *config) {
		c.inOpts = append(c.inOpts, port.WithProfile(p))
		c.outOpts = append(c.outOpts, port.WithProfile(p))
	}
}

// Init wires the registries. self must be the outer kernel value, not the
// embedded Base, so peers recorded on descriptors reach the full Kernel.
func (b *Base) Init(self port.Owner, label string, opts ...Option) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	b.label = label
	b.in = port.New(self, c.inOpts...)
	b.out = port.New(self, c.outOpts...)
}

// Label implements Kernel.
func (b *Base) Label() string { return b.label }

// In implements Kernel.
func (b *Base) In() *port.Registry { return b.in }

// Out implements Kernel.
func (b *Base) Out() *port.Registry { return b.out }
