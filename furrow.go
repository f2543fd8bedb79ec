package furrow

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/furrow/internal/logging"
	"github.com/aretw0/furrow/internal/runtime"
	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/graph"
	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/observe"
)

// Version is the library version, reported by the CLI and the
// introspection endpoints.
const Version = "0.1.0"

// Pipeline is the high-level entry point for the furrow library.
// It wraps the kernel graph and the internal runtime and provides a
// simplified API for consumers.
type Pipeline struct {
	name    string
	graph   *graph.Map
	logger  *slog.Logger
	metrics *observe.Metrics
	tracer  trace.Tracer
	hooks   observe.LifecycleHooks
	profile backing.Profile
}

// New creates a named pipeline. Kernels added to it inherit the
// pipeline's backing profile unless they were built with their own.
func New(name string, opts ...Option) *Pipeline {
	p := &Pipeline{name: name, graph: graph.New()}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	if p.metrics == nil {
		p.metrics = observe.Nop()
	}
	return p
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string { return p.name }

// Graph exposes the underlying kernel graph for visualization and
// introspection tools.
func (p *Pipeline) Graph() *graph.Map { return p.graph }

// Add registers kernels with the pipeline. Safe to call for a kernel that
// is already registered.
func (p *Pipeline) Add(ks ...kernel.Kernel) error {
	for _, k := range ks {
		if p.profile != (backing.Profile{}) {
			k.In().Access().ApplyProfile(p.profile)
			k.Out().Access().ApplyProfile(p.profile)
		}
		if err := p.graph.Add(k); err != nil {
			return err
		}
	}
	return nil
}

// Connect wires src's named output port to dst's named input port, adding
// both kernels as needed.
func (p *Pipeline) Connect(src kernel.Kernel, srcPort string, dst kernel.Kernel, dstPort string) error {
	if err := p.Add(src, dst); err != nil {
		return err
	}
	return p.graph.Connect(src, srcPort, dst, dstPort)
}

// Link chains kernels in order, connecting each one's only output to the
// next one's only input.
func (p *Pipeline) Link(ks ...kernel.Kernel) error {
	if len(ks) < 2 {
		return fmt.Errorf("link needs at least two kernels, have %d", len(ks))
	}
	if err := p.Add(ks...); err != nil {
		return err
	}
	for i := 0; i < len(ks)-1; i++ {
		if err := p.graph.Link(ks[i], ks[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks graph soundness: every port connected, at least one
// source kernel, everything reachable from the sources.
func (p *Pipeline) Validate() error {
	return p.graph.Validate()
}

// Run validates the pipeline and drives it to completion. It blocks until
// every kernel has finished or the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	opts := []runtime.Option{
		runtime.WithLogger(p.logger),
		runtime.WithMetrics(p.metrics),
		runtime.WithHooks(p.hooks),
	}
	if p.tracer != nil {
		opts = append(opts, runtime.WithTracer(p.tracer))
	}
	return runtime.New(p.name, p.graph, opts...).Run(ctx)
}
