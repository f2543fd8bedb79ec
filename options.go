package furrow

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/aretw0/furrow/pkg/observe"
)

// Option defines a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom structured logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMetrics routes channel and kernel metrics into m. Kernels that pick
// an instrumented backing report through the same sink.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
		p.profile.Metrics = m
	}
}

// WithCapacity sets the default element capacity for channels that
// allocate their own storage. Kernels built with an explicit profile keep
// theirs.
func WithCapacity(n int) Option {
	return func(p *Pipeline) {
		p.profile.Capacity = n
	}
}

// WithTracer sets the tracer used for pipeline and kernel spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// WithHooks registers lifecycle hooks fired around kernels and runs.
func WithHooks(h observe.LifecycleHooks) Option {
	return func(p *Pipeline) {
		p.hooks = h
	}
}
