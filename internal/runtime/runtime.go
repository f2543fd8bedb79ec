// Package runtime executes a materialized kernel graph.
//
// Every kernel gets its own goroutine. A kernel that finishes closes its
// output channels, which lets downstream kernels drain and exit on their
// own; the first failure cancels the shared context and closes every
// channel so no goroutine stays parked on a full or empty ring.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/furrow/internal/logging"
	"github.com/aretw0/furrow/pkg/graph"
	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/observe"
	"github.com/aretw0/furrow/pkg/port"
)

// Runner drives one run of a kernel graph.
type Runner struct {
	name    string
	graph   *graph.Map
	logger  *slog.Logger
	metrics *observe.Metrics
	tracer  trace.Tracer
	hooks   observe.LifecycleHooks
}

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink the runner reports into.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for the pipeline and kernel spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithHooks registers observability hooks.
func WithHooks(h observe.LifecycleHooks) Option {
	return func(r *Runner) {
		r.hooks = h
	}
}

// New assembles a runner for the given graph.
func New(name string, m *graph.Map, opts ...Option) *Runner {
	r := &Runner{name: name, graph: m}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.metrics == nil {
		r.metrics = observe.Nop()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer("furrow")
	}
	return r
}

// Run materializes the graph's channels and drives every kernel to
// completion. It returns the first kernel error, or the context's error
// when the run is cancelled. A runner is good for one run: the teardown
// closes the channels it built.
func (r *Runner) Run(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("pipeline", r.name),
		attribute.String("run_id", runID),
		attribute.Int("kernels", len(r.graph.Kernels())),
	))
	defer span.End()

	logger := r.logger.With("pipeline", r.name, "run_id", runID)

	if err := r.graph.Materialize(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("materialize: %w", err)
	}
	logger.Info("pipeline started", "kernels", len(r.graph.Kernels()))

	g, gctx := errgroup.WithContext(ctx)
	for _, k := range r.graph.Kernels() {
		g.Go(func() error {
			return r.runKernel(gctx, logger, runID, k)
		})
	}

	// Wake kernels parked on a ring once the run winds down. errgroup
	// cancels gctx when the last kernel returns, so the watcher always
	// fires and always exits.
	var watch sync.WaitGroup
	watch.Add(1)
	go func() {
		defer watch.Done()
		<-gctx.Done()
		r.closeAll()
	}()

	err := g.Wait()
	watch.Wait()
	if err == nil {
		// Kernels unblocked by the teardown can exit cleanly; the run
		// still counts as cancelled.
		err = ctx.Err()
	}

	elapsed := time.Since(start)
	if r.hooks.OnPipelineDone != nil {
		r.hooks.OnPipelineDone(ctx, &observe.PipelineEvent{
			EventBase: observe.EventBase{Timestamp: time.Now(), Type: observe.EventPipelineDone, RunID: runID},
			Pipeline:  r.name,
			Elapsed:   elapsed,
			Err:       err,
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("pipeline failed", "error", err, "elapsed", elapsed)
		return err
	}
	span.SetStatus(codes.Ok, "")
	logger.Info("pipeline finished", "elapsed", elapsed)
	return nil
}

func (r *Runner) runKernel(ctx context.Context, logger *slog.Logger, runID string, k kernel.Kernel) error {
	ctx, span := r.tracer.Start(ctx, "kernel.run", trace.WithAttributes(
		attribute.String("kernel", k.Label()),
	))
	defer span.End()

	if r.hooks.OnKernelStart != nil {
		r.hooks.OnKernelStart(ctx, &observe.KernelEvent{
			EventBase: observe.EventBase{Timestamp: time.Now(), Type: observe.EventKernelStart, RunID: runID},
			Kernel:    k.Label(),
		})
	}
	logger.Debug("kernel started", "kernel", k.Label())

	start := time.Now()
	err := k.Run(ctx)
	elapsed := time.Since(start)
	r.metrics.KernelRuntime.WithLabelValues(k.Label()).Observe(elapsed.Seconds())

	// Close outputs regardless of outcome so downstream kernels see the
	// end of the stream instead of waiting for more.
	closePorts(k.Out())

	if r.hooks.OnKernelDone != nil {
		r.hooks.OnKernelDone(ctx, &observe.KernelEvent{
			EventBase: observe.EventBase{Timestamp: time.Now(), Type: observe.EventKernelDone, RunID: runID},
			Kernel:    k.Label(),
			Elapsed:   elapsed,
			Err:       err,
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("kernel failed", "kernel", k.Label(), "error", err)
		return fmt.Errorf("kernel %s: %w", k.Label(), err)
	}
	span.SetStatus(codes.Ok, "")
	logger.Debug("kernel finished", "kernel", k.Label(), "elapsed", elapsed)
	return nil
}

func (r *Runner) closeAll() {
	for _, k := range r.graph.Kernels() {
		closePorts(k.In())
		closePorts(k.Out())
	}
}

// closePorts closes the constructed channels of a registry. Unbound
// ports are left alone: nothing can be parked on a channel that was
// never built.
func closePorts(reg *port.Registry) {
	for d := range reg.All() {
		if ch, ok := d.Bound(); ok {
			_ = ch.Close()
		}
	}
}
