// Package cli carries the logic behind the furrow commands: loading a
// manifest into a runnable pipeline, signal-aware execution, and the
// introspection outputs.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/furrow"
	"github.com/aretw0/furrow/pkg/manifest"
	"github.com/aretw0/furrow/pkg/observe"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// debugHooks logs every lifecycle event at debug level.
func debugHooks(logger *slog.Logger) observe.LifecycleHooks {
	return observe.LifecycleHooks{
		OnKernelStart: func(ctx context.Context, e *observe.KernelEvent) {
			logger.Debug("Kernel Start", "kernel", e.Kernel, "run_id", e.RunID)
		},
		OnKernelDone: func(ctx context.Context, e *observe.KernelEvent) {
			if e.Err != nil {
				logger.Debug("Kernel Done (Error)", "kernel", e.Kernel, "elapsed", e.Elapsed, "err", e.Err)
			} else {
				logger.Debug("Kernel Done", "kernel", e.Kernel, "elapsed", e.Elapsed)
			}
		},
		OnPipelineDone: func(ctx context.Context, e *observe.PipelineEvent) {
			logger.Debug("Pipeline Done", "pipeline", e.Pipeline, "elapsed", e.Elapsed)
		},
	}
}

// loadPipeline reads the manifest at path and assembles it with the builtin
// kernel builders.
func loadPipeline(path string, opts ...furrow.Option) (*furrow.Pipeline, *manifest.Manifest, error) {
	m, err := manifest.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := manifest.Build(m, manifest.Builtin(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("build pipeline: %w", err)
	}
	return p, m, nil
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
