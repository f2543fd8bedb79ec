package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"

	"github.com/aretw0/furrow"
	httpadapter "github.com/aretw0/furrow/internal/adapters/http"
	"github.com/aretw0/furrow/internal/logging"
	"github.com/aretw0/furrow/internal/presentation/tui"
	"github.com/aretw0/furrow/pkg/observe"
)

// shutdownGrace bounds the flush of pending spans on exit.
const shutdownGrace = 5 * time.Second

// RunOptions configures a single pipeline execution.
type RunOptions struct {
	ManifestPath string
	LogLevel     string
	ServeAddr    string // empty disables the introspection server
	Trace        bool   // export spans to stdout
}

// Run loads the manifest, assembles the pipeline and drives it to
// completion. Interrupts drain the pipeline and exit cleanly.
func Run(opts RunOptions) error {
	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return err
	}
	logger := logging.New(level)

	if term.IsTerminal(int(os.Stdout.Fd())) {
		tui.PrintBanner(furrow.Version)
	}

	reg := prometheus.NewRegistry()
	metrics := observe.New(reg)

	pipeOpts := []furrow.Option{
		furrow.WithLogger(logger),
		furrow.WithMetrics(metrics),
	}
	if level <= slog.LevelDebug {
		pipeOpts = append(pipeOpts, furrow.WithHooks(debugHooks(logger)))
	}

	if opts.Trace {
		provider, err := newStdoutTracerProvider()
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Warn("trace provider shutdown", "err", err)
			}
		}()
		pipeOpts = append(pipeOpts, furrow.WithTracer(provider.Tracer("furrow")))
	}

	p, _, err := loadPipeline(opts.ManifestPath, pipeOpts...)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	if opts.ServeAddr != "" {
		handler := httpadapter.NewHandler(p, reg)
		go func() {
			if err := httpadapter.Serve(sigCtx, opts.ServeAddr, handler, logger); err != nil {
				logger.Error("introspection server", "err", err)
			}
		}()
	}

	runErr := p.Run(sigCtx)

	switch {
	case runErr == nil:
		printSystemMessage("Pipeline %q finished.", p.Name())
		return nil
	case errors.Is(runErr, context.Canceled):
		if sig := sigCtx.Signal(); sig != nil {
			fmt.Printf("\n")
			printSystemMessage("Interrupted by %s.", sig)
		}
		// Exit 0 for interruptions
		return nil
	default:
		return runErr
	}
}

func newStdoutTracerProvider() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("create stdout exporter: %w", err)
	}

	// NewSchemaless avoids schema version conflicts with resource.Default()
	res := resource.NewSchemaless(
		attribute.String("service.name", "furrow"),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter),
	), nil
}
