// Package http exposes the introspection surface of a running pipeline:
// health, the wired topology as JSON, a Mermaid rendering of the graph and
// Prometheus metrics.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	presentation "github.com/aretw0/furrow/internal/presentation/graph"
	"github.com/aretw0/furrow/pkg/graph"
	"github.com/aretw0/furrow/pkg/port"
)

// Pipeline defines the read surface the server works against.
// *furrow.Pipeline satisfies it.
type Pipeline interface {
	Name() string
	Graph() *graph.Map
}

// Server implements the introspection endpoints for one pipeline.
type Server struct {
	Pipeline Pipeline
	Gatherer prometheus.Gatherer
}

// NewHandler creates a new HTTP handler for the pipeline. gatherer feeds
// the /metrics endpoint; nil falls back to the process-wide default.
func NewHandler(p Pipeline, gatherer prometheus.Gatherer) http.Handler {
	server := &Server{Pipeline: p, Gatherer: gatherer}
	r := chi.NewRouter()

	r.Get("/healthz", server.GetHealth)
	r.Get("/pipeline", server.GetPipeline)
	r.Get("/graph", server.GetGraph)
	r.Method(http.MethodGet, "/metrics", server.metricsHandler())

	return r
}

// PipelineInfo is the topology document served by GET /pipeline.
type PipelineInfo struct {
	Name    string       `json:"name"`
	Kernels []KernelInfo `json:"kernels"`
	Edges   []string     `json:"edges,omitempty"`
}

// KernelInfo describes one kernel and its declared ports.
type KernelInfo struct {
	Label   string     `json:"label"`
	Inputs  []PortInfo `json:"inputs,omitempty"`
	Outputs []PortInfo `json:"outputs,omitempty"`
}

// PortInfo describes one declared port. Depth and Capacity are only
// present once the port's channel has been constructed.
type PortInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Storage      string `json:"storage"`
	Instrumented bool   `json:"instrumented"`
	Peer         string `json:"peer,omitempty"`
	Depth        *int   `json:"depth,omitempty"`
	Capacity     *int   `json:"capacity,omitempty"`
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":   "ok",
		"pipeline": s.Pipeline.Name(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf("GetHealth encode error: %v\n", err)
	}
}

// GetPipeline handles the GET /pipeline request.
func (s *Server) GetPipeline(w http.ResponseWriter, r *http.Request) {
	m := s.Pipeline.Graph()

	resp := PipelineInfo{Name: s.Pipeline.Name()}
	for _, k := range m.Kernels() {
		resp.Kernels = append(resp.Kernels, KernelInfo{
			Label:   k.Label(),
			Inputs:  portsOf(k.In()),
			Outputs: portsOf(k.Out()),
		})
	}
	for _, e := range m.Edges() {
		resp.Edges = append(resp.Edges, e.String())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		fmt.Printf("GetPipeline encode error: %v\n", err)
	}
}

// GetGraph handles the GET /graph request, serving the Mermaid rendering.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, presentation.GenerateMermaid(s.Pipeline.Graph(), nil))
}

func (s *Server) metricsHandler() http.Handler {
	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Serve runs the handler on addr until ctx is cancelled, then drains
// in-flight requests with a grace period.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: h,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		logger.Info("introspection server listening", "addr", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("introspection server: %w", err)

	case <-ctx.Done():
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("introspection server stopped")
		return nil
	}
}

// -- Helpers --

func ptr[T any](v T) *T {
	return &v
}

func portsOf(reg *port.Registry) []PortInfo {
	var infos []PortInfo
	for d := range reg.All() {
		info := PortInfo{
			Name:         d.Name(),
			Type:         d.Tag().String(),
			Storage:      d.Selection().Kind.String(),
			Instrumented: d.Selection().Instrumented,
		}
		if peer, peerPort, ok := d.Peer(); ok {
			info.Peer = peer.Label() + "." + peerPort
		}
		if ch, ok := d.Bound(); ok {
			info.Depth = ptr(ch.Len())
			info.Capacity = ptr(ch.Cap())
		}
		infos = append(infos, info)
	}
	return infos
}
