package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/graph"
	"github.com/aretw0/furrow/pkg/kernels"
	"github.com/aretw0/furrow/pkg/observe"
)

type stubPipeline struct {
	name string
	m    *graph.Map
}

func (s *stubPipeline) Name() string      { return s.name }
func (s *stubPipeline) Graph() *graph.Map { return s.m }

func wiredPipeline(t *testing.T) *stubPipeline {
	t.Helper()
	m := graph.New()
	seed := kernels.Source("seed", func() (int, bool) { return 0, false })
	drop := kernels.Sink("drop", func(int) error { return nil })
	require.NoError(t, m.Link(seed, drop))
	return &stubPipeline{name: "demo", m: m}
}

func TestGetHealth(t *testing.T) {
	handler := NewHandler(wiredPipeline(t), nil)

	req, _ := http.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "demo", resp["pipeline"])
}

func TestGetPipeline(t *testing.T) {
	handler := NewHandler(wiredPipeline(t), nil)

	req, _ := http.NewRequest("GET", "/pipeline", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp PipelineInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	assert.Equal(t, "demo", resp.Name)
	require.Len(t, resp.Kernels, 2)

	seed := resp.Kernels[0]
	assert.Equal(t, "seed", seed.Label)
	require.Len(t, seed.Outputs, 1)
	out := seed.Outputs[0]
	assert.Equal(t, "out", out.Name)
	assert.Equal(t, "int", out.Type)
	assert.Equal(t, "heap", out.Storage)
	assert.Equal(t, "drop.in", out.Peer)
	// Nothing ran, so no channel was constructed yet.
	assert.Nil(t, out.Depth)

	assert.Contains(t, resp.Edges, "seed.out -> drop.in")
}

func TestGetGraph(t *testing.T) {
	handler := NewHandler(wiredPipeline(t), nil)

	req, _ := http.NewRequest("GET", "/graph", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "graph LR")
	assert.Contains(t, rr.Body.String(), `seed(("seed"))`)
}

func TestGetMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observe.New(reg)
	metrics.Pushes.WithLabelValues("seed", "out", "heap").Add(3)

	handler := NewHandler(wiredPipeline(t), reg)

	req, _ := http.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "furrow_channel_pushes_total")
}
