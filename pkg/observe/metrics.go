// Package observe carries the prometheus instrumentation for furrow
// pipelines: per-channel traffic counters and per-kernel runtime
// histograms, plus the decorator that attaches them to a channel.
package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is the collector set one pipeline registers. All channel series
// share the {kernel, port, storage} labels.
type Metrics struct {
	Pushes        *prometheus.CounterVec
	Pops          *prometheus.CounterVec
	Depth         *prometheus.GaugeVec
	Blocked       *prometheus.CounterVec
	KernelRuntime *prometheus.HistogramVec
}

// New builds the collector set and registers it with reg.
// A nil reg leaves the collectors unregistered but fully usable, which is
// the no-op path pipelines without metrics take.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	channelLabels := []string{"kernel", "port", "storage"}

	return &Metrics{
		Pushes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "furrow_channel_pushes_total",
			Help: "Elements pushed into a channel.",
		}, channelLabels),
		Pops: f.NewCounterVec(prometheus.CounterOpts{
			Name: "furrow_channel_pops_total",
			Help: "Elements popped from a channel.",
		}, channelLabels),
		Depth: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "furrow_channel_depth",
			Help: "Elements currently buffered in a channel.",
		}, channelLabels),
		Blocked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "furrow_channel_blocked_seconds_total",
			Help: "Time spent blocked on a full or empty channel.",
		}, channelLabels),
		KernelRuntime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "furrow_kernel_runtime_seconds",
			Help:    "Wall time of one kernel run.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kernel"}),
	}
}

// Nop returns an unregistered collector set.
func Nop() *Metrics { return New(nil) }
