package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/furrow/pkg/ring"
	"github.com/aretw0/furrow/pkg/stream"
	"github.com/aretw0/furrow/pkg/typetag"
)

// Wrap decorates a ring with the pipeline's channel metrics, labeled by the
// owning kernel and port. The wrapped channel keeps the ring's typed ends,
// so stream.AsProducer and stream.AsConsumer still apply.
func Wrap[T any](inner *ring.Buffer[T], m *Metrics, kernel, port string) stream.Channel {
	labels := prometheus.Labels{
		"kernel":  kernel,
		"port":    port,
		"storage": inner.Kind().String(),
	}
	return &instrumented[T]{
		inner:   inner,
		pushes:  m.Pushes.With(labels),
		pops:    m.Pops.With(labels),
		depth:   m.Depth.With(labels),
		blocked: m.Blocked.With(labels),
	}
}

type instrumented[T any] struct {
	inner   *ring.Buffer[T]
	pushes  prometheus.Counter
	pops    prometheus.Counter
	depth   prometheus.Gauge
	blocked prometheus.Counter
}

func (c *instrumented[T]) Tag() typetag.Tag         { return c.inner.Tag() }
func (c *instrumented[T]) Kind() stream.StorageKind { return c.inner.Kind() }
func (c *instrumented[T]) Cap() int                 { return c.inner.Cap() }
func (c *instrumented[T]) Len() int                 { return c.inner.Len() }
func (c *instrumented[T]) Closed() bool             { return c.inner.Closed() }

func (c *instrumented[T]) Close() error {
	return c.inner.Close()
}

func (c *instrumented[T]) Push(v T) error {
	// Fast path first; only a refused push counts as blocked time.
	ok, err := c.inner.TryPush(v)
	if !ok && err == nil {
		start := time.Now()
		err = c.inner.Push(v)
		c.blocked.Add(time.Since(start).Seconds())
		ok = err == nil
	}
	if ok {
		c.pushes.Inc()
		c.depth.Set(float64(c.inner.Len()))
	}
	return err
}

func (c *instrumented[T]) TryPush(v T) (bool, error) {
	ok, err := c.inner.TryPush(v)
	if ok {
		c.pushes.Inc()
		c.depth.Set(float64(c.inner.Len()))
	}
	return ok, err
}

func (c *instrumented[T]) Pop() (T, error) {
	v, ok, err := c.inner.TryPop()
	if !ok && err == nil {
		start := time.Now()
		v, err = c.inner.Pop()
		c.blocked.Add(time.Since(start).Seconds())
		ok = err == nil
	}
	if ok {
		c.pops.Inc()
		c.depth.Set(float64(c.inner.Len()))
	}
	return v, err
}

func (c *instrumented[T]) TryPop() (T, bool, error) {
	v, ok, err := c.inner.TryPop()
	if ok {
		c.pops.Inc()
		c.depth.Set(float64(c.inner.Len()))
	}
	return v, ok, err
}
