// Package backing populates the per-port factory tables that defer channel
// construction until first lookup. The table layout is fixed: heap backing
// in plain and instrumented variants, and a non-instrumented shared
// backing. No instrumented shared backing is defined yet.
package backing

import (
	"github.com/aretw0/furrow/pkg/observe"
	"github.com/aretw0/furrow/pkg/ring"
	"github.com/aretw0/furrow/pkg/shm"
	"github.com/aretw0/furrow/pkg/stream"
)

// DefaultCapacity is the element capacity of channels that allocate their
// own storage when the profile does not say otherwise.
const DefaultCapacity = 64

// Profile carries the construction-time defaults a registry hands to every
// factory table it populates. The zero Profile is valid: default capacity,
// unregistered metrics.
type Profile struct {
	// Capacity is the element capacity for self-allocating channels.
	Capacity int
	// Metrics receives the counters of instrumented backings. Nil keeps
	// them unregistered.
	Metrics *observe.Metrics
}

func (p Profile) capacity() int {
	if p.Capacity > 0 {
		return p.Capacity
	}
	return DefaultCapacity
}

// Source yields the profile current at channel-construction time. Factory
// closures read through it so a pipeline can hand its profile to kernels
// declared before the pipeline existed.
type Source interface {
	BackingProfile() Profile
}

// TableFor builds the factory table for one port of element type T.
// view is the port's borrowed storage (nil when the port allocates its
// own); off and n give the sub-range in elements. kernel and port label the
// instrumented variants.
func TableFor[T any](src Source, view *stream.Block, off, n int, kernel, port string) stream.FactoryTable {
	heapRing := func() (*ring.Buffer[T], error) {
		return ring.New[T](src.BackingProfile().capacity()), nil
	}
	sharedRing := func() (*ring.Buffer[T], error) {
		if view != nil {
			buf, err := stream.Slice[T](view, off, n)
			if err != nil {
				return nil, err
			}
			return ring.FromSlice(buf, stream.StorageShared)
		}
		buf, _, err := shm.Map[T](src.BackingProfile().capacity())
		if err != nil {
			return nil, err
		}
		return ring.FromSlice(buf, stream.StorageShared)
	}

	return stream.FactoryTable{
		{Kind: stream.StorageHeap}: func() (stream.Channel, error) {
			b, err := heapRing()
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		{Kind: stream.StorageHeap, Instrumented: true}: func() (stream.Channel, error) {
			b, err := heapRing()
			if err != nil {
				return nil, err
			}
			return wrap(b, src, kernel, port), nil
		},
		{Kind: stream.StorageShared}: func() (stream.Channel, error) {
			b, err := sharedRing()
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	}
}

func wrap[T any](b *ring.Buffer[T], src Source, kernel, port string) stream.Channel {
	m := src.BackingProfile().Metrics
	if m == nil {
		m = observe.Nop()
	}
	return observe.Wrap(b, m, kernel, port)
}
