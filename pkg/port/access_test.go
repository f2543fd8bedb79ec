package port_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/ring"
	"github.com/aretw0/furrow/pkg/stream"
)

// === Single-port resolution ===

func TestAccessSingle(t *testing.T) {
	t.Run("zero ports", func(t *testing.T) {
		r := port.New(fakeKernel{"k"})
		_, err := r.Access().Single()
		require.ErrorIs(t, err, port.ErrPortCardinality)
	})

	t.Run("exactly one", func(t *testing.T) {
		r := port.New(fakeKernel{"k"})
		require.NoError(t, port.Declare[int](r, "only"))

		d, err := r.Access().Single()
		require.NoError(t, err)
		assert.Equal(t, "only", d.Name())
	})

	t.Run("two ports", func(t *testing.T) {
		r := port.New(fakeKernel{"k"})
		require.NoError(t, port.Declare[int](r, "a"))
		require.NoError(t, port.Declare[int](r, "b"))

		_, err := r.Access().Single()
		require.ErrorIs(t, err, port.ErrPortCardinality)
	})
}

func TestAccessDescriptor(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int](r, "in"))

	d, err := r.Access().Descriptor("in")
	require.NoError(t, err)
	assert.Equal(t, "in", d.Name())
	assert.Equal(t, "k", d.Owner().Label())

	_, err = r.Access().Descriptor("missing")
	require.ErrorIs(t, err, port.ErrPortNotFound)
}

// === Backing selection ===

func TestSelectBackingControlsConstruction(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int64](r, "out"))

	require.NoError(t, r.Access().SelectBacking("out",
		stream.FactoryKey{Kind: stream.StorageShared}))

	ch, err := r.Lookup("out")
	require.NoError(t, err)
	assert.Equal(t, stream.StorageShared, ch.Kind())
}

func TestSelectBackingUnknownKey(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int](r, "out"))

	// No instrumented shared backing is defined.
	err := r.Access().SelectBacking("out",
		stream.FactoryKey{Kind: stream.StorageShared, Instrumented: true})
	require.ErrorIs(t, err, port.ErrUnknownBacking)

	// The selection is rejected up front, so lookups still work.
	ch, err := r.Lookup("out")
	require.NoError(t, err)
	assert.Equal(t, stream.StorageHeap, ch.Kind())
}

func TestSelectBackingAfterBind(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int](r, "out"))

	_, err := r.Lookup("out")
	require.NoError(t, err)

	err = r.Access().SelectBacking("out", stream.FactoryKey{Kind: stream.StorageShared})
	require.ErrorIs(t, err, port.ErrAlreadyBound)
}

func TestSelectInstrumentedBacking(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int](r, "out"))

	require.NoError(t, r.Access().SelectBacking("out",
		stream.FactoryKey{Kind: stream.StorageHeap, Instrumented: true}))

	ch, err := r.Lookup("out")
	require.NoError(t, err)

	// The decorated channel still serves typed ends.
	p, err := stream.AsProducer[int](ch)
	require.NoError(t, err)
	require.NoError(t, p.Push(8))
	assert.Equal(t, 1, ch.Len())
}

// === Peer links and adoption ===

func TestConnectRecordsPeer(t *testing.T) {
	r := port.New(fakeKernel{"src"})
	require.NoError(t, port.Declare[int](r, "out"))

	require.NoError(t, r.Access().Connect("out", fakeKernel{"dst"}, "in"))

	d, err := r.Access().Descriptor("out")
	require.NoError(t, err)
	peer, peerPort, ok := d.Peer()
	require.True(t, ok)
	assert.Equal(t, "dst", peer.Label())
	assert.Equal(t, "in", peerPort)

	err = r.Access().Connect("out", fakeKernel{"other"}, "in")
	require.ErrorIs(t, err, port.ErrAlreadyConnected)
}

func TestAdopt(t *testing.T) {
	r := port.New(fakeKernel{"dst"})
	require.NoError(t, port.Declare[int](r, "in"))

	shared := ring.New[int](4)
	require.NoError(t, r.Access().Adopt("in", shared))

	ch, err := r.Lookup("in")
	require.NoError(t, err)
	assert.True(t, ch == stream.Channel(shared), "lookup must serve the adopted channel")

	// Re-adopting the same channel is a no-op.
	require.NoError(t, r.Access().Adopt("in", shared))

	// A different channel is refused.
	err = r.Access().Adopt("in", ring.New[int](4))
	require.ErrorIs(t, err, port.ErrAlreadyBound)
}

func TestAdoptTypeMismatch(t *testing.T) {
	r := port.New(fakeKernel{"dst"})
	require.NoError(t, port.Declare[int](r, "in"))

	err := r.Access().Adopt("in", ring.New[string](4))
	require.ErrorIs(t, err, stream.ErrTypeMismatch)
}

// === Profile application ===

func TestApplyProfile(t *testing.T) {
	t.Run("fills empty profile", func(t *testing.T) {
		r := port.New(fakeKernel{"k"})
		r.Access().ApplyProfile(backing.Profile{Capacity: 9})
		require.NoError(t, port.Declare[int](r, "out"))

		ch, err := r.Lookup("out")
		require.NoError(t, err)
		assert.Equal(t, 9, ch.Cap())
	})

	t.Run("keeps explicit profile", func(t *testing.T) {
		r := port.New(fakeKernel{"k"}, port.WithProfile(backing.Profile{Capacity: 3}))
		r.Access().ApplyProfile(backing.Profile{Capacity: 9})
		require.NoError(t, port.Declare[int](r, "out"))

		ch, err := r.Lookup("out")
		require.NoError(t, err)
		assert.Equal(t, 3, ch.Cap())
	})
}
