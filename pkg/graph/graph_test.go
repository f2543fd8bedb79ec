package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/graph"
	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
)

type testKernel struct{ kernel.Base }

func (k *testKernel) Run(ctx context.Context) error { return nil }

// newKernel builds a kernel with int ports named by ins and outs.
func newKernel(t *testing.T, label string, ins, outs []string) *testKernel {
	t.Helper()
	k := &testKernel{}
	k.Init(k, label)
	for _, name := range ins {
		require.NoError(t, port.Declare[int](k.In(), name))
	}
	for _, name := range outs {
		require.NoError(t, port.Declare[int](k.Out(), name))
	}
	return k
}

// === Adding kernels ===

func TestAdd(t *testing.T) {
	m := graph.New()
	a := newKernel(t, "a", nil, []string{"out"})

	require.NoError(t, m.Add(a))
	require.NoError(t, m.Add(a), "re-adding the same kernel is a no-op")
	assert.Len(t, m.Kernels(), 1)

	other := newKernel(t, "a", nil, nil)
	err := m.Add(other)
	require.ErrorIs(t, err, graph.ErrDuplicateKernel)
}

// === Connecting ports ===

func TestConnect(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})
	dst := newKernel(t, "dst", []string{"in"}, nil)

	require.NoError(t, m.Connect(src, "out", dst, "in"))

	require.Len(t, m.Edges(), 1)
	assert.Equal(t, "src.out -> dst.in", m.Edges()[0].String())
	assert.Len(t, m.Kernels(), 2, "connect must add unknown kernels")

	// Peers recorded on both descriptors.
	sd, err := src.Out().Access().Descriptor("out")
	require.NoError(t, err)
	peer, peerPort, ok := sd.Peer()
	require.True(t, ok)
	assert.Equal(t, "dst", peer.Label())
	assert.Equal(t, "in", peerPort)

	dd, err := dst.In().Access().Descriptor("in")
	require.NoError(t, err)
	peer, peerPort, ok = dd.Peer()
	require.True(t, ok)
	assert.Equal(t, "src", peer.Label())
	assert.Equal(t, "out", peerPort)
}

func TestConnectUnknownPort(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})
	dst := newKernel(t, "dst", []string{"in"}, nil)

	err := m.Connect(src, "missing", dst, "in")
	require.ErrorIs(t, err, port.ErrPortNotFound)
}

func TestConnectTypeMismatch(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})

	dst := &testKernel{}
	dst.Init(dst, "dst")
	require.NoError(t, port.Declare[string](dst.In(), "in"))

	err := m.Connect(src, "out", dst, "in")
	require.ErrorIs(t, err, stream.ErrTypeMismatch,
		"tag disagreement must surface at wiring time")
	assert.Empty(t, m.Edges())
}

func TestConnectTwice(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})
	dst := newKernel(t, "dst", []string{"in"}, nil)
	other := newKernel(t, "other", []string{"in"}, nil)

	require.NoError(t, m.Connect(src, "out", dst, "in"))

	err := m.Connect(src, "out", other, "in")
	require.ErrorIs(t, err, port.ErrAlreadyConnected)
	assert.Len(t, m.Edges(), 1)
}

func TestLink(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})
	dst := newKernel(t, "dst", []string{"in"}, nil)

	require.NoError(t, m.Link(src, dst))
	require.Len(t, m.Edges(), 1)

	wide := newKernel(t, "wide", nil, []string{"a", "b"})
	sink := newKernel(t, "sink", []string{"in"}, nil)
	err := m.Link(wide, sink)
	require.ErrorIs(t, err, port.ErrPortCardinality,
		"single-port shorthand needs exactly one port per side")
}

// === Traversal ===

func TestRootsAndBFS(t *testing.T) {
	m := graph.New()
	a := newKernel(t, "a", nil, []string{"b", "c"})
	b := newKernel(t, "b", []string{"in"}, []string{"out"})
	c := newKernel(t, "c", []string{"in"}, []string{"out"})
	d := newKernel(t, "d", []string{"x", "y"}, nil)

	require.NoError(t, m.Connect(a, "b", b, "in"))
	require.NoError(t, m.Connect(a, "c", c, "in"))
	require.NoError(t, m.Connect(b, "out", d, "x"))
	require.NoError(t, m.Connect(c, "out", d, "y"))

	roots := m.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].Label())

	var order []string
	require.NoError(t, graph.BFS(roots, func(k kernel.Kernel) error {
		order = append(order, k.Label())
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c", "d"}, order,
		"breadth first, every kernel exactly once")
}

// === Validation ===

func TestValidate(t *testing.T) {
	t.Run("sound pipeline", func(t *testing.T) {
		m := graph.New()
		src := newKernel(t, "src", nil, []string{"out"})
		dst := newKernel(t, "dst", []string{"in"}, nil)
		require.NoError(t, m.Connect(src, "out", dst, "in"))

		require.NoError(t, m.Validate())
	})

	t.Run("unconnected ports are all reported", func(t *testing.T) {
		m := graph.New()
		src := newKernel(t, "src", nil, []string{"out", "spare"})
		dst := newKernel(t, "dst", []string{"in", "extra"}, nil)
		require.NoError(t, m.Connect(src, "out", dst, "in"))

		err := m.Validate()
		require.ErrorIs(t, err, graph.ErrUnconnectedPort)
		assert.Contains(t, err.Error(), "src.spare")
		assert.Contains(t, err.Error(), "dst.extra")
	})

	t.Run("unreachable kernels", func(t *testing.T) {
		m := graph.New()
		src := newKernel(t, "src", nil, []string{"out"})
		dst := newKernel(t, "dst", []string{"in"}, nil)
		require.NoError(t, m.Connect(src, "out", dst, "in"))

		// A two-kernel cycle is never reached from the sources.
		b := newKernel(t, "b", []string{"in"}, []string{"out"})
		c := newKernel(t, "c", []string{"in"}, []string{"out"})
		require.NoError(t, m.Connect(b, "out", c, "in"))
		require.NoError(t, m.Connect(c, "out", b, "in"))

		err := m.Validate()
		require.ErrorIs(t, err, graph.ErrUnreachable)
	})

	t.Run("cycle-only graph has no roots", func(t *testing.T) {
		m := graph.New()
		b := newKernel(t, "b", []string{"in"}, []string{"out"})
		c := newKernel(t, "c", []string{"in"}, []string{"out"})
		require.NoError(t, m.Connect(b, "out", c, "in"))
		require.NoError(t, m.Connect(c, "out", b, "in"))

		err := m.Validate()
		require.ErrorIs(t, err, graph.ErrNoRoots)
	})

	t.Run("empty graph is valid", func(t *testing.T) {
		require.NoError(t, graph.New().Validate())
	})
}

// === Materialization ===

func TestMaterializeSharesOneChannel(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})
	dst := newKernel(t, "dst", []string{"in"}, nil)
	require.NoError(t, m.Connect(src, "out", dst, "in"))

	require.NoError(t, m.Materialize())

	srcCh, err := src.Out().Lookup("out")
	require.NoError(t, err)
	dstCh, err := dst.In().Lookup("in")
	require.NoError(t, err)
	assert.True(t, srcCh == dstCh, "both endpoints must share one channel")

	// Elements pushed at the source arrive at the destination.
	p, err := stream.AsProducer[int](srcCh)
	require.NoError(t, err)
	c, err := stream.AsConsumer[int](dstCh)
	require.NoError(t, err)
	require.NoError(t, p.Push(17))
	v, err := c.Pop()
	require.NoError(t, err)
	assert.Equal(t, 17, v)

	require.NoError(t, m.Materialize(), "re-materializing is a no-op")
	again, err := dst.In().Lookup("in")
	require.NoError(t, err)
	assert.True(t, again == dstCh)
}

func TestMaterializeHonorsSelection(t *testing.T) {
	m := graph.New()
	src := newKernel(t, "src", nil, []string{"out"})
	dst := newKernel(t, "dst", []string{"in"}, nil)
	require.NoError(t, m.Connect(src, "out", dst, "in"))

	require.NoError(t, src.Out().Access().SelectBacking("out",
		stream.FactoryKey{Kind: stream.StorageShared}))

	require.NoError(t, m.Materialize())

	ch, err := dst.In().Lookup("in")
	require.NoError(t, err)
	assert.Equal(t, stream.StorageShared, ch.Kind(),
		"the source port's selection decides the edge backing")
}
