package port_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
	"github.com/aretw0/furrow/pkg/typetag"
)

type fakeKernel struct{ label string }

func (f fakeKernel) Label() string { return f.label }

// === Declaration ===

func TestDeclare(t *testing.T) {
	r := port.New(fakeKernel{"k"})

	require.NoError(t, port.Declare[int](r, "in"))
	require.True(t, r.HasPorts())
	require.Equal(t, 1, r.Count())

	tag, err := r.TypeOf("in")
	require.NoError(t, err)
	assert.Equal(t, typetag.Of[int](), tag)
}

func TestDeclareDuplicateKeepsFirst(t *testing.T) {
	r := port.New(fakeKernel{"k"})

	require.NoError(t, port.Declare[int](r, "in"))
	err := port.Declare[string](r, "in")
	require.ErrorIs(t, err, port.ErrDuplicateName)

	// The first declaration survives untouched.
	require.Equal(t, 1, r.Count())
	tag, err := r.TypeOf("in")
	require.NoError(t, err)
	assert.Equal(t, typetag.Of[int](), tag, "first binding must stay intact")
}

func TestTypeOfUnknown(t *testing.T) {
	r := port.New(fakeKernel{"k"})

	_, err := r.TypeOf("nope")
	require.ErrorIs(t, err, port.ErrPortNotFound)
}

func TestEmptyRegistry(t *testing.T) {
	r := port.New(fakeKernel{"k"})

	assert.False(t, r.HasPorts())
	assert.Equal(t, 0, r.Count())
	assert.False(t, r.Cursor().Next())
}

// === Partitioned declaration ===

func TestDeclarePartitionedSplitsBlock(t *testing.T) {
	buf := make([]int, 100)
	r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(buf)))

	require.NoError(t, port.DeclarePartitioned[int](r, 3))
	require.Equal(t, 3, r.Count())

	wantCounts := []int{33, 33, 34}
	wantOffsets := []int{0, 33, 66}

	c := r.Cursor()
	for i := 0; c.Next(); i++ {
		d := c.Descriptor()
		assert.Equal(t, wantCounts[i], func() int { _, _, n, _ := d.View(); return n }(),
			"port %q count", d.Name())
		assert.Equal(t, wantOffsets[i], func() int { _, off, _, _ := d.View(); return off }(),
			"port %q offset", d.Name())
	}

	// Names are stringified indices in order.
	names := make([]string, 0, 3)
	for d := range r.All() {
		names = append(names, d.Name())
	}
	assert.Equal(t, []string{"0", "1", "2"}, names)
}

func TestDeclarePartitionedCountsSum(t *testing.T) {
	for _, tc := range []struct {
		total, n int
	}{
		{100, 3}, {100, 7}, {10, 10}, {64, 1}, {5, 4},
	} {
		buf := make([]int, tc.total)
		r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(buf)))
		require.NoError(t, port.DeclarePartitioned[int](r, tc.n))

		sum := 0
		last := 0
		for d := range r.All() {
			_, _, n, ok := d.View()
			require.True(t, ok)
			sum += n
			last = n
		}
		assert.Equal(t, tc.total, sum, "total=%d n=%d", tc.total, tc.n)
		assert.Equal(t, tc.total/tc.n+tc.total%tc.n, last, "last port absorbs the remainder")
	}
}

func TestDeclarePartitionedPreconditions(t *testing.T) {
	t.Run("no block", func(t *testing.T) {
		r := port.New(fakeKernel{"k"})
		err := port.DeclarePartitioned[int](r, 3)
		require.ErrorIs(t, err, port.ErrPartitionPrecondition)
		assert.Equal(t, 0, r.Count())
	})

	t.Run("zero partitions", func(t *testing.T) {
		r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(make([]int, 10))))
		err := port.DeclarePartitioned[int](r, 0)
		require.ErrorIs(t, err, port.ErrPartitionPrecondition)
		assert.Equal(t, 0, r.Count())
	})

	t.Run("negative partitions", func(t *testing.T) {
		r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(make([]int, 10))))
		err := port.DeclarePartitioned[int](r, -2)
		require.ErrorIs(t, err, port.ErrPartitionPrecondition)
	})

	t.Run("element type mismatch", func(t *testing.T) {
		r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(make([]int, 10))))
		err := port.DeclarePartitioned[float64](r, 2)
		require.ErrorIs(t, err, port.ErrPartitionPrecondition)
		assert.Equal(t, 0, r.Count())
	})

	t.Run("block smaller than partition count", func(t *testing.T) {
		r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(make([]int, 2))))
		err := port.DeclarePartitioned[int](r, 3)
		require.ErrorIs(t, err, port.ErrPartitionPrecondition)
	})

	t.Run("name collision inserts nothing", func(t *testing.T) {
		r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(make([]int, 10))))
		require.NoError(t, port.Declare[int](r, "1"))

		err := port.DeclarePartitioned[int](r, 3)
		require.ErrorIs(t, err, port.ErrDuplicateName)
		assert.Equal(t, 1, r.Count(), "failed partitioning must not leave partial state")
	})
}

func TestDeclarePartitionedDefaultsToSharedView(t *testing.T) {
	buf := make([]int, 9)
	r := port.New(fakeKernel{"k"}, port.WithBlock(stream.BlockOf(buf)))
	require.NoError(t, port.DeclarePartitioned[int](r, 3))

	d, err := r.Access().Descriptor("1")
	require.NoError(t, err)
	assert.Equal(t, stream.FactoryKey{Kind: stream.StorageShared}, d.Selection())

	ch, err := r.Lookup("1")
	require.NoError(t, err)
	assert.Equal(t, 3, ch.Cap())

	p, err := stream.AsProducer[int](ch)
	require.NoError(t, err)
	require.NoError(t, p.Push(41))
	assert.Equal(t, 41, buf[3], "partition 1 must write at element offset 3")
}

// === Lookup and binding ===

func TestLookupUnknown(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	_, err := r.Lookup("ghost")
	require.ErrorIs(t, err, port.ErrPortNotFound)
}

func TestLookupConstructsOnce(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int](r, "out"))

	first, err := r.Lookup("out")
	require.NoError(t, err)
	second, err := r.Lookup("out")
	require.NoError(t, err)
	assert.True(t, first == second, "lookups must return the same channel instance")
}

func TestLookupConstructsOnceUnderRace(t *testing.T) {
	r := port.New(fakeKernel{"k"})
	require.NoError(t, port.Declare[int](r, "out"))

	const goroutines = 16
	chans := make([]stream.Channel, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ch, err := r.Lookup("out")
			if err != nil {
				t.Error(err)
				return
			}
			chans[slot] = ch
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		require.True(t, chans[i] == chans[0], "racing lookups must agree on one channel")
	}
}

func TestLookupHonorsDefaultBacking(t *testing.T) {
	r := port.New(fakeKernel{"k"}, port.WithProfile(backing.Profile{Capacity: 5}))
	require.NoError(t, port.Declare[int](r, "out"))

	ch, err := r.Lookup("out")
	require.NoError(t, err)
	assert.Equal(t, stream.StorageHeap, ch.Kind())
	assert.Equal(t, 5, ch.Cap())
}
