package kernel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
)

type passthrough struct{ kernel.Base }

func (p *passthrough) Run(ctx context.Context) error { return nil }

func TestInitWiresRegistries(t *testing.T) {
	p := &passthrough{}
	p.Init(p, "pass")

	assert.Equal(t, "pass", p.Label())
	require.NotNil(t, p.In())
	require.NotNil(t, p.Out())
	assert.False(t, p.In().HasPorts())
}

func TestOwnerIsOuterKernel(t *testing.T) {
	p := &passthrough{}
	p.Init(p, "pass")
	require.NoError(t, port.Declare[int](p.Out(), "out"))

	d, err := p.Out().Access().Descriptor("out")
	require.NoError(t, err)

	// The descriptor's owner must be the full kernel, not the embedded Base.
	k, ok := d.Owner().(kernel.Kernel)
	require.True(t, ok, "owner must satisfy kernel.Kernel")
	assert.Equal(t, "pass", k.Label())
}

func TestWithOutputBlock(t *testing.T) {
	buf := make([]int, 12)
	p := &passthrough{}
	p.Init(p, "scatterer", kernel.WithOutputBlock(stream.BlockOf(buf)))

	require.NoError(t, port.DeclarePartitioned[int](p.Out(), 4))
	assert.Equal(t, 4, p.Out().Count())
	assert.Equal(t, 0, p.In().Count(), "block must apply to the output side only")
}

func TestWithProfile(t *testing.T) {
	p := &passthrough{}
	p.Init(p, "pass", kernel.WithProfile(backing.Profile{Capacity: 2}))
	require.NoError(t, port.Declare[int](p.In(), "in"))

	ch, err := p.In().Lookup("in")
	require.NoError(t, err)
	assert.Equal(t, 2, ch.Cap())
}
