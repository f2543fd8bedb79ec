package port

import (
	"fmt"

	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/stream"
)

// Access is the privileged surface graph tooling works through. Kernel code
// reads and writes elements via Lookup and the typed stream ends; mappers,
// walkers and the runtime use an Access to inspect descriptors, choose
// backings, record peers and install shared channels.
type Access struct {
	r *Registry
}

// Access returns the privileged handle for this registry.
func (r *Registry) Access() Access { return Access{r: r} }

// Descriptor returns the named port's descriptor.
func (a Access) Descriptor(name string) (*Descriptor, error) {
	d, ok := a.r.ports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
	}
	return d, nil
}

// Single returns the registry's only descriptor. Fails with
// ErrPortCardinality unless exactly one port is declared.
func (a Access) Single() (*Descriptor, error) {
	if len(a.r.order) != 1 {
		return nil, fmt.Errorf("%w: have %d", ErrPortCardinality, len(a.r.order))
	}
	return a.r.ports[a.r.order[0]], nil
}

// SelectBacking picks the storage kind and instrumentation for a declared
// port, validated against its factory table.
func (a Access) SelectBacking(name string, key stream.FactoryKey) error {
	d, err := a.Descriptor(name)
	if err != nil {
		return err
	}
	return d.SelectBacking(key)
}

// Connect records the far end of a port. One peer per port.
func (a Access) Connect(name string, peer Owner, peerPort string) error {
	d, err := a.Descriptor(name)
	if err != nil {
		return err
	}
	return d.connect(peer, peerPort)
}

// Adopt installs an externally constructed channel on the named port. The
// same once cell that serves Lookup guards it, so whichever side arrives
// first wins and the other observes the same channel.
func (a Access) Adopt(name string, ch stream.Channel) error {
	d, err := a.Descriptor(name)
	if err != nil {
		return err
	}
	return d.adopt(ch)
}

// ApplyProfile installs a backing profile on a registry that was built
// without one. A registry keeps the profile it was constructed with.
func (a Access) ApplyProfile(p backing.Profile) {
	if a.r.profile == (backing.Profile{}) {
		a.r.profile = p
	}
}
