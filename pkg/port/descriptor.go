package port

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aretw0/furrow/pkg/stream"
	"github.com/aretw0/furrow/pkg/typetag"
)

// Owner is the kernel-side identity a registry carries. Kernels satisfy it;
// the registry never needs more than a label from its owner.
type Owner interface {
	Label() string
}

// Descriptor carries everything needed to materialize one port's channel:
// the element tag, the owner back-reference, the optional pre-allocated
// sub-view, the factory table populated at declaration, the current backing
// selection and, once the graph is wired, the peer link and the bound
// channel.
//
// Everything but the binding follows the construction-phase contract: one
// goroutine mutates, nobody races. The binding itself goes through a once
// cell so that racing lookups during execution observe exactly one
// construction.
type Descriptor struct {
	name  string
	tag   typetag.Tag
	owner Owner

	view   *stream.Block
	offset int
	count  int

	factories stream.FactoryTable
	selection stream.FactoryKey

	peer     Owner
	peerPort string

	once  sync.Once
	done  atomic.Bool
	ch    stream.Channel
	chErr error
}

// Name is the port's name within its registry.
func (d *Descriptor) Name() string { return d.name }

// Tag is the element type recorded at declaration. Immutable.
func (d *Descriptor) Tag() typetag.Tag { return d.tag }

// Owner is the kernel the port belongs to.
func (d *Descriptor) Owner() Owner { return d.owner }

// View reports the port's pre-allocated sub-range. ok is false for ports
// that allocate their own storage. Offset and count are in elements.
func (d *Descriptor) View() (block *stream.Block, offset, count int, ok bool) {
	return d.view, d.offset, d.count, d.view != nil
}

// Selection is the backing the next lookup would construct.
func (d *Descriptor) Selection() stream.FactoryKey { return d.selection }

// Peer reports the far end recorded by the graph, if any.
func (d *Descriptor) Peer() (Owner, string, bool) {
	return d.peer, d.peerPort, d.peer != nil
}

// Bound reports the constructed channel without constructing one.
func (d *Descriptor) Bound() (stream.Channel, bool) {
	if !d.done.Load() || d.chErr != nil {
		return nil, false
	}
	return d.ch, true
}

// SelectBacking picks the storage kind and instrumentation the port binds
// with. Construction-phase only. Fails with ErrUnknownBacking when the
// factory table has no entry for key, and with ErrAlreadyBound once the
// channel exists.
func (d *Descriptor) SelectBacking(key stream.FactoryKey) error {
	if d.done.Load() {
		return fmt.Errorf("%w: %q", ErrAlreadyBound, d.name)
	}
	if _, ok := d.factories[key]; !ok {
		return fmt.Errorf("%w: %s on %q", ErrUnknownBacking, key, d.name)
	}
	d.selection = key
	return nil
}

// channel returns the port's channel, constructing it on first use through
// the selected factory. The outcome, error included, is cached: a port
// binds at most once.
func (d *Descriptor) channel() (stream.Channel, error) {
	d.once.Do(func() {
		defer d.done.Store(true)
		f, ok := d.factories[d.selection]
		if !ok {
			d.chErr = fmt.Errorf("%w: %s on %q", ErrUnknownBacking, d.selection, d.name)
			return
		}
		d.ch, d.chErr = f()
	})
	return d.ch, d.chErr
}

// adopt installs an externally built channel, going through the same once
// cell as channel so whichever side arrives first wins. Re-adopting the
// channel a port is already bound to is a no-op.
func (d *Descriptor) adopt(ch stream.Channel) error {
	if ch.Tag() != d.tag {
		return fmt.Errorf("%w: channel carries %s, port %q expects %s",
			stream.ErrTypeMismatch, ch.Tag(), d.name, d.tag)
	}
	adopted := false
	d.once.Do(func() {
		defer d.done.Store(true)
		d.ch = ch
		adopted = true
	})
	if adopted || (d.chErr == nil && d.ch == ch) {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrAlreadyBound, d.name)
}

// connect records the far end. One peer per port.
func (d *Descriptor) connect(peer Owner, peerPort string) error {
	if d.peer != nil {
		return fmt.Errorf("%w: %q already wired to %s.%s",
			ErrAlreadyConnected, d.name, d.peer.Label(), d.peerPort)
	}
	d.peer = peer
	d.peerPort = peerPort
	return nil
}
