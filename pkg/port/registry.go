// Package port implements the typed port registry at the heart of a furrow
// kernel: named, typed declarations made while the graph is built, resolved
// into live channels exactly once when execution starts.
//
// A registry lives in two phases. During construction a single goroutine
// declares ports, selects backings and records connections; none of that is
// synchronized. During execution the registry is effectively read-only:
// lookups are safe from any goroutine and the first one to touch a port
// constructs its channel through a once cell.
package port

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/aretw0/furrow/pkg/backing"
	"github.com/aretw0/furrow/pkg/stream"
	"github.com/aretw0/furrow/pkg/typetag"
)

// Registry is the ordered set of named, typed ports owned by one kernel.
type Registry struct {
	owner   Owner
	block   *stream.Block
	profile backing.Profile
	ports   map[string]*Descriptor
	order   []string
}

// Option configures a registry at construction.
type Option func(*Registry)

// WithBlock hands the registry a borrowed pre-allocated view to split in
// partitioned declarations. The caller keeps ownership of the memory.
func WithBlock(b *stream.Block) Option {
	return func(r *Registry) { r.block = b }
}

// WithProfile sets the backing profile factory tables read at construction.
func WithProfile(p backing.Profile) Option {
	return func(r *Registry) { r.profile = p }
}

// New creates an empty registry owned by owner.
func New(owner Owner, opts ...Option) *Registry {
	r := &Registry{
		owner: owner,
		ports: make(map[string]*Descriptor),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BackingProfile implements backing.Source for the registry's factories.
func (r *Registry) BackingProfile() backing.Profile { return r.profile }

// Owner is the kernel this registry belongs to.
func (r *Registry) Owner() Owner { return r.owner }

// Block is the registry's pre-allocated view, nil when none was attached.
func (r *Registry) Block() *stream.Block { return r.block }

// Declare registers a new port of element type T under name. The port's
// factory table is populated immediately; its channel is not constructed
// until the first lookup. Fails with ErrDuplicateName when the name is
// taken, leaving the registry unchanged.
func Declare[T any](r *Registry, name string) error {
	if _, exists := r.ports[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	d := &Descriptor{
		name:      name,
		tag:       typetag.Of[T](),
		owner:     r.owner,
		selection: stream.FactoryKey{Kind: stream.StorageHeap},
		factories: backing.TableFor[T](r, nil, 0, 0, r.ownerLabel(), name),
	}
	r.insert(d)
	return nil
}

// DeclarePartitioned splits the registry's pre-allocated block across n
// ports named "0" through "n-1". Each port receives total/n elements and
// the last one also absorbs the remainder, so the counts always sum to the
// block's total. Partitioned ports default to the shared backing, which
// wraps their sub-view in place.
//
// Fails with ErrPartitionPrecondition when no block is attached, n is not
// positive, the block holds fewer than n elements, or T is not the block's
// element type; and with ErrDuplicateName when a generated name is already
// declared. Failures leave the registry unchanged.
func DeclarePartitioned[T any](r *Registry, n int) error {
	if r.block == nil {
		return fmt.Errorf("%w: no pre-allocated block", ErrPartitionPrecondition)
	}
	if n <= 0 {
		return fmt.Errorf("%w: partition count %d", ErrPartitionPrecondition, n)
	}
	if r.block.Tag() != typetag.Of[T]() {
		return fmt.Errorf("%w: block holds %s, not %s",
			ErrPartitionPrecondition, r.block.Tag(), typetag.Of[T]())
	}
	total := r.block.Elems()
	if total < n {
		return fmt.Errorf("%w: %d elements across %d ports", ErrPartitionPrecondition, total, n)
	}
	for i := 0; i < n; i++ {
		if _, exists := r.ports[strconv.Itoa(i)]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateName, strconv.Itoa(i))
		}
	}

	per := total / n
	for i := 0; i < n; i++ {
		count := per
		if i == n-1 {
			count += total % n
		}
		name := strconv.Itoa(i)
		d := &Descriptor{
			name:      name,
			tag:       typetag.Of[T](),
			owner:     r.owner,
			view:      r.block,
			offset:    i * per,
			count:     count,
			selection: stream.FactoryKey{Kind: stream.StorageShared},
			factories: backing.TableFor[T](r, r.block, i*per, count, r.ownerLabel(), name),
		}
		r.insert(d)
	}
	return nil
}

// TypeOf returns the element tag of a declared port.
func (r *Registry) TypeOf(name string) (typetag.Tag, error) {
	d, ok := r.ports[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrPortNotFound, name)
	}
	return d.tag, nil
}

// Lookup returns the live channel for a declared port, constructing it on
// first use through the selected factory and returning the same instance on
// every later call.
func (r *Registry) Lookup(name string) (stream.Channel, error) {
	d, ok := r.ports[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
	}
	return d.channel()
}

// HasPorts reports whether anything was declared.
func (r *Registry) HasPorts() bool { return len(r.ports) > 0 }

// Count is the number of declared ports.
func (r *Registry) Count() int { return len(r.ports) }

// All iterates the ports in declaration order.
func (r *Registry) All() iter.Seq[*Descriptor] {
	return func(yield func(*Descriptor) bool) {
		for _, name := range r.order {
			if !yield(r.ports[name]) {
				return
			}
		}
	}
}

func (r *Registry) insert(d *Descriptor) {
	r.ports[d.name] = d
	r.order = append(r.order, d.name)
}

func (r *Registry) ownerLabel() string {
	if r.owner == nil {
		return ""
	}
	return r.owner.Label()
}
