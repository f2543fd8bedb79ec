// Package graph owns the construction-phase topology of a pipeline: which
// kernels exist, how their ports are wired, whether the result is sound,
// and the final materialization of edges into live channels.
package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/port"
	"github.com/aretw0/furrow/pkg/stream"
)

// ErrDuplicateKernel is returned when two kernels share a label.
var ErrDuplicateKernel = errors.New("duplicate kernel label")

// ErrUnconnectedPort is reported by Validate for ports without a peer.
var ErrUnconnectedPort = errors.New("unconnected port")

// ErrNoRoots is reported by Validate when every kernel has connected
// inputs, leaving the traversal nowhere to start.
var ErrNoRoots = errors.New("graph has no source kernels")

// ErrUnreachable is reported by Validate when kernels cannot be reached
// from the sources.
var ErrUnreachable = errors.New("kernels unreachable from sources")

// Edge is one directed connection between two kernel ports.
type Edge struct {
	Src     kernel.Kernel
	SrcPort string
	Dst     kernel.Kernel
	DstPort string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.Src.Label(), e.SrcPort, e.Dst.Label(), e.DstPort)
}

// Map is the wiring manager of one pipeline. Kernels are added, ports
// connected, the topology validated and finally materialized into live
// channels. A Map is built by a single goroutine.
type Map struct {
	kernels []kernel.Kernel
	byLabel map[string]kernel.Kernel
	edges   []Edge
}

// New creates an empty map.
func New() *Map {
	return &Map{byLabel: make(map[string]kernel.Kernel)}
}

// Add registers a kernel. Adding the same kernel again is a no-op; a
// different kernel under a taken label fails with ErrDuplicateKernel.
func (m *Map) Add(k kernel.Kernel) error {
	if existing, ok := m.byLabel[k.Label()]; ok {
		if existing == k {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrDuplicateKernel, k.Label())
	}
	m.byLabel[k.Label()] = k
	m.kernels = append(m.kernels, k)
	return nil
}

// Kernel returns the kernel registered under label.
func (m *Map) Kernel(label string) (kernel.Kernel, bool) {
	k, ok := m.byLabel[label]
	return k, ok
}

// Kernels returns the kernels in registration order.
func (m *Map) Kernels() []kernel.Kernel { return m.kernels }

// Edges returns the connections in creation order.
func (m *Map) Edges() []Edge { return m.edges }

// Connect wires src's named output port to dst's named input port, adding
// either kernel if it is not yet known. The two ports must carry the same
// element tag; mismatches fail with stream.ErrTypeMismatch here, before
// anything runs. Each port accepts exactly one connection.
func (m *Map) Connect(src kernel.Kernel, srcPort string, dst kernel.Kernel, dstPort string) error {
	if err := m.Add(src); err != nil {
		return err
	}
	if err := m.Add(dst); err != nil {
		return err
	}

	sd, err := src.Out().Access().Descriptor(srcPort)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", src.Label(), srcPort, err)
	}
	dd, err := dst.In().Access().Descriptor(dstPort)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", dst.Label(), dstPort, err)
	}

	if sd.Tag() != dd.Tag() {
		return fmt.Errorf("%w: %s.%s sends %s, %s.%s expects %s",
			stream.ErrTypeMismatch,
			src.Label(), srcPort, sd.Tag(),
			dst.Label(), dstPort, dd.Tag())
	}

	// Check both ends before recording either, so a failure cannot leave a
	// half-wired edge.
	if peer, peerPort, ok := sd.Peer(); ok {
		return fmt.Errorf("%w: %s.%s already feeds %s.%s",
			port.ErrAlreadyConnected, src.Label(), srcPort, peer.Label(), peerPort)
	}
	if peer, peerPort, ok := dd.Peer(); ok {
		return fmt.Errorf("%w: %s.%s already fed by %s.%s",
			port.ErrAlreadyConnected, dst.Label(), dstPort, peer.Label(), peerPort)
	}

	if err := src.Out().Access().Connect(srcPort, dst, dstPort); err != nil {
		return err
	}
	if err := dst.In().Access().Connect(dstPort, src, srcPort); err != nil {
		return err
	}

	m.edges = append(m.edges, Edge{Src: src, SrcPort: srcPort, Dst: dst, DstPort: dstPort})
	return nil
}

// Link is the single-port shorthand: it connects src to dst through their
// sole ports. Registries holding zero or several ports fail with
// port.ErrPortCardinality.
func (m *Map) Link(src, dst kernel.Kernel) error {
	sd, err := src.Out().Access().Single()
	if err != nil {
		return fmt.Errorf("%s outputs: %w", src.Label(), err)
	}
	dd, err := dst.In().Access().Single()
	if err != nil {
		return fmt.Errorf("%s inputs: %w", dst.Label(), err)
	}
	return m.Connect(src, sd.Name(), dst, dd.Name())
}

// Roots returns the kernels with no connected input ports, in registration
// order. They are where traversal and execution begin.
func (m *Map) Roots() []kernel.Kernel {
	var roots []kernel.Kernel
	for _, k := range m.kernels {
		connected := false
		for d := range k.In().All() {
			if _, _, ok := d.Peer(); ok {
				connected = true
				break
			}
		}
		if !connected {
			roots = append(roots, k)
		}
	}
	return roots
}
