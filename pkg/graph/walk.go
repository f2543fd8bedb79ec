package graph

import (
	"errors"
	"fmt"

	"github.com/aretw0/furrow/pkg/kernel"
)

// BFS walks the graph breadth-first from the given roots, following the
// peer links recorded on output descriptors, and calls visit once per
// reached kernel. A visit error stops the walk.
func BFS(roots []kernel.Kernel, visit func(kernel.Kernel) error) error {
	visited := make(map[string]bool)
	queue := append([]kernel.Kernel(nil), roots...)

	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]

		if visited[k.Label()] {
			continue
		}
		visited[k.Label()] = true

		if err := visit(k); err != nil {
			return err
		}

		for d := range k.Out().All() {
			peer, _, ok := d.Peer()
			if !ok {
				continue
			}
			next, ok := peer.(kernel.Kernel)
			if !ok {
				continue
			}
			if !visited[next.Label()] {
				queue = append(queue, next)
			}
		}
	}
	return nil
}

// Validate sweeps the topology before execution: every port of every
// kernel must be connected, the graph must have at least one source, and
// every kernel must be reachable from the sources. All findings are
// reported together.
func (m *Map) Validate() error {
	var errs []error

	for _, k := range m.kernels {
		for d := range k.In().All() {
			if _, _, ok := d.Peer(); !ok {
				errs = append(errs, fmt.Errorf("%w: %s.%s (input)", ErrUnconnectedPort, k.Label(), d.Name()))
			}
		}
		for d := range k.Out().All() {
			if _, _, ok := d.Peer(); !ok {
				errs = append(errs, fmt.Errorf("%w: %s.%s (output)", ErrUnconnectedPort, k.Label(), d.Name()))
			}
		}
	}

	if len(m.kernels) > 0 {
		roots := m.Roots()
		if len(roots) == 0 {
			errs = append(errs, ErrNoRoots)
		} else {
			reached := 0
			_ = BFS(roots, func(kernel.Kernel) error {
				reached++
				return nil
			})
			if reached != len(m.kernels) {
				errs = append(errs, fmt.Errorf("%w: reached %d of %d", ErrUnreachable, reached, len(m.kernels)))
			}
		}
	}

	return errors.Join(errs...)
}

// Materialize builds one channel per edge and installs it on both
// endpoints. The channel comes from the source port's selected factory.
// Materializing twice is a no-op: the per-port once cells keep the first
// channel.
func (m *Map) Materialize() error {
	for _, e := range m.edges {
		ch, err := e.Src.Out().Lookup(e.SrcPort)
		if err != nil {
			return fmt.Errorf("materialize %s: %w", e, err)
		}
		if err := e.Dst.In().Access().Adopt(e.DstPort, ch); err != nil {
			return fmt.Errorf("materialize %s: %w", e, err)
		}
	}
	return nil
}
