package manifest

import (
	"fmt"
	"strings"

	"github.com/aretw0/furrow"
	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/stream"
)

// Build compiles a manifest into a runnable pipeline using the given
// builders. Options are forwarded to the pipeline after the manifest's
// own settings, so callers can still attach loggers, metrics or tracers.
func Build(m *Manifest, builders *Builders, opts ...furrow.Option) (*furrow.Pipeline, error) {
	var base []furrow.Option
	if m.Capacity > 0 {
		base = append(base, furrow.WithCapacity(m.Capacity))
	}
	p := furrow.New(m.Name, append(base, opts...)...)

	byLabel := make(map[string]kernel.Kernel, len(m.Kernels))
	for _, spec := range m.Kernels {
		if _, dup := byLabel[spec.Label]; dup {
			return nil, fmt.Errorf("duplicate kernel label %q", spec.Label)
		}
		k, err := builders.Build(spec)
		if err != nil {
			return nil, err
		}
		byLabel[spec.Label] = k
		if err := p.Add(k); err != nil {
			return nil, err
		}
	}

	for _, e := range m.Edges {
		src, srcPort, err := resolve(byLabel, e.From, true)
		if err != nil {
			return nil, err
		}
		dst, dstPort, err := resolve(byLabel, e.To, false)
		if err != nil {
			return nil, err
		}
		if err := p.Connect(src, srcPort, dst, dstPort); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
		if err := selectBacking(src, srcPort, e); err != nil {
			return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
		}
	}
	return p, nil
}

// resolve turns an endpoint like "kernel.port" into its kernel and port
// name. A bare "kernel" resolves through the side's only port.
func resolve(byLabel map[string]kernel.Kernel, endpoint string, out bool) (kernel.Kernel, string, error) {
	label, port, _ := strings.Cut(endpoint, ".")
	k, ok := byLabel[label]
	if !ok {
		return nil, "", fmt.Errorf("%w: unknown kernel %q in %q", ErrBadEndpoint, label, endpoint)
	}
	if port == "" {
		reg := k.In()
		if out {
			reg = k.Out()
		}
		d, err := reg.Access().Single()
		if err != nil {
			return nil, "", fmt.Errorf("endpoint %q: %w", endpoint, err)
		}
		port = d.Name()
	}
	return k, port, nil
}

// selectBacking applies an edge's storage and instrumentation choice to
// the source port, whose factory builds the channel at materialization.
func selectBacking(src kernel.Kernel, srcPort string, e Edge) error {
	if e.Storage == "" && !e.Instrumented {
		return nil
	}
	access := src.Out().Access()
	d, err := access.Descriptor(srcPort)
	if err != nil {
		return err
	}
	key := d.Selection()
	if e.Storage != "" {
		kind, err := stream.ParseStorageKind(e.Storage)
		if err != nil {
			return err
		}
		key.Kind = kind
	}
	key.Instrumented = e.Instrumented
	return access.SelectBacking(srcPort, key)
}
