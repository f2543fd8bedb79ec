package manifest

import (
	"fmt"
	"os"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/kernels"
)

// BuilderFunc constructs a kernel from its manifest entry.
type BuilderFunc func(spec Kernel) (kernel.Kernel, error)

// Builders manages the available kernel builders.
type Builders struct {
	mu       sync.RWMutex
	builders map[string]BuilderFunc
}

// NewBuilders creates a new empty builder registry.
func NewBuilders() *Builders {
	return &Builders{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder to the registry.
// If a builder with the same name exists, it is overwritten.
func (b *Builders) Register(name string, fn BuilderFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builders[name] = fn
}

// Build looks up the builder named by spec.Uses and runs it.
func (b *Builders) Build(spec Kernel) (kernel.Kernel, error) {
	b.mu.RLock()
	fn, ok := b.builders[spec.Uses]
	b.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (kernel %q)", ErrUnknownBuilder, spec.Uses, spec.Label)
	}
	return fn(spec)
}

// Builtin returns a registry preloaded with the stock builders. The stock
// kernels stream ints:
//
//   - range: emits from..to inclusive, stepping by step (default 1)
//   - scale: multiplies every element by factor
//   - modfilter: keeps elements where v % divisor == remainder
//   - print: writes every element to stdout
//   - discard: consumes and drops everything
func Builtin() *Builders {
	b := NewBuilders()
	b.Register("range", buildRange)
	b.Register("scale", buildScale)
	b.Register("modfilter", buildModFilter)
	b.Register("print", buildPrint)
	b.Register("discard", buildDiscard)
	return b
}

// decodeParams maps a kernel entry's "with" block onto a params struct.
func decodeParams[T any](spec Kernel) (T, error) {
	var p T
	if err := mapstructure.Decode(spec.With, &p); err != nil {
		return p, fmt.Errorf("kernel %q: decode params: %w", spec.Label, err)
	}
	return p, nil
}

type rangeParams struct {
	From int `mapstructure:"from"`
	To   int `mapstructure:"to"`
	Step int `mapstructure:"step"`
}

func buildRange(spec Kernel) (kernel.Kernel, error) {
	p, err := decodeParams[rangeParams](spec)
	if err != nil {
		return nil, err
	}
	if p.Step == 0 {
		p.Step = 1
	}
	if p.Step < 0 {
		return nil, fmt.Errorf("kernel %q: step must be positive", spec.Label)
	}
	next := p.From
	return kernels.Source(spec.Label, func() (int, bool) {
		if next > p.To {
			return 0, false
		}
		v := next
		next += p.Step
		return v, true
	}), nil
}

type scaleParams struct {
	Factor int `mapstructure:"factor"`
}

func buildScale(spec Kernel) (kernel.Kernel, error) {
	p, err := decodeParams[scaleParams](spec)
	if err != nil {
		return nil, err
	}
	if p.Factor == 0 {
		return nil, fmt.Errorf("kernel %q: factor is required", spec.Label)
	}
	return kernels.Transform(spec.Label, func(v int) int { return v * p.Factor }), nil
}

type modFilterParams struct {
	Divisor   int `mapstructure:"divisor"`
	Remainder int `mapstructure:"remainder"`
}

func buildModFilter(spec Kernel) (kernel.Kernel, error) {
	p, err := decodeParams[modFilterParams](spec)
	if err != nil {
		return nil, err
	}
	if p.Divisor <= 0 {
		return nil, fmt.Errorf("kernel %q: divisor must be positive", spec.Label)
	}
	return kernels.Filter(spec.Label, func(v int) bool { return v%p.Divisor == p.Remainder }), nil
}

func buildPrint(spec Kernel) (kernel.Kernel, error) {
	return kernels.Sink(spec.Label, func(v int) error {
		_, err := fmt.Fprintln(os.Stdout, v)
		return err
	}), nil
}

func buildDiscard(spec Kernel) (kernel.Kernel, error) {
	return kernels.Sink(spec.Label, func(int) error { return nil }), nil
}
