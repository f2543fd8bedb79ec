package dsl

import (
	"context"

	"github.com/aretw0/furrow"
	"github.com/aretw0/furrow/pkg/kernel"
)

// Chain manages the construction of a linear pipeline.
type Chain struct {
	pipeline *furrow.Pipeline
	last     kernel.Kernel
	err      error
}

// NewChain creates a new chain builder. Options are passed through to the
// underlying pipeline.
func NewChain(name string, opts ...furrow.Option) *Chain {
	return &Chain{pipeline: furrow.New(name, opts...)}
}

// Then appends a kernel to the chain, linking it to the previous one. The
// first error sticks; later calls are no-ops once the chain has failed.
func (c *Chain) Then(k kernel.Kernel) *Chain {
	if c.err != nil {
		return c
	}
	if c.last == nil {
		c.err = c.pipeline.Add(k)
	} else {
		c.err = c.pipeline.Link(c.last, k)
	}
	if c.err == nil {
		c.last = k
	}
	return c
}

// Pipeline compiles the chain into its pipeline, surfacing any error the
// chain collected along the way.
func (c *Chain) Pipeline() (*furrow.Pipeline, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.pipeline, nil
}

// Run builds the pipeline and drives it to completion.
func (c *Chain) Run(ctx context.Context) error {
	p, err := c.Pipeline()
	if err != nil {
		return err
	}
	return p.Run(ctx)
}
