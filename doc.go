/*
Package furrow is a streaming dataflow engine built around typed port
registries: kernels declare named, typed ports up front, a graph wires them
together, and the runtime materializes one lock-free channel per edge and
drives every kernel on its own goroutine.

# Concept

Furrow treats your computation as a graph of kernels connected by streams.
Each kernel owns two port registries (inputs and outputs) that stay open for
declarations during assembly and then freeze into channels on first use.
Ports can allocate their own ring storage, run over a shared memory
mapping, or stripe a pre-allocated block across a set of partitioned ports
so large working sets never get copied.

# Key Features

  - Typed ports: element types are checked when ports are connected, not
    when the first element goes missing at runtime.
  - Deferred construction: channels are built lazily from per-port factory
    tables, so capacity and instrumentation decisions can arrive late.
  - Partitioned blocks: a block of N elements splits across n ports with
    the remainder on the last one, each port streaming its own stripe in
    place.
  - Observability: Prometheus counters per channel, OpenTelemetry spans
    per run, and lifecycle hooks for anything else.

# Usage

Assemble a pipeline from kernels, connect them, and run:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/furrow"
		"github.com/aretw0/furrow/pkg/kernels"
	)

	func main() {
		n := 0
		src := kernels.Source("numbers", func() (int, bool) {
			if n == 10 {
				return 0, false
			}
			n++
			return n, true
		})
		dbl := kernels.Transform("double", func(v int) int { return v * 2 })
		out := kernels.Sink("print", func(v int) error {
			fmt.Println(v)
			return nil
		})

		p := furrow.New("doubler")
		if err := p.Link(src, dbl, out); err != nil {
			log.Fatal(err)
		}
		if err := p.Run(context.Background()); err != nil {
			log.Fatal(err)
		}
	}

Custom kernels embed kernel.Base and declare their ports against the
registries it carries; see the kernel package for the contract.
*/
package furrow
