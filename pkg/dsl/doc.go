/*
Package dsl provides a fluent builder for linear furrow pipelines.

It lets call sites chain kernels without checking an error at every step:
the first failure sticks to the chain and surfaces once, when the pipeline
is built or run. This is particularly useful for examples, tests, and the
common straight-line topology.

Example usage:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/furrow/pkg/dsl"
		"github.com/aretw0/furrow/pkg/kernels"
	)

	func main() {
		n := 0
		err := dsl.NewChain("doubler").
			Then(kernels.Source("numbers", func() (int, bool) {
				if n == 10 {
					return 0, false
				}
				n++
				return n, true
			})).
			Then(kernels.Transform("double", func(v int) int { return v * 2 })).
			Then(kernels.Sink("print", func(v int) error {
				fmt.Println(v)
				return nil
			})).
			Run(context.Background())
		if err != nil {
			log.Fatal(err)
		}
	}

Topologies with fan-out or fan-in still use furrow.Pipeline directly.
*/
package dsl
