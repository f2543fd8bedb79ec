// Package manifest loads declarative pipeline descriptions from YAML and
// builds runnable pipelines out of them. Kernels are produced by named
// builders, so applications can mix the built-in processing kernels with
// their own.
package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Manifest is the root of a pipeline description.
type Manifest struct {
	// Name identifies the pipeline in logs, traces and metrics.
	Name string `yaml:"name" validate:"required"`

	// Capacity overrides the default element capacity of self-allocating
	// channels. Zero keeps the library default.
	Capacity int `yaml:"capacity" validate:"gte=0"`

	Kernels []Kernel `yaml:"kernels" validate:"required,min=1,dive"`
	Edges   []Edge   `yaml:"edges" validate:"dive"`
}

// Kernel names one processing unit and the builder that constructs it.
type Kernel struct {
	Label string `yaml:"label" validate:"required"`
	Uses  string `yaml:"uses" validate:"required"`

	// With carries builder-specific parameters, decoded by the builder.
	With map[string]any `yaml:"with"`
}

// Edge wires an output port to an input port. Endpoints are written
// "kernel.port", or just "kernel" when the side has exactly one port.
type Edge struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`

	// Storage picks the backing of the edge's channel: "heap" or
	// "shared". Empty keeps the source port's default.
	Storage string `yaml:"storage" validate:"omitempty,oneof=heap shared"`

	// Instrumented routes the edge's traffic through the metrics
	// counters.
	Instrumented bool `yaml:"instrumented"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and validates a manifest. Unknown fields are rejected.
func Load(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

// LoadFile reads and validates the manifest at path.
func LoadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	m, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
