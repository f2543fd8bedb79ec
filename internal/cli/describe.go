package cli

import (
	"fmt"
	"strings"

	"github.com/aretw0/furrow/internal/presentation/tui"
)

// Describe renders a human-readable summary of the manifest to stdout,
// including the port types the assembled pipeline resolved.
func Describe(path string) error {
	p, m, err := loadPipeline(path)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Pipeline %s\n\n", m.Name)
	if m.Capacity > 0 {
		fmt.Fprintf(&sb, "Channel capacity: **%d** elements.\n\n", m.Capacity)
	}

	sb.WriteString("## Kernels\n\n")
	sb.WriteString("| Label | Uses | Params |\n")
	sb.WriteString("|---|---|---|\n")
	for _, k := range m.Kernels {
		params := ""
		if len(k.With) > 0 {
			params = fmt.Sprintf("%v", k.With)
		}
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", k.Label, k.Uses, params)
	}

	sb.WriteString("\n## Ports\n\n")
	for _, k := range p.Graph().Kernels() {
		fmt.Fprintf(&sb, "**%s**\n\n", k.Label())
		for d := range k.In().All() {
			fmt.Fprintf(&sb, "- in `%s` carries `%s`\n", d.Name(), d.Tag())
		}
		for d := range k.Out().All() {
			fmt.Fprintf(&sb, "- out `%s` carries `%s` on %s storage\n", d.Name(), d.Tag(), d.Selection().Kind)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Edges\n\n")
	for _, e := range m.Edges {
		storage := e.Storage
		if storage == "" {
			storage = "heap"
		}
		fmt.Fprintf(&sb, "- `%s` feeds `%s` over %s storage", e.From, e.To, storage)
		if e.Instrumented {
			sb.WriteString(" (instrumented)")
		}
		sb.WriteString("\n")
	}

	render := tui.NewRenderer()
	out, err := render(sb.String())
	if err != nil {
		// Fall back to the raw markdown.
		fmt.Print(sb.String())
		return nil
	}
	fmt.Print(out)
	return nil
}
