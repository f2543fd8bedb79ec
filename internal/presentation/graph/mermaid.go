package graph

import (
	"fmt"
	"strings"

	pipeline "github.com/aretw0/furrow/pkg/graph"
	"github.com/aretw0/furrow/pkg/kernel"
	"github.com/aretw0/furrow/pkg/stream"
)

// Overlay contains dynamic run state to visualize on the graph.
type Overlay struct {
	ActiveKernels []string
	FailedKernel  string
}

// GenerateMermaid produces a Mermaid flowchart syntax string from a wired
// pipeline map. It applies semantic styling:
// - Partitioned fan-out: [/Parallelogram/]
// - Source (no inputs): ((Circle))
// - Sink (no outputs): [[Subroutine]]
// - Default: [Rectangle]
// Edges carry the source port and its element type as the label, and edges
// selected onto shared-memory storage draw with a thick link. It also
// applies overlay styles (Active/Failed) if provided.
func GenerateMermaid(m *pipeline.Map, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, k := range m.Kernels() {
		// Sanitize ID for Mermaid
		safeID := sanitizeMermaidID(k.Label())

		// Node Shape based on role in the flow
		opener, closer := "[", "]"

		switch {
		case partitioned(k):
			opener, closer = "[/", "/]" // Parallelogram (fans a block out)
		case k.In().Count() == 0:
			opener, closer = "((", "))" // Circle
		case k.Out().Count() == 0:
			opener, closer = "[[", "]]" // Subroutine
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, k.Label(), closer))
	}

	for _, e := range m.Edges() {
		safeFrom := sanitizeMermaidID(e.Src.Label())
		safeTo := sanitizeMermaidID(e.Dst.Label())

		label := e.SrcPort
		shared := false
		if d, err := e.Src.Out().Access().Descriptor(e.SrcPort); err == nil {
			label = fmt.Sprintf("%s:%s", e.SrcPort, d.Tag())
			shared = d.Selection().Kind == stream.StorageShared
		}

		arrow := fmt.Sprintf("-- \"%s\" -->", label)
		if shared {
			arrow = fmt.Sprintf("== \"%s\" ==>", label)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:4px,color:#000;\n")

		// Deduplicate active kernels (using safeIDs)
		activeSet := make(map[string]bool)
		for _, label := range overlay.ActiveKernels {
			safeID := sanitizeMermaidID(label)
			if !activeSet[safeID] && safeID != "" {
				activeSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s active;\n", safeID))
			}
		}

		if overlay.FailedKernel != "" {
			safeFailed := sanitizeMermaidID(overlay.FailedKernel)
			sb.WriteString(fmt.Sprintf("    class %s failed;\n", safeFailed))
		}
	}

	return sb.String()
}

// partitioned reports whether any output port streams a stripe of a
// pre-allocated block.
func partitioned(k kernel.Kernel) bool {
	for d := range k.Out().All() {
		if _, _, _, ok := d.View(); ok {
			return true
		}
	}
	return false
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
