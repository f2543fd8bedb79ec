package cli

import (
	"context"
	"fmt"
	"time"

	presentation "github.com/aretw0/furrow/internal/presentation/graph"
	"github.com/aretw0/furrow/pkg/manifest"
)

// GraphOptions configures the graph command.
type GraphOptions struct {
	ManifestPath string
	Watch        bool
}

// Graph prints the Mermaid rendering of the manifest's pipeline. In watch
// mode it reprints on every manifest change until interrupted.
func Graph(opts GraphOptions) error {
	if err := printGraph(opts.ManifestPath); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}

	watcher, err := manifest.Watch(opts.ManifestPath, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("watch manifest: %w", err)
	}
	defer watcher.Close()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	printSystemMessage("Watching %s for changes. Press Ctrl+C to stop.", opts.ManifestPath)
	for {
		select {
		case <-sigCtx.Done():
			return nil
		case <-watcher.Changes():
			printSystemMessage("Manifest changed, regenerating...")
			if err := printGraph(opts.ManifestPath); err != nil {
				// A manifest mid-edit is often briefly invalid; keep watching.
				printSystemMessage("Skipping invalid manifest: %v", err)
			}
		}
	}
}

func printGraph(path string) error {
	p, _, err := loadPipeline(path)
	if err != nil {
		return err
	}
	fmt.Print(presentation.GenerateMermaid(p.Graph(), nil))
	return nil
}
