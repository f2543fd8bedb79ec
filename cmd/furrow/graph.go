package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline graph visualization",
	Long:  `Assembles the manifest and outputs a Mermaid diagram (graph LR) of kernels, ports and storage backings.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		if !cmd.Flags().Changed("manifest") && len(args) > 0 {
			manifestPath = args[0]
		}
		watch, _ := cmd.Flags().GetBool("watch")

		err := cli.Graph(cli.GraphOptions{
			ManifestPath: manifestPath,
			Watch:        watch,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)

	graphCmd.Flags().BoolP("watch", "w", false, "Regenerate the diagram on manifest changes")
}
