package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/cli"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Render a summary of the pipeline",
	Long:  `Assembles the manifest and renders its kernels, resolved port types and edges as formatted markdown.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		if !cmd.Flags().Changed("manifest") && len(args) > 0 {
			manifestPath = args[0]
		}

		if err := cli.Describe(manifestPath); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
