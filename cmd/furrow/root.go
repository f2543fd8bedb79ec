package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "furrow",
	Short: "Furrow is a streaming dataflow execution engine",
	Long: `Furrow runs pipelines of kernels connected through typed ports.
Pipelines are described in a YAML manifest and executed as concurrent
kernels streaming elements over bounded channels.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("manifest", "m", "furrow.yaml", "Path to the pipeline manifest")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
