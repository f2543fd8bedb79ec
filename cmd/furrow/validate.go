package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the manifest and pipeline wiring for consistency",
	Long:  `Assembles the manifest and reports schema problems, unknown kernels, type mismatches and unconnected ports.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		if !cmd.Flags().Changed("manifest") && len(args) > 0 {
			manifestPath = args[0]
		}

		if err := cli.Validate(manifestPath); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Pipeline is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
