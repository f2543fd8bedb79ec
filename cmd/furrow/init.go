package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterManifest = `name: starter
capacity: 32

kernels:
  - label: numbers
    uses: range
    with: {from: 1, to: 10}
  - label: double
    uses: scale
    with: {factor: 2}
  - label: show
    uses: print

edges:
  - from: numbers
    to: double
  - from: double
    to: show
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter manifest",
	Long:  `Creates a runnable example manifest at the --manifest path to grow a new pipeline from.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")

		if _, err := os.Stat(manifestPath); err == nil {
			fmt.Printf("Error: %s already exists\n", manifestPath)
			os.Exit(1)
		}

		if err := os.WriteFile(manifestPath, []byte(starterManifest), 0644); err != nil {
			fmt.Printf("Error writing manifest: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Wrote %s. Try: furrow run\n", manifestPath)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
