package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/furrow/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline described by the manifest",
	Long:  `Assembles the manifest into a pipeline and streams it to completion. Ctrl+C drains and exits cleanly.`,
	Run: func(cmd *cobra.Command, args []string) {
		manifestPath, _ := cmd.Flags().GetString("manifest")
		if !cmd.Flags().Changed("manifest") && len(args) > 0 {
			manifestPath = args[0]
		}
		logLevel, _ := cmd.Flags().GetString("log-level")
		serveAddr, _ := cmd.Flags().GetString("serve")
		trace, _ := cmd.Flags().GetBool("trace")

		err := cli.Run(cli.RunOptions{
			ManifestPath: manifestPath,
			LogLevel:     logLevel,
			ServeAddr:    serveAddr,
			Trace:        trace,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("serve", "", "Serve the introspection API on this address (e.g. :8077)")
	runCmd.Flags().Bool("trace", false, "Export OpenTelemetry spans to stdout")

	// Make 'run' the default when no command is provided.
	rootCmd.Run = runCmd.Run
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
