package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "refparity",
	Short: "Parity verification for reference-resolution artifacts",
	Long: `refparity compares two independently produced sets of resolver
artifacts (a baseline output and an experimental output) for the same source
files and reports, per file, whether the two outputs are structurally
identical.

It is built for developing a drop-in replacement for an existing
reference-resolution tool: point both tools at the same tree, let each write
its artifacts into the cache, then run refparity to find the first file whose
output diverges.

Core behavior:
- Pairs artifacts by a digest of each source file's path
- Normalizes references into a canonical order before diffing
- Compares all files under a bounded worker pool
- Renders full detail for the first divergence`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
