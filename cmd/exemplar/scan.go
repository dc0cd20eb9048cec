package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the corpus and report invalid examples",
	Long:  `Scan parses and validates every example under the corpus root and prints a summary followed by one line per rejected file.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}

		report, err := eng.Scan(cmd.Context())
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d examples indexed (%s), %d rejected, %d skipped, %d cached\n",
			eng.Catalog.Len(), eng.Lang(), len(report.Errors), report.Skipped, report.CacheHits)
		for _, fe := range report.Errors {
			fmt.Fprintf(out, "  %s: %v\n", fe.Origin, fe.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
