package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		if _, err := eng.Scan(cmd.Context()); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		out := cmd.OutOrStdout()
		for _, tag := range eng.Query.Tags() {
			fmt.Fprintf(out, "%s\t%d\n", tag, len(eng.Catalog.WithTag(tag)))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}
