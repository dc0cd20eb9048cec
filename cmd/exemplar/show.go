package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/exemplar"
)

var showFormat string

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one example",
	Long:  `Show prints the header fields and source of the example with the given id (its path relative to the corpus root).`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		if _, err := eng.Scan(cmd.Context()); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		rec, err := eng.Query.Get(args[0])
		if err != nil {
			return err
		}

		if showFormat != "text" {
			return writeRecords(cmd.OutOrStdout(), showFormat, []exemplar.Record{rec})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id:       %s\n", rec.ID)
		fmt.Fprintf(out, "title:    %s\n", rec.Title)
		if rec.Platform != "" {
			fmt.Fprintf(out, "platform: %s\n", rec.Platform)
		}
		if rec.Mode != "" {
			fmt.Fprintf(out, "mode:     %s\n", rec.Mode)
		}
		fmt.Fprintf(out, "tags:     %v\n", rec.Tags)
		fmt.Fprintf(out, "lang:     %s\n\n", rec.Lang)
		fmt.Fprint(out, rec.Body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&showFormat, "format", "f", "text", "Output format: text, json or yaml")
}
