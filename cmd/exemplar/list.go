package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/aretw0/exemplar"
	"github.com/aretw0/exemplar/pkg/query"
)

var (
	listFormat   string
	listTag      string
	listPlatform string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the examples of the corpus",
	Long:  `List prints every valid example in corpus order. --tag and --platform narrow the result; both must match when combined.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := openEngine()
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		if _, err := eng.Scan(cmd.Context()); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		seq := eng.Query.All()
		switch {
		case listTag != "":
			seq = eng.Query.ByTag(listTag)
		case listPlatform != "":
			seq = eng.Query.ByPlatform(listPlatform)
		}

		records := query.Collect(seq)
		if listTag != "" && listPlatform != "" {
			records = slices.DeleteFunc(records, func(r exemplar.Record) bool {
				return r.Platform != listPlatform
			})
		}

		return writeRecords(cmd.OutOrStdout(), listFormat, records)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format: text, json or yaml")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Only examples carrying this tag")
	listCmd.Flags().StringVar(&listPlatform, "platform", "", "Only examples for this platform")
}
