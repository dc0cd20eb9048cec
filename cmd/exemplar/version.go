package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/exemplar"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of exemplar",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "exemplar version %s\n", strings.TrimSpace(exemplar.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
