package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/exemplar/pkg/adapters/fs"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the corpus and print catalog changes",
	Long:  `Watch scans the corpus, then prints one line per catalog change (CREATE, MODIFY, DELETE) until interrupted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := openEngine()
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		if _, err := eng.Scan(ctx); err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		events := eng.Events()
		if err := events.Start(ctx); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		w, err := eng.Watch(ctx, fs.OnScan(func(_ []string, report fs.Report) {
			for _, fe := range report.Errors {
				slog.Warn("invalid example", "path", fe.Origin, "error", fe.Err)
			}
		}))
		if err != nil {
			return fmt.Errorf("failed to watch corpus: %w", err)
		}
		defer w.Stop(context.Background())

		fmt.Fprintf(out, "watching %s (%d examples)\n", eng.Root, eng.Catalog.Len())
		for e := range events.Events() {
			fmt.Fprintln(out, e.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
