package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultAddr = ":8080"

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over HTTP",
	Long: `Serve exposes the catalog as JSON:

  GET /examples.json?lang=xx   all examples, tags and rejected files
  GET /examples/{id}           one example
  GET /tags/{tag}              examples carrying a tag
  GET /platforms/{platform}    examples for a platform

With --watch the catalog follows changes to the corpus.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := openEngine()
		if err != nil {
			return fmt.Errorf("failed to open corpus: %w", err)
		}
		report, err := eng.Scan(ctx)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		slog.Info("catalog ready", "root", eng.Root, "records", eng.Catalog.Len(), "errors", len(report.Errors))

		if serveWatch {
			w, err := eng.Watch(ctx)
			if err != nil {
				return fmt.Errorf("failed to watch corpus: %w", err)
			}
			defer w.Stop(context.Background())
		}

		srv, err := eng.Server()
		if err != nil {
			return err
		}

		addr := serveAddr
		if !cmd.Flags().Changed("addr") && settings.Addr != "" {
			addr = settings.Addr
		}
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "Listen address")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Rescan the corpus when files change")
}
