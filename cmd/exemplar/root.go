package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/exemplar"
)

var (
	verbose    bool
	rootFlag   string
	langFlag   string
	configFlag string

	// settings is resolved from the config file and flags before any command runs.
	settings fileConfig
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "exemplar",
	Short: "Catalog of annotated example programs",
	Long: `Exemplar indexes a directory of example source files.
Each file opens with a one-line comment carrying a JSON header (title,
platform, mode, tags); exemplar validates those headers and answers
lookups by id, tag and platform.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		settings = cfg
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&rootFlag, "root", "r", "", "Corpus root directory (default: nearest directory with .exemplar, .exemplar.yaml or .git)")
	rootCmd.PersistentFlags().StringVarP(&langFlag, "lang", "l", "", "Language variant to index (default \"en\")")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to a YAML config file (default: <root>/.exemplar.yaml)")
}

// openEngine builds an engine from the resolved settings.
func openEngine() (*exemplar.Engine, error) {
	return exemplar.Open(settings.Root, settings.options(slog.Default())...)
}
