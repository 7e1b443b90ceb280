// Package cli implements the reconciler command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/logging"
)

// GlobalFlags are shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand builds the reconciler command tree.
func NewRootCommand(version string) *cobra.Command {
	global := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "reconciler",
		Short: "Match bank transactions with receipts",
		Long: `Reconciler ranks candidate bank transactions for every receipt using
date proximity, amount similarity and merchant-name similarity.

Examples:
  reconciler serve --port 8085
  reconciler analyze --input batch.json --pretty
  reconciler migrate --config config.yaml`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&global.ConfigPath, "config", "", "config file (default: config.yaml, then environment)")
	root.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		newServeCommand(global),
		newAnalyzeCommand(global),
		newMigrateCommand(global),
	)

	return root
}

// loadConfig reads an explicit config file strictly, otherwise falls back
// to config.yaml and the environment.
func loadConfig(global *GlobalFlags) (*config.Config, error) {
	var cfg *config.Config
	if global.ConfigPath != "" {
		loaded, err := config.Load(global.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrEnv()
	}

	if global.Verbose {
		cfg.Observability.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, system string) *slog.Logger {
	return logging.NewLoggerWithSystem(cfg.Observability.Logging, system)
}

// Main runs the command line and returns the process exit status.
func Main(version string) int {
	root := NewRootCommand(version)
	if err := root.ExecuteContext(context.Background()); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
