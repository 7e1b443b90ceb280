package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/config"
	"github.com/eshaffer321/receipt-reconciler/internal/infrastructure/storage"
)

func newMigrateCommand(global *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			return RunMigrate(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// RunMigrate brings the configured database up to the latest schema.
func RunMigrate(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := newLogger(cfg, "storage")

	store, err := storage.Open(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	version, err := storage.Migrate(ctx, store.DB(), store.Driver(), logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s schema at version %d\n", cfg.Storage.Driver, version)
	return nil
}
