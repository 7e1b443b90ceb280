package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var migrationFiles embed.FS

// migrationSet returns the goose dialect and SQL files for a driver.
func migrationSet(driver string) (goose.Dialect, fs.FS, error) {
	var (
		dialect goose.Dialect
		dir     string
	)
	switch driver {
	case DriverSQLite:
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	case DriverMySQL:
		dialect, dir = goose.DialectMySQL, "migrations/mysql"
	default:
		return "", nil, fmt.Errorf("unsupported driver %q", driver)
	}

	sub, err := fs.Sub(migrationFiles, dir)
	if err != nil {
		return "", nil, err
	}
	return dialect, sub, nil
}

// Migrate applies all pending migrations and returns the resulting schema version.
func Migrate(ctx context.Context, db *sql.DB, driver string, logger *slog.Logger) (int64, error) {
	dialect, fsys, err := migrationSet(driver)
	if err != nil {
		return 0, err
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		if logger != nil {
			logger.Info("Applied migration",
				"version", r.Source.Version,
				"file", r.Source.Path,
				"duration", r.Duration)
		}
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}
