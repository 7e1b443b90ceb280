package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Supported database drivers
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// timeLayout keeps stored timestamps lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Storage provides SQL database access for workspace inputs and run history.
// It implements the Repository interface.
type Storage struct {
	db     *sql.DB
	driver string
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// Open connects to the database and runs all pending migrations.
func Open(ctx context.Context, driver, dsn string, logger *slog.Logger) (*Storage, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}

	if _, err := Migrate(ctx, db, driver, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db, driver: driver}, nil
}

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	return Open(context.Background(), DriverSQLite, dbPath, nil)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying database handle (for testing and tooling)
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Driver returns the database driver name.
func (s *Storage) Driver() string {
	return s.driver
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
