package storage

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectedMigrationCount is the number of migrations we expect to have
// Update this when adding new migrations
// Note: goose adds a version 0 entry when initializing, so total count is migrations + 1
const expectedMigrationCount = 2
const gooseVersionCount = expectedMigrationCount + 1 // includes goose's version 0 entry

// TestMigrations_FreshDatabase tests running migrations on a fresh database
func TestMigrations_FreshDatabase(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	// Create storage (this runs migrations)
	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM goose_db_version WHERE is_applied = 1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, gooseVersionCount, count, "Should have %d version entries (including goose init)", gooseVersionCount)
}

// TestMigrations_Idempotency tests that migrations can be run multiple times
func TestMigrations_Idempotency(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	store.Close()

	// Run migrations second time (should be a no-op)
	store, err = NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	var count int
	err = store.db.QueryRow("SELECT COUNT(*) FROM goose_db_version WHERE is_applied = 1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, gooseVersionCount, count, "Should still have exactly %d version entries", gooseVersionCount)
}

func TestMigrate_ReturnsVersion(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	db, err := sql.Open(DriverSQLite, tmpDB)
	require.NoError(t, err)
	defer db.Close()

	version, err := Migrate(context.Background(), db, DriverSQLite, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(expectedMigrationCount), version)
}

func TestMigrations_CreateTables(t *testing.T) {
	tmpDB := createTempDB(t)
	defer os.Remove(tmpDB)

	store, err := NewStorage(tmpDB)
	require.NoError(t, err)
	defer store.Close()

	for _, table := range []string{"workspace_transactions", "workspace_receipts", "reconciliation_runs"} {
		var name string
		err := store.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestMigrationSet(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverMySQL} {
		t.Run(driver, func(t *testing.T) {
			_, fsys, err := migrationSet(driver)
			require.NoError(t, err)

			for _, name := range []string{"00001_workspace_inputs.sql", "00002_reconciliation_runs.sql"} {
				data, err := fs.ReadFile(fsys, name)
				require.NoError(t, err)
				assert.Contains(t, string(data), "-- +goose Up")
				assert.Contains(t, string(data), "-- +goose Down")
			}
		})
	}

	t.Run("unsupported driver", func(t *testing.T) {
		_, _, err := migrationSet("postgres")
		assert.Error(t, err)
	})
}

func createTempDB(t *testing.T) string {
	tmpFile, err := os.CreateTemp("", "test_*.db")
	require.NoError(t, err)
	tmpFile.Close()
	return tmpFile.Name()
}
