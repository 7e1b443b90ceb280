package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromYAML(t *testing.T) {
	// The example config at the repository root must always load and validate
	cfg, err := Load("../../../config.example.yaml")
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, matcher.DefaultConfig(), cfg.Reconciliation.Matcher())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
reconciliation:
  max_receipts: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Reconciliation.MaxReceipts)
	assert.Equal(t, 5, cfg.Reconciliation.MaxCandidates)
	assert.Equal(t, 100, cfg.Reconciliation.MaxTransactionsPerReceipt)
	assert.Equal(t, "reconciler.db", cfg.Storage.DSN)
	assert.Len(t, cfg.Reconciliation.KnownServices, 10)
}

func TestLoad_KnownServicesKeepOrder(t *testing.T) {
	path := writeConfig(t, `
reconciliation:
  known_services:
    - name: spotify
      aliases: ["spotify", "spotify ab"]
    - name: google
      aliases: ["google"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	services := cfg.Reconciliation.Matcher().KnownServices
	require.Len(t, services, 2)
	assert.Equal(t, "spotify", services[0].Name)
	assert.Equal(t, []string{"spotify", "spotify ab"}, services[0].Aliases)
	assert.Equal(t, "google", services[1].Name)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECONCILER_PORT", "9999")
	t.Setenv("RECONCILER_DB_DRIVER", "mysql")
	t.Setenv("RECONCILER_DB_DSN", "user:pass@tcp(localhost:3306)/reconciler")
	t.Setenv("RECONCILER_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("RECONCILE_MAX_RECEIPTS", "3")
	t.Setenv("RECONCILE_PAYMENT_TYPES", "CARD_PAYMENT")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadFromEnv()

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Storage.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/reconciler", cfg.Storage.DSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3, cfg.Reconciliation.MaxReceipts)
	assert.Equal(t, []string{"CARD_PAYMENT"}, cfg.Reconciliation.PaymentTypes)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	t.Setenv("RECONCILER_DB_DSN", "")
	t.Setenv("RECONCILE_MAX_RECEIPTS", "not-a-number")

	cfg := LoadFromEnv()

	assert.Equal(t, "reconciler.db", cfg.Storage.DSN)
	assert.Equal(t, 20, cfg.Reconciliation.MaxReceipts)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	// Test fallback when config file doesn't exist
	t.Setenv("RECONCILER_DB_DSN", "fallback.db")

	cfg := LoadOrEnv_WithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DSN)
}

func TestEnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DB_DSN", "expanded.db")
	t.Setenv("TEST_LOG_LEVEL", "warn")

	path := writeConfig(t, `
storage:
  dsn: "${TEST_DB_DSN}"
observability:
  logging:
    level: "${TEST_LOG_LEVEL}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DSN)
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"weights must sum to one", func(c *Config) { c.Reconciliation.Weights.Date = 0.5 }, "must sum to 1"},
		{"negative weight", func(c *Config) {
			c.Reconciliation.Weights = matcher.Weights{Date: -0.2, Amount: 0.9, Merchant: 0.3}
		}, "must not be negative"},
		{"negative cap", func(c *Config) { c.Reconciliation.MaxReceipts = -1 }, "caps must not be negative"},
		{"floor out of range", func(c *Config) { c.Reconciliation.MinConfidence = 100 }, "min_confidence"},
		{"unnamed service", func(c *Config) {
			c.Reconciliation.KnownServices = []matcher.KnownService{{Aliases: []string{"x"}}}
		}, "has no name"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "not supported"},
		{"missing dsn", func(c *Config) { c.Storage.DSN = "" }, "dsn is required"},
		{"bad log format", func(c *Config) { c.Observability.Logging.Format = "xml" }, "format"},
		{"zero caps mean unlimited", func(c *Config) {
			c.Reconciliation.MaxCandidates = 0
			c.Reconciliation.MaxReceipts = 0
			c.Reconciliation.MaxTransactionsPerReceipt = 0
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "oracle"
	cfg.Reconciliation.MaxCandidates = -5

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "caps")
}
