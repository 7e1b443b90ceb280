// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Values missing from the YAML file keep their defaults, so a file only
// needs the settings it changes.
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	if err := cfg.Validate(); err != nil {
//		log.Fatal(err)
//	}
//	m := matcher.NewMatcher(cfg.Reconciliation.Matcher())
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eshaffer321/receipt-reconciler/internal/domain/matcher"
)

// Config represents the entire application configuration
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Storage        StorageConfig        `yaml:"storage"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
	Observability  ObservabilityConfig  `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite3 or mysql
	DSN    string `yaml:"dsn"`    // file path for sqlite3
}

// ReconciliationConfig holds the scoring weights, confidence floor and caps.
// A cap of 0 means unlimited.
type ReconciliationConfig struct {
	Weights                   matcher.Weights        `yaml:"weights"`
	MinConfidence             float64                `yaml:"min_confidence"`
	MaxCandidates             int                    `yaml:"max_candidates"`
	MaxReceipts               int                    `yaml:"max_receipts"`
	MaxTransactionsPerReceipt int                    `yaml:"max_transactions_per_receipt"`
	PaymentTypes              []string               `yaml:"payment_types"`
	SentinelSuppliers         []string               `yaml:"sentinel_suppliers"`
	KnownServices             []matcher.KnownService `yaml:"known_services"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	m := matcher.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:           8085,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "reconciler.db",
		},
		Reconciliation: ReconciliationConfig{
			Weights:                   m.Weights,
			MinConfidence:             m.MinConfidence,
			MaxCandidates:             m.MaxCandidates,
			MaxReceipts:               m.MaxReceipts,
			MaxTransactionsPerReceipt: m.MaxTransactionsPerReceipt,
			PaymentTypes:              m.PaymentTypes,
			SentinelSuppliers:         m.SentinelSuppliers,
			KnownServices:             m.KnownServices,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${RECONCILER_DB_DSN})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := Default()

	cfg.Server.Port = getEnvInt("RECONCILER_PORT", cfg.Server.Port)
	if origins := os.Getenv("RECONCILER_ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}

	cfg.Storage.Driver = getEnv("RECONCILER_DB_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = getEnv("RECONCILER_DB_DSN", cfg.Storage.DSN)

	r := &cfg.Reconciliation
	r.MaxCandidates = getEnvInt("RECONCILE_MAX_CANDIDATES", r.MaxCandidates)
	r.MaxReceipts = getEnvInt("RECONCILE_MAX_RECEIPTS", r.MaxReceipts)
	r.MaxTransactionsPerReceipt = getEnvInt("RECONCILE_MAX_TRANSACTIONS", r.MaxTransactionsPerReceipt)
	if types := os.Getenv("RECONCILE_PAYMENT_TYPES"); types != "" {
		r.PaymentTypes = splitList(types)
	}

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverMySQL:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q not supported (use %s or %s)", c.Storage.Driver, DriverSQLite, DriverMySQL))
	}
	if c.Storage.DSN == "" {
		errs = append(errs, errors.New("storage.dsn is required"))
	}

	if err := c.Reconciliation.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.Observability.Logging.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("observability.logging.format %q not supported", c.Observability.Logging.Format))
	}

	return errors.Join(errs...)
}

// Validate checks weights, floor and caps.
func (r ReconciliationConfig) Validate() error {
	var errs []error

	w := r.Weights
	if w.Date < 0 || w.Amount < 0 || w.Merchant < 0 {
		errs = append(errs, errors.New("reconciliation.weights must not be negative"))
	}
	if sum := w.Date + w.Amount + w.Merchant; math.Abs(sum-1) > 1e-6 {
		errs = append(errs, fmt.Errorf("reconciliation.weights must sum to 1, got %.4f", sum))
	}
	if r.MinConfidence < 0 || r.MinConfidence >= 100 {
		errs = append(errs, fmt.Errorf("reconciliation.min_confidence %.2f must be in [0, 100)", r.MinConfidence))
	}
	if r.MaxCandidates < 0 || r.MaxReceipts < 0 || r.MaxTransactionsPerReceipt < 0 {
		errs = append(errs, errors.New("reconciliation caps must not be negative"))
	}
	for i, svc := range r.KnownServices {
		if svc.Name == "" {
			errs = append(errs, fmt.Errorf("reconciliation.known_services[%d] has no name", i))
		}
	}

	return errors.Join(errs...)
}

// Matcher converts the settings into a matcher configuration.
func (r ReconciliationConfig) Matcher() matcher.Config {
	return matcher.Config{
		Weights:                   r.Weights,
		MinConfidence:             r.MinConfidence,
		MaxCandidates:             r.MaxCandidates,
		MaxReceipts:               r.MaxReceipts,
		MaxTransactionsPerReceipt: r.MaxTransactionsPerReceipt,
		PaymentTypes:              r.PaymentTypes,
		SentinelSuppliers:         r.SentinelSuppliers,
		KnownServices:             r.KnownServices,
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
