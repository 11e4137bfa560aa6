// Package config loads the journal configuration from YAML with environment
// overrides for secrets. The file carries tunables safe to commit; DSNs come
// from the environment so CI and local runs never share credentials.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"btc-journal-lab/internal/planner"
)

// MarketData configures the exchange endpoints.
type MarketData struct {
	OKXBaseURL      string `yaml:"okx_base_url"`
	CoinbaseBaseURL string `yaml:"coinbase_base_url"`
	InstID          string `yaml:"inst_id"`
	Bar             string `yaml:"bar"`
}

// Storage selects and configures the journal backend.
type Storage struct {
	// Backend is "memory", "postgres" or "clickhouse".
	Backend       string `yaml:"backend"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// Reporting configures dashboard generation.
type Reporting struct {
	OutputDir  string `yaml:"output_dir"`
	WindowDays int    `yaml:"window_days"`
}

// Server configures the metrics endpoint.
type Server struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Logging configures the shared logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full journal configuration.
type Config struct {
	MarketData MarketData     `yaml:"marketdata"`
	Storage    Storage        `yaml:"storage"`
	Reporting  Reporting      `yaml:"reporting"`
	Server     Server         `yaml:"server"`
	Logging    Logging        `yaml:"logging"`
	Playbook   planner.Config `yaml:"playbook"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		MarketData: MarketData{
			InstID: "BTC-USDT-SWAP",
			Bar:    "15m",
		},
		Storage: Storage{
			Backend: "memory",
		},
		Reporting: Reporting{
			OutputDir:  "journal",
			WindowDays: 30,
		},
		Server: Server{
			ListenAddr: ":8080",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Playbook: planner.DefaultConfig(),
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to defaults
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if dsn := os.Getenv("JOURNAL_POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}
	if dsn := os.Getenv("JOURNAL_CLICKHOUSE_DSN"); dsn != "" {
		cfg.Storage.ClickHouseDSN = dsn
	}
	if backend := os.Getenv("JOURNAL_STORAGE_BACKEND"); backend != "" {
		cfg.Storage.Backend = backend
	}
	if lvl := os.Getenv("JOURNAL_LOG_LEVEL"); lvl != "" {
		cfg.Logging.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage backend postgres requires a DSN")
		}
	case "clickhouse":
		if c.Storage.ClickHouseDSN == "" {
			return fmt.Errorf("storage backend clickhouse requires a DSN")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Reporting.WindowDays <= 0 {
		return fmt.Errorf("reporting window_days must be positive, got %d", c.Reporting.WindowDays)
	}
	return nil
}
