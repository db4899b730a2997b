package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "flashledger.yaml"

// Environment overrides, applied after the YAML file is read. A .env file
// in the project directory is honored via godotenv in the CLI layer.
const (
	EnvDriver = "FLASHLEDGER_DB_DRIVER"
	EnvDSN    = "FLASHLEDGER_DB_DSN"
)

// Config represents the top-level flashledger.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Database DatabaseConfig `yaml:"database"`
	RunLog   RunLogConfig   `yaml:"run_log"`
}

// BusinessConfig identifies the courier business entity.
type BusinessConfig struct {
	Name string `yaml:"name"`
}

// DatabaseConfig selects the ledger database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite3" or "postgres"
	DSN    string `yaml:"dsn"`
}

// RunLogConfig controls where reconciliation runs are recorded.
type RunLogConfig struct {
	Dir string `yaml:"dir"`
}

// Load reads a flashledger.yaml file from disk and applies environment
// overrides on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "flashledger.db",
		},
		RunLog: RunLogConfig{
			Dir: "logs",
		},
	}
}

// applyEnv lets deploy environments point the CLI at the production
// database without editing the checked-in YAML.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDriver); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv(EnvDSN); v != "" {
		c.Database.DSN = v
	}
}
