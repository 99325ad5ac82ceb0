// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the server configuration, loadable from YAML with flag
// overrides applied by the caller.
type Config struct {
	Transport     string `yaml:"transport"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	DBPath        string `yaml:"db_path"`
	LogLevel      string `yaml:"log_level"`
	HistoryDays   int    `yaml:"history_days"`
	EncryptionKey string `yaml:"encryption_key"` // 32 bytes; empty generates a random key
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Transport:   "http",
		Host:        "0.0.0.0",
		Port:        8012,
		DBPath:      "/data/lifestyle-insights.db",
		LogLevel:    "info",
		HistoryDays: 30,
	}
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.HistoryDays <= 0 {
		return fmt.Errorf("history_days must be positive, got %d", c.HistoryDays)
	}
	if c.EncryptionKey != "" && len(c.EncryptionKey) != 32 {
		return fmt.Errorf("encryption_key must be exactly 32 bytes, got %d", len(c.EncryptionKey))
	}
	return nil
}
