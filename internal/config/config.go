package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/livinlefevreloca/stockroom/internal/db"
	"github.com/livinlefevreloca/stockroom/internal/gateway"
	"github.com/livinlefevreloca/stockroom/internal/queue"
	"github.com/livinlefevreloca/stockroom/internal/syncer"
)

// Config represents the application configuration
type Config struct {
	Database db.Config      `toml:"database"`
	Gateway  gateway.Config `toml:"gateway"`
	Queue    QueueConfig    `toml:"queue"`
	Syncer   syncer.Config  `toml:"syncer"`
	Logging  LoggingConfig  `toml:"logging"`
}

// QueueConfig names the slot that holds pending operations. The slot always
// lives in the [database] sqlite file so it survives restarts.
type QueueConfig struct {
	Slot string `toml:"slot"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: db.Config{
			Driver:       "sqlite3",
			DSN:          "stockroom.db",
			MaxOpenConns: 1,
		},
		Gateway: gateway.DefaultConfig(),
		Queue: QueueConfig{
			Slot: queue.DefaultSlot,
		},
		Syncer: syncer.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a TOML file
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config keys: %v", undecoded)
	}

	return config, nil
}

// LoadConfig loads configuration with the following precedence:
// 1. Default values
// 2. Config file (if specified)
// 3. Command-line flags (handled by caller)
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	return LoadFromFile(configPath)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Queue.Slot == "" {
		return fmt.Errorf("queue slot must be specified")
	}

	if c.Database.Driver != "sqlite3" {
		return fmt.Errorf("unsupported database driver: %s (must be sqlite3)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN must be specified")
	}

	if err := c.Gateway.Validate(); err != nil {
		return err
	}

	if err := c.Syncer.Validate(); err != nil {
		return fmt.Errorf("invalid syncer config: %w", err)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}
