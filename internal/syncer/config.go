package syncer

import "fmt"

// Config defines configuration for synchronization walks
type Config struct {
	// Maximum records replayed in one walk; 0 means no limit
	MaxPerRun int `toml:"max_per_run"`

	// Synchronize automatically before every command
	AutoSync bool `toml:"auto_sync"`
}

// DefaultConfig returns syncer configuration defaults
func DefaultConfig() Config {
	return Config{
		MaxPerRun: 0,
		AutoSync:  false,
	}
}

// validateConfig validates syncer configuration and returns error if invalid
func validateConfig(config Config) error {
	if config.MaxPerRun < 0 {
		return fmt.Errorf("MaxPerRun must not be negative, got %d", config.MaxPerRun)
	}
	return nil
}

// Validate checks the configuration
func (c Config) Validate() error {
	return validateConfig(c)
}
