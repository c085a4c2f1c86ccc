// Package config holds the consensus parameters and node-level
// runtime configuration.
//
// The split matters: Params are protocol rules every node must agree
// on; Config is per-node operational state that can differ freely.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds node-specific runtime configuration.
type Config struct {
	Network string
	DataDir string
	Log     LogConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
	JSON  bool
}

// Default returns the default node configuration.
func Default() *Config {
	return &Config{
		Network: "mainnet",
		DataDir: DefaultDataDir(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultDataDir returns the platform-appropriate data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "emoney-data"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "eMoney")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "eMoney")
	default:
		return filepath.Join(home, ".emoney")
	}
}

// NetworkParams resolves the configured network name to its consensus
// parameters.
func (c *Config) NetworkParams() (*Params, error) {
	switch c.Network {
	case "mainnet":
		return MainNet(), nil
	case "regnet":
		return RegNet(), nil
	default:
		return nil, fmt.Errorf("unknown network %q", c.Network)
	}
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if _, err := c.NetworkParams(); err != nil {
		return err
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}
