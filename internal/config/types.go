// Package config loads dealcoach settings.
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DEALCOACH_ prefix, e.g. DEALCOACH_DATA_DIR)
//  2. Config file given explicitly or via DEALCOACH_CONFIG_PATH
//  3. <user config dir>/dealcoach/config.yaml
//  4. [DefaultConfig] defaults
package config

import (
	"os"
	"path/filepath"
)

// Config is the root configuration.
type Config struct {
	// DataDir holds the deal database. Default: ~/.dealcoach
	DataDir string `mapstructure:"data_dir"`
	// DBFile is the database file name inside DataDir.
	DBFile string `mapstructure:"db_file"`
	// Log controls the server's structured logging.
	Log LogConfig `mapstructure:"log"`
	// Pipeline tunes portfolio views.
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// LogConfig controls logging.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// PipelineConfig tunes the pipeline tools.
type PipelineConfig struct {
	// ListLimit caps deal_list results when the caller gives no limit.
	ListLimit int `mapstructure:"list_limit"`
}

// DBPath returns the full path of the deal database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// DefaultConfig returns a Config that works without any file.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".dealcoach"),
		DBFile:  "deals.db",
		Log: LogConfig{
			Level: "info",
		},
		Pipeline: PipelineConfig{
			ListLimit: 50,
		},
	}
}
