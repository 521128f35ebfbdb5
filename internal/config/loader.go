package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DEALCOACH"

// Loader reads configuration through Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a Loader seeded with DefaultConfig values.
func NewLoader() *Loader {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("db_file", def.DBFile)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("pipeline.list_limit", def.Pipeline.ListLimit)

	return &Loader{v: v}
}

// Load resolves the config file from DEALCOACH_CONFIG_PATH or the user
// config directory. A missing file is not an error.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv(EnvPrefix + "_CONFIG_PATH"); path != "" {
		return l.LoadFromFile(path)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "dealcoach", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return l.LoadFromFile(path)
		}
	}

	return l.unmarshal()
}

// LoadFromFile reads the given YAML file. Environment variables still win.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if strings.TrimSpace(c.DBFile) == "" {
		errs = append(errs, errors.New("db_file must not be empty"))
	}
	if c.Pipeline.ListLimit < 0 {
		errs = append(errs, errors.New("pipeline.list_limit must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
