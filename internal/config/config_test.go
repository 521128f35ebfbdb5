package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every config source at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("DEALCOACH_CONFIG_PATH", "")
	return dir
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	home := isolate(t)
	cfg := DefaultConfig()

	assert.Equal(t, filepath.Join(home, ".dealcoach"), cfg.DataDir)
	assert.Equal(t, "deals.db", cfg.DBFile)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 50, cfg.Pipeline.ListLimit)
	assert.Equal(t, filepath.Join(home, ".dealcoach", "deals.db"), cfg.DBPath())
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoader_Load_DefaultsWithNoConfigFile(t *testing.T) {
	home := isolate(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".dealcoach"), cfg.DataDir)
	assert.Equal(t, "deals.db", cfg.DBFile)
}

func TestLoader_LoadFromFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
data_dir: /srv/dealcoach
log:
  level: debug
pipeline:
  list_limit: 10
`)

	cfg, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/dealcoach", cfg.DataDir)
	assert.Equal(t, "deals.db", cfg.DBFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Pipeline.ListLimit)
}

func TestLoader_LoadFromFile_NonExistent(t *testing.T) {
	_, err := NewLoader().LoadFromFile("/nonexistent/path/config.yaml")
	assert.ErrorContains(t, err, "error reading config file")
}

func TestLoader_Load_WithConfigPathEnv(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "db_file: pipeline.db\n")
	t.Setenv("DEALCOACH_CONFIG_PATH", path)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "pipeline.db", cfg.DBFile)
}

func TestLoader_Load_UserConfigDir(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "config", "dealcoach")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("db_file: user.db\n"), 0o644))

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "user.db", cfg.DBFile)
}

func TestLoader_EnvOverridesTakePrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "data_dir: /from/file\nlog:\n  level: warn\n")
	t.Setenv("DEALCOACH_DATA_DIR", "/from/env")
	t.Setenv("DEALCOACH_LOG_LEVEL", "error")

	cfg, err := NewLoader().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = " " }, wantErr: "data_dir"},
		{name: "empty db file", mutate: func(c *Config) { c.DBFile = "" }, wantErr: "db_file"},
		{name: "negative limit", mutate: func(c *Config) { c.Pipeline.ListLimit = -1 }, wantErr: "list_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
