package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFillsExpectedValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "development", cfg.Environment)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "0.0.0.0:0", cfg.Network.ListenAddr)
}

func TestSaveAndLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.Logging.Level = "debug"
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestSaveAndLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Network.ListenAddr = "127.0.0.1:9000"
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", loaded.Network.ListenAddr)
}

func TestLoadFallsBackToDefaultsWhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
}

func TestLoadPrefersExistingConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Logging.Level = "warn"
	require.NoError(t, SaveToFile(cfg, filepath.Join(dir, "config.yaml")))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "warn", loaded.Logging.Level)
}

func TestEnvironmentOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Logging.Level = "warn"
	require.NoError(t, SaveToFile(cfg, filepath.Join(dir, "config.yaml")))

	os.Setenv("WHISPER_LOG_LEVEL", "debug")
	defer os.Unsetenv("WHISPER_LOG_LEVEL")

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Logging.Level)
}
