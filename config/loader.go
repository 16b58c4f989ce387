package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// LoaderOptions configures the configuration loader.
type LoaderOptions struct {
	// ConfigDir is the directory searched for a config file (default: data dir).
	ConfigDir string
	// SkipEnvSubstitution disables ${VAR} substitution.
	SkipEnvSubstitution bool
}

// DefaultLoaderOptions returns the default loader options.
func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{}
}

// Load loads whisper's configuration, preferring <dataDir>/config.yaml,
// falling back to <dataDir>/config.json, then to built-in defaults with
// DataDir set to dataDir.
func Load(dataDir string, opts ...LoaderOptions) (*Config, error) {
	options := DefaultLoaderOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	dir := options.ConfigDir
	if dir == "" {
		dir = dataDir
	}

	var cfg *Config
	for _, name := range []string{"config.yaml", "config.yml", "config.json"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("loading %s: %w", path, err)
			}
			cfg = loaded
			break
		}
	}
	if cfg == nil {
		cfg = &Config{DataDir: dataDir}
		setDefaults(cfg)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}

	if !options.SkipEnvSubstitution {
		SubstituteEnvVarsInConfig(cfg)
	}
	applyEnvironmentOverrides(cfg)

	return cfg, nil
}

// applyEnvironmentOverrides lets environment variables win over file config.
func applyEnvironmentOverrides(cfg *Config) {
	if dir := os.Getenv("WHISPER_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if logLevel := os.Getenv("WHISPER_LOG_LEVEL"); logLevel != "" && cfg.Logging != nil {
		cfg.Logging.Level = logLevel
	}
	if addr := os.Getenv("WHISPER_LISTEN_ADDR"); addr != "" && cfg.Network != nil {
		cfg.Network.ListenAddr = addr
	}
}

// MustLoad loads configuration or panics on error.
func MustLoad(dataDir string, opts ...LoaderOptions) *Config {
	cfg, err := Load(dataDir, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
