package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Load reads configuration from path using viper, applying the package
// defaults for any field the file omits.
func Load(path string) (*Config, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to path, creating the parent directory if needed.
// Viper's WriteConfigAs has no atomic-rename option, so this keeps the
// teacher's temp-file-then-rename pattern around it.
func Save(cfg *Config, path string) error {
	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}

	v := newViper(path)
	v.Set("version", cfg.Version)
	v.Set("server", map[string]any{
		"url":      cfg.Server.URL,
		"username": cfg.Server.Username,
		"app_password": map[string]any{
			"encrypted": cfg.Server.AppPassword.Encrypted,
			"salt":      cfg.Server.AppPassword.Salt,
			"nonce":     cfg.Server.AppPassword.Nonce,
			"algorithm": cfg.Server.AppPassword.Algorithm,
		},
	})
	v.Set("download", map[string]any{
		"max_retries":            cfg.Download.MaxRetries,
		"timeout_seconds":        cfg.Download.TimeoutSeconds,
		"chunk_size_mb":          cfg.Download.ChunkSizeMB,
		"max_concurrent_chunks":  cfg.Download.MaxConcurrentChunks,
		"verify_ssl":             cfg.Download.VerifySSL,
		"exclude_patterns":       cfg.Download.ExcludePatterns,
	})

	tmpPath := path + ".tmp"
	if err := v.WriteConfigAs(tmpPath); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("webdavfetch")
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", DefaultVersion)
	v.SetDefault("download.max_retries", DefaultMaxRetries)
	v.SetDefault("download.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("download.chunk_size_mb", DefaultChunkSizeMB)
	v.SetDefault("download.max_concurrent_chunks", DefaultMaxConcurrentChunks)
	v.SetDefault("download.verify_ssl", DefaultVerifySSL)
}

// DefaultPath returns the default configuration file path, honoring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, "webdavfetch", "config.yaml")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "webdavfetch", "config.yaml")
}

// New returns a default, empty-server configuration.
func New() *Config {
	return &Config{
		Version: DefaultVersion,
		Download: Download{
			MaxRetries:          DefaultMaxRetries,
			TimeoutSeconds:      DefaultTimeoutSeconds,
			ChunkSizeMB:         DefaultChunkSizeMB,
			MaxConcurrentChunks: DefaultMaxConcurrentChunks,
			VerifySSL:           DefaultVerifySSL,
		},
	}
}

// LoadOrCreate loads config from path or creates and saves a default one
// if it doesn't exist.
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := New()
		if err := Save(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}
