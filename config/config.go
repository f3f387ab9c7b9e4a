// Package config provides configuration for lciafmt tools.
//
// Configuration is layered: built-in defaults, then the user config file,
// then environment variables. Later layers override earlier ones.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lcacommons/lciafmt/cache"
	"github.com/lcacommons/lciafmt/format"
)

// Environment variable overrides.
const (
	EnvCacheDir    = "LCIAFMT_CACHE_DIR"
	EnvDataDir     = "LCIAFMT_DATA_DIR"
	EnvLogLevel    = "LCIAFMT_LOG_LEVEL"
	EnvCompression = "LCIAFMT_COMPRESSION"
)

// Config holds the settings shared by the library front door and the CLI.
type Config struct {
	// CacheDir is where mapped method artifacts are persisted.
	CacheDir string `yaml:"cache_dir"`

	// DataDir holds local data files such as endpoint spec tables.
	DataDir string `yaml:"data_dir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Compression selects the artifact codec: none, zstd, s2, lz4.
	Compression string `yaml:"compression"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:    cache.DefaultDir(),
		DataDir:     "data",
		LogLevel:    "info",
		Compression: "zstd",
	}
}

// LoadFromFile parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &cfg, nil
}

// Merge overlays non-empty fields of other onto c.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}
	if other.CacheDir != "" {
		c.CacheDir = other.CacheDir
	}
	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.Compression != "" {
		c.Compression = other.Compression
	}
}

// Validate checks that enum-valued fields parse.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if _, err := c.CompressionType(); err != nil {
		return err
	}

	return nil
}

// SlogLevel converts LogLevel into a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
}

// CompressionType converts Compression into a format.CompressionType.
func (c *Config) CompressionType() (format.CompressionType, error) {
	return format.ParseCompression(c.Compression)
}
