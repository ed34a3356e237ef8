// Package config loads fixturewalk settings from YAML, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/seaport-data/fixturewalk/pipeline"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "LOG_LEVEL"
	EnvProfilesDir = "FIXTUREWALK_PROFILES_DIR"
	EnvSchemasDir  = "FIXTUREWALK_SCHEMAS_DIR"
	EnvWorkers     = "FIXTUREWALK_WORKERS"
	EnvStrict      = "FIXTUREWALK_STRICT"
	EnvOnInvalid   = "FIXTUREWALK_ON_INVALID"
	EnvCacheTTL    = "FIXTUREWALK_CACHE_TTL"
)

// Configuration validation errors.
var (
	ErrInvalidLogLevel  = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidWorkers   = errors.New("workers must be non-negative")
	ErrInvalidOnInvalid = errors.New("on_invalid must be one of: drop, passthrough, fail")
	ErrInvalidCacheTTL  = errors.New("cache_ttl must be non-negative")
	ErrInvalidEnv       = errors.New("invalid environment variable")
)

// Config holds the settings shared by every command.
type Config struct {
	LogLevel    string        `yaml:"log_level"`
	ProfilesDir string        `yaml:"profiles_dir"`
	SchemasDir  string        `yaml:"schemas_dir"`
	Workers     int           `yaml:"workers"`
	Strict      bool          `yaml:"strict"`
	OnInvalid   string        `yaml:"on_invalid"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		OnInvalid: string(pipeline.InvalidDrop),
		CacheTTL:  10 * time.Minute,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is not empty), then the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables already set. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvProfilesDir); ok {
		c.ProfilesDir = v
	}
	if v, ok := lookup(EnvSchemasDir); ok {
		c.SchemasDir = v
	}
	if v, ok := lookup(EnvOnInvalid); ok {
		c.OnInvalid = v
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvWorkers, v)
		}
		c.Workers = n
	}
	if v, ok := lookup(EnvStrict); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvStrict, v)
		}
		c.Strict = b
	}
	if v, ok := lookup(EnvCacheTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnv, EnvCacheTTL, v)
		}
		c.CacheTTL = d
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}
	if _, err := pipeline.ParseOnInvalid(c.OnInvalid); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidOnInvalid, c.OnInvalid)
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}

// Level returns the configured slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel parses a log level name. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "", "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
}

// PipelineOptions returns the batch options the configuration controls.
// The caller sets the anchor, validator and logger.
func (c *Config) PipelineOptions() pipeline.Options {
	onInvalid, _ := pipeline.ParseOnInvalid(c.OnInvalid)
	return pipeline.Options{
		Strict:    c.Strict,
		OnInvalid: onInvalid,
		Workers:   c.Workers,
		CacheTTL:  c.CacheTTL,
	}
}
