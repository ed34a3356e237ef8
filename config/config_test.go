package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/seaport-data/fixturewalk/pipeline"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvLogLevel, EnvProfilesDir, EnvSchemasDir, EnvWorkers, EnvStrict, EnvOnInvalid, EnvCacheTTL} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" || cfg.OnInvalid != "drop" || cfg.CacheTTL != 10*time.Minute {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "fixturewalk.yaml", `
log_level: debug
profiles_dir: /etc/fixturewalk/profiles
workers: 8
strict: true
on_invalid: passthrough
cache_ttl: 30s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 8 || !cfg.Strict || cfg.OnInvalid != "passthrough" || cfg.CacheTTL != 30*time.Second {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}

	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvStrict, "false")
	t.Setenv(EnvProfilesDir, "/srv/profiles")

	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Workers != 2 || cfg.Strict || cfg.ProfilesDir != "/srv/profiles" {
		t.Errorf("env did not override YAML: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantErr error
	}{
		{"bad level", "log_level: loud\n", nil, ErrInvalidLogLevel},
		{"negative workers", "workers: -1\n", nil, ErrInvalidWorkers},
		{"bad policy", "on_invalid: ignore\n", nil, ErrInvalidOnInvalid},
		{"negative ttl", "cache_ttl: -1m\n", nil, ErrInvalidCacheTTL},
		{"bad env int", "", map[string]string{EnvWorkers: "many"}, ErrInvalidEnv},
		{"bad env bool", "", map[string]string{EnvStrict: "sometimes"}, ErrInvalidEnv},
		{"bad env duration", "", map[string]string{EnvCacheTTL: "soon"}, ErrInvalidEnv},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "c.yaml", tt.yaml)

			_, err := Load(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv(EnvSchemasDir)
	path := writeFile(t, ".env", "FIXTUREWALK_SCHEMAS_DIR=/srv/schemas\nLOG_LEVEL=warn\n")
	t.Setenv(EnvLogLevel, "error")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(EnvSchemasDir); got != "/srv/schemas" {
		t.Errorf("%s = %q, want /srv/schemas", EnvSchemasDir, got)
	}
	if got := os.Getenv(EnvLogLevel); got != "error" {
		t.Errorf("%s = %q, existing variable should win", EnvLogLevel, got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadDotEnv(missing) error = %v, want nil", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARNING", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := &Config{Workers: 3, Strict: true, OnInvalid: "fail", CacheTTL: time.Minute}
	opts := cfg.PipelineOptions()
	if opts.Workers != 3 || !opts.Strict || opts.OnInvalid != pipeline.InvalidFail || opts.CacheTTL != time.Minute {
		t.Errorf("PipelineOptions() = %+v", opts)
	}
}
