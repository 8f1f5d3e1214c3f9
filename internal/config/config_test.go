package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are populated.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", cfg.PageSize, DefaultPageSize)
	}
	if cfg.UIResultLimit != DefaultUIResultLimit {
		t.Errorf("UIResultLimit = %d, want %d", cfg.UIResultLimit, DefaultUIResultLimit)
	}
	if cfg.APIResultLimit != DefaultAPIResultLimit {
		t.Errorf("APIResultLimit = %d, want %d", cfg.APIResultLimit, DefaultAPIResultLimit)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.DBDir == "" {
		t.Error("DBDir should default to the XDG data directory")
	}
	if cfg.BaseURL != "" {
		t.Error("BaseURL should have no default")
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.BaseURL = "https://juxt.example.com"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}, wantErr: nil},
		{name: "missing base URL", mutate: func(c *Config) { c.BaseURL = "" }, wantErr: ErrNoBaseURL},
		{name: "relative base URL", mutate: func(c *Config) { c.BaseURL = "/titles/all" }, wantErr: ErrInvalidBaseURL},
		{name: "non-http scheme", mutate: func(c *Config) { c.BaseURL = "ftp://juxt.example.com" }, wantErr: ErrInvalidBaseURL},
		{name: "zero page size", mutate: func(c *Config) { c.PageSize = 0 }, wantErr: ErrInvalidPageSize},
		{name: "negative UI limit", mutate: func(c *Config) { c.UIResultLimit = -1 }, wantErr: ErrInvalidResultLimit},
		{name: "zero API limit", mutate: func(c *Config) { c.APIResultLimit = 0 }, wantErr: ErrInvalidResultLimit},
		{name: "zero similarity limit", mutate: func(c *Config) { c.SimilarityLimit = 0 }, wantErr: ErrInvalidResultLimit},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero probe offset", mutate: func(c *Config) { c.ProbeMaxOffset = 0 }, wantErr: ErrInvalidProbeOffset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfigFile tests YAML config loading and application.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfigFile() = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("loads and applies settings", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := "url: https://juxt.example.com\nlisten: \":8080\"\napiResultLimit: 100\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.BaseURL != "https://juxt.example.com" {
			t.Errorf("BaseURL = %q", cfg.BaseURL)
		}
		if cfg.ListenAddr != ":8080" {
			t.Errorf("ListenAddr = %q", cfg.ListenAddr)
		}
		if cfg.APIResultLimit != 100 {
			t.Errorf("APIResultLimit = %d, want 100", cfg.APIResultLimit)
		}
		// Untouched settings keep their defaults
		if cfg.UIResultLimit != DefaultUIResultLimit {
			t.Errorf("UIResultLimit = %d, want default %d", cfg.UIResultLimit, DefaultUIResultLimit)
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("url: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("LoadConfigFile() should fail on malformed YAML")
		}
	})
}
