package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefaultValidates ensures the shipped defaults pass validation.
func TestDefaultValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

// TestLoadLayersOverDefaults verifies file values replace defaults while
// omitted fields keep them.
func TestLoadLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "satalt.toml")
	content := `
[server]
bind = "127.0.0.1:9090"
allowed_origins = ["https://viz.example.org"]

[upstream]
timeout_seconds = 3

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Bind != "127.0.0.1:9090" {
		t.Errorf("Bind = %q, want 127.0.0.1:9090", cfg.Server.Bind)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://viz.example.org" {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Upstream.TimeoutSeconds != 3 {
		t.Errorf("TimeoutSeconds = %d, want 3", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}

	// Omitted field keeps its default.
	if cfg.Upstream.BaseURL != Default().Upstream.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.Upstream.BaseURL)
	}
}

// TestLoadMissingFile verifies a nonexistent path errors.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// TestValidateConstraints exercises each validation failure.
func TestValidateConstraints(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"empty bind", func(c *Config) { c.Server.Bind = "" }, "server.bind"},
		{"empty upstream url", func(c *Config) { c.Upstream.BaseURL = "" }, "upstream.base_url"},
		{"zero timeout", func(c *Config) { c.Upstream.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"zero workers", func(c *Config) { c.Propagation.Workers = 0 }, "workers"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}
