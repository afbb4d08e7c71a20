// Package config handles loading, defaulting, and validation of the service
// TOML configuration. Every section maps to a typed struct so the rest of
// the codebase gets strong typing without manual key lookups.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
)

// Config is the top-level configuration, mirroring the TOML sections.
type Config struct {
	Server      ServerConfig      `toml:"server"      json:"server"`
	Upstream    UpstreamConfig    `toml:"upstream"    json:"upstream"`
	Propagation PropagationConfig `toml:"propagation" json:"propagation"`
	Logging     LoggingConfig     `toml:"logging"     json:"logging"`
}

type ServerConfig struct {
	Bind           string   `toml:"bind"            json:"bind"`
	TrustProxy     bool     `toml:"trust_proxy"     json:"trust_proxy"`
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins"`
}

type UpstreamConfig struct {
	BaseURL        string `toml:"base_url"        json:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds" json:"timeout_seconds"`
}

type PropagationConfig struct {
	Workers int `toml:"workers" json:"workers"`
}

type LoggingConfig struct {
	Level string `toml:"level" json:"level"`
}

// Default returns a Config populated with sane defaults. Values here are
// used whenever the TOML file omits a field.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind:           "0.0.0.0:8080",
			TrustProxy:     false,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Upstream: UpstreamConfig{
			BaseURL:        "https://celestrak.org/NORAD/elements/gp.php",
			TimeoutSeconds: 10,
		},
		Propagation: PropagationConfig{
			Workers: runtime.NumCPU(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the TOML file at path, layers it on top of the defaults, and
// validates the result. An error is returned if the file can't be read,
// parsed, or if any constraint is violated.
func Load(path string) (Config, error) {
	cfg := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the constraints every loaded or overridden Config must
// satisfy.
func Validate(cfg Config) error {
	if cfg.Server.Bind == "" {
		return errors.New("server.bind must not be empty")
	}
	if cfg.Upstream.BaseURL == "" {
		return errors.New("upstream.base_url must not be empty")
	}
	if cfg.Upstream.TimeoutSeconds < 1 {
		return errors.New("upstream.timeout_seconds must be >= 1")
	}
	if cfg.Propagation.Workers < 1 {
		return errors.New("propagation.workers must be >= 1")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", cfg.Logging.Level)
	}
	return nil
}
