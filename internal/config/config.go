// Package config holds the previewd server configuration, loaded from an
// optional TOML file with command-line flags layered on top.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/typlive/previewd/internal/intern"
)

// Config is the full server configuration.
type Config struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	Path           string   `toml:"path"`
	AllowedOrigins []string `toml:"allowed_origins"`
	Retention      int      `toml:"retention"`
	TraceDB        string   `toml:"trace_db"`
	LogLevel       string   `toml:"log_level"`
	LogFormat      string   `toml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:      "127.0.0.1",
		Port:      23625,
		Path:      "/",
		Retention: intern.DefaultThreshold,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports configuration values the server cannot run with.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Retention < 1 {
		return fmt.Errorf("retention must be at least 1 epoch, got %d", c.Retention)
	}
	if c.Path == "" || c.Path[0] != '/' {
		return fmt.Errorf("path %q must start with /", c.Path)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
