// Package config loads casegraph configuration from a TOML file.
//
// Configuration supplies connection details the CLI flags would otherwise
// repeat on every invocation: the backend URL and token, server address, and
// the Redis/MongoDB endpoints used in server deployments. Flags always win
// over file values; the file only sets defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const appName = "casegraph"

// Config is the root configuration document.
type Config struct {
	Backend Backend `toml:"backend"`
	Server  Server  `toml:"server"`
	Mongo   Mongo   `toml:"mongo"`
	Redis   Redis   `toml:"redis"`
	Cache   Cache   `toml:"cache"`
	Layout  Layout  `toml:"layout"`
}

// Backend configures the case-management backend connection.
type Backend struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// Server configures the HTTP API server.
type Server struct {
	Addr string `toml:"addr"`
}

// Mongo configures snapshot persistence.
type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Redis configures the shared cache for server deployments.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// Cache configures the local file cache used by the CLI.
type Cache struct {
	Dir      string `toml:"dir"`
	Disabled bool   `toml:"disabled"`
}

// Layout overrides the layout engine's spacing defaults. Zero values fall
// through to the engine defaults.
type Layout struct {
	BaseX        float64 `toml:"base_x"`
	BaseY        float64 `toml:"base_y"`
	LevelSpacing float64 `toml:"level_spacing"`
	NodeSpacing  float64 `toml:"node_spacing"`
	Band         float64 `toml:"band"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath returns the configuration file location using the XDG standard
// (~/.config/casegraph/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the configuration file at path, applied over the defaults.
// An empty path means the default location. A missing file is not an error;
// the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
