// Package config loads the CLI's TOML configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the settings the CLI needs to reach the definition service.
// The token itself never lives in the file; only the name of the
// environment variable that carries it does.
type Config struct {
	BaseURL     string `toml:"base_url"`
	TokenEnv    string `toml:"token_env"`
	Workspace   string `toml:"workspace"`
	Item        string `toml:"item"`
	Locale      string `toml:"locale"`
	HistoryPath string `toml:"history_path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:  "https://api.fabric.microsoft.com/v1",
		TokenEnv: "FLOWDEF_TOKEN",
		Locale:   "en-US",
	}
}

// DefaultPath returns ~/.flowdef/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".flowdef", "config.toml"), nil
}

// Load reads the config at path, layering file values over Default().
// A missing file is not an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
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

// Token resolves the bearer token from the configured environment variable.
func (c Config) Token() string {
	return os.Getenv(c.TokenEnv)
}
