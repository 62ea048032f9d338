// Package config provides configuration loading and structs for the Ablage server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. Runtime DMS settings
// (archive/import paths, password) live in their own JSON file under
// DMS.BaseDir and are managed by the archive service, not here.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	DMS      DMSConfig      `yaml:"dms"`
	Provider ProviderConfig `yaml:"provider"`
	Watch    WatchConfig    `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DMSConfig holds the base directory for archive state.
type DMSConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// ProviderConfig holds AI backend selection. Mode "auto" picks the first
// configured backend; a concrete mode forces one. API keys always come from
// the environment, never from this file.
type ProviderConfig struct {
	Mode      string `yaml:"mode"`
	OllamaURL string `yaml:"ollama_url"`
}

// WatchConfig holds import directory watch settings.
type WatchConfig struct {
	Enabled  bool `yaml:"enabled"`
	AutoSort bool `yaml:"auto_sort"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.DMS.BaseDir = expandPath(cfg.DMS.BaseDir, filepath.Dir(path))

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
