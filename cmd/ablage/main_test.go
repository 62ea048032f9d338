package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_explicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ablage.yaml")
	content := `
debug: true
server:
  host: "0.0.0.0"
  port: 9000
dms:
  base_dir: "` + filepath.Join(dir, "archiv") + `"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, from, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if from != configPath {
		t.Errorf("resolved path = %q, want %q", from, configPath)
	}
	if !cfg.Debug || cfg.Server.Port != 9000 {
		t.Errorf("unexpected config: debug=%v port=%d", cfg.Debug, cfg.Server.Port)
	}
	if cfg.DMS.BaseDir != filepath.Join(dir, "archiv") {
		t.Errorf("BaseDir = %q", cfg.DMS.BaseDir)
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, from, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if filepath.Base(from) != "config.yaml" {
		t.Errorf("resolved path = %q, want cwd config.yaml", from)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Server.Port)
	}
}

func TestLoadConfig_missingDefaultUsesBuiltins(t *testing.T) {
	dir := t.TempDir()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, from, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if from != "" {
		t.Errorf("resolved path = %q, want empty for builtin defaults", from)
	}
	if cfg.Server.Port != 8080 || cfg.Provider.Mode != "auto" {
		t.Errorf("unexpected defaults: port=%d mode=%q", cfg.Server.Port, cfg.Provider.Mode)
	}
}

func TestLoadConfig_explicitMissingPathFails(t *testing.T) {
	if _, _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("loadConfig() expected error for missing explicit path")
	}
}
