package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
listen = "127.0.0.1:9500"
format = "checksum32"
max_payload = 4096
accept_rate = 50
accept_burst = 10
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9500" {
		t.Fatalf("unexpected listen: %q", cfg.Listen)
	}
	if cfg.Format != "checksum32" {
		t.Fatalf("unexpected format: %q", cfg.Format)
	}
	if cfg.MaxPayload != 4096 || cfg.AcceptRate != 50 || cfg.AcceptBurst != 10 {
		t.Fatalf("unexpected limits: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %q", cfg.LogLevel)
	}
	if cfg.KeyHex != "" {
		t.Fatalf("key should stay unset")
	}
}

func TestLoadConfigKeepsDefaultsForMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`format = "websocket"`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	def := defaultConfig()
	if cfg.Listen != def.Listen || cfg.LogLevel != def.LogLevel {
		t.Fatalf("defaults not preserved: %+v", cfg)
	}
	if cfg.Format != "websocket" {
		t.Fatalf("override lost: %q", cfg.Format)
	}
}

func TestLoadConfigRejectsNegativeMaxPayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`max_payload = -1`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadConfig(path); err == nil {
		t.Fatalf("expected error for negative max_payload")
	}
}
