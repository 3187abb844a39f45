package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// config.toml key mapping for the framed echo server.
type fileConfig struct {
	Listen      string `toml:"listen"`
	Format      string `toml:"format"`
	MaxPayload  int    `toml:"max_payload"`
	AcceptRate  int    `toml:"accept_rate"`
	AcceptBurst int    `toml:"accept_burst"`
	KeyHex      string `toml:"key_hex"`
	LogLevel    string `toml:"log_level"`
}

type serverConfig struct {
	Listen      string
	Format      string
	MaxPayload  int
	AcceptRate  int
	AcceptBurst int
	KeyHex      string
	LogLevel    string
}

func defaultConfig() serverConfig {
	return serverConfig{
		Listen:   ":9400",
		Format:   "simple",
		LogLevel: "info",
	}
}

// loadConfig overlays the TOML file onto the defaults; only keys present in
// the file override.
func loadConfig(path string) (serverConfig, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serverConfig{}, fmt.Errorf("load server config: %w", err)
	}

	if meta.IsDefined("listen") {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if meta.IsDefined("max_payload") {
		if raw.MaxPayload < 0 {
			return serverConfig{}, fmt.Errorf("load server config: max_payload must not be negative")
		}
		cfg.MaxPayload = raw.MaxPayload
	}
	if meta.IsDefined("accept_rate") {
		cfg.AcceptRate = raw.AcceptRate
	}
	if meta.IsDefined("accept_burst") {
		cfg.AcceptBurst = raw.AcceptBurst
	}
	if meta.IsDefined("key_hex") {
		cfg.KeyHex = strings.TrimSpace(raw.KeyHex)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	return cfg, nil
}
