// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  base_url: "https://api.skillswap.example"
  ws_url: "wss://api.skillswap.example/channel"
  request_timeout: "15s"

history:
  page_size: 30

scroll:
  bottom_threshold: 4
  top_threshold: 2

cache:
  enabled: true
  path: "./messages.db"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://api.skillswap.example" {
		t.Errorf("Server.BaseURL = %q, want %q", cfg.Server.BaseURL, "https://api.skillswap.example")
	}
	if cfg.Server.WSURL != "wss://api.skillswap.example/channel" {
		t.Errorf("Server.WSURL = %q, want %q", cfg.Server.WSURL, "wss://api.skillswap.example/channel")
	}
	if cfg.Server.RequestTimeout != 15*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want %v", cfg.Server.RequestTimeout, 15*time.Second)
	}
	if cfg.History.PageSize != 30 {
		t.Errorf("History.PageSize = %d, want 30", cfg.History.PageSize)
	}
	if cfg.Scroll.BottomThreshold != 4 {
		t.Errorf("Scroll.BottomThreshold = %d, want 4", cfg.Scroll.BottomThreshold)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("SWAPCHAT_BASE_URL", "https://staging.skillswap.example")

	configPath := writeConfig(t, `
server:
  base_url: "${SWAPCHAT_BASE_URL}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.BaseURL != "https://staging.skillswap.example" {
		t.Errorf("Server.BaseURL = %q, want expanded env value", cfg.Server.BaseURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
server:
  base_url: "http://localhost:3000"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.WSURL != "ws://localhost:3000/channel" {
		t.Errorf("Server.WSURL = %q, want derived ws URL", cfg.Server.WSURL)
	}
	if cfg.Server.RequestTimeout != 30*time.Second {
		t.Errorf("Server.RequestTimeout = %v, want 30s default", cfg.Server.RequestTimeout)
	}
	if cfg.History.PageSize != 20 {
		t.Errorf("History.PageSize = %d, want 20 default", cfg.History.PageSize)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: "info"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for missing base_url, got nil")
	}
	if !strings.Contains(err.Error(), "server.base_url") {
		t.Errorf("error = %v, want mention of server.base_url", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  base_url: "http://localhost:3000"
  request_timeout: "soon"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "request_timeout") {
		t.Errorf("error = %v, want mention of request_timeout", err)
	}
}

func TestLoad_CacheRequiresPath(t *testing.T) {
	configPath := writeConfig(t, `
server:
  base_url: "http://localhost:3000"

cache:
  enabled: true
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for cache without path, got nil")
	}
	if !strings.Contains(err.Error(), "cache.path") {
		t.Errorf("error = %v, want mention of cache.path", err)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}
