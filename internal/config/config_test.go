package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TRADEGATE_BROKER", "TRADEGATE_SINOPAC_BASE_URL",
		"ALPACA_API_KEY", "ALPACA_API_SECRET", "ALPACA_BASE_URL", "ALPACA_DATA_URL",
		"APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnvOverrides(t)

	yamlContent := []byte(`
broker:
  backend: "sinopac"
sinopac:
  base_url: "https://gateway.example.com"
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  base_url: "https://paper-api.alpaca.markets"
  data_url: "https://data.alpaca.markets"
logging:
  level: "debug"
`)

	path := filepath.Join(t.TempDir(), "tradegate.yaml")
	if err := os.WriteFile(path, yamlContent, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Broker.Backend != "sinopac" {
		t.Errorf("Broker.Backend = %q, want %q", cfg.Broker.Backend, "sinopac")
	}
	if cfg.Sinopac.BaseURL != "https://gateway.example.com" {
		t.Errorf("Sinopac.BaseURL = %q, want %q", cfg.Sinopac.BaseURL, "https://gateway.example.com")
	}
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnvOverrides(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}

	if cfg.Broker.Backend != "simulator" {
		t.Errorf("Broker.Backend = %q, want %q", cfg.Broker.Backend, "simulator")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv("TRADEGATE_BROKER", "alpaca")
	t.Setenv("ALPACA_API_KEY", "env-key")
	t.Setenv("APCA_API_KEY_ID", "canonical-key")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Broker.Backend != "alpaca" {
		t.Errorf("Broker.Backend = %q, want %q", cfg.Broker.Backend, "alpaca")
	}
	// Canonical Alpaca env var wins over ALPACA_API_KEY.
	if cfg.Alpaca.APIKey != "canonical-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "canonical-key")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
}
