package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the tradegate MCP server.
type Config struct {
	Broker  Broker  `yaml:"broker"`
	Sinopac Sinopac `yaml:"sinopac"`
	Alpaca  Alpaca  `yaml:"alpaca"`
	Logging Logging `yaml:"logging"`
}

// Broker selects which brokerage backend the server connects to.
type Broker struct {
	// Backend is one of "sinopac", "alpaca", or "simulator".
	Backend string `yaml:"backend"`
}

// Sinopac holds the endpoint for the Sinopac trading gateway.
type Sinopac struct {
	BaseURL string `yaml:"base_url"`
}

// Alpaca holds credentials and endpoints for the Alpaca broker API.
type Alpaca struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
	DataURL   string `yaml:"data_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no config file exists:
// simulator backend, info-level logging. It lets the binary run with
// nothing but environment variables set.
func Default() *Config {
	return &Config{
		Broker:  Broker{Backend: "simulator"},
		Logging: Logging{Level: "info"},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides. A missing
// file is not an error: defaults are used and env overrides still apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fall through to env-only configuration.
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if cfg.Broker.Backend == "" {
		cfg.Broker.Backend = "simulator"
	}

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEGATE_BROKER"); v != "" {
		cfg.Broker.Backend = v
	}

	if v := os.Getenv("TRADEGATE_SINOPAC_BASE_URL"); v != "" {
		cfg.Sinopac.BaseURL = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.Alpaca.APISecret = v
	}
	if v := os.Getenv("ALPACA_BASE_URL"); v != "" {
		cfg.Alpaca.BaseURL = v
	}
	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars (highest priority — canonical names used by SDK).
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.Alpaca.APISecret = v
	}
}
