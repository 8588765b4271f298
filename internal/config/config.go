// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/FelipeAlvarezM0/fiscalprovider/internal/errors"
	"github.com/FelipeAlvarezM0/fiscalprovider/internal/logging"
)

// signingKeyEnv names the environment variable holding the deployment
// secret that keys ruleset signatures.
const signingKeyEnv = "TAXCALC_SIGNING_KEY"

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Rulesets contains ruleset store configuration
	Rulesets RulesetConfig `json:"rulesets"`

	// SupportedState is the one state jurisdiction this deployment computes
	SupportedState string `json:"supported_state"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// RulesetConfig contains ruleset store settings
type RulesetConfig struct {
	// Backend selects the document source ("fs" or "sqlite")
	Backend string `json:"backend"`

	// Directory is the document directory for the fs backend
	Directory string `json:"directory"`

	// DatabasePath is the sqlite file for the sqlite backend
	DatabasePath string `json:"database_path"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".taxcalc")

	return &Config{
		Version: "1.0",
		Rulesets: RulesetConfig{
			Backend:      "fs",
			Directory:    filepath.Join(base, "rulesets"),
			DatabasePath: filepath.Join(base, "rulesets.db"),
		},
		SupportedState: "ND",
		Logging:        logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Config("read config file", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, errors.Config("parse config file", err)
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Config("create config directory", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Config("marshal config", err)
	}

	return os.WriteFile(path, data, 0644)
}

// SigningKey resolves the ruleset signing key from the environment,
// loading a .env file first when one exists. The key is a deployment
// secret and is never stored in the config file.
func SigningKey() ([]byte, error) {
	_ = godotenv.Load()

	key := os.Getenv(signingKeyEnv)
	if key == "" {
		return nil, errors.Config(signingKeyEnv+" is not set", nil)
	}
	return []byte(key), nil
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
