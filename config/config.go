// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	appName        = "digitalink"
	configFileName = "config.json"
)

// WritingArea is the fixed drawing surface size sent with every recognition
// request.
type WritingArea struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RecognizerConfig selects and configures the recognition backend.
type RecognizerConfig struct {
	Backend string `json:"backend"` // "myscript" or "openai"

	// MyScript credentials.
	ApplicationKey string `json:"application_key,omitempty"`
	HMACKey        string `json:"hmac_key,omitempty"`

	// OpenAI-compatible backend.
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`
}

// Config represents the application configuration.
type Config struct {
	// DefaultLanguage is the BCP-47 tag of the model selected at startup.
	DefaultLanguage string `json:"default_language"`

	// ModelDir stores downloaded model bundles. Empty means the default
	// under the user home directory.
	ModelDir string `json:"model_dir,omitempty"`

	// CacheDir stores the recognition-result cache. Empty disables caching.
	CacheDir string `json:"cache_dir,omitempty"`

	WritingArea WritingArea      `json:"writing_area"`
	Recognizer  RecognizerConfig `json:"recognizer"`
}

// configPath is a variable so tests can redirect it.
var configPath = func() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// Load loads configuration from the config file.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DefaultLanguage == "" {
		return fmt.Errorf("default language required")
	}
	switch c.Recognizer.Backend {
	case "", "myscript":
		if c.Recognizer.ApplicationKey == "" {
			return fmt.Errorf("application key required for myscript backend")
		}
		if c.Recognizer.HMACKey == "" {
			return fmt.Errorf("hmac key required for myscript backend")
		}
	case "openai":
		if c.Recognizer.APIKey == "" {
			return fmt.Errorf("api key required for openai backend")
		}
	default:
		return fmt.Errorf("unknown recognizer backend: %s", c.Recognizer.Backend)
	}
	return nil
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = "en-US"
	}
	if c.WritingArea.Width == 0 {
		c.WritingArea.Width = 1024
	}
	if c.WritingArea.Height == 0 {
		c.WritingArea.Height = 200
	}
	if c.Recognizer.Backend == "" {
		c.Recognizer.Backend = "myscript"
	}
}
