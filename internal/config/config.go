// Package config loads and saves the companion configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// Auth configuration
	Auth AuthConfig `toml:"auth"`

	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// Cache configuration
	Cache CacheConfig `toml:"cache"`

	// Local HTTP server configuration
	Server ServerConfig `toml:"server"`
}

// APIConfig contains vendor API settings.
type APIConfig struct {
	BaseURL string `toml:"base_url"` // API host, empty selects production
}

// AuthConfig contains bearer token sourcing settings.
type AuthConfig struct {
	TokenFile string `toml:"token_file"` // Path to a file holding the token, watched for changes
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	DatabasePath string `toml:"database_path"` // SQLite database path
	CatalogPath  string `toml:"catalog_path"`  // Baseline card catalog JSON, empty for none
}

// CacheConfig contains unique card cache settings.
type CacheConfig struct {
	TTL string `toml:"ttl"` // Entry lifetime (e.g. "720h"), "0" keeps forever
}

// ServerConfig contains local API server settings.
type ServerConfig struct {
	Port int `toml:"port"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".altered-companion")

	return &Config{
		API: APIConfig{
			BaseURL: "",
		},
		Auth: AuthConfig{
			TokenFile: "",
		},
		Storage: StorageConfig{
			DatabasePath: filepath.Join(dataDir, "companion.db"),
			CatalogPath:  "",
		},
		Cache: CacheConfig{
			TTL: "0",
		},
		Server: ServerConfig{
			Port: 8585,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".altered-companion")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns the default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	return c.SaveTo(path)
}

// SaveTo saves the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	return nil
}

// GetCacheTTL returns the cache TTL as a duration. An empty or "0" TTL
// means entries never expire.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" || c.Cache.TTL == "0" {
		return 0, nil
	}
	return time.ParseDuration(c.Cache.TTL)
}
