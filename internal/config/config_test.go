package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.Server.Port != 8585 {
		t.Errorf("default port = %d, want 8585", cfg.Server.Port)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("default database path is empty")
	}

	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		t.Fatalf("GetCacheTTL: %v", err)
	}
	if ttl != 0 {
		t.Errorf("default TTL = %v, want 0 (never expire)", ttl)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://api.example.test"
	cfg.Auth.TokenFile = "/tmp/token"
	cfg.Cache.TTL = "720h"
	cfg.Server.Port = 9000

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if loaded.API.BaseURL != cfg.API.BaseURL {
		t.Errorf("BaseURL = %q, want %q", loaded.API.BaseURL, cfg.API.BaseURL)
	}
	if loaded.Auth.TokenFile != cfg.Auth.TokenFile {
		t.Errorf("TokenFile = %q, want %q", loaded.Auth.TokenFile, cfg.Auth.TokenFile)
	}
	if loaded.Cache.TTL != "720h" || loaded.Server.Port != 9000 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	loaded, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Server.Port != DefaultConfig().Server.Port {
		t.Errorf("missing file did not yield defaults: %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "soon" }, true},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, true},
		{"huge port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"empty db path", func(c *Config) { c.Storage.DatabasePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
