// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists guide configuration.
//
// Configuration is stored in TOML at:
//   - ~/.guide/config.toml
//
// Environment variables override file values (GUIDE_* prefix).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// TYPES
// =============================================================================

// Config is the root configuration.
type Config struct {
	Gateway GatewayConfig `toml:"gateway"`
	Server  ServerConfig  `toml:"server"`
	GitHub  GitHubConfig  `toml:"github"`
	Cache   CacheConfig   `toml:"cache"`
	History HistoryConfig `toml:"history"`
	UI      UIConfig      `toml:"ui"`
}

// GatewayConfig points the TUI at its backend.
type GatewayConfig struct {
	// BaseURL is the guide backend address.
	BaseURL string `toml:"base_url"`
}

// ServerConfig configures the `guide serve` backend.
type ServerConfig struct {
	Port int `toml:"port"`

	// VendorKey authenticates against the upstream LLM provider.
	VendorKey string `toml:"vendor_key"`

	// VendorBaseURL is the OpenAI-compatible endpoint to forward to.
	VendorBaseURL string `toml:"vendor_base_url"`

	// Model is the model requested from the vendor.
	Model string `toml:"model"`
}

// GitHubConfig configures repository analysis.
type GitHubConfig struct {
	// Token is optional; unauthenticated requests use the anonymous
	// rate limit.
	Token string `toml:"token"`
}

// CacheConfig configures the repository metadata cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`

	// TTLMinutes is how long cached metadata stays fresh.
	TTLMinutes int `toml:"ttl_minutes"`
}

// HistoryConfig configures conversation persistence.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`

	// MaxConversations caps stored conversations; oldest are pruned.
	MaxConversations int `toml:"max_conversations"`
}

// UIConfig holds terminal UI toggles.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme"`

	// SyntaxHighlight enables chroma highlighting in code blocks.
	SyntaxHighlight bool `toml:"syntax_highlight"`

	// ShowTokenCount shows the prompt token estimate in the status bar.
	ShowTokenCount bool `toml:"show_token_count"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".guide")

	return &Config{
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8787",
		},
		Server: ServerConfig{
			Port:          8787,
			VendorBaseURL: "https://api.perplexity.ai",
			Model:         "llama-3.1-70b-instruct",
		},
		Cache: CacheConfig{
			Enabled:    true,
			Path:       filepath.Join(base, "cache.db"),
			TTLMinutes: 60,
		},
		History: HistoryConfig{
			Enabled:          true,
			Dir:              filepath.Join(base, "conversations"),
			MaxConversations: 100,
		},
		UI: UIConfig{
			Theme:           "dark",
			SyntaxHighlight: true,
			ShowTokenCount:  true,
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the configuration directory (~/.guide).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".guide"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file, fills defaults for missing fields, and
// applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as TOML, creating the directory with
// restrictive permissions (the file can hold API keys).
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// OVERRIDES AND VALIDATION
// =============================================================================

// ApplyEnvOverrides applies GUIDE_* environment variables on top of the
// loaded values.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("GUIDE_GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("GUIDE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("GUIDE_VENDOR_KEY"); v != "" {
		c.Server.VendorKey = v
	}
	if v := os.Getenv("GUIDE_VENDOR_URL"); v != "" {
		c.Server.VendorBaseURL = v
	}
	if v := os.Getenv("GUIDE_MODEL"); v != "" {
		c.Server.Model = v
	}
	if v := os.Getenv("GUIDE_GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GUIDE_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base_url cannot be empty")
	}
	if c.Cache.TTLMinutes < 0 {
		return fmt.Errorf("cache ttl_minutes cannot be negative: %d", c.Cache.TTLMinutes)
	}
	if c.History.MaxConversations < 0 {
		return fmt.Errorf("history max_conversations cannot be negative: %d", c.History.MaxConversations)
	}
	switch c.UI.Theme {
	case "dark", "light":
	default:
		return fmt.Errorf("invalid theme %q: must be dark or light", c.UI.Theme)
	}
	return nil
}
