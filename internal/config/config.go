// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for openchat.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation. File location: ~/.openchat/config.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/openchat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete openchat configuration.
type Config struct {
	Version string `toml:"version"`

	// API configuration (OpenRouter)
	API APIConfig `toml:"api"`

	// Chat behavior
	Chat ChatConfig `toml:"chat"`

	// Persistence
	Storage StorageConfig `toml:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig contains OpenRouter connection settings.
type APIConfig struct {
	// Key is the OpenRouter API key. Also settable via OPENROUTER_API_KEY.
	Key string `toml:"key"`
	// BaseURL is the OpenRouter endpoint base.
	BaseURL string `toml:"base_url"`
	// SiteURL is sent as the HTTP-Referer header for OpenRouter rankings.
	SiteURL string `toml:"site_url"`
	// SiteName is sent as the X-Title header.
	SiteName string `toml:"site_name"`
	// RequestsPerMinute throttles outgoing requests (0 = no throttle).
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// ChatConfig contains chat behavior settings.
type ChatConfig struct {
	// Model is the default model ID when no preference is stored.
	Model string `toml:"model"`
	// ReasoningMode enables structured reasoning prompts by default.
	ReasoningMode bool `toml:"reasoning_mode"`
	// MaxTokens caps the completion length per request.
	MaxTokens int `toml:"max_tokens"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Path is the sqlite database file (empty = <config dir>/conversations.db).
	Path string `toml:"path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// CompactMode uses a more compact layout.
	CompactMode bool `toml:"compact_mode"`
	// TypingSpeed is how many greeting characters are revealed per tick.
	TypingSpeed int `toml:"typing_speed"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",
		API: APIConfig{
			BaseURL:           "https://openrouter.ai/api/v1",
			SiteURL:           "https://github.com/jeranaias/openchat-tui",
			SiteName:          "OpenChat TUI",
			RequestsPerMinute: 20,
		},
		Chat: ChatConfig{
			Model:         "meta-llama/llama-3.3-70b-instruct:free",
			ReasoningMode: false,
			MaxTokens:     4000,
		},
		Storage: StorageConfig{
			Path: "",
		},
		UI: UIConfig{
			Theme:       "dark",
			CompactMode: false,
			TypingSpeed: 3,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the openchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".openchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// DatabasePath resolves the sqlite database path, falling back to the
// default location under the config directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations.db"), nil
}

// ensureSecurePermissions checks and fixes permissions on the config file.
// SECURITY: Config files should be 0600 (owner read/write only) to protect API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions: %w", err)
		}
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load loads configuration from the default config file, falling back to
// built-in defaults when the file is absent. Environment overrides are
// applied last, then the result is validated.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file. A missing
// file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// Environment always wins over the file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OPENROUTER_API_KEY"); v != "" {
		c.API.Key = v
	}
	if v := os.Getenv("OPENCHAT_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("OPENCHAT_MODEL"); v != "" {
		c.Chat.Model = v
	}
	if v := os.Getenv("OPENCHAT_REASONING"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Chat.ReasoningMode = b
		}
	}
	if v := os.Getenv("OPENCHAT_DB_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("OPENCHAT_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = defaults.API.BaseURL
	}
	if c.API.SiteURL == "" {
		c.API.SiteURL = defaults.API.SiteURL
	}
	if c.API.SiteName == "" {
		c.API.SiteName = defaults.API.SiteName
	}
	if c.Chat.Model == "" {
		c.Chat.Model = defaults.Chat.Model
	}
	if c.Chat.MaxTokens == 0 {
		c.Chat.MaxTokens = defaults.Chat.MaxTokens
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.TypingSpeed == 0 {
		c.UI.TypingSpeed = defaults.UI.TypingSpeed
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return ValidationError{Field: "api.base_url", Message: "must be an http(s) URL"}
	}
	if c.API.RequestsPerMinute < 0 {
		return ValidationError{Field: "api.requests_per_minute", Message: "must be >= 0"}
	}
	if c.Chat.MaxTokens < 1 {
		return ValidationError{Field: "chat.max_tokens", Message: "must be >= 1"}
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be dark, light, or auto"}
	}
	if c.UI.TypingSpeed < 1 {
		return ValidationError{Field: "ui.typing_speed", Message: "must be >= 1"}
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveToPath(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# openchat configuration file")
	fmt.Fprintln(&buf, "# Generated by openchat - edit with care")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// RELIABILITY: Atomic write so a crash never leaves a truncated config.
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
