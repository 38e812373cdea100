// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.API.BaseURL != "https://openrouter.ai/api/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Chat.MaxTokens != 4000 {
		t.Errorf("MaxTokens = %d, want 4000", cfg.Chat.MaxTokens)
	}
	if cfg.Chat.Model == "" {
		t.Error("default model must be set")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Chat.Model != Default().Chat.Model {
		t.Errorf("model = %q, want default", cfg.Chat.Model)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "1.0.0"

[api]
key = "sk-test"
requests_per_minute = 5

[chat]
model = "deepseek/deepseek-r1:free"
reasoning_mode = true

[ui]
theme = "light"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.Key != "sk-test" {
		t.Errorf("Key = %q", cfg.API.Key)
	}
	if cfg.Chat.Model != "deepseek/deepseek-r1:free" {
		t.Errorf("Model = %q", cfg.Chat.Model)
	}
	if !cfg.Chat.ReasoningMode {
		t.Error("ReasoningMode should be true")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	// Unset values fall back to defaults.
	if cfg.Chat.MaxTokens != 4000 {
		t.Errorf("MaxTokens = %d, want default 4000", cfg.Chat.MaxTokens)
	}
}

func TestLoadFixesInsecurePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("version = \"1.0.0\"\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromPath(path); err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("permissions = %o, want 0600", info.Mode().Perm())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-env")
	t.Setenv("OPENCHAT_MODEL", "qwen/qwq-32b:free")
	t.Setenv("OPENCHAT_REASONING", "true")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.API.Key != "sk-env" {
		t.Errorf("Key = %q, env override lost", cfg.API.Key)
	}
	if cfg.Chat.Model != "qwen/qwq-32b:free" {
		t.Errorf("Model = %q", cfg.Chat.Model)
	}
	if !cfg.Chat.ReasoningMode {
		t.Error("ReasoningMode env override lost")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad base url", func(c *Config) { c.API.BaseURL = "ftp://x" }, true},
		{"negative rpm", func(c *Config) { c.API.RequestsPerMinute = -1 }, true},
		{"zero max tokens", func(c *Config) { c.Chat.MaxTokens = 0 }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"zero typing speed", func(c *Config) { c.UI.TypingSpeed = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.API.Key = "sk-roundtrip"
	cfg.Chat.ReasoningMode = true
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("saved permissions = %o, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.API.Key != "sk-roundtrip" {
		t.Errorf("Key = %q after round trip", loaded.API.Key)
	}
	if !loaded.Chat.ReasoningMode {
		t.Error("ReasoningMode lost in round trip")
	}
}
