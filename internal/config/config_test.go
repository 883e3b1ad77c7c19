// NPC Graph - Tabletop Campaign Relationship Mapping
// Copyright 2026 Liza Malinina (LizaMalinina)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/LizaMalinina/npc-graph

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 8320 {
		t.Errorf("expected default port 8320, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "/data/npcgraph.duckdb" {
		t.Errorf("unexpected default database path %q", cfg.Database.Path)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("unexpected default token TTL %v", cfg.Auth.TokenTTL)
	}
	if !cfg.Security.RateLimitEnabled {
		t.Error("rate limiting should default to enabled")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DUCKDB_PATH", ":memory:")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != ":memory:" {
		t.Errorf("expected :memory:, got %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug, got %q", cfg.Logging.Level)
	}
	want := []string{"https://a.example.com", "https://b.example.com"}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("unexpected CORS origins %v", cfg.Security.CORSOrigins)
	}
}

func TestConfigFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 8400\nlogging:\n  level: warn\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	// Env still wins over the file.
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 8400 {
		t.Errorf("expected file port 8400, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("env should override file, got %q", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config { return defaultConfig() }

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg = base()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 should fail validation")
	}

	cfg = base()
	cfg.Database.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty database path should fail validation")
	}

	cfg = base()
	cfg.Server.Environment = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("production without a JWT secret should fail validation")
	}

	cfg = base()
	cfg.Server.Environment = "production"
	cfg.Auth.JWTSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("production with a secret should validate: %v", err)
	}
}

func TestUnknownEnvVarsIgnored(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("PATH should be dropped, got %q", got)
	}
	if got := envTransformFunc("JWT_SECRET"); got != "auth.jwt_secret" {
		t.Errorf("unexpected mapping %q", got)
	}
}
