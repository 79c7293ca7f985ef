package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9090"
postgres:
  url: postgres://file
redis:
  addr: file:6379
cache:
  ttl: 30s
auth:
  tokens:
    dev-token: user-1
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("PUBLIC_SITE_URL", "https://play.example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "file:6379" {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.Postgres.URL != "postgres://env" || cfg.Server.SiteURL != "https://play.example.com" {
		t.Fatalf("expected env overrides, got %+v", cfg)
	}
	if cfg.Auth.Tokens["dev-token"] != "user-1" {
		t.Fatalf("expected static token, got %+v", cfg.Auth.Tokens)
	}
	if TTLDuration(cfg.Cache.TTL, time.Minute) != 30*time.Second {
		t.Fatalf("expected 30s cache ttl")
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "env:6379")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Redis.Addr != "env:6379" {
		t.Fatalf("expected env redis addr, got %q", cfg.Redis.Addr)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on bad input, got %v", got)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
