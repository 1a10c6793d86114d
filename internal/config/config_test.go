package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTP.Addr)
	}
	if cfg.Auth.JWTAccessTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl: %v", cfg.Auth.JWTAccessTTL)
	}
	if cfg.Moderation.ReportRateLimit != 10 {
		t.Fatalf("unexpected report rate limit: %d", cfg.Moderation.ReportRateLimit)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Env != "dev" {
		t.Fatalf("unexpected env: %q", cfg.Env)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
env: prod
http:
  addr: ":9090"
moderation:
  filter_cache_ttl: 1m
  report_rate_limit: 3
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Env != "prod" {
		t.Fatalf("unexpected env: %q", cfg.Env)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %q", cfg.HTTP.Addr)
	}
	if cfg.Moderation.FilterCacheTTL != time.Minute {
		t.Fatalf("unexpected filter cache ttl: %v", cfg.Moderation.FilterCacheTTL)
	}
	if cfg.Moderation.ReportRateLimit != 3 {
		t.Fatalf("unexpected report rate limit: %d", cfg.Moderation.ReportRateLimit)
	}
	if cfg.Postgres.DSN == "" {
		t.Fatal("expected default postgres dsn to survive partial yaml")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("env: prod\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("APP_ENV", "staging")
	t.Setenv("REDIS_DB", "5")
	t.Setenv("REPORT_RATE_WINDOW", "30s")
	t.Setenv("S3_USE_SSL", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Env != "staging" {
		t.Fatalf("unexpected env: %q", cfg.Env)
	}
	if cfg.Redis.DB != 5 {
		t.Fatalf("unexpected redis db: %d", cfg.Redis.DB)
	}
	if cfg.Moderation.ReportRateWindow != 30*time.Second {
		t.Fatalf("unexpected report rate window: %v", cfg.Moderation.ReportRateWindow)
	}
	if !cfg.S3.UseSSL {
		t.Fatal("expected s3 use_ssl override")
	}
}

func TestEnvOverrideParseErrors(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for malformed duration override")
	}
}
