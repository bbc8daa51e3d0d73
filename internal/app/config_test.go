package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deskchat.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "HTTP_ADDR", "ACCESS_TOKEN_TTL", "PROTOCOL_MAX_ATTEMPTS",
		"DB_DRIVER", "SQLITE_PATH", "REDIS_ADDR", "REDIS_CHANNEL", "CORS_ORIGINS",
		"OTEL_ENABLED", "OTEL_SAMPLER_RATIO", "JWT_SECRET_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ProtocolMaxAttempts != 8 || cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DB.Driver != "postgres" {
		t.Fatalf("default driver: %q", cfg.DB.Driver)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := writeConfig(t, `
http_addr: ":9090"
access_token_ttl: 30m
protocol_max_attempts: 3
cors_origins: ["https://desk.example.com"]
db:
  driver: sqlite
  sqlite_path: /tmp/desk.db
otel:
  enabled: true
  sample_ratio: 0.5
`)
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Fatalf("env should win over file, got %q", cfg.HTTPAddr)
	}
	if cfg.AccessTokenTTL != 30*time.Minute || cfg.ProtocolMaxAttempts != 3 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.SQLitePath != "/tmp/desk.db" {
		t.Fatalf("db section: %+v", cfg.DB)
	}
	if len(cfg.CORSOrigins) != 1 || !cfg.OTel.Enabled || cfg.OTel.SampleRatio != 0.5 {
		t.Fatalf("lists/nested: %+v", cfg)
	}
	if cfg.RedisAddr != "redis:6379" || cfg.RedisChannel != "deskchat:realtime" {
		t.Fatalf("redis: %q %q", cfg.RedisAddr, cfg.RedisChannel)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}

	t.Setenv("DB_DRIVER", "")
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
