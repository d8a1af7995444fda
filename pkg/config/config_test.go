package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
environment: test
clickhouse:
  host: localhost
  port: 9000
  database: voltwatch
dashboard:
  collection: voltage
  window: 5s
cache:
  backend: memory
  ttl: 60s
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dashboard.Collection != "voltage" {
		t.Errorf("unexpected collection %q", cfg.Dashboard.Collection)
	}
	if cfg.Dashboard.Window.Std() != 5*time.Second {
		t.Errorf("unexpected window %v", cfg.Dashboard.Window.Std())
	}
	if cfg.Cache.TTL.Std() != time.Minute {
		t.Errorf("unexpected ttl %v", cfg.Cache.TTL.Std())
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment: test
clickhouse:
  host: localhost
  database: voltwatch
dashboard:
  collection: voltage
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected default memory backend, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Std() != 60*time.Second {
		t.Errorf("expected default 60s ttl, got %v", cfg.Cache.TTL.Std())
	}
	if cfg.Dashboard.Window.Std() != 5*time.Second {
		t.Errorf("expected default 5s window, got %v", cfg.Dashboard.Window.Std())
	}
}

func TestLoadMissingCollection(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
clickhouse:
  host: localhost
  database: voltwatch
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadBadBackend(t *testing.T) {
	_, err := Load(writeConfig(t, `
environment: test
clickhouse:
  host: localhost
  database: voltwatch
cache:
  backend: memcached
dashboard:
  collection: voltage
`))
	if err == nil {
		t.Fatal("expected validation error for unknown backend")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("READINGS_COLLECTION", "current")
	t.Setenv("CLICKHOUSE_HOST", "ch.internal")

	cfg, err := LoadWithEnv(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dashboard.Collection != "current" {
		t.Errorf("env override not applied, got %q", cfg.Dashboard.Collection)
	}
	if cfg.ClickHouse.Host != "ch.internal" {
		t.Errorf("env override not applied, got %q", cfg.ClickHouse.Host)
	}
}
