package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8470" || cfg.DefaultLevel != 5 || cfg.WaitTimeoutSec != 30 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessmatch.yaml")
	body := "listen_addr: \":9000\"\ndefault_level: 7\nmax_sessions: 10\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":9000" || cfg.DefaultLevel != 7 || cfg.MaxSessions != 10 {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessmatch.yaml")
	if err := os.WriteFile(path, []byte("default_level: 7\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHESS_DEFAULT_LEVEL", "2")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultLevel != 2 {
		t.Fatalf("env should win over file, got %d", cfg.DefaultLevel)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Fatalf("redis url not applied: %q", cfg.RedisURL)
	}
}

func TestRejectsBadDefaultLevel(t *testing.T) {
	t.Setenv("CHESS_DEFAULT_LEVEL", "11")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for out-of-range default level")
	}
}

func TestMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chessmatch.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [broken\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
