// Package config loads server settings from an optional YAML file
// with environment variables taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	DefaultLevel   int `yaml:"default_level"`
	WaitTimeoutSec int `yaml:"wait_timeout_sec"`
	MaxSessions    int `yaml:"max_sessions"`
}

// Load reads the YAML file at path when it exists, then applies env
// overrides. An empty path falls back to CONFIG_FILE or
// chessmatch.yaml in the working directory; a missing file is not an
// error since env-only setups are common.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:     ":8470",
		DefaultLevel:   5,
		WaitTimeoutSec: 30,
		MaxSessions:    200,
	}

	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path == "" {
		path = "chessmatch.yaml"
	}
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("REDIS_URL")); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(os.Getenv("DATABASE_URL")); v != "" {
		cfg.DatabaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_DEFAULT_LEVEL")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.DefaultLevel = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("CHESS_WAIT_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WaitTimeoutSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_SESSIONS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSessions = n
		}
	}

	if cfg.DefaultLevel < 1 || cfg.DefaultLevel > 10 {
		return nil, fmt.Errorf("default_level %d out of range 1-10", cfg.DefaultLevel)
	}
	if cfg.ListenAddr == "" {
		return nil, fmt.Errorf("listen_addr is required")
	}
	return cfg, nil
}
