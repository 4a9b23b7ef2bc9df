package config

import (
	"errors"
	"testing"
)

func TestLoadLogDefaults(t *testing.T) {
	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "info" || cfg.MaxMB != 10 || cfg.Pretty || cfg.File != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadLogFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_FILE", "/tmp/bot.log")

	cfg, err := LoadLog()
	if err != nil {
		t.Fatalf("LoadLog() error = %v", err)
	}
	if cfg.Level != "DEBUG" || !cfg.Caller || cfg.File != "/tmp/bot.log" {
		t.Fatalf("unexpected log config: %+v", cfg)
	}
}

func TestLoadLogRejectsUnknownLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	_, err := LoadLog()
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "LOG_LEVEL" {
		t.Fatalf("expected LOG_LEVEL configuration error, got %v", err)
	}
}
