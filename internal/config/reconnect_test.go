package config

import (
	"testing"
	"time"
)

func TestLoadReconnectDefaults(t *testing.T) {
	cfg, err := LoadReconnect()
	if err != nil {
		t.Fatalf("LoadReconnect() error = %v", err)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
}

func TestLoadReconnectParse(t *testing.T) {
	t.Setenv("RECONNECT_MAX_ATTEMPTS", "5")

	cfg, err := LoadReconnect()
	if err != nil {
		t.Fatalf("LoadReconnect() error = %v", err)
	}
	if cfg.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
}

func TestLoadHTTPParseDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "2s")

	cfg, err := LoadHTTP()
	if err != nil {
		t.Fatalf("LoadHTTP() error = %v", err)
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", cfg.Timeout)
	}
}
