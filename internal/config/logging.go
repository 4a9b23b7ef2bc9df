package config

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// LogConfig controls the process logger. File output is size limited to MaxMB
// and rotated once.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty      bool   `env:"LOG_PRETTY"`
	Caller      bool   `env:"LOG_CALLER"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err != nil {
		return cfg, &ConfigurationError{Key: "LOG_LEVEL", Err: err}
	}
	return cfg, nil
}
