package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type ReconnectConfig struct {
	MaxAttempts int `env:"RECONNECT_MAX_ATTEMPTS" envDefault:"3"`
}

type HTTPConfig struct {
	Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
}

func LoadReconnect() (ReconnectConfig, error) {
	var cfg ReconnectConfig
	err := env.Parse(&cfg)
	return cfg, err
}

func LoadHTTP() (HTTPConfig, error) {
	var cfg HTTPConfig
	err := env.Parse(&cfg)
	return cfg, err
}
