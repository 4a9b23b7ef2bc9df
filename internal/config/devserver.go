package config

import "github.com/caarlos0/env/v11"

type DevServerConfig struct {
	HTTPAddr      string `env:"DEVSERVER_ADDR" envDefault:":8080"`
	HistoryStatus int    `env:"DEVSERVER_HISTORY_STATUS" envDefault:"200"`
}

func LoadDevServer() (DevServerConfig, error) {
	var cfg DevServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
