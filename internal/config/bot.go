package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type BotConfig struct {
	Mode       string        `env:"BOT_MODE" envDefault:"bot"`
	Symbol     string        `env:"BOT_SYMBOL" envDefault:"x"`
	MoveDelay  time.Duration `env:"BOT_MOVE_DELAY" envDefault:"500ms"`
	Greeting   string        `env:"BOT_GREETING" envDefault:"good luck"`
	GuestLogin bool          `env:"BOT_GUEST_LOGIN" envDefault:"true"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
