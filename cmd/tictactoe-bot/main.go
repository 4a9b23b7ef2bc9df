package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/gameclient"
	"tictactoe-client/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	if err := app().Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("tictactoe_bot_failed")
		os.Exit(1)
	}
}

func app() *cli.Command {
	return &cli.Command{
		Name:  "tictactoe-bot",
		Usage: "play tic-tac-toe against the game services from the terminal",
		Commands: []*cli.Command{
			playCommand(),
			historyCommand(),
			whoamiCommand(),
		},
	}
}

// setup loads the client configuration, starts logging and builds the game
// client. The returned func releases both.
func setup(h gameclient.Handlers) (*gameclient.Client, func(), error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Init(cfg.Log); err != nil {
		return nil, nil, err
	}
	client := gameclient.New(cfg, h)
	return client, func() {
		client.Close()
		_ = logging.Close()
	}, nil
}
