package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/devserver"
	"tictactoe-client/internal/logging"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	if err := logging.Init(logCfg); err != nil {
		panic(err)
	}
	cfg, err := config.LoadDevServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load devserver config failed")
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           devserver.New(devserver.Options{HistoryStatus: cfg.HistoryStatus}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("devserver_listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
