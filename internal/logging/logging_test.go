package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/config"
)

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.log")
	if err := Init(config.LogConfig{Level: "debug", File: path, MaxMB: 1}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer func() {
		_ = Close()
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}()

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Fatalf("GlobalLevel = %v, want debug", zerolog.GlobalLevel())
	}
	log.Info().Str("game_id", "g-1").Msg("session_connected")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"message":"session_connected"`) {
		t.Fatalf("log file missing entry: %s", data)
	}
	if Writer() == os.Stdout {
		t.Fatal("Writer() should include the log file")
	}
}

func TestInitUnknownLevelFallsBackToInfo(t *testing.T) {
	if err := Init(config.LogConfig{Level: "loud"}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Fatalf("GlobalLevel = %v, want info", zerolog.GlobalLevel())
	}
}
