package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/config"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
	file     *sizeLimitedWriter
)

// Init configures the global zerolog logger. Output goes to stdout, and also to
// cfg.File when set.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var stdout io.Writer = os.Stdout
	if cfg.Pretty {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	out := stdout
	raw := io.Writer(os.Stdout)
	if path := strings.TrimSpace(cfg.File); path != "" {
		w, err := newSizeLimitedWriter(path, cfg.MaxMB)
		if err != nil {
			return err
		}
		writerMu.Lock()
		if file != nil {
			_ = file.Close()
		}
		file = w
		writerMu.Unlock()
		out = zerolog.MultiLevelWriter(stdout, w)
		raw = io.MultiWriter(os.Stdout, w)
	}

	writerMu.Lock()
	writer = raw
	writerMu.Unlock()

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(out).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer returns the raw destination configured by Init, for loggers that are
// not zerolog based.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// Close releases the log file, if any.
func Close() error {
	writerMu.Lock()
	defer writerMu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	writer = os.Stdout
	return err
}
