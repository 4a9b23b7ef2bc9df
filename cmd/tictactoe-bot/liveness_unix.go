//go:build unix

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/reconnect"
)

// watchLiveness maps SIGCONT (process resumed) to a focus edge and SIGUSR1
// (operator says the network is back) to an online edge.
func watchLiveness(focus, online *reconnect.Signal) func() {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGCONT, syscall.SIGUSR1)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-ch:
				log.Info().Str("signal", sig.String()).Msg("bot_liveness_signal")
				target := online
				if sig == syscall.SIGCONT {
					target = focus
				}
				target.Set(false)
				target.Set(true)
			}
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
