// Package reconnect recovers a game session after it drops, driven by liveness
// triggers (focus regained, network back) and bounded by a fixed attempt ceiling.
package reconnect

import (
	"sync"

	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/protocol"
	"tictactoe-client/internal/session"
)

const (
	defaultMaxAttempts = 3

	msgExhausted = "Unable to reconnect to game server"
)

// Target is the session being kept alive. The controller only connects and
// queries it; it never touches the transport.
type Target interface {
	Connect(gameID string)
	State() protocol.ConnectionState
}

type Controller struct {
	target  Target
	limit   int
	onError session.ErrorFunc

	mu        sync.Mutex
	gameID    string
	attempts  int
	exhausted bool
	closed    bool
	unsubs    []func()
}

func New(target Target, cfg config.ReconnectConfig, onError session.ErrorFunc) *Controller {
	limit := cfg.MaxAttempts
	if limit <= 0 {
		limit = defaultMaxAttempts
	}
	return &Controller{target: target, limit: limit, onError: onError}
}

// Attach subscribes to sources until Close.
func (c *Controller) Attach(sources ...Source) {
	for _, src := range sources {
		unsub := src.Subscribe(c.Trigger)
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			unsub()
			return
		}
		c.unsubs = append(c.unsubs, unsub)
		c.mu.Unlock()
	}
}

// Track makes gameID the game to recover and starts a fresh attempt budget.
func (c *Controller) Track(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
	c.attempts = 0
	c.exhausted = false
}

func (c *Controller) Untrack() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = ""
	c.attempts = 0
	c.exhausted = false
}

// Connected resets the budget after the session opened successfully.
func (c *Controller) Connected() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts = 0
	c.exhausted = false
}

func (c *Controller) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Controller) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhausted
}

// Trigger reacts to one liveness edge. Triggers are serialized; one that
// arrives while an attempt is still connecting is dropped.
func (c *Controller) Trigger(tr Trigger) {
	c.mu.Lock()
	if c.closed || c.gameID == "" || c.exhausted {
		c.mu.Unlock()
		return
	}
	switch state := c.target.State(); state {
	case protocol.StateConnected, protocol.StateConnecting:
		c.mu.Unlock()
		metricSkippedTotal.Add(1)
		log.Debug().Str("trigger", string(tr)).Str("state", state.String()).Msg("reconnect_skipped")
		return
	}

	gameID := c.gameID
	if c.attempts >= c.limit {
		c.exhausted = true
		c.mu.Unlock()
		metricExhaustedTotal.Add(1)
		log.Warn().Str("game_id", gameID).Int("max_attempts", c.limit).Msg("reconnect_exhausted")
		if c.onError != nil {
			c.onError(msgExhausted, session.SeverityError)
		}
		return
	}

	c.attempts++
	metricAttemptTotal.Add(1)
	log.Info().Str("game_id", gameID).Str("trigger", string(tr)).Int("attempt", c.attempts).Int("max_attempts", c.limit).Msg("reconnect_attempt")
	c.target.Connect(gameID)
	c.mu.Unlock()
}

// Close drops every subscription. The controller ignores triggers afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	unsubs := c.unsubs
	c.unsubs = nil
	c.closed = true
	c.mu.Unlock()
	for _, unsub := range unsubs {
		unsub()
	}
}
