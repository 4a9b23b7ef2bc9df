// Package gameclient assembles the request client, the game session and the
// reconnection controller into the single object a front end holds.
package gameclient

import (
	"context"

	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/api"
	"tictactoe-client/internal/config"
	"tictactoe-client/internal/protocol"
	"tictactoe-client/internal/reconnect"
	"tictactoe-client/internal/session"
)

type Handlers struct {
	OnMessage session.MessageFunc
	OnError   session.ErrorFunc
}

type Client struct {
	api       *api.Client
	session   *session.Session
	reconnect *reconnect.Controller
	handlers  Handlers
}

// New wires the components for cfg. The socket dialer shares the request
// client's cookie jar, so a guest or OAuth session carries over to the game
// channel.
func New(cfg config.ClientConfig, h Handlers) *Client {
	c := &Client{handlers: h}
	c.api = api.New(cfg.Endpoints, api.Options{Timeout: cfg.HTTP.Timeout})
	c.session = session.New(cfg.Endpoints, session.Options{
		Dialer:    session.NewWebsocketDialer(c.api.Jar(), cfg.HTTP.Timeout),
		OnMessage: c.onMessage,
		OnError:   h.OnError,
	})
	c.reconnect = reconnect.New(c.session, cfg.Reconnect, h.OnError)
	return c
}

func (c *Client) API() *api.Client {
	return c.api
}

func (c *Client) Session() *session.Session {
	return c.session
}

func (c *Client) Reconnector() *reconnect.Controller {
	return c.reconnect
}

// EnsureSession signs in as a guest unless the jar already holds accepted
// credentials, then returns the signed-in user.
func (c *Client) EnsureSession(ctx context.Context) (api.User, error) {
	ok, err := c.api.CheckAuth(ctx)
	if err != nil {
		return api.User{}, err
	}
	if !ok {
		if err := c.api.CreateGuestSession(ctx); err != nil {
			return api.User{}, err
		}
	}
	return c.api.FetchUser(ctx)
}

// StartGame creates a game and opens its channel.
func (c *Client) StartGame(ctx context.Context, mode, symbol string) (protocol.Game, error) {
	game, err := c.api.CreateGame(ctx, mode, symbol)
	if err != nil {
		return protocol.Game{}, err
	}
	c.Play(game.ID)
	return game, nil
}

// JoinGame joins an open game and opens its channel.
func (c *Client) JoinGame(ctx context.Context, gameID string) (protocol.Game, error) {
	game, err := c.api.JoinGame(ctx, gameID)
	if err != nil {
		return protocol.Game{}, err
	}
	c.Play(game.ID)
	return game, nil
}

// Play connects to gameID and keeps it tracked for reconnection.
func (c *Client) Play(gameID string) {
	c.reconnect.Track(gameID)
	c.session.Connect(gameID)
}

// Attach lets liveness sources trigger reconnection until Close.
func (c *Client) Attach(sources ...reconnect.Source) {
	c.reconnect.Attach(sources...)
}

func (c *Client) SendMove(position int) error {
	return c.session.SendMove(position)
}

func (c *Client) SendChat(text string) error {
	return c.session.SendChat(text)
}

// Leave closes the current game channel and stops recovering it.
func (c *Client) Leave() {
	c.reconnect.Untrack()
	c.session.Close()
}

// Close detaches every liveness source and releases the channel.
func (c *Client) Close() {
	c.reconnect.Close()
	c.session.Close()
	log.Debug().Msg("game_client_closed")
}

func (c *Client) onMessage(env protocol.Envelope) {
	if st, ok := env.(protocol.ConnectionStatus); ok && st.Status == protocol.StateConnected {
		c.reconnect.Connected()
	}
	if c.handlers.OnMessage != nil {
		c.handlers.OnMessage(env)
	}
}
