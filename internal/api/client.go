// Package api issues the one-shot authenticated calls a game client needs:
// session/auth checks against the users service, game creation and joining
// against the game service, and history against the history service.
//
// Every call carries the client's cookie jar, which is also handed to the
// socket dialer so the real-time channel shares the same credentials.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/protocol"
)

const defaultTimeout = 10 * time.Second

type Options struct {
	// HTTPClient is copied; a jar is added when it has none.
	HTTPClient *http.Client
	Timeout    time.Duration
}

type Client struct {
	endpoints config.ServiceEndpoints
	inner     *http.Client
}

func New(endpoints config.ServiceEndpoints, opts Options) *Client {
	var inner http.Client
	if opts.HTTPClient != nil {
		inner = *opts.HTTPClient
	}
	if inner.Jar == nil {
		// cookiejar.New only fails on a bad PublicSuffixList, and none is given.
		jar, _ := cookiejar.New(nil)
		inner.Jar = jar
	}
	if opts.Timeout > 0 {
		inner.Timeout = opts.Timeout
	}
	if inner.Timeout <= 0 {
		inner.Timeout = defaultTimeout
	}
	return &Client{endpoints: endpoints, inner: &inner}
}

// Jar holds the credentials the services set on this client.
func (c *Client) Jar() http.CookieJar {
	return c.inner.Jar
}

// CheckAuth reports whether the current credentials are accepted. A rejection
// is not an error.
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	status, _, err := c.getJSON(ctx, "check_auth", c.endpoints.AuthBase+"/auth/check-auth")
	if err != nil {
		return false, err
	}
	return isSuccess(status), nil
}

func (c *Client) FetchUser(ctx context.Context) (User, error) {
	const op = "fetch_user"
	status, body, err := c.getJSON(ctx, op, c.endpoints.AuthBase+"/users/me")
	if err != nil {
		return User{}, err
	}
	if !isSuccess(status) {
		return User{}, statusError(op, status, body)
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return User{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	return user, nil
}

// AuthorizationURL returns the GitHub OAuth page to send the user to.
func (c *Client) AuthorizationURL(ctx context.Context) (string, error) {
	const op = "authorization_url"
	status, body, err := c.getJSON(ctx, op, c.endpoints.AuthBase+"/auth/github/authorize")
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", statusError(op, status, body)
	}
	var resp authorizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%s: decode: %w", op, err)
	}
	if resp.AuthorizationURL == "" {
		return "", fmt.Errorf("%s: response missing authorization_url", op)
	}
	return resp.AuthorizationURL, nil
}

// CreateGuestSession signs in as a fresh guest; the session cookie lands in Jar.
func (c *Client) CreateGuestSession(ctx context.Context) error {
	const op = "create_guest"
	status, body, err := c.getJSON(ctx, op, c.endpoints.AuthBase+"/auth/create-guest")
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusError(op, status, body)
	}
	log.Info().Msg("guest_session_created")
	return nil
}

func (c *Client) Logout(ctx context.Context) error {
	const op = "logout"
	status, body, err := c.getJSON(ctx, op, c.endpoints.AuthBase+"/auth/logout")
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusError(op, status, body)
	}
	return nil
}

// CreateGame starts a game. mode is "bot" or "multiplayer" ("human" is accepted
// for multiplayer); symbol is "x" or "o" in any case.
func (c *Client) CreateGame(ctx context.Context, mode, symbol string) (protocol.Game, error) {
	const op = "create_game"
	req, err := newCreateGameRequest(mode, symbol)
	if err != nil {
		return protocol.Game{}, err
	}
	status, body, err := c.postJSON(ctx, op, c.endpoints.GameBase+"/game/create", req)
	if err != nil {
		return protocol.Game{}, err
	}
	if !isSuccess(status) {
		return protocol.Game{}, statusError(op, status, body)
	}
	game, err := decodeGame(op, body)
	if err != nil {
		return protocol.Game{}, err
	}
	if game.Type == "" {
		game.Type = req.Type
	}
	game.Symbol = req.Symbol
	log.Info().Str("game_id", game.ID).Str("type", game.Type).Str("symbol", game.Symbol).Msg("game_created")
	return game, nil
}

func (c *Client) JoinGame(ctx context.Context, gameID string) (protocol.Game, error) {
	const op = "join_game"
	status, body, err := c.postJSON(ctx, op, c.endpoints.GameBase+"/game/join/"+url.PathEscape(gameID), struct{}{})
	if err != nil {
		return protocol.Game{}, err
	}
	if !isSuccess(status) {
		return protocol.Game{}, statusError(op, status, body)
	}
	game, err := decodeGame(op, body)
	if err != nil {
		return protocol.Game{}, err
	}
	if game.ID == "" {
		game.ID = gameID
	}
	log.Info().Str("game_id", game.ID).Msg("game_joined")
	return game, nil
}

// ListOpenGames returns multiplayer games waiting for an opponent.
func (c *Client) ListOpenGames(ctx context.Context) ([]protocol.Game, error) {
	const op = "list_open_games"
	status, body, err := c.getJSON(ctx, op, c.endpoints.GameBase+"/games/open")
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, statusError(op, status, body)
	}
	games := []protocol.Game{}
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	return games, nil
}

// FetchHistory returns the user's finished games. Only a missing response is an
// error: error statuses and unreadable bodies yield an empty history.
func (c *Client) FetchHistory(ctx context.Context) (History, error) {
	const op = "fetch_history"
	status, body, err := c.getJSON(ctx, op, c.endpoints.HistoryBase+"/games")
	if err != nil {
		return History{}, err
	}
	empty := History{Games: []HistoryGame{}}
	if !isSuccess(status) {
		log.Debug().Int("status", status).Msg("history_unavailable")
		return empty, nil
	}
	var history History
	if err := json.Unmarshal(body, &history); err != nil {
		log.Debug().Err(err).Msg("history_unreadable")
		return empty, nil
	}
	if history.Games == nil {
		history.Games = []HistoryGame{}
	}
	return history, nil
}

func newCreateGameRequest(mode, symbol string) (CreateGameRequest, error) {
	var gameType string
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case protocol.GameTypeBot:
		gameType = protocol.GameTypeBot
	case protocol.GameTypeMultiplayer, "human":
		gameType = protocol.GameTypeMultiplayer
	default:
		return CreateGameRequest{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	sym := strings.ToLower(strings.TrimSpace(symbol))
	if sym != protocol.SymbolX && sym != protocol.SymbolO {
		return CreateGameRequest{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return CreateGameRequest{Type: gameType, Symbol: sym}, nil
}

func decodeGame(op string, body []byte) (protocol.Game, error) {
	var game protocol.Game
	if err := json.Unmarshal(body, &game); err != nil {
		return protocol.Game{}, fmt.Errorf("%s: decode: %w", op, err)
	}
	return game, nil
}
