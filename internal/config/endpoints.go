package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
)

var ErrConfiguration = errors.New("configuration_error")

// ConfigurationError reports an endpoint that could not be resolved. It is fatal
// at construction time; nothing falls back to another service's address.
type ConfigurationError struct {
	Key string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration: %s: %v", e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

// ServiceEndpoints holds the base addresses of the services a client talks to.
// It is resolved once and never mutated.
type ServiceEndpoints struct {
	AuthBase     string
	GameBase     string
	HistoryBase  string
	SocketHost   string
	SocketSecure bool
}

type endpointsEnv struct {
	AuthURL      string `env:"TICTACTOE_AUTH_URL,required,notEmpty"`
	GameURL      string `env:"TICTACTOE_GAME_URL,required,notEmpty"`
	HistoryURL   string `env:"TICTACTOE_HISTORY_URL,required,notEmpty"`
	SocketHost   string `env:"TICTACTOE_SOCKET_HOST,required,notEmpty"`
	SocketSecure string `env:"TICTACTOE_SOCKET_SECURE"`
}

// ResolveEndpoints reads the service endpoints from the process environment.
func ResolveEndpoints() (ServiceEndpoints, error) {
	var raw endpointsEnv
	if err := env.Parse(&raw); err != nil {
		return ServiceEndpoints{}, &ConfigurationError{Err: err}
	}
	return raw.resolve()
}

// ResolveEndpointsFrom resolves endpoints from the given variables only.
func ResolveEndpointsFrom(vars map[string]string) (ServiceEndpoints, error) {
	var raw endpointsEnv
	if err := env.ParseWithOptions(&raw, env.Options{Environment: vars}); err != nil {
		return ServiceEndpoints{}, &ConfigurationError{Err: err}
	}
	return raw.resolve()
}

func (r endpointsEnv) resolve() (ServiceEndpoints, error) {
	authBase, err := httpBase("TICTACTOE_AUTH_URL", r.AuthURL)
	if err != nil {
		return ServiceEndpoints{}, err
	}
	gameBase, err := httpBase("TICTACTOE_GAME_URL", r.GameURL)
	if err != nil {
		return ServiceEndpoints{}, err
	}
	historyBase, err := httpBase("TICTACTOE_HISTORY_URL", r.HistoryURL)
	if err != nil {
		return ServiceEndpoints{}, err
	}
	host := strings.Trim(strings.TrimSpace(r.SocketHost), "/")
	if host == "" || strings.Contains(host, "://") {
		return ServiceEndpoints{}, &ConfigurationError{Key: "TICTACTOE_SOCKET_HOST", Err: fmt.Errorf("want host[/prefix] without scheme, got %q", r.SocketHost)}
	}

	secure := strings.HasPrefix(gameBase, "https://")
	if v := strings.TrimSpace(r.SocketSecure); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return ServiceEndpoints{}, &ConfigurationError{Key: "TICTACTOE_SOCKET_SECURE", Err: err}
		}
		secure = parsed
	}

	return ServiceEndpoints{
		AuthBase:     authBase,
		GameBase:     gameBase,
		HistoryBase:  historyBase,
		SocketHost:   host,
		SocketSecure: secure,
	}, nil
}

func httpBase(key, raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", &ConfigurationError{Key: key, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &ConfigurationError{Key: key, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return "", &ConfigurationError{Key: key, Err: errors.New("missing host")}
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// GameSocketURL returns the real-time channel address for a game.
func (e ServiceEndpoints) GameSocketURL(gameID string) string {
	scheme := "ws"
	if e.SocketSecure {
		scheme = "wss"
	}
	return scheme + "://" + e.SocketHost + "/ws/game/" + url.PathEscape(gameID)
}
