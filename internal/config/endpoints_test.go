package config

import (
	"errors"
	"testing"
)

func validEndpointVars() map[string]string {
	return map[string]string{
		"TICTACTOE_AUTH_URL":    "http://tictactoe.local/users-service/",
		"TICTACTOE_GAME_URL":    "http://tictactoe.local/game-service",
		"TICTACTOE_HISTORY_URL": "http://tictactoe.local/game-history",
		"TICTACTOE_SOCKET_HOST": "tictactoe.local/game-service",
	}
}

func TestResolveEndpointsFrom(t *testing.T) {
	ep, err := ResolveEndpointsFrom(validEndpointVars())
	if err != nil {
		t.Fatalf("ResolveEndpointsFrom() error = %v", err)
	}
	if ep.AuthBase != "http://tictactoe.local/users-service" {
		t.Fatalf("AuthBase = %q", ep.AuthBase)
	}
	if ep.SocketSecure {
		t.Fatal("SocketSecure = true for http game base")
	}
	if got := ep.GameSocketURL("g-1"); got != "ws://tictactoe.local/game-service/ws/game/g-1" {
		t.Fatalf("GameSocketURL = %q", got)
	}
}

func TestResolveEndpointsSecureSocket(t *testing.T) {
	vars := validEndpointVars()
	vars["TICTACTOE_GAME_URL"] = "https://tictactoe.example/game-service"
	ep, err := ResolveEndpointsFrom(vars)
	if err != nil {
		t.Fatalf("ResolveEndpointsFrom() error = %v", err)
	}
	if got := ep.GameSocketURL("a b"); got != "wss://tictactoe.local/game-service/ws/game/a%20b" {
		t.Fatalf("GameSocketURL = %q", got)
	}

	vars["TICTACTOE_SOCKET_SECURE"] = "false"
	ep, err = ResolveEndpointsFrom(vars)
	if err != nil {
		t.Fatalf("ResolveEndpointsFrom() error = %v", err)
	}
	if ep.SocketSecure {
		t.Fatal("explicit TICTACTOE_SOCKET_SECURE=false ignored")
	}
}

func TestResolveEndpointsFailsFast(t *testing.T) {
	for _, key := range []string{
		"TICTACTOE_AUTH_URL",
		"TICTACTOE_GAME_URL",
		"TICTACTOE_HISTORY_URL",
		"TICTACTOE_SOCKET_HOST",
	} {
		t.Run(key, func(t *testing.T) {
			vars := validEndpointVars()
			delete(vars, key)
			_, err := ResolveEndpointsFrom(vars)
			if err == nil {
				t.Fatalf("expected error when %s is missing", key)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestResolveEndpointsRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TICTACTOE_AUTH_URL":      "ftp://tictactoe.local",
		"TICTACTOE_HISTORY_URL":   "http://",
		"TICTACTOE_SOCKET_HOST":   "ws://tictactoe.local",
		"TICTACTOE_SOCKET_SECURE": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			vars := validEndpointVars()
			vars[key] = value
			_, err := ResolveEndpointsFrom(vars)
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if cfgErr.Key != key {
				t.Fatalf("Key = %q, want %q", cfgErr.Key, key)
			}
		})
	}
}

func TestResolveEndpointsFromEnvironment(t *testing.T) {
	for k, v := range validEndpointVars() {
		t.Setenv(k, v)
	}
	ep, err := ResolveEndpoints()
	if err != nil {
		t.Fatalf("ResolveEndpoints() error = %v", err)
	}
	if ep.HistoryBase != "http://tictactoe.local/game-history" {
		t.Fatalf("HistoryBase = %q", ep.HistoryBase)
	}
}
