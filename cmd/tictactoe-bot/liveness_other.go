//go:build !unix

package main

import "tictactoe-client/internal/reconnect"

func watchLiveness(_, _ *reconnect.Signal) func() {
	return func() {}
}
