// Package session owns the single live socket connection a client keeps to a
// game's real-time channel.
//
// A Session holds at most one transport at a time. Connect replaces the current
// transport (closing it first), and every handler belongs to exactly one
// transport generation: frames, errors and close signals from a replaced
// transport never reach the consumer.
//
// Consumers see one ordered stream through OnMessage: a synthetic
// ConnectionStatus(Connected) when the transport opens, then inbound envelopes in
// frame order, then ConnectionStatus(Failed) or ConnectionStatus(Disconnected)
// when the transport dies on its own. Retrying is left to package reconnect.
package session
