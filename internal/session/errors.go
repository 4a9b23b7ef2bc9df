package session

import "errors"

var (
	ErrNotConnected   = errors.New("not_connected")
	ErrSendBufferFull = errors.New("send_buffer_full")
)

const (
	msgConnectionLost = "Connection to game server lost"
	msgConnectFailed  = "Error connecting to game server"
	msgSendBacklog    = "Too many pending messages for game server"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)
