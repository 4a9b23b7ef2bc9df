package protocol

import "fmt"

// ConnectionState is the lifecycle state of a game session's transport.
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateClosing
	StateFailed
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func ParseConnectionState(v string) (ConnectionState, error) {
	switch v {
	case "disconnected":
		return StateDisconnected, nil
	case "connecting":
		return StateConnecting, nil
	case "connected":
		return StateConnected, nil
	case "closing":
		return StateClosing, nil
	case "failed":
		return StateFailed, nil
	default:
		return 0, fmt.Errorf("unknown connection state %q", v)
	}
}

func (s ConnectionState) MarshalText() ([]byte, error) {
	if s < StateDisconnected || s > StateFailed {
		return nil, fmt.Errorf("invalid connection state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *ConnectionState) UnmarshalText(b []byte) error {
	parsed, err := ParseConnectionState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
