package protocol

type Type string

const (
	TypeMove               Type = "move"
	TypeChat               Type = "chat"
	TypeConnectionStatus   Type = "connection_status"
	TypeGameState          Type = "game_state"
	TypeError              Type = "error"
	TypePlayerConnected    Type = "player_connected"
	TypePlayerDisconnected Type = "player_disconnected"
)

// Envelope is one in-game message. The set of implementations is closed.
type Envelope interface {
	Type() Type
	envelope()
}

type Move struct {
	Position int
}

type Chat struct {
	Text   string
	Sender string
}

// ConnectionStatus is synthesized by the session; it never arrives from the
// server in practice but is accepted on the wire for symmetry.
type ConnectionStatus struct {
	Status ConnectionState
	Code   int
	Reason string
}

type GameState struct {
	Game          Game
	Disconnection bool
	Message       string
}

type ServerError struct {
	Message string
}

type PlayerConnected struct {
	Player string
}

type PlayerDisconnected struct {
	Player string
}

func (Move) Type() Type               { return TypeMove }
func (Chat) Type() Type               { return TypeChat }
func (ConnectionStatus) Type() Type   { return TypeConnectionStatus }
func (GameState) Type() Type          { return TypeGameState }
func (ServerError) Type() Type        { return TypeError }
func (PlayerConnected) Type() Type    { return TypePlayerConnected }
func (PlayerDisconnected) Type() Type { return TypePlayerDisconnected }

func (Move) envelope()               {}
func (Chat) envelope()               {}
func (ConnectionStatus) envelope()   {}
func (GameState) envelope()          {}
func (ServerError) envelope()        {}
func (PlayerConnected) envelope()    {}
func (PlayerDisconnected) envelope() {}
