package protocol

const (
	GameTypeBot         = "bot"
	GameTypeMultiplayer = "multiplayer"

	SymbolX = "x"
	SymbolO = "o"
)

// Game is the game record shared by the game service's REST and socket APIs.
type Game struct {
	ID            string            `json:"id"`
	Type          string            `json:"type"`
	Status        string            `json:"status"`
	Board         []string          `json:"board"`
	CurrentPlayer string            `json:"current_player"`
	Players       map[string]string `json:"players"`
	Winner        string            `json:"winner"`
	CreatedAt     string            `json:"created_at"`
	CreatedBy     string            `json:"created_by"`
	Moves         []MoveRecord      `json:"moves"`
	// Symbol is the symbol this client asked to play; the server does not send it.
	Symbol string `json:"symbol,omitempty"`
}

type MoveRecord struct {
	Player    string `json:"player"`
	Symbol    string `json:"symbol"`
	Position  *int   `json:"position"`
	Action    string `json:"action,omitempty"`
	Timestamp string `json:"timestamp"`
}
