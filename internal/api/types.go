package api

import "tictactoe-client/internal/protocol"

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	Username    string `json:"username,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

type CreateGameRequest struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

type History struct {
	Games []HistoryGame `json:"games"`
}

// HistoryGame is a finished game as stored by the history service.
type HistoryGame struct {
	ID         string                `json:"id"`
	GameID     string                `json:"game_id"`
	PlayerXID  string                `json:"player_x_id"`
	PlayerOID  string                `json:"player_o_id"`
	Winner     string                `json:"winner"`
	GameType   string                `json:"game_type"`
	GameStatus string                `json:"game_status"`
	Board      []string              `json:"board"`
	Moves      []protocol.MoveRecord `json:"moves"`
	CreatedAt  string                `json:"created_at"`
	CreatedBy  string                `json:"created_by"`
}

type authorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}
