package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/api"
	"tictactoe-client/internal/protocol"
)

const (
	statusWaiting   = "waiting"
	statusActive    = "active"
	statusCompleted = "completed"

	botPlayer = "bot"
	draw      = "draw"
)

var winLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// game is one stored game plus its open sockets. Guarded by Server.mu.
type game struct {
	record   protocol.Game
	peers    map[*peer]bool
	recorded bool
}

func newGame(user api.User, gameType, symbol string) *game {
	players := map[string]string{protocol.SymbolX: "", protocol.SymbolO: ""}
	players[symbol] = user.ID
	g := &game{
		record: protocol.Game{
			ID:        newID(),
			Type:      gameType,
			Status:    statusWaiting,
			Board:     make([]string, 9),
			Players:   players,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			CreatedBy: user.ID,
			Moves:     []protocol.MoveRecord{},
		},
		peers: map[*peer]bool{},
	}
	if symbol == protocol.SymbolX {
		g.record.CurrentPlayer = user.ID
	}
	if gameType == protocol.GameTypeBot {
		players[opponent(symbol)] = botPlayer
		g.record.Status = statusActive
		if symbol == protocol.SymbolO {
			g.record.CurrentPlayer = botPlayer
		}
	}
	return g
}

func (g *game) symbolOf(userID string) string {
	for sym, id := range g.record.Players {
		if id != "" && id == userID {
			return sym
		}
	}
	return ""
}

// place puts symbol at pos and hands the turn over. The caller has checked that
// the move is legal.
func (g *game) place(playerID, symbol string, pos int) {
	g.record.Board[pos] = symbol
	p := pos
	g.record.Moves = append(g.record.Moves, protocol.MoveRecord{
		Player:    playerID,
		Symbol:    symbol,
		Position:  &p,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if winner := g.winner(); winner != "" {
		g.record.Winner = winner
		g.record.Status = statusCompleted
		return
	}
	g.record.CurrentPlayer = g.record.Players[opponent(symbol)]
}

func (g *game) winner() string {
	b := g.record.Board
	for _, line := range winLines {
		if b[line[0]] != "" && b[line[0]] == b[line[1]] && b[line[1]] == b[line[2]] {
			return b[line[0]]
		}
	}
	for _, cell := range b {
		if cell == "" {
			return ""
		}
	}
	return draw
}

// botMove plays the first free cell while it is the bot's turn.
func (g *game) botMove() {
	if g.record.Status != statusActive || g.record.CurrentPlayer != botPlayer {
		return
	}
	symbol := g.symbolOf(botPlayer)
	for i, cell := range g.record.Board {
		if cell == "" {
			g.place(botPlayer, symbol, i)
			return
		}
	}
}

func (g *game) snapshot() protocol.Game {
	out := g.record
	out.Board = append([]string(nil), g.record.Board...)
	out.Moves = append([]protocol.MoveRecord(nil), g.record.Moves...)
	out.Players = make(map[string]string, len(g.record.Players))
	for k, v := range g.record.Players {
		out.Players[k] = v
	}
	return out
}

func (g *game) historyEntry() api.HistoryGame {
	snap := g.snapshot()
	return api.HistoryGame{
		ID:         newID(),
		GameID:     snap.ID,
		PlayerXID:  snap.Players[protocol.SymbolX],
		PlayerOID:  snap.Players[protocol.SymbolO],
		Winner:     snap.Winner,
		GameType:   snap.Type,
		GameStatus: snap.Status,
		Board:      snap.Board,
		Moves:      snap.Moves,
		CreatedAt:  snap.CreatedAt,
		CreatedBy:  snap.CreatedBy,
	}
}

func opponent(symbol string) string {
	if symbol == protocol.SymbolX {
		return protocol.SymbolO
	}
	return protocol.SymbolX
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	var req api.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}
	if req.Type != protocol.GameTypeBot && req.Type != protocol.GameTypeMultiplayer {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid game type")
		return
	}
	symbol := strings.ToLower(req.Symbol)
	if symbol != protocol.SymbolX && symbol != protocol.SymbolO {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid symbol")
		return
	}

	g := newGame(user, req.Type, symbol)
	s.mu.Lock()
	s.games[g.record.ID] = g
	snap := g.snapshot()
	s.mu.Unlock()

	metricGamesCreatedTotal.Add(1)
	log.Info().Str("game_id", snap.ID).Str("type", snap.Type).Str("user_id", user.ID).Msg("devserver_game_created")
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) joinGame(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	gameID := chi.URLParam(r, "gameID")

	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Game not found")
		return
	}
	if g.record.Type != protocol.GameTypeMultiplayer || g.record.Status != statusWaiting || g.symbolOf(user.ID) != "" {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Game is not available to join")
		return
	}
	for sym, id := range g.record.Players {
		if id == "" {
			g.record.Players[sym] = user.ID
		}
	}
	g.record.Status = statusActive
	g.record.CurrentPlayer = g.record.Players[protocol.SymbolX]
	snap := g.snapshot()
	s.mu.Unlock()

	log.Info().Str("game_id", gameID).Str("user_id", user.ID).Msg("devserver_game_joined")
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) openGames(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	s.mu.Lock()
	open := []protocol.Game{}
	for _, g := range s.games {
		if g.record.Type == protocol.GameTypeMultiplayer && g.record.Status == statusWaiting && g.symbolOf(user.ID) == "" {
			open = append(open, g.snapshot())
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, open)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	if st := s.opts.HistoryStatus; st != 0 && st != http.StatusOK {
		writeDetail(w, st, http.StatusText(st))
		return
	}
	user := userFromContext(r.Context())
	s.mu.Lock()
	games := append([]api.HistoryGame{}, s.history[user.ID]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, api.History{Games: games})
}

// recordCompleted files a finished game under each human player, once. Must
// be called with Server.mu held.
func (s *Server) recordCompleted(g *game) {
	if g.recorded || g.record.Status != statusCompleted {
		return
	}
	g.recorded = true
	entry := g.historyEntry()
	for _, id := range g.record.Players {
		if id == "" || id == botPlayer {
			continue
		}
		s.history[id] = append(s.history[id], entry)
	}
}
