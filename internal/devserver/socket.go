package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/protocol"
)

const (
	writeWait = 5 * time.Second
	peerQueue = 32

	botChatReply = "I'm enjoying our game."
)

// peer is one player's socket. send is never closed; done stops writeLoop.
type peer struct {
	conn   *websocket.Conn
	gameID string
	userID string
	symbol string
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (p *peer) queue(env protocol.Envelope) {
	raw, err := protocol.Encode(env)
	if err != nil {
		log.Error().Err(err).Msg("devserver_encode_failed")
		return
	}
	select {
	case p.send <- raw:
	default:
		log.Warn().Str("game_id", p.gameID).Str("user_id", p.userID).Msg("devserver_peer_queue_full")
	}
}

// shut sends a close frame and releases the socket. Safe to call repeatedly.
func (p *peer) shut(code int, reason string) {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = p.conn.Close()
	})
}

func (p *peer) writeLoop() {
	for {
		select {
		case <-p.done:
			return
		case msg := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	user, authed := s.userFromRequest(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	reject := func(reason string) {
		log.Info().Str("game_id", gameID).Str("reason", reason).Msg("devserver_socket_rejected")
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(writeWait))
		_ = conn.Close()
	}
	if !authed {
		reject("Invalid authentication")
		return
	}

	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		reject("Game not found")
		return
	}
	symbol := g.symbolOf(user.ID)
	if symbol == "" {
		s.mu.Unlock()
		reject("You are not a player in this game")
		return
	}
	p := &peer{
		conn:   conn,
		gameID: gameID,
		userID: user.ID,
		symbol: symbol,
		send:   make(chan []byte, peerQueue),
		done:   make(chan struct{}),
	}
	g.peers[p] = true
	g.botMove()
	s.recordCompleted(g)
	peers := g.peerList()
	snap := g.snapshot()
	s.mu.Unlock()

	metricSocketsOpenTotal.Add(1)
	log.Info().Str("game_id", gameID).Str("user_id", user.ID).Str("symbol", symbol).Msg("devserver_socket_open")

	conn.SetReadLimit(64 * 1024)
	go p.writeLoop()
	for _, other := range peers {
		other.queue(protocol.PlayerConnected{Player: symbol})
	}
	p.queue(protocol.GameState{Game: snap})
	s.readLoop(p)
}

func (s *Server) readLoop(p *peer) {
	defer s.leave(p)
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			p.queue(protocol.ServerError{Message: "Invalid message"})
			continue
		}
		switch msg := env.(type) {
		case protocol.Move:
			s.applyMove(p, msg.Position)
		case protocol.Chat:
			s.relayChat(p, msg.Text)
		default:
			p.queue(protocol.ServerError{Message: "Unsupported message type"})
		}
	}
}

func (s *Server) applyMove(p *peer, pos int) {
	s.mu.Lock()
	g, ok := s.games[p.gameID]
	var reject string
	switch {
	case !ok:
		reject = "Game not found"
	case g.record.Status != statusActive:
		reject = "Game is not active"
	case g.record.CurrentPlayer != p.userID:
		reject = "Not your turn"
	case pos < 0 || pos >= len(g.record.Board) || g.record.Board[pos] != "":
		reject = "Invalid move"
	}
	if reject != "" {
		s.mu.Unlock()
		p.queue(protocol.ServerError{Message: reject})
		return
	}
	g.place(p.userID, p.symbol, pos)
	g.botMove()
	s.recordCompleted(g)
	peers := g.peerList()
	snap := g.snapshot()
	s.mu.Unlock()

	for _, other := range peers {
		other.queue(protocol.GameState{Game: snap})
	}
}

func (s *Server) relayChat(p *peer, text string) {
	s.mu.Lock()
	g, ok := s.games[p.gameID]
	if !ok {
		s.mu.Unlock()
		return
	}
	peers := g.peerList()
	isBot := g.record.Type == protocol.GameTypeBot
	s.mu.Unlock()

	for _, other := range peers {
		other.queue(protocol.Chat{Text: text, Sender: p.symbol})
	}
	if isBot {
		p.queue(protocol.Chat{Text: botChatReply, Sender: botPlayer})
	}
}

func (s *Server) leave(p *peer) {
	s.mu.Lock()
	var notify []*peer
	if g, ok := s.games[p.gameID]; ok && g.peers[p] {
		delete(g.peers, p)
		if g.record.Type == protocol.GameTypeMultiplayer && g.record.Status == statusActive {
			notify = g.peerList()
		}
	}
	s.mu.Unlock()

	p.shut(websocket.CloseNormalClosure, "")
	for _, other := range notify {
		other.queue(protocol.PlayerDisconnected{Player: p.symbol})
	}
	log.Info().Str("game_id", p.gameID).Str("user_id", p.userID).Msg("devserver_socket_closed")
}

// DropGame closes every socket of a game with the given close code and
// reason, as a server restart or eviction would. It returns how many sockets
// were closed.
func (s *Server) DropGame(gameID string, code int, reason string) int {
	s.mu.Lock()
	g, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		return 0
	}
	peers := g.peerList()
	g.peers = map[*peer]bool{}
	s.mu.Unlock()

	for _, p := range peers {
		p.shut(code, reason)
	}
	metricSocketsDropTotal.Add(int64(len(peers)))
	log.Info().Str("game_id", gameID).Int("code", code).Int("sockets", len(peers)).Msg("devserver_game_dropped")
	return len(peers)
}

// Sockets reports how many sockets are open for a game.
func (s *Server) Sockets(gameID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[gameID]; ok {
		return len(g.peers)
	}
	return 0
}

func (g *game) peerList() []*peer {
	out := make([]*peer, 0, len(g.peers))
	for p := range g.peers {
		out = append(out, p)
	}
	return out
}
