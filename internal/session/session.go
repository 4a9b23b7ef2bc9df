package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/protocol"
)

const defaultSendBuffer = 16

type MessageFunc func(env protocol.Envelope)

type ErrorFunc func(message string, severity Severity)

type Options struct {
	Dialer     Dialer
	OnMessage  MessageFunc
	OnError    ErrorFunc
	SendBuffer int
}

type Session struct {
	endpoints config.ServiceEndpoints
	dialer    Dialer
	onMessage MessageFunc
	onError   ErrorFunc
	sendBuf   int

	mu     sync.Mutex
	state  protocol.ConnectionState
	gameID string
	cur    *transport

	// dispatchMu is held while a transport goroutine calls the consumer, so
	// callbacks from the reader of one transport and the dialer of the next
	// never overlap.
	dispatchMu sync.Mutex
}

// transport is one connection generation. conn, closed and writeErr are
// guarded by Session.mu.
type transport struct {
	id     string
	gameID string
	url    string
	ctx    context.Context
	cancel context.CancelFunc
	send   chan []byte
	log    zerolog.Logger
	// prev is the replaced generation's socket, closed by run before dialing.
	prev Conn

	conn     Conn
	closed   bool
	writeErr error
}

func New(endpoints config.ServiceEndpoints, opts Options) *Session {
	if opts.Dialer == nil {
		opts.Dialer = NewWebsocketDialer(nil, 0)
	}
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	return &Session{
		endpoints: endpoints,
		dialer:    opts.Dialer,
		onMessage: opts.OnMessage,
		onError:   opts.OnError,
		sendBuf:   opts.SendBuffer,
		state:     protocol.StateDisconnected,
	}
}

// Connect starts a connection to the game's channel and returns without waiting
// for it. Any transport still open is closed before the new one is dialed, on
// the new transport's goroutine.
func (s *Session) Connect(gameID string) {
	ctx, cancel := context.WithCancel(context.Background())
	id := ulid.Make().String()
	t := &transport{
		id:     id,
		gameID: gameID,
		url:    s.endpoints.GameSocketURL(gameID),
		ctx:    ctx,
		cancel: cancel,
		send:   make(chan []byte, s.sendBuf),
		log:    log.With().Str("game_id", gameID).Str("conn_id", id).Logger(),
	}

	s.mu.Lock()
	if prev := s.cur; prev != nil {
		t.prev = prev.detach()
		prev.log.Info().Msg("session_replaced")
	}
	s.cur = t
	s.gameID = gameID
	s.state = protocol.StateConnecting
	s.mu.Unlock()

	metricConnectTotal.Add(1)
	t.log.Info().Str("url", t.url).Msg("session_connecting")
	go s.run(t)
}

// Close releases the current transport. It never emits a status and is a no-op
// when nothing is open.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == protocol.StateDisconnected || s.state == protocol.StateClosing {
		s.mu.Unlock()
		return
	}
	s.state = protocol.StateClosing
	var conn Conn
	if t := s.cur; t != nil {
		conn = t.detach()
		t.log.Info().Msg("session_closed")
	}
	s.cur = nil
	s.mu.Unlock()

	closeConn(conn, websocket.CloseNormalClosure, "client closed")

	s.mu.Lock()
	if s.state == protocol.StateClosing {
		s.state = protocol.StateDisconnected
	}
	s.mu.Unlock()
}

// Send queues env for the current transport. Without an open transport the
// message is dropped and OnError is called once.
func (s *Session) Send(env protocol.Envelope) error {
	if env == nil {
		return errors.New("send nil envelope")
	}
	s.mu.Lock()
	t := s.cur
	if s.state != protocol.StateConnected || t == nil {
		s.mu.Unlock()
		metricSendDroppedTotal.Add(1)
		log.Warn().Str("type", string(env.Type())).Msg("session_send_while_disconnected")
		s.reportError(msgConnectionLost, SeverityError)
		return ErrNotConnected
	}
	raw, err := protocol.Encode(env)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	select {
	case t.send <- raw:
		s.mu.Unlock()
		return nil
	default:
		s.mu.Unlock()
		metricSendDroppedTotal.Add(1)
		t.log.Warn().Int("buffer", cap(t.send)).Msg("session_send_buffer_full")
		s.reportError(msgSendBacklog, SeverityWarning)
		return ErrSendBufferFull
	}
}

func (s *Session) SendMove(position int) error {
	return s.Send(protocol.Move{Position: position})
}

func (s *Session) SendChat(text string) error {
	return s.Send(protocol.Chat{Text: text})
}

func (s *Session) IsConnected() bool {
	return s.State() == protocol.StateConnected
}

func (s *Session) State() protocol.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// GameID is the game of the most recent Connect, kept after the transport ends.
func (s *Session) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

func (s *Session) run(t *transport) {
	closeConn(t.prev, websocket.CloseNormalClosure, "replaced")
	t.prev = nil

	conn, err := s.dialer.Dial(t.ctx, t.url)
	if err != nil {
		s.fail(t, fmt.Errorf("dial: %w", err))
		return
	}

	s.mu.Lock()
	if s.cur != t || t.closed {
		s.mu.Unlock()
		closeConn(conn, websocket.CloseNormalClosure, "replaced")
		return
	}
	t.conn = conn
	s.state = protocol.StateConnected
	s.mu.Unlock()

	metricConnectedTotal.Add(1)
	t.log.Info().Msg("session_connected")
	if !s.deliver(t, protocol.ConnectionStatus{Status: protocol.StateConnected}) {
		return
	}

	go s.writeLoop(t, conn)
	s.readLoop(t, conn)
}

func (s *Session) readLoop(t *transport, conn Conn) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.mu.Lock()
			writeErr := t.writeErr
			s.mu.Unlock()
			var closeErr *websocket.CloseError
			if writeErr != nil {
				s.fail(t, fmt.Errorf("write: %w", writeErr))
			} else if errors.As(err, &closeErr) {
				s.remoteClose(t, closeErr.Code, closeErr.Text)
			} else {
				s.fail(t, fmt.Errorf("read: %w", err))
			}
			return
		}
		metricFramesInTotal.Add(1)
		env, err := protocol.Decode(data)
		if err != nil {
			metricDecodeDropTotal.Add(1)
			t.log.Warn().Err(err).Int("bytes", len(data)).Msg("session_frame_dropped")
			continue
		}
		if !s.deliver(t, env) {
			return
		}
	}
}

// writeLoop drains the send queue. A write failure is recorded on t and the
// socket closed, which ends readLoop; readLoop reports it, so every status for
// a transport comes from one goroutine.
func (s *Session) writeLoop(t *transport, conn Conn) {
	for {
		select {
		case <-t.ctx.Done():
			return
		case msg := <-t.send:
			if err := conn.WriteMessage(msg); err != nil {
				s.mu.Lock()
				if t.writeErr == nil {
					t.writeErr = err
				}
				owned := t.conn == conn
				if owned {
					t.conn = nil
				}
				s.mu.Unlock()
				t.log.Debug().Err(err).Msg("session_write_failed")
				if owned {
					closeConn(conn, websocket.CloseGoingAway, "write failed")
				}
				return
			}
			metricFramesOutTotal.Add(1)
		}
	}
}

// fail moves a live transport to Failed. Errors from a replaced or closed
// transport are ignored.
func (s *Session) fail(t *transport, err error) {
	s.dispatchMu.Lock()
	s.mu.Lock()
	if s.cur != t || t.closed {
		s.mu.Unlock()
		s.dispatchMu.Unlock()
		return
	}
	conn := t.detach()
	s.cur = nil
	s.state = protocol.StateFailed
	s.mu.Unlock()

	metricFailedTotal.Add(1)
	t.log.Warn().Err(err).Msg("session_failed")
	s.dispatch(protocol.ConnectionStatus{Status: protocol.StateFailed, Reason: err.Error()})
	s.reportError(msgConnectFailed, SeverityError)
	s.dispatchMu.Unlock()

	closeConn(conn, websocket.CloseGoingAway, "transport error")
}

func (s *Session) remoteClose(t *transport, code int, reason string) {
	s.dispatchMu.Lock()
	s.mu.Lock()
	if s.cur != t || t.closed {
		s.mu.Unlock()
		s.dispatchMu.Unlock()
		return
	}
	conn := t.detach()
	s.cur = nil
	s.state = protocol.StateDisconnected
	s.mu.Unlock()

	metricRemoteCloseTotal.Add(1)
	t.log.Info().Int("code", code).Str("reason", reason).Msg("session_remote_close")
	s.dispatch(protocol.ConnectionStatus{Status: protocol.StateDisconnected, Code: code, Reason: reason})
	s.dispatchMu.Unlock()

	closeConn(conn, websocket.CloseNormalClosure, "")
}

// deliver hands env to the consumer if t is still the live transport. The
// liveness check and the callback happen under dispatchMu.
func (s *Session) deliver(t *transport, env protocol.Envelope) bool {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.mu.Lock()
	live := s.cur == t && !t.closed
	s.mu.Unlock()
	if !live {
		return false
	}
	s.dispatch(env)
	return true
}

func (s *Session) dispatch(env protocol.Envelope) {
	if s.onMessage != nil {
		s.onMessage(env)
	}
}

func (s *Session) reportError(message string, severity Severity) {
	if s.onError != nil {
		s.onError(message, severity)
	}
}

// detach marks t closed and stops its loops. The returned conn, if any, must be
// closed by the caller outside Session.mu. Must be called with Session.mu held.
func (t *transport) detach() Conn {
	if t.closed {
		return nil
	}
	t.closed = true
	t.cancel()
	conn := t.conn
	t.conn = nil
	return conn
}

func closeConn(conn Conn, code int, reason string) {
	if conn == nil {
		return
	}
	if err := conn.Close(code, reason); err != nil {
		log.Debug().Err(err).Msg("session_close_error")
	}
}
