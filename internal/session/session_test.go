package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tictactoe-client/internal/protocol"
)

var connected = protocol.ConnectionStatus{Status: protocol.StateConnected}

func TestConnectEmitsConnectedBeforeInbound(t *testing.T) {
	conn := newFakeConn(`{"type":"move","position":4}`)
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)
	defer s.Close()

	s.Connect("g-1")
	if got := r.next(t); got != connected {
		t.Fatalf("first envelope = %#v, want ConnectionStatus(Connected)", got)
	}
	if got := r.next(t); got != (protocol.Move{Position: 4}) {
		t.Fatalf("second envelope = %#v, want Move(4)", got)
	}
	if !s.IsConnected() {
		t.Fatal("expected session connected")
	}
	if d.urls[0] != "ws://game.test/game-service/ws/game/g-1" {
		t.Fatalf("dialed %q", d.urls[0])
	}
	if s.GameID() != "g-1" {
		t.Fatalf("GameID = %q", s.GameID())
	}
}

func TestConnectClosesPriorTransportOnceBeforeDialing(t *testing.T) {
	first := newFakeConn()
	second := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: first}, {conn: second}}}
	closedBeforeSecondDial := -1
	d.onDial = func(n int) {
		if n == 2 {
			closedBeforeSecondDial = first.closeCount()
		}
	}
	r := newRecorder()
	s := newTestSession(d, r)

	s.Connect("g-1")
	if got := r.next(t); got != connected {
		t.Fatalf("got %#v", got)
	}
	s.Connect("g-2")
	if got := r.next(t); got != connected {
		t.Fatalf("got %#v", got)
	}
	if closedBeforeSecondDial != 1 {
		t.Fatalf("prior transport closed %d times before second dial, want 1", closedBeforeSecondDial)
	}

	s.Close()
	if first.closeCount() != 1 {
		t.Fatalf("first transport closed %d times, want 1", first.closeCount())
	}
	if second.closeCount() != 1 {
		t.Fatalf("second transport closed %d times, want 1", second.closeCount())
	}
	r.expectNone(t, 50*time.Millisecond)
}

func TestReplacedDialNeverReachesConsumer(t *testing.T) {
	gate := make(chan struct{})
	stale := newFakeConn(`{"type":"chat","message":"stale"}`)
	fresh := newFakeConn(`{"type":"chat","message":"fresh"}`)
	d := &fakeDialer{steps: []dialStep{{conn: stale, gate: gate}, {conn: fresh}}}
	r := newRecorder()
	s := newTestSession(d, r)
	defer s.Close()

	s.Connect("g-1")
	waitFor(t, "first dial", func() bool { return d.dialCount() == 1 })
	s.Connect("g-1")
	if got := r.next(t); got != connected {
		t.Fatalf("got %#v", got)
	}
	if got := r.next(t); got != (protocol.Chat{Text: "fresh"}) {
		t.Fatalf("got %#v", got)
	}

	close(gate)
	waitFor(t, "stale conn closed", func() bool { return stale.closeCount() == 1 })
	r.expectNone(t, 50*time.Millisecond)
	if !s.IsConnected() {
		t.Fatal("stale dial must not change the live session")
	}
}

func TestCloseIsIdempotentAndSilent(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)

	s.Connect("g-1")
	r.next(t)

	s.Close()
	s.Close()
	if s.State() != protocol.StateDisconnected {
		t.Fatalf("state = %v, want disconnected", s.State())
	}
	if conn.closeCount() != 1 {
		t.Fatalf("conn closed %d times, want 1", conn.closeCount())
	}
	r.expectNone(t, 50*time.Millisecond)
	if len(r.errors()) != 0 {
		t.Fatalf("unexpected errors %v", r.errors())
	}
}

func TestCloseWithoutConnectIsNoop(t *testing.T) {
	r := newRecorder()
	s := newTestSession(&fakeDialer{}, r)
	s.Close()
	if s.State() != protocol.StateDisconnected {
		t.Fatalf("state = %v", s.State())
	}
}

func TestSendWhileDisconnectedReportsOnce(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)

	if err := s.SendMove(3); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("SendMove() error = %v, want ErrNotConnected", err)
	}
	if got := r.errors(); len(got) != 1 || got[0] != msgConnectionLost {
		t.Fatalf("errors = %v", got)
	}

	s.Connect("g-1")
	r.next(t)
	s.Close()
	if err := s.SendChat("hello?"); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("SendChat() error = %v", err)
	}
	if len(r.errors()) != 2 {
		t.Fatalf("errors = %v, want 2 reports", r.errors())
	}
	time.Sleep(20 * time.Millisecond)
	if n := len(conn.written()); n != 0 {
		t.Fatalf("transport received %d frames while disconnected", n)
	}
}

func TestSendWritesEncodedFrame(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)
	defer s.Close()

	s.Connect("g-1")
	r.next(t)
	if err := s.SendMove(4); err != nil {
		t.Fatalf("SendMove() error = %v", err)
	}
	if err := s.SendChat("gg"); err != nil {
		t.Fatalf("SendChat() error = %v", err)
	}
	waitFor(t, "two frames", func() bool { return len(conn.written()) == 2 })
	got := conn.written()
	if string(got[0]) != `{"type":"move","position":4}` {
		t.Fatalf("frame 0 = %s", got[0])
	}
	if string(got[1]) != `{"type":"chat","message":"gg"}` {
		t.Fatalf("frame 1 = %s", got[1])
	}
}

func TestDialFailureEmitsFailed(t *testing.T) {
	d := &fakeDialer{steps: []dialStep{{err: errors.New("connection refused")}}}
	r := newRecorder()
	s := newTestSession(d, r)

	s.Connect("g-1")
	got, ok := r.next(t).(protocol.ConnectionStatus)
	if !ok || got.Status != protocol.StateFailed {
		t.Fatalf("got %#v, want ConnectionStatus(Failed)", got)
	}
	if !strings.Contains(got.Reason, "connection refused") {
		t.Fatalf("reason = %q", got.Reason)
	}
	if errs := r.errors(); len(errs) != 1 || errs[0] != msgConnectFailed {
		t.Fatalf("errors = %v", errs)
	}
	if s.State() != protocol.StateFailed {
		t.Fatalf("state = %v, want failed", s.State())
	}
	if d.dialCount() != 1 {
		t.Fatalf("session retried on its own: %d dials", d.dialCount())
	}

	s.Close()
	if s.State() != protocol.StateDisconnected {
		t.Fatalf("state after close = %v", s.State())
	}
	r.expectNone(t, 30*time.Millisecond)
}

func TestRemoteCloseEmitsDisconnected(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)

	s.Connect("g-1")
	r.next(t)
	conn.errs <- &websocket.CloseError{Code: 4000, Text: "game over"}

	want := protocol.ConnectionStatus{Status: protocol.StateDisconnected, Code: 4000, Reason: "game over"}
	if got := r.next(t); got != want {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	if s.IsConnected() {
		t.Fatal("session still connected after remote close")
	}
	if len(r.errors()) != 0 {
		t.Fatalf("remote close must not report errors: %v", r.errors())
	}
	if conn.closeCount() != 1 {
		t.Fatalf("handle released %d times", conn.closeCount())
	}
}

func TestReadErrorEmitsFailed(t *testing.T) {
	conn := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)

	s.Connect("g-1")
	r.next(t)
	conn.errs <- errors.New("connection reset by peer")

	got, ok := r.next(t).(protocol.ConnectionStatus)
	if !ok || got.Status != protocol.StateFailed {
		t.Fatalf("got %#v", got)
	}
	if len(r.errors()) != 1 {
		t.Fatalf("errors = %v", r.errors())
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	conn := newFakeConn(
		`not json`,
		`{"position":1}`,
		`{"type":"rematch"}`,
		`{"type":"move","position":2}`,
	)
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}
	r := newRecorder()
	s := newTestSession(d, r)
	defer s.Close()

	s.Connect("g-1")
	r.next(t)
	if got := r.next(t); got != (protocol.Move{Position: 2}) {
		t.Fatalf("got %#v, want Move(2)", got)
	}
	if !s.IsConnected() {
		t.Fatal("decode errors must not end the session")
	}
	if len(r.errors()) != 0 {
		t.Fatalf("decode errors reported to consumer: %v", r.errors())
	}
}

func TestSendBufferFull(t *testing.T) {
	d := &fakeDialer{steps: []dialStep{{conn: newFakeConn()}}}
	r := newRecorder()
	s := New(testEndpoints, Options{Dialer: d, OnMessage: r.onMessage, OnError: r.onError, SendBuffer: 1})
	defer s.Close()

	s.Connect("g-1")
	r.next(t)

	s.mu.Lock()
	t0 := s.cur
	s.mu.Unlock()
	// Fill the queue directly so the writer cannot drain it first.
	t0.cancel()
	time.Sleep(20 * time.Millisecond)
	t0.send <- []byte("{}")

	if err := s.SendMove(1); !errors.Is(err, ErrSendBufferFull) {
		t.Fatalf("SendMove() error = %v, want ErrSendBufferFull", err)
	}
}

func TestWriteFailureIsReportedInOrderOnce(t *testing.T) {
	conn := newFakeConn(`{"type":"move","position":1}`)
	conn.writeErr = errors.New("broken pipe")
	d := &fakeDialer{steps: []dialStep{{conn: conn}}}

	var (
		mu        sync.Mutex
		active    int
		maxActive int
		order     []string
		errs      []string
	)
	var s *Session
	onMessage := func(env protocol.Envelope) {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()

		name := string(env.Type())
		if st, ok := env.(protocol.ConnectionStatus); ok {
			name += "/" + st.Status.String()
		}
		if env == (protocol.Move{Position: 1}) {
			_ = s.SendMove(5)
			time.Sleep(100 * time.Millisecond)
		}

		mu.Lock()
		order = append(order, name)
		active--
		mu.Unlock()
	}
	onError := func(message string, _ Severity) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, message)
	}
	s = New(testEndpoints, Options{Dialer: d, OnMessage: onMessage, OnError: onError})
	defer s.Close()

	s.Connect("g-1")
	waitFor(t, "failed status", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"connection_status/connected", "move", "connection_status/failed"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if maxActive != 1 {
		t.Fatalf("OnMessage ran on %d goroutines at once", maxActive)
	}
	if len(errs) != 1 || errs[0] != "Error connecting to game server" {
		t.Fatalf("errors = %v", errs)
	}
	if s.State() != protocol.StateFailed {
		t.Fatalf("State() = %s, want failed", s.State())
	}
	if n := conn.closeCount(); n != 1 {
		t.Fatalf("conn closed %d times, want 1", n)
	}
}

func TestConnectDoesNotWaitForPriorClose(t *testing.T) {
	first := newFakeConn()
	first.closeDelay = 300 * time.Millisecond
	second := newFakeConn()
	d := &fakeDialer{steps: []dialStep{{conn: first}, {conn: second}}}
	closedBeforeSecondDial := -1
	d.onDial = func(n int) {
		if n == 2 {
			closedBeforeSecondDial = first.closeCount()
		}
	}
	r := newRecorder()
	s := newTestSession(d, r)
	defer s.Close()

	s.Connect("g-1")
	r.next(t)

	start := time.Now()
	s.Connect("g-2")
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("Connect blocked for %s", elapsed)
	}
	if got := r.next(t); got != connected {
		t.Fatalf("got %#v", got)
	}
	if closedBeforeSecondDial != 1 {
		t.Fatalf("prior transport closed %d times before second dial, want 1", closedBeforeSecondDial)
	}
}
