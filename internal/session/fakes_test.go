package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/protocol"
)

var testEndpoints = config.ServiceEndpoints{
	AuthBase:    "http://game.test/users-service",
	GameBase:    "http://game.test/game-service",
	HistoryBase: "http://game.test/game-history",
	SocketHost:  "game.test/game-service",
}

type fakeConn struct {
	frames chan []byte
	errs   chan error
	done   chan struct{}
	once   sync.Once

	// writeErr, when set, fails every write.
	writeErr error
	// closeDelay stands in for a slow close handshake.
	closeDelay time.Duration

	mu     sync.Mutex
	writes [][]byte
	closes int
}

func newFakeConn(frames ...string) *fakeConn {
	c := &fakeConn{
		frames: make(chan []byte, 16),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	for _, f := range frames {
		c.frames <- []byte(f)
	}
	return c
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case <-c.done:
		return nil, &websocket.CloseError{Code: websocket.CloseAbnormalClosure}
	default:
	}
	select {
	case f := <-c.frames:
		return f, nil
	case err := <-c.errs:
		return nil, err
	case <-c.done:
		return nil, &websocket.CloseError{Code: websocket.CloseAbnormalClosure}
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	if c.writeErr != nil {
		return c.writeErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close(int, string) error {
	if c.closeDelay > 0 {
		time.Sleep(c.closeDelay)
	}
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	c.once.Do(func() { close(c.done) })
	return nil
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

func (c *fakeConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

type dialStep struct {
	conn *fakeConn
	err  error
	gate chan struct{}
}

type fakeDialer struct {
	mu     sync.Mutex
	steps  []dialStep
	urls   []string
	onDial func(n int)
}

func (d *fakeDialer) Dial(ctx context.Context, url string) (Conn, error) {
	d.mu.Lock()
	d.urls = append(d.urls, url)
	n := len(d.urls)
	if len(d.steps) == 0 {
		d.mu.Unlock()
		return nil, errors.New("no scripted dial")
	}
	step := d.steps[0]
	d.steps = d.steps[1:]
	hook := d.onDial
	d.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if step.gate != nil {
		<-step.gate
	}
	if step.err != nil {
		return nil, step.err
	}
	return step.conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

type recorder struct {
	msgs chan protocol.Envelope

	mu   sync.Mutex
	errs []string
}

func newRecorder() *recorder {
	return &recorder{msgs: make(chan protocol.Envelope, 64)}
}

func (r *recorder) onMessage(env protocol.Envelope) {
	r.msgs <- env
}

func (r *recorder) onError(message string, _ Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, message)
}

func (r *recorder) errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errs...)
}

func (r *recorder) next(t *testing.T) protocol.Envelope {
	t.Helper()
	select {
	case env := <-r.msgs:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
		return nil
	}
}

func (r *recorder) expectNone(t *testing.T, wait time.Duration) {
	t.Helper()
	select {
	case env := <-r.msgs:
		t.Fatalf("unexpected envelope %#v", env)
	case <-time.After(wait):
	}
}

func newTestSession(d Dialer, r *recorder) *Session {
	return New(testEndpoints, Options{Dialer: d, OnMessage: r.onMessage, OnError: r.onError})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
