package reconnect

import "sync"

type Trigger string

const (
	TriggerFocus  Trigger = "focus"
	TriggerOnline Trigger = "online"
)

// Source delivers liveness triggers. Subscribe returns the matching unsubscribe.
type Source interface {
	Subscribe(fn func(Trigger)) (unsubscribe func())
}

// Signal turns level reports ("focused", "online") into edges: subscribers run
// only on a down-to-up transition, however often Set(true) is called.
type Signal struct {
	trigger Trigger

	mu   sync.Mutex
	up   bool
	next int
	subs map[int]func(Trigger)
}

func NewSignal(trigger Trigger, up bool) *Signal {
	return &Signal{trigger: trigger, up: up, subs: map[int]func(Trigger){}}
}

func (s *Signal) Set(up bool) {
	s.mu.Lock()
	rising := up && !s.up
	s.up = up
	var fns []func(Trigger)
	if rising {
		fns = make([]func(Trigger), 0, len(s.subs))
		for _, fn := range s.subs {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(s.trigger)
	}
}

func (s *Signal) Up() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.up
}

func (s *Signal) Subscribe(fn func(Trigger)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
		})
	}
}
