// Package events carries the "session invalidated" notification from the
// networking layer to navigation without either side knowing the other.
package events

import (
	"sort"
	"sync"
)

// LoginPath is the redirect target carried by unauthorized events.
const LoginPath = "/login"

// Unauthorized is emitted when a request is rejected for lacking valid
// authorization.
type Unauthorized struct {
	Redirect string `json:"redirect"`
}

// Signal is an explicitly constructed broadcaster for Unauthorized events.
// Handlers run synchronously on the emitting goroutine, in subscription order.
type Signal struct {
	mu       sync.Mutex
	next     uint64
	handlers map[uint64]func(Unauthorized)
}

// NewSignal returns a Signal with no subscribers.
func NewSignal() *Signal {
	return &Signal{handlers: make(map[uint64]func(Unauthorized))}
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (s *Signal) Subscribe(fn func(Unauthorized)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.handlers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

// Emit delivers evt to every current subscriber.
func (s *Signal) Emit(evt Unauthorized) {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.handlers))
	for id := range s.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Unauthorized), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.handlers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// Subscribers returns the number of registered handlers.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}
