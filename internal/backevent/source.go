// Package backevent provides the back-key event source: handlers
// subscribe for back events and dispatch walks them newest-first until
// one reports the event handled.
package backevent

import "sync"

// Handler processes a back event. It returns true when the event was
// consumed; false lets the event continue to older handlers and,
// ultimately, the host (which typically closes the screen).
type Handler func() bool

type subscription struct {
	id      uint64
	handler Handler
}

// Source fans back events out to subscribed handlers.
type Source struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// NewSource creates an empty back-event source.
func NewSource() *Source {
	return &Source{}
}

// Subscribe registers a handler and returns its cancel function.
// Cancel is idempotent.
func (s *Source) Subscribe(h Handler) (cancel func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, handler: h})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := range s.subs {
			if s.subs[i].id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers a back event, most recently subscribed handler
// first. Returns true as soon as a handler consumes it; false when no
// handler did (the event bubbles up to the host).
func (s *Source) Dispatch() bool {
	s.mu.Lock()
	handlers := make([]Handler, 0, len(s.subs))
	for i := len(s.subs) - 1; i >= 0; i-- {
		handlers = append(handlers, s.subs[i].handler)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		if h() {
			return true
		}
	}
	return false
}

// Len returns the number of subscribed handlers.
func (s *Source) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
