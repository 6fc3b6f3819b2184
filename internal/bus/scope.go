package bus

import "sync"

// Scope is a widget-lifetime view of a page bus. Subscriptions made through
// a scope are tracked and removed together when the scope closes, so a
// widget torn down from the page can never leave a dangling handler behind.
type Scope struct {
	bus *Bus

	mu     sync.Mutex
	subs   []subRecord
	closed bool
}

type subRecord struct {
	event   EventName
	handler Handler
	link    string
}

// NewScope creates a subscription scope bound to this bus.
func (b *Bus) NewScope() *Scope {
	return &Scope{bus: b}
}

// On subscribes through the scope. No-op after Close.
func (s *Scope) On(event EventName, handler Handler, opts ...Options) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.subs = append(s.subs, subRecord{event: event, handler: handler, link: optLink(opts)})
	s.mu.Unlock()

	s.bus.On(event, handler, opts...)
}

// Off removes one subscription made through this scope.
func (s *Scope) Off(event EventName, handler Handler, opts ...Options) {
	link := optLink(opts)

	s.mu.Lock()
	for i, r := range s.subs {
		if r.event == event && r.handler == handler && r.link == link {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.bus.Off(event, handler, opts...)
}

// Emit forwards to the underlying bus.
func (s *Scope) Emit(event EventName, payload any, opts ...Options) {
	s.bus.Emit(event, payload, opts...)
}

// Close unsubscribes everything registered through this scope. Idempotent.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, r := range subs {
		s.bus.Off(r.event, r.handler, Options{LinkID: r.link})
	}
}
