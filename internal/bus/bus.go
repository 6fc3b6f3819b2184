// Package bus implements the page-scoped publish/subscribe channel widgets
// use to communicate, with a link dimension that partitions event traffic
// between widget groups sharing one page.
//
// One Bus exists per mounted page and is discarded with it. Dispatch is
// synchronous: Emit invokes matching handlers before returning, iterating a
// snapshot of the subscriber set so handlers that subscribe or unsubscribe
// mid-emit do not affect the current pass. Emit is not panic-safe across
// handlers: a panicking handler propagates to the emitter.
package bus

import "sync"

// WildcardLink is the reserved link key meaning "every link". Subscribing
// without a link lands in this bucket.
const WildcardLink = "*"

// Handler receives events from the bus. Implementations must be comparable
// (pointer receivers work); the bus uses handler identity for set semantics,
// so subscribing the same handler twice for the same (event, link) pair is
// idempotent and Off must be given the same handler value.
type Handler interface {
	HandleEvent(payload any)
}

type funcHandler struct {
	fn func(payload any)
}

func (h *funcHandler) HandleEvent(payload any) { h.fn(payload) }

// HandlerOf wraps a plain function as a Handler. Each call returns a distinct
// identity; keep the returned value to unsubscribe later.
func HandlerOf(fn func(payload any)) Handler {
	return &funcHandler{fn: fn}
}

// Options selects the link a subscription or emit applies to.
type Options struct {
	// LinkID filters delivery. Empty on On/Off means the wildcard bucket
	// (receive from every link). Empty on Emit means "no link context":
	// only wildcard subscribers see the event. This asymmetry is load
	// bearing; see Emit.
	LinkID string
}

// Bus is a per-page event bus. The zero value is not usable; call New.
type Bus struct {
	mu sync.Mutex
	// event -> link id -> set of handlers
	handlers map[EventName]map[string]map[Handler]struct{}
}

// New creates an empty bus for one page instance.
func New() *Bus {
	return &Bus{handlers: map[EventName]map[string]map[Handler]struct{}{}}
}

func optLink(opts []Options) string {
	if len(opts) > 0 && opts[0].LinkID != "" {
		return opts[0].LinkID
	}
	return ""
}

// On subscribes handler to event. Without a LinkID the subscription lands in
// the wildcard bucket and receives the event regardless of the emitter's
// link. Subscribing the same handler twice for the same (event, link) is a
// no-op.
func (b *Bus) On(event EventName, handler Handler, opts ...Options) {
	if handler == nil {
		return
	}
	link := optLink(opts)
	if link == "" {
		link = WildcardLink
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	links, ok := b.handlers[event]
	if !ok {
		links = map[string]map[Handler]struct{}{}
		b.handlers[event] = links
	}
	set, ok := links[link]
	if !ok {
		set = map[Handler]struct{}{}
		links[link] = set
	}
	set[handler] = struct{}{}
}

// Off removes the (event, link, handler) subscription; a missing subscription
// is a no-op. The link defaulting matches On, so a handler subscribed without
// a LinkID is removed without one.
func (b *Bus) Off(event EventName, handler Handler, opts ...Options) {
	if handler == nil {
		return
	}
	link := optLink(opts)
	if link == "" {
		link = WildcardLink
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	links, ok := b.handlers[event]
	if !ok {
		return
	}
	if set, ok := links[link]; ok {
		delete(set, handler)
		if len(set) == 0 {
			delete(links, link)
		}
	}
	if len(links) == 0 {
		delete(b.handlers, event)
	}
}

// Emit synchronously delivers event to matching subscribers. With a concrete
// LinkID it reaches that link's handlers plus the wildcard bucket. Without
// one it reaches only the wildcard bucket: an emitter with no link context
// must not broadcast into every group, so link-scoped subscribers never see
// link-less emits. Events with no subscribers are silently dropped.
func (b *Bus) Emit(event EventName, payload any, opts ...Options) {
	emitLink := optLink(opts)

	b.mu.Lock()
	links := b.handlers[event]
	var snapshot []Handler
	for link, set := range links {
		match := link == WildcardLink || (emitLink != "" && link == emitLink)
		if !match {
			continue
		}
		for h := range set {
			snapshot = append(snapshot, h)
		}
	}
	b.mu.Unlock()

	for _, h := range snapshot {
		h.HandleEvent(payload)
	}
}

// SubscriberCount reports how many handlers are subscribed to event across
// all links. Mostly useful in tests and diagnostics.
func (b *Bus) SubscriberCount(event EventName) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, set := range b.handlers[event] {
		n += len(set)
	}
	return n
}
