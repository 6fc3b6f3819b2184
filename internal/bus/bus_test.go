package bus

import "testing"

type countingHandler struct {
	calls    int
	payloads []any
}

func (h *countingHandler) HandleEvent(payload any) {
	h.calls++
	h.payloads = append(h.payloads, payload)
}

func TestEmitWithoutLinkReachesWildcardSubscriber(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(SolveFinished, h)

	payload := SolveFinishedPayload{Duration: 12340, Scramble: "R U R' U'", ScrambleType: "333"}
	b.Emit(SolveFinished, payload)

	if h.calls != 1 {
		t.Fatalf("want 1 call, got %d", h.calls)
	}
	got, ok := h.payloads[0].(SolveFinishedPayload)
	if !ok || got != payload {
		t.Fatalf("payload mismatch: %#v", h.payloads[0])
	}
}

func TestEmitToOtherLinkDoesNotReachLinkedSubscriber(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(ScrambleGenerated, h, Options{LinkID: "A"})

	b.Emit(ScrambleGenerated, ScrambleGeneratedPayload{Scramble: "F2 B2"}, Options{LinkID: "B"})

	if h.calls != 0 {
		t.Fatalf("handler on link A must not see link B emits, got %d calls", h.calls)
	}
}

func TestWildcardSubscriberReceivesAnyConcreteLink(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(ScrambleGenerated, h)

	b.Emit(ScrambleGenerated, ScrambleGeneratedPayload{}, Options{LinkID: "B"})

	if h.calls != 1 {
		t.Fatalf("wildcard subscriber must see concrete-link emits, got %d calls", h.calls)
	}
}

func TestLinkedSubscriberDoesNotReceiveLinklessEmit(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(ScrambleGenerated, h, Options{LinkID: "A"})

	// An emitter with no link context reaches only wildcard subscribers.
	b.Emit(ScrambleGenerated, ScrambleGeneratedPayload{})

	if h.calls != 0 {
		t.Fatalf("link-scoped subscriber must not see link-less emits, got %d calls", h.calls)
	}
}

func TestMatchingLinkDelivers(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(ScrambleGenerated, h, Options{LinkID: "A"})

	b.Emit(ScrambleGenerated, ScrambleGeneratedPayload{}, Options{LinkID: "A"})

	if h.calls != 1 {
		t.Fatalf("want 1 call, got %d", h.calls)
	}
}

func TestOffRemovesSubscription(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(TimerStarted, h)
	b.Off(TimerStarted, h)

	b.Emit(TimerStarted, nil)

	if h.calls != 0 {
		t.Fatalf("handler must not fire after Off, got %d calls", h.calls)
	}
}

func TestOffLinkDefaultMatchesOnDefault(t *testing.T) {
	b := New()
	h := &countingHandler{}
	// Subscribed without a link; removed without a link. Both must target
	// the wildcard bucket.
	b.On(TimerReady, h)
	b.Off(TimerReady, h)

	if n := b.SubscriberCount(TimerReady); n != 0 {
		t.Fatalf("want 0 subscribers, got %d", n)
	}
}

func TestDuplicateSubscribeIsIdempotent(t *testing.T) {
	b := New()
	h := &countingHandler{}
	b.On(SolveSaved, h)
	b.On(SolveSaved, h)

	b.Emit(SolveSaved, SolveSavedPayload{SolveID: 7})

	if h.calls != 1 {
		t.Fatalf("duplicate subscription must not double-invoke, got %d calls", h.calls)
	}
}

func TestTwoLinkGroupsAreIsolated(t *testing.T) {
	b := New()
	g1 := &countingHandler{}
	g2 := &countingHandler{}
	b.On(ScrambleGenerated, g1, Options{LinkID: "group1"})
	b.On(ScrambleGenerated, g2, Options{LinkID: "group2"})

	b.Emit(ScrambleGenerated, ScrambleGeneratedPayload{Scramble: "D2 L2"}, Options{LinkID: "group1"})

	if g1.calls != 1 {
		t.Fatalf("group1 handler: want 1 call, got %d", g1.calls)
	}
	if g2.calls != 0 {
		t.Fatalf("group2 handler must stay silent, got %d calls", g2.calls)
	}
}

func TestEmitWithNoSubscribersIsNoop(t *testing.T) {
	b := New()
	// Must not panic or error.
	b.Emit(TimerReady, nil)
	b.Emit(SolveFinished, SolveFinishedPayload{}, Options{LinkID: "A"})
}

func TestHandlerAddedDuringEmitDoesNotSeeCurrentPass(t *testing.T) {
	b := New()
	late := &countingHandler{}
	adder := HandlerOf(func(any) {
		b.On(TimerReady, late)
	})
	b.On(TimerReady, adder)

	b.Emit(TimerReady, nil)
	if late.calls != 0 {
		t.Fatalf("handler added mid-emit must not run in the same pass")
	}

	b.Emit(TimerReady, nil)
	if late.calls != 1 {
		t.Fatalf("handler added mid-emit must run on the next pass, got %d", late.calls)
	}
}

func TestHandlerRemovedDuringEmitStillRunsInCurrentPass(t *testing.T) {
	b := New()
	second := &countingHandler{}
	remover := HandlerOf(func(any) {
		b.Off(TimerReady, second)
	})
	// Registration order does not guarantee dispatch order, so only check
	// that the pass completes and that later emits skip the removed handler.
	b.On(TimerReady, remover)
	b.On(TimerReady, second)

	b.Emit(TimerReady, nil)
	firstPass := second.calls

	b.Emit(TimerReady, nil)
	if second.calls != firstPass {
		t.Fatalf("removed handler must not fire on later emits")
	}
}

func TestScopeCloseRemovesAllSubscriptions(t *testing.T) {
	b := New()
	s := b.NewScope()
	h1 := &countingHandler{}
	h2 := &countingHandler{}
	s.On(ScrambleGenerated, h1)
	s.On(ScrambleGenerated, h2, Options{LinkID: "group1"})

	s.Close()

	b.Emit(ScrambleGenerated, ScrambleGeneratedPayload{}, Options{LinkID: "group1"})
	if h1.calls+h2.calls != 0 {
		t.Fatalf("closed scope must have no live handlers")
	}
	if n := b.SubscriberCount(ScrambleGenerated); n != 0 {
		t.Fatalf("want 0 subscribers after scope close, got %d", n)
	}

	// Subscribing after close is ignored.
	s.On(TimerReady, h1)
	if n := b.SubscriberCount(TimerReady); n != 0 {
		t.Fatalf("closed scope must not register new handlers")
	}
}

func TestScopeCloseIsIdempotent(t *testing.T) {
	b := New()
	s := b.NewScope()
	s.On(TimerReady, &countingHandler{})
	s.Close()
	s.Close()
}

func TestHandlerOfDistinctIdentities(t *testing.T) {
	b := New()
	calls := 0
	fn := func(any) { calls++ }
	h1 := HandlerOf(fn)
	h2 := HandlerOf(fn)
	b.On(TimerReady, h1)
	b.On(TimerReady, h2)

	b.Emit(TimerReady, nil)
	if calls != 2 {
		t.Fatalf("two wrapped handlers must both fire, got %d", calls)
	}
}
