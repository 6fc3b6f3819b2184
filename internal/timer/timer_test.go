package timer

import (
	"testing"
	"time"

	"cubedeck/internal/bus"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type eventRecorder struct {
	events   []bus.EventName
	payloads []any
}

func (r *eventRecorder) Emit(event bus.EventName, payload any, _ ...bus.Options) {
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
}

func newTestTimer() (*Timer, *fakeClock, *eventRecorder) {
	clock := newFakeClock()
	rec := &eventRecorder{}
	t := New(rec, WithClock(clock.now))
	return t, clock, rec
}

func TestHoldTooShortReturnsToIdle(t *testing.T) {
	tm, clock, rec := newTestTimer()

	tm.Press()
	if got := tm.State(); got != StateHolding {
		t.Fatalf("want holding, got %s", got)
	}
	clock.advance(100 * time.Millisecond)
	tm.Release()
	if got := tm.State(); got != StateIdle {
		t.Fatalf("short hold must fall back to idle, got %s", got)
	}
	if len(rec.events) != 0 {
		t.Fatalf("no events expected, got %v", rec.events)
	}
}

func TestFullSolveCycle(t *testing.T) {
	tm, clock, rec := newTestTimer()
	tm.SetScramble("R U R' U'", "333")

	tm.Press()
	clock.advance(350 * time.Millisecond)
	if got := tm.State(); got != StateReady {
		t.Fatalf("hold elapsed, want ready, got %s", got)
	}

	tm.Release()
	if got := tm.State(); got != StateRunning {
		t.Fatalf("want running, got %s", got)
	}

	clock.advance(12340 * time.Millisecond)
	tm.Press()
	if got := tm.State(); got != StateStopped {
		t.Fatalf("want stopped, got %s", got)
	}
	if got := tm.Elapsed(); got != 12340 {
		t.Fatalf("want 12340ms, got %d", got)
	}

	want := []bus.EventName{bus.TimerReady, bus.TimerStarted, bus.SolveFinished}
	if len(rec.events) != len(want) {
		t.Fatalf("want events %v, got %v", want, rec.events)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Fatalf("event %d: want %s, got %s", i, want[i], rec.events[i])
		}
	}

	payload, ok := rec.payloads[2].(bus.SolveFinishedPayload)
	if !ok {
		t.Fatalf("finished payload wrong type: %T", rec.payloads[2])
	}
	if payload.Duration != 12340 || payload.Scramble != "R U R' U'" || payload.ScrambleType != "333" {
		t.Fatalf("payload wrong: %+v", payload)
	}
}

func TestReadyEventFiresOncePerHold(t *testing.T) {
	tm, clock, rec := newTestTimer()

	tm.Press()
	clock.advance(time.Second)
	tm.State()
	tm.State()
	tm.State()

	ready := 0
	for _, e := range rec.events {
		if e == bus.TimerReady {
			ready++
		}
	}
	if ready != 1 {
		t.Fatalf("ready must fire once per hold, got %d", ready)
	}
}

func TestNoHoldToStartArmsImmediately(t *testing.T) {
	tm, _, rec := newTestTimer()
	s := DefaultSettings()
	s.HoldToStart = false
	tm.UpdateSettings(s)

	tm.Press()
	if got := tm.State(); got != StateReady {
		t.Fatalf("want ready without hold, got %s", got)
	}
	if len(rec.events) != 1 || rec.events[0] != bus.TimerReady {
		t.Fatalf("want immediate ready event, got %v", rec.events)
	}
}

func TestPressAfterStopStartsNewCycle(t *testing.T) {
	tm, clock, _ := newTestTimer()

	tm.Press()
	clock.advance(400 * time.Millisecond)
	tm.Release()
	clock.advance(5 * time.Second)
	tm.Press() // stop
	tm.Release()

	tm.Press()
	if got := tm.State(); got != StateHolding {
		t.Fatalf("press after stop must begin a new hold, got %s", got)
	}
}

func TestElapsedWhileRunning(t *testing.T) {
	tm, clock, _ := newTestTimer()

	tm.Press()
	clock.advance(400 * time.Millisecond)
	tm.Release()
	clock.advance(3 * time.Second)
	if got := tm.Elapsed(); got != 3000 {
		t.Fatalf("want live 3000ms, got %d", got)
	}
}

func TestReset(t *testing.T) {
	tm, clock, _ := newTestTimer()

	tm.Press()
	clock.advance(400 * time.Millisecond)
	tm.Release()
	clock.advance(time.Second)
	tm.Press()

	tm.Reset()
	if got := tm.State(); got != StateIdle {
		t.Fatalf("want idle after reset, got %s", got)
	}
	if got := tm.Elapsed(); got != 0 {
		t.Fatalf("want zero clock after reset, got %d", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "0.00"},
		{12340, "12.34"},
		{59999, "60.00"},
		{60000, "1:00.00"},
		{62340, "1:02.34"},
		{600000, "10:00.00"},
		{3723450, "62:03.45"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.ms); got != c.want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", c.ms, got, c.want)
		}
	}
}
