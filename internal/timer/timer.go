// Package timer implements the hold-to-start solve timer state machine:
// idle -> holding -> ready -> running -> stopped. Transitions publish page
// events so linked widgets can react without knowing about each other.
package timer

import (
	"fmt"
	"sync"
	"time"

	"cubedeck/internal/bus"
)

// State names one phase of the timing cycle.
type State string

const (
	StateIdle    State = "idle"
	StateHolding State = "holding"
	StateReady   State = "ready"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Settings controls how the timer arms and counts.
type Settings struct {
	HoldToStart    bool  `json:"holdToStart"`
	HoldTime       int64 `json:"holdTime"` // milliseconds
	Inspection     bool  `json:"inspection"`
	InspectionTime int   `json:"inspectionTime"` // seconds
	HideTime       bool  `json:"hideTime"`
}

// DefaultSettings returns the stock timer configuration.
func DefaultSettings() Settings {
	return Settings{
		HoldToStart:    true,
		HoldTime:       300,
		Inspection:     true,
		InspectionTime: 15,
		HideTime:       false,
	}
}

// Emitter is the slice of the event bus the timer publishes through.
type Emitter interface {
	Emit(event bus.EventName, payload any, opts ...bus.Options)
}

// Timer is the solve timer. It is driven by Press/Release pairs; readiness
// is evaluated against the hold time whenever the state is observed, so no
// background goroutine is needed.
type Timer struct {
	mu       sync.Mutex
	state    State
	settings Settings
	events   Emitter
	now      func() time.Time

	pressedAt  time.Time
	startedAt  time.Time
	readySent  bool
	lastResult int64

	scramble     string
	scrambleType string
}

// Option configures a Timer at construction.
type Option func(*Timer)

// WithClock substitutes the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) { t.now = now }
}

// WithSettings overrides the default settings.
func WithSettings(s Settings) Option {
	return func(t *Timer) { t.settings = s }
}

// New builds an idle timer publishing through the given emitter.
func New(events Emitter, opts ...Option) *Timer {
	t := &Timer{
		state:    StateIdle,
		settings: DefaultSettings(),
		events:   events,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Press handles the spacebar (or touch) going down. From idle or stopped it
// begins the hold; while running it stops the clock and publishes the
// finished solve.
func (t *Timer) Press() {
	var emits []func()
	t.mu.Lock()
	now := t.now()
	t.refreshLocked(now, &emits)

	switch t.state {
	case StateIdle, StateStopped:
		t.state = StateHolding
		t.pressedAt = now
		t.readySent = false
		if !t.settings.HoldToStart {
			t.state = StateReady
			t.readySent = true
			emits = append(emits, func() { t.events.Emit(bus.TimerReady, nil) })
		}
	case StateRunning:
		t.lastResult = now.Sub(t.startedAt).Milliseconds()
		t.state = StateStopped
		result := bus.SolveFinishedPayload{
			Duration:     t.lastResult,
			Scramble:     t.scramble,
			ScrambleType: t.scrambleType,
		}
		emits = append(emits, func() { t.events.Emit(bus.SolveFinished, result) })
	}
	t.mu.Unlock()

	for _, emit := range emits {
		emit()
	}
}

// Release handles the spacebar going up. From ready it starts the clock;
// from a hold that was too short it falls back to idle.
func (t *Timer) Release() {
	var emits []func()
	t.mu.Lock()
	now := t.now()
	t.refreshLocked(now, &emits)

	switch t.state {
	case StateReady:
		t.state = StateRunning
		t.startedAt = now
		emits = append(emits, func() { t.events.Emit(bus.TimerStarted, nil) })
	case StateHolding:
		t.state = StateIdle
	}
	t.mu.Unlock()

	for _, emit := range emits {
		emit()
	}
}

// refreshLocked promotes holding to ready once the hold time has elapsed.
// The ready event fires exactly once per hold.
func (t *Timer) refreshLocked(now time.Time, emits *[]func()) {
	if t.state != StateHolding {
		return
	}
	if now.Sub(t.pressedAt).Milliseconds() < t.settings.HoldTime {
		return
	}
	t.state = StateReady
	if !t.readySent {
		t.readySent = true
		*emits = append(*emits, func() { t.events.Emit(bus.TimerReady, nil) })
	}
}

// State reports the current phase, promoting an elapsed hold to ready.
func (t *Timer) State() State {
	var emits []func()
	t.mu.Lock()
	t.refreshLocked(t.now(), &emits)
	state := t.state
	t.mu.Unlock()
	for _, emit := range emits {
		emit()
	}
	return state
}

// Elapsed reports the milliseconds on the clock: live while running, the
// final result after a stop, zero otherwise.
func (t *Timer) Elapsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case StateRunning:
		return t.now().Sub(t.startedAt).Milliseconds()
	case StateStopped:
		return t.lastResult
	default:
		return 0
	}
}

// Reset returns the timer to idle and clears the clock.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = StateIdle
	t.lastResult = 0
	t.readySent = false
}

// SetScramble records the scramble the next solve will be attributed to.
func (t *Timer) SetScramble(scramble, scrambleType string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scramble = scramble
	t.scrambleType = scrambleType
}

// UpdateSettings merges the given settings in.
func (t *Timer) UpdateSettings(s Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings = s
}

// Settings returns the current timer settings.
func (t *Timer) Settings() Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

// FormatDuration renders milliseconds the way the display shows them:
// "12.34" under a minute, "1:02.34" above.
func FormatDuration(ms int64) string {
	if ms < 60000 {
		return fmt.Sprintf("%.2f", float64(ms)/1000)
	}
	minutes := ms / 60000
	seconds := float64(ms%60000) / 1000
	return fmt.Sprintf("%d:%05.2f", minutes, seconds)
}
