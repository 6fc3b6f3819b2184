package bus

// EventName identifies an event on the page bus. The catalog below is the
// public contract between widgets; payload-carrying events pass the matching
// payload struct, the others pass nil.
type EventName string

const (
	// TimerReady fires when the timer has been held long enough to start.
	// No payload.
	TimerReady EventName = "timerReady"

	// TimerStarted fires when a solve attempt begins. No payload.
	TimerStarted EventName = "timerStarted"

	// SolveFinished fires when the timer stops. Payload: SolveFinishedPayload.
	SolveFinished EventName = "solveFinished"

	// SolveSaved fires after a finished solve has been persisted.
	// Payload: SolveSavedPayload.
	SolveSaved EventName = "solveSaved"

	// ScrambleGenerated fires when the scramble source produces a new
	// scramble. Payload: ScrambleGeneratedPayload.
	ScrambleGenerated EventName = "scrambleGenerated"

	// RequestCurrentScramble is a pull-style request asking the scramble
	// source to re-emit ScrambleGenerated. No payload.
	RequestCurrentScramble EventName = "requestCurrentScramble"
)

// SolveFinishedPayload carries the result of a stopped timer.
type SolveFinishedPayload struct {
	Duration     int64  `json:"duration"` // milliseconds
	Scramble     string `json:"scramble"`
	ScrambleType string `json:"scrambleType"`
}

// SolveSavedPayload carries the persisted id of a new solve.
type SolveSavedPayload struct {
	SolveID int64 `json:"solveId"`
}

// ScrambleGeneratedPayload carries a freshly generated scramble.
type ScrambleGeneratedPayload struct {
	Scramble     string `json:"scramble"`
	ScrambleType string `json:"scrambleType"`
}
