package model

import "time"

// Penalty is the outcome adjustment applied to a solve.
type Penalty string

const (
	PenaltyNone Penalty = "none"
	PenaltyPlus Penalty = "+2"
	PenaltyDNF  Penalty = "dnf"
)

// Solve is one completed timed attempt.
type Solve struct {
	ID           int64     `json:"id"`
	Duration     int64     `json:"duration"` // milliseconds
	Scramble     string    `json:"scramble"`
	ScrambleType string    `json:"scrambleType"` // event code, e.g. "333"
	SessionID    int64     `json:"sessionId"`
	PageID       string    `json:"pageId,omitempty"`
	Tags         []string  `json:"tags"`
	Timestamp    time.Time `json:"timestamp"`
	Penalty      Penalty   `json:"penalty"`
	Comment      string    `json:"comment,omitempty"`
}

// EffectiveDuration applies the penalty: +2 adds two seconds, DNF reports
// ok=false.
func (s *Solve) EffectiveDuration() (ms int64, ok bool) {
	switch s.Penalty {
	case PenaltyDNF:
		return 0, false
	case PenaltyPlus:
		return s.Duration + 2000, true
	default:
		return s.Duration, true
	}
}

// Session groups solves under a name and event.
type Session struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Event         string    `json:"event"`
	DefaultPageID string    `json:"defaultPageId,omitempty"`
	Archived      bool      `json:"archived"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Tag is a named, colored label users attach to solves.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
