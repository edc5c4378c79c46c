package models

import (
	"time"
)

// DrillSession represents one fire-drill exercise instance. Multiple
// sessions may be active at the same time; each is started and stopped
// independently.
type DrillSession struct {
	// ID is the unique identifier for this session
	ID string `json:"id"`

	// StartedBy is the name of the marshal who started the drill
	StartedBy string `json:"started_by"`

	// StartedAt is when the drill was started
	StartedAt time.Time `json:"started_at"`

	// Active indicates whether the drill is still running. Once a
	// session goes inactive it never reactivates.
	Active bool `json:"active"`

	// EndedAt is when the drill was stopped, nil while active
	EndedAt *time.Time `json:"ended_at"`

	// EndedBy is the name of the marshal who stopped the drill
	EndedBy string `json:"ended_by"`
}

// Elapsed returns the duration of the drill, using now for sessions
// that have not ended yet.
func (s *DrillSession) Elapsed(now time.Time) time.Duration {
	if s.EndedAt != nil {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}
