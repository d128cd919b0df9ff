package models

// TimerSnapshot is the server's compact encoding of timer state.
// Remaining time is always derived from it and never stored as a live counter.
type TimerSnapshot struct {
	DurationSeconds int        `json:"duration_seconds"`
	StartedAt       *Timestamp `json:"started_at,omitempty"`
	PausedRemaining *float64   `json:"paused_remaining,omitempty"`
}

// Running reports whether the snapshot describes a running timer.
func (t *TimerSnapshot) Running() bool {
	return t != nil && t.StartedAt != nil
}

// Equal reports whether two snapshots encode the same timer state.
func (t *TimerSnapshot) Equal(other *TimerSnapshot) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.DurationSeconds != other.DurationSeconds {
		return false
	}
	switch {
	case (t.StartedAt == nil) != (other.StartedAt == nil):
		return false
	case t.StartedAt != nil && !t.StartedAt.Time.Equal(other.StartedAt.Time):
		return false
	}
	switch {
	case (t.PausedRemaining == nil) != (other.PausedRemaining == nil):
		return false
	case t.PausedRemaining != nil && *t.PausedRemaining != *other.PausedRemaining:
		return false
	}
	return true
}
