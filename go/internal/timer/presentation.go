package timer

import (
	"errors"
	"fmt"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

const (
	// MinDurationSeconds is the shortest duration the server accepts
	MinDurationSeconds = 30
	// MaxDurationSeconds is the longest duration the server accepts
	MaxDurationSeconds = 7200
)

// ErrDurationOutOfRange is returned for durations the server would reject.
var ErrDurationOutOfRange = errors.New("timer duration must be between 30 and 7200 seconds")

// Color classes for the countdown display.
const (
	ColorIdle  = "idle"
	ColorGreen = "green"
	ColorAmber = "amber"
	ColorRed   = "red"
)

// Presets are the quick-pick durations offered to the facilitator.
var Presets = []int{300, 600, 900, 1800}

// ValidateDuration checks a duration before a set-duration request is sent.
func ValidateDuration(seconds int) error {
	if seconds < MinDurationSeconds || seconds > MaxDurationSeconds {
		return fmt.Errorf("%w: got %d", ErrDurationOutOfRange, seconds)
	}
	return nil
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ColorClass picks the display color from the fraction of time left.
func ColorClass(remaining int, snapshot *models.TimerSnapshot) string {
	if snapshot == nil || snapshot.DurationSeconds <= 0 {
		return ColorIdle
	}
	pct := float64(remaining) / float64(snapshot.DurationSeconds)
	switch {
	case pct > 0.25:
		return ColorGreen
	case pct > 0.1:
		return ColorAmber
	default:
		return ColorRed
	}
}

// CanStart reports whether a configured, stopped timer with time left may be started.
func CanStart(snapshot *models.TimerSnapshot, remaining int) bool {
	return snapshot != nil && !snapshot.Running() && remaining > 0
}

// IsPaused reports whether the snapshot is a paused (resumable) timer.
func IsPaused(snapshot *models.TimerSnapshot) bool {
	return snapshot != nil && !snapshot.Running() && snapshot.PausedRemaining != nil
}
