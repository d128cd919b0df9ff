package timer

import (
	"math"
	"time"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

// ComputeRemaining returns the seconds left on a timer snapshot at now.
//
// A running timer (StartedAt set) always wins over a stale PausedRemaining, a paused
// timer reports PausedRemaining verbatim, and an unstarted timer reads as its full
// duration. The result is never negative and depends only on its inputs.
func ComputeRemaining(snapshot *models.TimerSnapshot, now time.Time) float64 {
	if snapshot == nil {
		return 0
	}

	duration := math.Max(0, float64(snapshot.DurationSeconds))

	if snapshot.StartedAt != nil {
		elapsed := now.Sub(snapshot.StartedAt.Time).Seconds()
		return math.Max(0, duration-elapsed)
	}

	if snapshot.PausedRemaining != nil {
		return math.Max(0, *snapshot.PausedRemaining)
	}

	return duration
}

// RemainingSeconds is ComputeRemaining rounded to whole seconds for display.
func RemainingSeconds(snapshot *models.TimerSnapshot, now time.Time) int {
	return int(math.Round(ComputeRemaining(snapshot, now)))
}
