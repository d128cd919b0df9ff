package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

type fixedMute bool

func (m fixedMute) Muted() bool { return bool(m) }

func expectTick(t *testing.T, ticks <-chan int, want int) {
	t.Helper()
	select {
	case got := <-ticks:
		if got != want {
			t.Fatalf("tick = %d, want %d", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for tick %d", want)
	}
}

func expectNoTick(t *testing.T, ticks <-chan int) {
	t.Helper()
	select {
	case got := <-ticks:
		t.Fatalf("unexpected tick %d", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func newTestCountdown(clock clockwork.Clock, mute bool) (*Countdown, chan int, *atomic.Int32) {
	ticks := make(chan int, 16)
	cues := &atomic.Int32{}
	cd := NewCountdown(
		WithClock(clock),
		WithTickHandler(func(r int) { ticks <- r }),
		WithCue(CueFunc(func() { cues.Add(1) })),
		WithMutePreference(fixedMute(mute)),
	)
	return cd, ticks, cues
}

func runningSnapshot(now time.Time, duration int, elapsed time.Duration) *models.TimerSnapshot {
	return &models.TimerSnapshot{
		DurationSeconds: duration,
		StartedAt:       models.TimestampPtr(now.Add(-elapsed)),
	}
}

func TestCountdownExpiresExactlyOnce(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, cues := newTestCountdown(fc, false)
	defer cd.Stop()

	cd.Sync(runningSnapshot(fc.Now(), 300, 298*time.Second))
	expectTick(t, ticks, 2)
	if !cd.Ticking() {
		t.Fatal("countdown should tick for a running timer")
	}

	fc.Advance(time.Second)
	expectTick(t, ticks, 1)

	fc.Advance(time.Second)
	expectTick(t, ticks, 0)

	fc.Advance(time.Second)
	fc.Advance(time.Second)
	expectNoTick(t, ticks)

	if got := cues.Load(); got != 1 {
		t.Errorf("cue played %d times, want 1", got)
	}
	if cd.Ticking() {
		t.Error("ticker should cancel itself once the timer reaches zero")
	}
}

func TestCountdownRecomputesFromWallTime(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, _ := newTestCountdown(fc, false)
	defer cd.Stop()

	cd.Sync(runningSnapshot(fc.Now(), 300, 0))
	expectTick(t, ticks, 300)

	// A long pause between ticks, as when a laptop sleeps
	fc.Advance(90 * time.Second)
	expectTick(t, ticks, 210)
}

func TestCountdownMutedSkipsCue(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, cues := newTestCountdown(fc, true)
	defer cd.Stop()

	cd.Sync(runningSnapshot(fc.Now(), 60, 59*time.Second))
	expectTick(t, ticks, 1)
	fc.Advance(time.Second)
	expectTick(t, ticks, 0)

	if got := cues.Load(); got != 0 {
		t.Errorf("cue played %d times while muted, want 0", got)
	}
}

func TestCountdownPausedSnapshotDoesNotTick(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, _ := newTestCountdown(fc, false)
	defer cd.Stop()

	cd.Sync(runningSnapshot(fc.Now(), 300, 10*time.Second))
	expectTick(t, ticks, 290)

	cd.Sync(&models.TimerSnapshot{DurationSeconds: 300, PausedRemaining: ptr(290)})
	expectTick(t, ticks, 290)
	if cd.Ticking() {
		t.Error("paused snapshot must cancel the ticker")
	}

	fc.Advance(5 * time.Second)
	expectNoTick(t, ticks)
}

func TestCountdownResetToNil(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, _ := newTestCountdown(fc, false)

	cd.Sync(runningSnapshot(fc.Now(), 300, 0))
	expectTick(t, ticks, 300)
	cd.Sync(nil)
	expectTick(t, ticks, 0)
	if cd.Ticking() || cd.Remaining() != 0 {
		t.Error("nil snapshot should stop the countdown and read zero")
	}
}

func TestCountdownStopCancelsTicker(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, cues := newTestCountdown(fc, false)

	cd.Sync(runningSnapshot(fc.Now(), 3, 0))
	expectTick(t, ticks, 3)
	cd.Stop()
	cd.Stop()

	fc.Advance(5 * time.Second)
	expectNoTick(t, ticks)
	if cues.Load() != 0 {
		t.Error("stopped countdown must not play the cue")
	}
}

func TestCountdownResyncAfterExpiryDoesNotReplayCue(t *testing.T) {
	fc := clockwork.NewFakeClock()
	cd, ticks, cues := newTestCountdown(fc, false)
	defer cd.Stop()

	snap := runningSnapshot(fc.Now(), 60, 59*time.Second)
	cd.Sync(snap)
	expectTick(t, ticks, 1)
	fc.Advance(time.Second)
	expectTick(t, ticks, 0)

	// The same running snapshot arrives again in a later push
	cd.Sync(snap)
	expectTick(t, ticks, 0)
	fc.Advance(time.Second)
	expectNoTick(t, ticks)

	if got := cues.Load(); got != 1 {
		t.Errorf("cue played %d times, want 1", got)
	}
}
