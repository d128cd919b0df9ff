package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

// DefaultTickInterval re-derives the display once per second.
const DefaultTickInterval = time.Second

// Cue is played once when a running timer reaches zero.
type Cue interface {
	Play()
}

// CueFunc adapts a function to the Cue interface.
type CueFunc func()

// Play implements Cue.
func (f CueFunc) Play() { f() }

// MutePreference reports whether the expiry cue is suppressed. It is persisted elsewhere.
type MutePreference interface {
	Muted() bool
}

// Countdown turns the latest timer snapshot into a live remaining-seconds value.
// Every tick recomputes from the original snapshot and the current wall time, so
// a sleeping client corrects itself on the next tick.
type Countdown struct {
	clock    clockwork.Clock
	interval time.Duration
	onTick   func(remaining int)
	cue      Cue
	mute     MutePreference

	mu       sync.Mutex
	snapshot *models.TimerSnapshot
	display  int
	ticker   clockwork.Ticker
	done     chan struct{}
}

// CountdownOption configures a Countdown.
type CountdownOption func(*Countdown)

// WithClock sets the clock used for ticks and wall time.
func WithClock(clock clockwork.Clock) CountdownOption {
	return func(c *Countdown) { c.clock = clock }
}

// WithInterval overrides the tick interval.
func WithInterval(d time.Duration) CountdownOption {
	return func(c *Countdown) { c.interval = d }
}

// WithTickHandler registers a callback receiving each recomputed display value.
func WithTickHandler(fn func(remaining int)) CountdownOption {
	return func(c *Countdown) { c.onTick = fn }
}

// WithCue sets the expiry cue.
func WithCue(cue Cue) CountdownOption {
	return func(c *Countdown) { c.cue = cue }
}

// WithMutePreference sets the preference consulted before the cue plays.
func WithMutePreference(mute MutePreference) CountdownOption {
	return func(c *Countdown) { c.mute = mute }
}

// NewCountdown creates a stopped Countdown.
func NewCountdown(opts ...CountdownOption) *Countdown {
	c := &Countdown{
		clock:    clockwork.NewRealClock(),
		interval: DefaultTickInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sync replaces the snapshot the countdown derives from. Any live ticker is cancelled
// first; a new one is started only while the snapshot describes a running timer.
func (c *Countdown) Sync(snapshot *models.TimerSnapshot) {
	c.mu.Lock()
	c.stopLocked()
	c.snapshot = snapshot
	c.display = RemainingSeconds(snapshot, c.clock.Now())
	display := c.display

	if snapshot.Running() && display > 0 {
		ticker := c.clock.NewTicker(c.interval)
		done := make(chan struct{})
		c.ticker = ticker
		c.done = done
		go c.run(ticker, done)
	}
	c.mu.Unlock()

	c.notify(display)
}

// Remaining returns the last computed display value.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.display
}

// Ticking reports whether a ticker is live.
func (c *Countdown) Ticking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done != nil
}

// Stop cancels the ticker. It is safe to call repeatedly.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Countdown) stopLocked() {
	if c.done == nil {
		return
	}
	c.ticker.Stop()
	close(c.done)
	c.ticker = nil
	c.done = nil
}

func (c *Countdown) run(ticker clockwork.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-ticker.Chan():
			if !c.tick(done) {
				return
			}
		}
	}
}

// tick recomputes the display and reports whether the loop should keep running.
func (c *Countdown) tick(done chan struct{}) bool {
	c.mu.Lock()
	if c.done != done {
		// Superseded by Sync or Stop
		c.mu.Unlock()
		return false
	}

	if !c.snapshot.Running() {
		c.stopLocked()
		c.mu.Unlock()
		return false
	}

	remaining := RemainingSeconds(c.snapshot, c.clock.Now())
	wasRunning := c.display > 0
	c.display = remaining

	expired := remaining <= 0
	if expired {
		c.stopLocked()
	}
	c.mu.Unlock()

	c.notify(remaining)

	if expired && wasRunning {
		c.playCue()
	}
	return !expired
}

func (c *Countdown) notify(remaining int) {
	if c.onTick != nil {
		c.onTick(remaining)
	}
}

func (c *Countdown) playCue() {
	if c.mute != nil && c.mute.Muted() {
		log.Debug().Msg("timer expired, cue muted")
		return
	}
	log.Debug().Msg("timer expired")
	if c.cue != nil {
		c.cue.Play()
	}
}
