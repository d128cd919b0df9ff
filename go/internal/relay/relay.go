// Package relay republishes session snapshots from the server's push stream
// onto NATS, for clients configured with the NATS transport.
package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/internal/push"
)

var ErrAlreadyRunning = errors.New("relay already running")

type Config struct {
	MaxRetries int
	RetryDelay time.Duration
	Clock      clockwork.Clock
}

func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		RetryDelay: time.Second,
		Clock:      clockwork.NewRealClock(),
	}
}

// Stats counts frames since the relay started.
type Stats struct {
	Forwarded int64
	Dropped   int64
	Failed    int64
}

// Relay forwards frames for a set of sessions. Frames are validated before
// publishing so NATS subscribers never see a snapshot the server did not
// produce for that subject.
type Relay struct {
	source    push.Transport
	publisher Publisher
	config    Config

	mu      sync.Mutex
	running bool
	subs    map[string]push.Subscription

	forwarded atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func New(source push.Transport, publisher Publisher, cfg Config) *Relay {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return &Relay{
		source:    source,
		publisher: publisher,
		config:    cfg,
		subs:      make(map[string]push.Subscription),
	}
}

// Start subscribes to every session. If any subscription fails the ones
// already opened are closed.
func (r *Relay) Start(ctx context.Context, sessionIDs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}

	for _, id := range sessionIDs {
		if _, ok := r.subs[id]; ok {
			continue
		}
		sessionID := id
		sub, err := r.source.Subscribe(ctx, sessionID, func(frame []byte) {
			r.forward(ctx, sessionID, frame)
		})
		if err != nil {
			r.closeLocked()
			return fmt.Errorf("subscribe %s: %w", sessionID, err)
		}
		r.subs[sessionID] = sub
	}

	r.running = true
	log.Info().Int("sessions", len(r.subs)).Msg("relay started")
	return nil
}

// Stop closes every subscription. It is safe to call more than once.
func (r *Relay) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	r.closeLocked()
	r.running = false

	log.Info().
		Int64("forwarded", r.forwarded.Load()).
		Int64("dropped", r.dropped.Load()).
		Int64("failed", r.failed.Load()).
		Msg("relay stopped")
}

func (r *Relay) Stats() Stats {
	return Stats{
		Forwarded: r.forwarded.Load(),
		Dropped:   r.dropped.Load(),
		Failed:    r.failed.Load(),
	}
}

func (r *Relay) closeLocked() {
	for id, sub := range r.subs {
		if err := sub.Close(); err != nil {
			log.Debug().Err(err).Str("session_id", id).Msg("failed to close relay subscription")
		}
		delete(r.subs, id)
	}
}

func (r *Relay) forward(ctx context.Context, sessionID string, frame []byte) {
	session, err := push.ParseSnapshot(frame)
	if err == nil && session.ID != sessionID {
		err = fmt.Errorf("snapshot for session %s", session.ID)
	}
	if err != nil {
		r.dropped.Add(1)
		log.Warn().Err(err).Str("session_id", sessionID).Msg("dropping frame")
		return
	}

	if err := r.publishWithRetry(ctx, push.Subject(sessionID), frame); err != nil {
		r.failed.Add(1)
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to relay snapshot")
		return
	}
	r.forwarded.Add(1)
}

func (r *Relay) publishWithRetry(ctx context.Context, subject string, frame []byte) error {
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.config.Clock.After(r.config.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.publisher.Publish(ctx, subject, frame); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Str("subject", subject).
				Int("attempt", attempt+1).
				Msg("failed to publish snapshot, retrying")
			continue
		}

		return nil
	}

	return fmt.Errorf("after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}
