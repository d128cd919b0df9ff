package push

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

// UpdateFunc receives every successfully parsed snapshot. Each call is a full
// replacement of the session, never a patch.
type UpdateFunc func(session *models.Session)

// Client owns at most one live push subscription for a session view.
type Client struct {
	sessionID string
	transport Transport
	onUpdate  UpdateFunc

	mu             sync.Mutex
	sub            Subscription
	subscriptionID string
	generation     uint64
}

// NewClient creates a new push Client. It does not connect.
func NewClient(sessionID string, transport Transport, onUpdate UpdateFunc) *Client {
	return &Client{
		sessionID: sessionID,
		transport: transport,
		onUpdate:  onUpdate,
	}
}

// Connect establishes the subscription, releasing any previous one first.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.releaseLocked()

	c.generation++
	gen := c.generation
	subscriptionID := uuid.New().String()

	sub, err := c.transport.Subscribe(ctx, c.sessionID, func(frame []byte) {
		c.deliver(gen, frame)
	})
	if err != nil {
		return fmt.Errorf("subscribe to session %s: %w", c.sessionID, err)
	}

	c.sub = sub
	c.subscriptionID = subscriptionID

	log.Info().
		Str("session_id", c.sessionID).
		Str("subscription_id", subscriptionID).
		Msg("push subscription established")

	return nil
}

// Disconnect releases the subscription. It is a no-op when not connected.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseLocked()
}

// Connected reports whether a subscription is live.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sub != nil
}

func (c *Client) releaseLocked() {
	if c.sub == nil {
		return
	}

	// Frames still in flight from the old stream are dropped by generation
	c.generation++

	if err := c.sub.Close(); err != nil {
		log.Debug().
			Err(err).
			Str("session_id", c.sessionID).
			Str("subscription_id", c.subscriptionID).
			Msg("error closing push subscription")
	}

	log.Info().
		Str("session_id", c.sessionID).
		Str("subscription_id", c.subscriptionID).
		Msg("push subscription released")

	c.sub = nil
	c.subscriptionID = ""
}

func (c *Client) deliver(gen uint64, frame []byte) {
	c.mu.Lock()
	current := c.generation == gen && c.sub != nil
	c.mu.Unlock()

	if !current {
		return
	}
	c.HandleMessage(frame)
}

// HandleMessage parses one frame and forwards it. Malformed frames are logged and
// dropped so the last good snapshot stays authoritative.
func (c *Client) HandleMessage(frame []byte) {
	session, err := ParseSnapshot(frame)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_id", c.sessionID).
			Int("frame_bytes", len(frame)).
			Msg("failed to parse push message")
		return
	}

	if session.ID != c.sessionID {
		log.Warn().
			Str("session_id", c.sessionID).
			Str("snapshot_session_id", session.ID).
			Msg("dropping snapshot for another session")
		return
	}

	if c.onUpdate != nil {
		c.onUpdate(session)
	}
}

// ParseSnapshot decodes and validates a full session snapshot.
func ParseSnapshot(frame []byte) (*models.Session, error) {
	var session models.Session
	if err := json.Unmarshal(frame, &session); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}
	return &session, nil
}
