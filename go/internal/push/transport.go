package push

import (
	"context"
	"errors"
)

// errClosed is returned by subscriptions that were shut down mid-dial.
var errClosed = errors.New("push: subscription closed")

// FrameHandler receives one raw push message. Frames carry no state between calls.
type FrameHandler func(frame []byte)

// Transport opens a server-to-client stream for one session. Implementations retry
// dropped connections on their own; the Client never reconnects explicitly.
type Transport interface {
	Subscribe(ctx context.Context, sessionID string, onFrame FrameHandler) (Subscription, error)
}

// Subscription is a live stream handle.
type Subscription interface {
	// Close releases the stream. It must be safe to call more than once.
	Close() error
}
