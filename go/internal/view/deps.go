package view

import (
	"context"

	"github.com/mcdev12/retrospekt/go/internal/identity"
	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/push"
)

// SessionAPI is the one-shot read and registration surface of the server.
type SessionAPI interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	JoinSession(ctx context.Context, sessionID, participantName string) (*models.Session, error)
}

// IdentityStore is what the controller needs to know about the local viewer.
type IdentityStore interface {
	Name(sessionID string) string
	SetName(sessionID, name string) error
	FacilitatorToken(sessionID string) string
	Muted() bool
	AddOrUpdateHistory(entry identity.HistoryEntry) error
	UpdateHistoryPhase(sessionID string, phase models.Phase) error
}

// Navigator receives the controller's only navigation signal.
type Navigator interface {
	RedirectNotFound(sessionID string, cause error)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(sessionID string, cause error)

func (f NavigatorFunc) RedirectNotFound(sessionID string, cause error) {
	f(sessionID, cause)
}

// SyncClient is a push subscription owner, normally a *push.Client.
type SyncClient interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// SyncFactory builds the push client for a session.
type SyncFactory func(sessionID string, onUpdate push.UpdateFunc) SyncClient

// TransportSync returns a SyncFactory backed by a push transport.
func TransportSync(transport push.Transport) SyncFactory {
	return func(sessionID string, onUpdate push.UpdateFunc) SyncClient {
		return push.NewClient(sessionID, transport, onUpdate)
	}
}
