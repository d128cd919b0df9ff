package mutation

import (
	"context"
	"fmt"
	"strings"

	"github.com/mcdev12/retrospekt/go/clients/retro_api_client"
	"github.com/mcdev12/retrospekt/go/internal/models"
)

// Dispatcher sends a command to the server.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd Command) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, cmd Command) error

func (f DispatcherFunc) Dispatch(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// API is the subset of the REST client commands are sent through.
type API interface {
	SetPhase(ctx context.Context, sessionID string, phase models.Phase, creds retro_api_client.Credentials) (*models.Session, error)
	AddCard(ctx context.Context, sessionID, column, text string, creds retro_api_client.Credentials) (*models.Card, error)
	DeleteCard(ctx context.Context, sessionID, cardID string, creds retro_api_client.Credentials) error
	AddVote(ctx context.Context, sessionID, cardID string, creds retro_api_client.Credentials) (*models.Card, error)
	RemoveVote(ctx context.Context, sessionID, cardID string, creds retro_api_client.Credentials) (*models.Card, error)
	PublishCard(ctx context.Context, sessionID, cardID string, creds retro_api_client.Credentials) (*models.Card, error)
	PublishAllCards(ctx context.Context, sessionID, column string, creds retro_api_client.Credentials) (*models.Session, error)
	AddReaction(ctx context.Context, sessionID, cardID, emoji string, creds retro_api_client.Credentials) (*models.Card, error)
	RemoveReaction(ctx context.Context, sessionID, cardID, emoji string, creds retro_api_client.Credentials) (*models.Card, error)
	SetAssignee(ctx context.Context, sessionID, cardID string, assignee *string, creds retro_api_client.Credentials) (*models.Card, error)
	AddColumn(ctx context.Context, sessionID, name string, creds retro_api_client.Credentials) (*models.Session, error)
	RenameColumn(ctx context.Context, sessionID, oldName, newName string, creds retro_api_client.Credentials) (*models.Session, error)
	RemoveColumn(ctx context.Context, sessionID, name string, creds retro_api_client.Credentials) error
	SetTimerDuration(ctx context.Context, sessionID string, seconds int, creds retro_api_client.Credentials) (*models.Session, error)
	StartTimer(ctx context.Context, sessionID string, creds retro_api_client.Credentials) (*models.Session, error)
	PauseTimer(ctx context.Context, sessionID string, creds retro_api_client.Credentials) (*models.Session, error)
	ResetTimer(ctx context.Context, sessionID string, creds retro_api_client.Credentials) (*models.Session, error)
}

// CredentialSource supplies the acting viewer's credentials at dispatch time.
type CredentialSource interface {
	Name(sessionID string) string
	FacilitatorToken(sessionID string) string
}

// APIDispatcher sends commands for one session through the REST client.
// Responses are discarded; the push stream delivers the resulting state.
type APIDispatcher struct {
	api       API
	sessionID string
	creds     CredentialSource
}

// NewAPIDispatcher creates a new APIDispatcher
func NewAPIDispatcher(api API, sessionID string, creds CredentialSource) *APIDispatcher {
	return &APIDispatcher{api: api, sessionID: sessionID, creds: creds}
}

func (d *APIDispatcher) credentials() retro_api_client.Credentials {
	return retro_api_client.Credentials{
		ParticipantName:  d.creds.Name(d.sessionID),
		FacilitatorToken: d.creds.FacilitatorToken(d.sessionID),
	}
}

func (d *APIDispatcher) Dispatch(ctx context.Context, cmd Command) error {
	creds := d.credentials()
	id := d.sessionID

	var err error
	switch c := cmd.(type) {
	case AddCard:
		_, err = d.api.AddCard(ctx, id, c.Column, strings.TrimSpace(c.Text), creds)
	case DeleteCard:
		err = d.api.DeleteCard(ctx, id, c.CardID, creds)
	case Vote:
		_, err = d.api.AddVote(ctx, id, c.CardID, creds)
	case Unvote:
		_, err = d.api.RemoveVote(ctx, id, c.CardID, creds)
	case Publish:
		_, err = d.api.PublishCard(ctx, id, c.CardID, creds)
	case PublishAll:
		_, err = d.api.PublishAllCards(ctx, id, c.Column, creds)
	case React:
		_, err = d.api.AddReaction(ctx, id, c.CardID, c.Emoji, creds)
	case Unreact:
		_, err = d.api.RemoveReaction(ctx, id, c.CardID, c.Emoji, creds)
	case Assign:
		var assignee *string
		if name := strings.TrimSpace(c.Assignee); name != "" {
			assignee = &name
		}
		_, err = d.api.SetAssignee(ctx, id, c.CardID, assignee, creds)
	case SetPhase:
		_, err = d.api.SetPhase(ctx, id, c.To, creds)
	case AddColumn:
		_, err = d.api.AddColumn(ctx, id, strings.TrimSpace(c.Name), creds)
	case RenameColumn:
		_, err = d.api.RenameColumn(ctx, id, c.From, strings.TrimSpace(c.To), creds)
	case RemoveColumn:
		err = d.api.RemoveColumn(ctx, id, c.Name, creds)
	case SetTimerDuration:
		_, err = d.api.SetTimerDuration(ctx, id, c.Seconds, creds)
	case StartTimer:
		_, err = d.api.StartTimer(ctx, id, creds)
	case PauseTimer:
		_, err = d.api.PauseTimer(ctx, id, creds)
	case ResetTimer:
		_, err = d.api.ResetTimer(ctx, id, creds)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}

	if err != nil {
		return fmt.Errorf("dispatch %s: %w", cmd.Kind(), err)
	}
	return nil
}

var _ API = (*retro_api_client.RetroAPIClient)(nil)
