package retro_api_client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

type CreateSessionRequest struct {
	Name             string   `json:"name"`
	ParticipantName  string   `json:"participant_name"`
	Columns          []string `json:"columns,omitempty"`
	ReactionsEnabled bool     `json:"reactions_enabled"`
}

type joinSessionRequest struct {
	ParticipantName string `json:"participant_name"`
}

type setPhaseRequest struct {
	Phase models.Phase `json:"phase"`
}

type columnRequest struct {
	Name string `json:"name"`
}

type setTimerDurationRequest struct {
	DurationSeconds int `json:"duration_seconds"`
}

// CreateSession creates a session. The response is the only place the
// facilitator token is ever exposed.
func (c *RetroAPIClient) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.CreateSessionResponse, error) {
	var resp models.CreateSessionResponse
	if err := c.DoJSON(ctx, http.MethodPost, SessionsEndpoint, req, &resp, nil); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &resp, nil
}

func (c *RetroAPIClient) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	return c.sessionCall(ctx, "get session", http.MethodGet, sessionPath(sessionID), nil, Credentials{})
}

func (c *RetroAPIClient) JoinSession(ctx context.Context, sessionID, participantName string) (*models.Session, error) {
	return c.sessionCall(ctx, "join session", http.MethodPost, sessionPath(sessionID)+"/join",
		joinSessionRequest{ParticipantName: participantName}, Credentials{})
}

func (c *RetroAPIClient) SetPhase(ctx context.Context, sessionID string, phase models.Phase, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "set phase", http.MethodPost, sessionPath(sessionID)+"/phase",
		setPhaseRequest{Phase: phase}, creds)
}

func (c *RetroAPIClient) AddColumn(ctx context.Context, sessionID, name string, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "add column", http.MethodPost, columnsPath(sessionID),
		columnRequest{Name: name}, creds)
}

func (c *RetroAPIClient) RenameColumn(ctx context.Context, sessionID, oldName, newName string, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "rename column", http.MethodPatch, columnPath(sessionID, oldName),
		columnRequest{Name: newName}, creds)
}

func (c *RetroAPIClient) RemoveColumn(ctx context.Context, sessionID, name string, creds Credentials) error {
	if err := c.DoJSON(ctx, http.MethodDelete, columnPath(sessionID, name), nil, nil, creds.headers()); err != nil {
		return fmt.Errorf("failed to remove column: %w", err)
	}
	return nil
}

func (c *RetroAPIClient) SetTimerDuration(ctx context.Context, sessionID string, seconds int, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "set timer duration", http.MethodPatch, timerPath(sessionID),
		setTimerDurationRequest{DurationSeconds: seconds}, creds)
}

func (c *RetroAPIClient) StartTimer(ctx context.Context, sessionID string, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "start timer", http.MethodPost, timerPath(sessionID)+"/start", nil, creds)
}

func (c *RetroAPIClient) PauseTimer(ctx context.Context, sessionID string, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "pause timer", http.MethodPost, timerPath(sessionID)+"/pause", nil, creds)
}

func (c *RetroAPIClient) ResetTimer(ctx context.Context, sessionID string, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "reset timer", http.MethodPost, timerPath(sessionID)+"/reset", nil, creds)
}

func (c *RetroAPIClient) sessionCall(ctx context.Context, op, method, endpoint string, in any, creds Credentials) (*models.Session, error) {
	var session models.Session
	if err := c.DoJSON(ctx, method, endpoint, in, &session, creds.headers()); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &session, nil
}
