package retro_api_client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

type addCardRequest struct {
	Column     string `json:"column"`
	Text       string `json:"text"`
	AuthorName string `json:"author_name"`
}

type publishAllRequest struct {
	Column string `json:"column"`
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

type assigneeRequest struct {
	Assignee *string `json:"assignee"`
}

func (c *RetroAPIClient) AddCard(ctx context.Context, sessionID, column, text string, creds Credentials) (*models.Card, error) {
	return c.cardCall(ctx, "add card", http.MethodPost, cardsPath(sessionID),
		addCardRequest{Column: column, Text: text, AuthorName: creds.ParticipantName}, creds)
}

func (c *RetroAPIClient) DeleteCard(ctx context.Context, sessionID, cardID string, creds Credentials) error {
	if err := c.DoJSON(ctx, http.MethodDelete, cardPath(sessionID, cardID), nil, nil, creds.headers()); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

func (c *RetroAPIClient) AddVote(ctx context.Context, sessionID, cardID string, creds Credentials) (*models.Card, error) {
	return c.cardCall(ctx, "add vote", http.MethodPost, cardPath(sessionID, cardID)+"/votes", nil, creds)
}

func (c *RetroAPIClient) RemoveVote(ctx context.Context, sessionID, cardID string, creds Credentials) (*models.Card, error) {
	return c.cardCall(ctx, "remove vote", http.MethodDelete, cardPath(sessionID, cardID)+"/votes", nil, creds)
}

func (c *RetroAPIClient) PublishCard(ctx context.Context, sessionID, cardID string, creds Credentials) (*models.Card, error) {
	return c.cardCall(ctx, "publish card", http.MethodPost, cardPath(sessionID, cardID)+"/publish", nil, creds)
}

// PublishAllCards publishes every unpublished card the participant authored in column.
func (c *RetroAPIClient) PublishAllCards(ctx context.Context, sessionID, column string, creds Credentials) (*models.Session, error) {
	return c.sessionCall(ctx, "publish all cards", http.MethodPost, cardsPath(sessionID)+"/publish-all",
		publishAllRequest{Column: column}, creds)
}

func (c *RetroAPIClient) AddReaction(ctx context.Context, sessionID, cardID, emoji string, creds Credentials) (*models.Card, error) {
	return c.cardCall(ctx, "add reaction", http.MethodPost, cardPath(sessionID, cardID)+"/reactions",
		reactionRequest{Emoji: emoji}, creds)
}

func (c *RetroAPIClient) RemoveReaction(ctx context.Context, sessionID, cardID, emoji string, creds Credentials) (*models.Card, error) {
	endpoint := cardPath(sessionID, cardID) + "/reactions?emoji=" + url.QueryEscape(emoji)
	return c.cardCall(ctx, "remove reaction", http.MethodDelete, endpoint, nil, creds)
}

// SetAssignee sets the card assignee. A nil assignee clears it.
func (c *RetroAPIClient) SetAssignee(ctx context.Context, sessionID, cardID string, assignee *string, creds Credentials) (*models.Card, error) {
	return c.cardCall(ctx, "set assignee", http.MethodPatch, cardPath(sessionID, cardID)+"/assignee",
		assigneeRequest{Assignee: assignee}, creds)
}

func (c *RetroAPIClient) cardCall(ctx context.Context, op, method, endpoint string, in any, creds Credentials) (*models.Card, error) {
	var card models.Card
	if err := c.DoJSON(ctx, method, endpoint, in, &card, creds.headers()); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &card, nil
}
