package retro_api_client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

type adminAuthRequest struct {
	Password string `json:"password"`
}

type adminAuthResponse struct {
	Token string `json:"token"`
}

func (c *RetroAPIClient) GetPublicStats(ctx context.Context) (*models.PublicStats, error) {
	var stats models.PublicStats
	if err := c.DoJSON(ctx, http.MethodGet, StatsEndpoint, nil, &stats, nil); err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &stats, nil
}

// AdminAuth exchanges the admin password for a short-lived admin token.
func (c *RetroAPIClient) AdminAuth(ctx context.Context, password string) (string, error) {
	var resp adminAuthResponse
	err := c.DoJSON(ctx, http.MethodPost, StatsEndpoint+"/auth", adminAuthRequest{Password: password}, &resp, nil)
	if err != nil {
		return "", fmt.Errorf("failed to authenticate admin: %w", err)
	}
	return resp.Token, nil
}

func (c *RetroAPIClient) GetAdminStats(ctx context.Context, token string) (*models.AdminStats, error) {
	headers := http.Header{}
	headers.Set(AdminTokenHeader, token)

	var stats models.AdminStats
	if err := c.DoJSON(ctx, http.MethodGet, StatsEndpoint+"/admin", nil, &stats, headers); err != nil {
		return nil, fmt.Errorf("failed to get admin stats: %w", err)
	}
	return &stats, nil
}
