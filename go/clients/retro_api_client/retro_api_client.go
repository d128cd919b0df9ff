package retro_api_client

import (
	"net/http"

	"github.com/mcdev12/retrospekt/go/clients"
)

// ErrNotFound is matched by 404 responses.
var ErrNotFound = clients.ErrNotFound

// APIError is returned for non-2xx responses.
type APIError = clients.APIError

// Credentials identify the acting viewer. Either field may be empty.
type Credentials struct {
	ParticipantName  string
	FacilitatorToken string
}

func (c Credentials) headers() http.Header {
	h := http.Header{}
	if c.ParticipantName != "" {
		h.Set(ParticipantNameHeader, c.ParticipantName)
	}
	if c.FacilitatorToken != "" {
		h.Set(FacilitatorTokenHeader, c.FacilitatorToken)
	}
	return h
}

type RetroAPIClient struct {
	*clients.BaseClient
}

func NewRetroAPIClient(baseURL string) *RetroAPIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &RetroAPIClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}
