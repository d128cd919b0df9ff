package retro_api_client

import (
	"fmt"
	"net/url"
)

const (
	// Base URL
	DefaultBaseURL = "http://localhost:8000"

	// API Endpoints
	SessionsEndpoint = "/api/v1/sessions"
	StatsEndpoint    = "/api/v1/stats"

	// Headers
	ParticipantNameHeader  = "X-Participant-Name"
	FacilitatorTokenHeader = "X-Facilitator-Token"
	AdminTokenHeader       = "X-Admin-Token"
)

func sessionPath(sessionID string) string {
	return fmt.Sprintf("%s/%s", SessionsEndpoint, url.PathEscape(sessionID))
}

func cardsPath(sessionID string) string {
	return sessionPath(sessionID) + "/cards"
}

func cardPath(sessionID, cardID string) string {
	return fmt.Sprintf("%s/%s", cardsPath(sessionID), url.PathEscape(cardID))
}

func columnsPath(sessionID string) string {
	return sessionPath(sessionID) + "/columns"
}

func columnPath(sessionID, column string) string {
	return fmt.Sprintf("%s/%s", columnsPath(sessionID), url.PathEscape(column))
}

func timerPath(sessionID string) string {
	return sessionPath(sessionID) + "/timer"
}
