package models

import "fmt"

// Phase defines the lifecycle phase of a retrospective session.
type Phase string

const (
	PhaseCollecting Phase = "collecting"
	PhaseDiscussing Phase = "discussing"
	PhaseClosed     Phase = "closed"
)

// Valid reports whether p is one of the defined phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseCollecting, PhaseDiscussing, PhaseClosed:
		return true
	}
	return false
}

// Participant is a named member of a session. The name is the identity key.
type Participant struct {
	Name     string    `json:"name"`
	JoinedAt Timestamp `json:"joined_at"`
}

// Session represents a full snapshot of a retrospective board as owned by the server.
// Clients never construct one; they only receive and replace them.
type Session struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Columns          []string       `json:"columns"`
	Phase            Phase          `json:"phase"`
	Participants     []Participant  `json:"participants"`
	Cards            []Card         `json:"cards"`
	Timer            *TimerSnapshot `json:"timer,omitempty"`
	ReactionsEnabled bool           `json:"reactions_enabled"`
	CreatedAt        Timestamp      `json:"created_at"`
	UpdatedAt        Timestamp      `json:"updated_at"`
}

// CreateSessionResponse is returned once, to the creator, and carries the facilitator credential.
type CreateSessionResponse struct {
	Session
	FacilitatorToken string `json:"facilitator_token"`
}

// HasColumn reports whether the session defines a column with the given name.
func (s *Session) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// HasParticipant reports whether a participant with the given name has joined.
func (s *Session) HasParticipant(name string) bool {
	for _, p := range s.Participants {
		if p.Name == name {
			return true
		}
	}
	return false
}

// FindCard returns the card with the given id, or nil.
func (s *Session) FindCard(id string) *Card {
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return &s.Cards[i]
		}
	}
	return nil
}

// Validate checks the structural invariants a snapshot must satisfy to be accepted.
func (s *Session) Validate() error {
	if s.ID == "" {
		return ErrMissingSessionID
	}
	if !s.Phase.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPhase, s.Phase)
	}
	return nil
}
