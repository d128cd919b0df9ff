package models

import "errors"

var (
	// ErrMissingSessionID is returned when a snapshot carries no session id
	ErrMissingSessionID = errors.New("session id is missing")
	// ErrInvalidPhase is returned when a snapshot carries an unknown phase
	ErrInvalidPhase = errors.New("invalid phase")
)
