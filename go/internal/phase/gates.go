package phase

import "github.com/mcdev12/retrospekt/go/internal/models"

// AllowsCardCreation reports whether new cards may be added.
func AllowsCardCreation(p models.Phase) bool {
	return p == models.PhaseCollecting
}

// AllowsCardDeletion reports whether authors may delete their cards.
func AllowsCardDeletion(p models.Phase) bool {
	return p == models.PhaseCollecting
}

// AllowsDiscussion reports whether publishing, voting and reacting are open.
func AllowsDiscussion(p models.Phase) bool {
	return p == models.PhaseDiscussing
}

// AllowsColumnEdits reports whether the facilitator may add, rename or remove columns.
func AllowsColumnEdits(p models.Phase) bool {
	return p == models.PhaseCollecting
}

// ReadOnly reports whether the phase permits no board mutation at all.
func ReadOnly(p models.Phase) bool {
	return p == models.PhaseClosed || !p.Valid()
}

// Label returns a display label for the phase.
func Label(p models.Phase) string {
	switch p {
	case models.PhaseCollecting:
		return "Collecting"
	case models.PhaseDiscussing:
		return "Discussing"
	case models.PhaseClosed:
		return "Closed"
	}
	return "Unknown"
}
