package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/timer"
)

// participantPalette is cycled in join order.
var participantPalette = []lipgloss.Color{
	"#e85d04", "#3a86ff", "#8338ec", "#06a77d",
	"#ff006e", "#fb8500", "#118ab2", "#6a994e",
}

var timerColors = map[string]lipgloss.Color{
	timer.ColorIdle:  "#888888",
	timer.ColorGreen: "#2ecc71",
	timer.ColorAmber: "#f39c12",
	timer.ColorRed:   "#e74c3c",
}

var phaseColors = map[models.Phase]lipgloss.Color{
	models.PhaseCollecting: "#3a86ff",
	models.PhaseDiscussing: "#e85d04",
	models.PhaseClosed:     "#6c757d",
}

// ParticipantColors assigns each participant a stable color by join order.
// Authors who never joined get the color after the last participant.
func ParticipantColors(session *models.Session) map[string]lipgloss.Color {
	colors := make(map[string]lipgloss.Color)
	if session == nil {
		return colors
	}

	next := 0
	assign := func(name string) {
		if name == "" {
			return
		}
		if _, ok := colors[name]; ok {
			return
		}
		colors[name] = participantPalette[next%len(participantPalette)]
		next++
	}

	for _, p := range session.Participants {
		assign(p.Name)
	}
	for _, c := range session.Cards {
		assign(c.AuthorName)
	}
	return colors
}
