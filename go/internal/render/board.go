// Package render draws a derived board as terminal text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/phase"
	"github.com/mcdev12/retrospekt/go/internal/timer"
	"github.com/mcdev12/retrospekt/go/internal/visibility"
)

// Renderer draws boards for one output. Colors are dropped automatically when
// the output is not a terminal.
type Renderer struct {
	lg *lipgloss.Renderer

	title  lipgloss.Style
	column lipgloss.Style
	muted  lipgloss.Style
	badge  lipgloss.Style
}

func New(w io.Writer) *Renderer {
	lg := lipgloss.NewRenderer(w)
	return &Renderer{
		lg:     lg,
		title:  lg.NewStyle().Bold(true),
		column: lg.NewStyle().Bold(true).Underline(true),
		muted:  lg.NewStyle().Faint(true),
		badge:  lg.NewStyle().Bold(true).Padding(0, 1),
	}
}

// Frame is everything needed to draw one screen.
type Frame struct {
	Session   *models.Session
	Board     visibility.BoardView
	Viewer    visibility.Viewer
	Remaining int
	Muted     bool
	Status    string
}

// Board renders a frame and returns the card ids in the order they were
// numbered, so a caller can resolve "#n" references.
func (r *Renderer) Board(f Frame) (string, []string) {
	var (
		b       strings.Builder
		listing []string
	)
	colors := ParticipantColors(f.Session)

	b.WriteString(r.header(f, colors))
	b.WriteString("\n")
	if line := r.Timer(f.Session, f.Remaining, f.Muted); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, col := range f.Board.Columns {
		b.WriteString("\n")
		b.WriteString(r.column.Render(fmt.Sprintf("%s (%d)", col.Name, len(col.Cards))))
		b.WriteString("\n")

		if len(col.Cards) == 0 {
			b.WriteString(r.muted.Render("  no cards"))
			b.WriteString("\n")
		}
		for _, card := range col.Cards {
			listing = append(listing, card.ID)
			b.WriteString(r.card(len(listing), card, colors))
			b.WriteString("\n")
		}
	}

	if f.Status != "" {
		b.WriteString("\n")
		b.WriteString(r.muted.Render(f.Status))
		b.WriteString("\n")
	}

	return b.String(), listing
}

func (r *Renderer) header(f Frame, colors map[string]lipgloss.Color) string {
	name := f.Board.SessionID
	if f.Session != nil && f.Session.Name != "" {
		name = f.Session.Name
	}

	parts := []string{
		r.title.Render(name),
		r.badge.Foreground(phaseColors[f.Board.Phase]).Render(phase.Label(f.Board.Phase)),
	}
	if f.Viewer.IsFacilitator {
		parts = append(parts, r.badge.Render("facilitator"))
	}

	if f.Session != nil && len(f.Session.Participants) > 0 {
		names := make([]string, 0, len(f.Session.Participants))
		for _, p := range f.Session.Participants {
			label := p.Name
			if p.Name == f.Viewer.Name {
				label += " (you)"
			}
			names = append(names, r.lg.NewStyle().Foreground(colors[p.Name]).Render(label))
		}
		parts = append(parts, r.muted.Render("with")+" "+strings.Join(names, ", "))
	}

	return strings.Join(parts, " ")
}

func (r *Renderer) card(n int, card visibility.CardView, colors map[string]lipgloss.Color) string {
	author := r.lg.NewStyle().Foreground(colors[card.AuthorName]).Render(card.AuthorName)
	line := fmt.Sprintf("  [%d] %s  %s", n, card.Text, author)

	var meta []string
	if !card.Published {
		meta = append(meta, "draft")
	}
	if card.VoteCount > 0 || card.CanVote {
		votes := fmt.Sprintf("▲%d", card.VoteCount)
		if card.HasVoted {
			votes += " (voted)"
		}
		meta = append(meta, votes)
	}
	if reactions := reactionSummary(card.Reactions); reactions != "" {
		meta = append(meta, reactions)
	}
	if card.Assignee != "" {
		meta = append(meta, "→ "+card.Assignee)
	}

	if len(meta) > 0 {
		line += "  " + r.muted.Render(strings.Join(meta, " · "))
	}
	return line
}

func reactionSummary(reactions []visibility.ReactionCount) string {
	var parts []string
	for _, rc := range reactions {
		if rc.Count == 0 {
			continue
		}
		s := fmt.Sprintf("%s%d", rc.Emoji, rc.Count)
		if rc.Reacted {
			s += "*"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// Timer renders the countdown line, or "" when no timer is configured.
func (r *Renderer) Timer(session *models.Session, remaining int, muted bool) string {
	if session == nil || session.Timer == nil {
		return ""
	}
	snapshot := session.Timer

	clock := r.badge.
		Foreground(timerColors[timer.ColorClass(remaining, snapshot)]).
		Render("⏱ " + timer.FormatClock(remaining))

	var state string
	switch {
	case snapshot.Running():
		state = "running"
	case timer.IsPaused(snapshot):
		state = "paused"
	case remaining <= 0:
		state = "expired"
	default:
		state = "ready"
	}
	if muted {
		state += ", muted"
	}

	return clock + " " + r.muted.Render(state)
}
