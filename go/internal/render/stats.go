package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mcdev12/retrospekt/go/internal/models"
	"github.com/mcdev12/retrospekt/go/internal/phase"
)

const barWidth = 24

// weekdays follows the server's day_of_week numbering, 1 being Sunday.
var weekdays = []string{"", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// PublicStats renders the aggregate numbers and the phase breakdown.
func (r *Renderer) PublicStats(s *models.PublicStats) string {
	var b strings.Builder

	b.WriteString(r.title.Render("Retrospekt stats"))
	b.WriteString("\n\n")
	r.figures(&b, [][2]string{
		{"sessions", fmt.Sprint(s.TotalSessions)},
		{"active", fmt.Sprint(s.ActiveSessions)},
		{"cards", fmt.Sprint(s.TotalCards)},
		{"cards per session", fmt.Sprintf("%.1f", s.AvgCardsPerSession)},
		{"votes", fmt.Sprint(s.TotalVotes)},
		{"reactions", fmt.Sprint(s.TotalReactions)},
	})

	if len(s.SessionsByPhase) > 0 {
		b.WriteString("\n")
		b.WriteString(r.column.Render("By phase"))
		b.WriteString("\n")
		peak := 0
		for _, pc := range s.SessionsByPhase {
			if pc.Count > peak {
				peak = pc.Count
			}
		}
		for _, pc := range s.SessionsByPhase {
			line := r.lg.NewStyle().Foreground(phaseColors[pc.Phase]).Render(bar(pc.Count, peak))
			fmt.Fprintf(&b, "  %-12s %s %d\n", phase.Label(pc.Phase), line, pc.Count)
		}
	}

	if len(s.SessionsPerDay) > 0 {
		b.WriteString("\n")
		b.WriteString(r.column.Render("Last 30 days"))
		b.WriteString("\n")
		peak := 0
		for _, dc := range s.SessionsPerDay {
			if dc.Count > peak {
				peak = dc.Count
			}
		}
		for _, dc := range s.SessionsPerDay {
			fmt.Fprintf(&b, "  %s %s %d\n", dc.Date, bar(dc.Count, peak), dc.Count)
		}
	}

	return b.String()
}

// AdminStats renders the admin-only analytics.
func (r *Renderer) AdminStats(s *models.AdminStats) string {
	var b strings.Builder

	b.WriteString(r.column.Render("Engagement"))
	b.WriteString("\n")
	f := s.EngagementFunnel
	r.figures(&b, [][2]string{
		{"created", fmt.Sprint(f.Created)},
		{"with cards", fmt.Sprint(f.HasCards)},
		{"with votes", fmt.Sprint(f.HasVotes)},
		{"closed", fmt.Sprint(f.Closed)},
	})

	if len(s.CardsPerColumn) > 0 {
		b.WriteString("\n")
		b.WriteString(r.column.Render("Cards per column"))
		b.WriteString("\n")
		for _, cc := range s.CardsPerColumn {
			fmt.Fprintf(&b, "  %-20s %d\n", cc.Column, cc.Count)
		}
	}

	if len(s.ReactionBreakdown) > 0 {
		parts := make([]string, 0, len(s.ReactionBreakdown))
		for _, ec := range s.ReactionBreakdown {
			parts = append(parts, fmt.Sprintf("%s %d", ec.Emoji, ec.Count))
		}
		b.WriteString("\n")
		b.WriteString(r.column.Render("Reactions"))
		b.WriteString("\n  ")
		b.WriteString(strings.Join(parts, "  "))
		b.WriteString("\n")
	}

	if busiest := busiestSlots(s.ActivityHeatmap, 3); len(busiest) > 0 {
		b.WriteString("\n")
		b.WriteString(r.column.Render("Busiest hours"))
		b.WriteString("\n")
		for _, cell := range busiest {
			fmt.Fprintf(&b, "  %s %02d:00  %d\n", weekdayName(cell.DayOfWeek), cell.HourBucket, cell.Count)
		}
	}

	r.sentry(&b, "Backend errors", s.Sentry)
	r.sentry(&b, "Frontend errors", s.SentryFrontend)

	return b.String()
}

func (r *Renderer) figures(b *strings.Builder, rows [][2]string) {
	for _, row := range rows {
		fmt.Fprintf(b, "  %-18s %s\n", row[0], r.title.Render(row[1]))
	}
}

func (r *Renderer) sentry(b *strings.Builder, title string, h *models.SentryHealth) {
	if h == nil {
		return
	}
	b.WriteString("\n")
	b.WriteString(r.column.Render(title))
	b.WriteString("\n")
	if h.Error != "" {
		b.WriteString(r.muted.Render("  " + h.Error))
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, "  unresolved %d\n", h.UnresolvedCount)
	for _, issue := range h.TopIssues {
		fmt.Fprintf(b, "  %s %s\n", issue.Title, r.muted.Render(fmt.Sprintf("(%d events)", issue.Count)))
	}
}

func bar(n, peak int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	width := n * barWidth / peak
	if width == 0 {
		width = 1
	}
	return strings.Repeat("█", width)
}

// busiestSlots returns up to n cells by descending count, keeping server order on ties.
func busiestSlots(cells []models.HeatmapCell, n int) []models.HeatmapCell {
	sorted := append([]models.HeatmapCell(nil), cells...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func weekdayName(day int) string {
	if day < 1 || day >= len(weekdays) {
		return "?"
	}
	return weekdays[day]
}
