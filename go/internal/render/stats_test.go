package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mcdev12/retrospekt/go/internal/models"
)

func TestPublicStats(t *testing.T) {
	r := New(&bytes.Buffer{})
	out := r.PublicStats(&models.PublicStats{
		TotalSessions:      42,
		ActiveSessions:     15,
		AvgCardsPerSession: 3,
		SessionsByPhase: []models.PhaseCount{
			{Phase: models.PhaseCollecting, Count: 10},
			{Phase: models.PhaseClosed, Count: 20},
		},
		SessionsPerDay: []models.DailyCount{{Date: "2026-02-25", Count: 3}},
	})

	for _, want := range []string{"42", "15", "3.0", "2026-02-25", strings.Repeat("█", barWidth) + " 20", strings.Repeat("█", barWidth/2) + " 10"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAdminStats(t *testing.T) {
	r := New(&bytes.Buffer{})
	out := r.AdminStats(&models.AdminStats{
		EngagementFunnel: models.Funnel{Created: 42, HasCards: 35, HasVotes: 20, Closed: 27},
		CardsPerColumn:   []models.ColumnCount{{Column: "Went Well", Count: 50}},
		ActivityHeatmap: []models.HeatmapCell{
			{DayOfWeek: 2, HourBucket: 9, Count: 1},
			{DayOfWeek: 4, HourBucket: 14, Count: 5},
		},
		Sentry: &models.SentryHealth{Error: "sentry unreachable"},
	})

	for _, want := range []string{"35", "Went Well", "Wed 14:00  5", "sentry unreachable"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Frontend errors") {
		t.Error("frontend section rendered without data")
	}
	if strings.Index(out, "Wed 14:00") > strings.Index(out, "Mon 09:00") {
		t.Error("busiest slot should come first")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		n, peak int
		want    int
	}{
		{0, 10, 0},
		{10, 10, barWidth},
		{1, 1000, 1},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := len([]rune(bar(tt.n, tt.peak))); got != tt.want {
			t.Errorf("bar(%d, %d) width = %d, want %d", tt.n, tt.peak, got, tt.want)
		}
	}
}
