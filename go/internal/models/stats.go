package models

// PhaseCount is the number of sessions in one phase.
type PhaseCount struct {
	Phase Phase `json:"phase"`
	Count int   `json:"count"`
}

// DailyCount is the number of sessions created on one day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PublicStats are the aggregate numbers anyone may read.
type PublicStats struct {
	TotalSessions      int          `json:"total_sessions"`
	ActiveSessions     int          `json:"active_sessions"`
	SessionsByPhase    []PhaseCount `json:"sessions_by_phase"`
	SessionsPerDay     []DailyCount `json:"sessions_per_day"`
	TotalCards         int          `json:"total_cards"`
	AvgCardsPerSession float64      `json:"avg_cards_per_session"`
	TotalVotes         int          `json:"total_votes"`
	TotalReactions     int          `json:"total_reactions"`
}

type EmojiCount struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// HeatmapCell counts sessions created in one weekday and hour slot.
type HeatmapCell struct {
	DayOfWeek  int `json:"day_of_week"`
	HourBucket int `json:"hour_bucket"`
	Count      int `json:"count"`
}

// Funnel counts sessions reaching each engagement step.
type Funnel struct {
	Created  int `json:"created"`
	HasCards int `json:"has_cards"`
	HasVotes int `json:"has_votes"`
	Closed   int `json:"closed"`
}

type SentryIssue struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// SentryHealth is optional error-tracker data. Error is set when the tracker
// could not be queried.
type SentryHealth struct {
	UnresolvedCount int           `json:"unresolved_count"`
	TopIssues       []SentryIssue `json:"top_issues"`
	Error           string        `json:"error,omitempty"`
}

// AdminStats are the deeper analytics behind the admin token.
type AdminStats struct {
	ReactionBreakdown []EmojiCount  `json:"reaction_breakdown"`
	CardsPerColumn    []ColumnCount `json:"cards_per_column"`
	ActivityHeatmap   []HeatmapCell `json:"activity_heatmap"`
	EngagementFunnel  Funnel        `json:"engagement_funnel"`
	Sentry            *SentryHealth `json:"sentry,omitempty"`
	SentryFrontend    *SentryHealth `json:"sentry_frontend,omitempty"`
}
