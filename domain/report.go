package domain

import "time"

// Progress summarizes completion over a set of tasks.
type Progress struct {
	GoalID         string  `json:"goal_id,omitempty"`
	Title          string  `json:"title,omitempty"`
	TaskCount      int     `json:"task_count"`
	CompletedCount int     `json:"completed_count"`
	Percentage     float64 `json:"percentage"`
}

type CategoryTotal struct {
	CategoryID   string  `json:"category_id"`
	Name         string  `json:"name"`
	Color        string  `json:"color,omitempty"`
	Icon         IconKey `json:"icon,omitempty"`
	TotalSeconds int64   `json:"total_seconds"`
	TaskCount    int     `json:"task_count"`
}

type DayStat struct {
	Date           string    `json:"date"`
	Start          time.Time `json:"start"`
	TotalSeconds   int64     `json:"total_seconds"`
	TaskCount      int       `json:"task_count"`
	CompletedCount int       `json:"completed_count"`
}

type HourBucket struct {
	Hour         int   `json:"hour"`
	TotalSeconds int64 `json:"total_seconds"`
}

type InsightKind string

const (
	InsightMomentum InsightKind = "momentum"
	InsightStreak   InsightKind = "streak"
	InsightPeakTime InsightKind = "peak_time"
	InsightTip      InsightKind = "tip"
	InsightFocus    InsightKind = "focus"
	InsightNudge    InsightKind = "nudge"
)

// Insight is an advisory message derived from report figures.
type Insight struct {
	Kind    InsightKind `json:"kind"`
	Icon    string      `json:"icon"`
	Title   string      `json:"title"`
	Message string      `json:"message"`
}

// Report is the aggregate view over a user's or a goal's tasks.
type Report struct {
	UserID             string          `json:"user_id"`
	GoalID             string          `json:"goal_id,omitempty"`
	Progress           Progress        `json:"progress"`
	Goals              []Progress      `json:"goals,omitempty"`
	CategoryTotals     []CategoryTotal `json:"category_totals"`
	DailySeries        []DayStat       `json:"daily_series"`
	PeakHours          []HourBucket    `json:"peak_hours"`
	PeakHour           int             `json:"peak_hour"`
	Streak             int             `json:"streak"`
	WeekTotal          int64           `json:"week_total"`
	PreviousWeekTotal  int64           `json:"previous_week_total"`
	WeekOverWeekChange int             `json:"week_over_week_change"`
	Insights           []Insight       `json:"insights"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
