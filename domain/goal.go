package domain

import "time"

// GoalStatus is the user-facing lifecycle of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusPaused    GoalStatus = "paused"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusArchived  GoalStatus = "archived"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusPaused, GoalStatusCompleted, GoalStatusArchived:
		return true
	}
	return false
}

// CanTransition reports whether a user may move a goal from s to next.
func (s GoalStatus) CanTransition(next GoalStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	switch next {
	case GoalStatusActive:
		return s == GoalStatusPaused || s == GoalStatusCompleted || s == GoalStatusArchived
	case GoalStatusPaused:
		return s == GoalStatusActive
	case GoalStatusCompleted, GoalStatusArchived:
		return true
	}
	return false
}

// Goal groups tasks toward an outcome. ProgressPercentage is a cache of the value derived
// from the task set.
type Goal struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	Icon               IconKey    `json:"icon"`
	Status             GoalStatus `json:"status"`
	ProgressPercentage float64    `json:"progress_percentage"`
	TargetDate         *time.Time `json:"target_date,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Category labels tasks for time breakdowns.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	Icon      IconKey   `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}
