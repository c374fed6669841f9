package domain

import "time"

// TimeEntry is one recorded interval of work against a task. A nil EndTime means the
// interval is still open.
type TimeEntry struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"task_id"`
	UserID    string     `json:"user_id"`
	GoalID    *string    `json:"goal_id,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Duration  *int64     `json:"duration,omitempty"`
	Anomalous bool       `json:"anomalous,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (e *TimeEntry) IsOpen() bool {
	return e != nil && e.EndTime == nil
}

// Close sets the end of the interval. Closed entries are immutable.
func (e *TimeEntry) Close(end time.Time, seconds int64, anomalous bool) error {
	if !e.IsOpen() {
		return ErrIntervalClosed
	}
	e.EndTime = &end
	e.Duration = &seconds
	e.Anomalous = anomalous
	return nil
}

// Seconds returns the closed duration, zero while open.
func (e *TimeEntry) Seconds() int64 {
	if e == nil || e.Duration == nil {
		return 0
	}
	return *e.Duration
}
