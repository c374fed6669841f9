package domain

import "time"

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskAction is an input to the task state machine.
type TaskAction string

const (
	ActionStart    TaskAction = "start"
	ActionStop     TaskAction = "stop"
	ActionComplete TaskAction = "complete"
)

// NextStatus returns the status reached by applying action to from.
// Completing a completed task is allowed and leaves it completed.
func NextStatus(from TaskStatus, action TaskAction) (TaskStatus, error) {
	switch action {
	case ActionStart:
		switch from {
		case TaskStatusTodo, TaskStatusCompleted:
			return TaskStatusInProgress, nil
		case TaskStatusInProgress:
			return from, ErrTaskAlreadyRunning
		}
	case ActionStop:
		if from == TaskStatusInProgress {
			return TaskStatusTodo, nil
		}
		if from.Valid() {
			return from, ErrTaskNotRunning
		}
	case ActionComplete:
		if from.Valid() {
			return TaskStatusCompleted, nil
		}
	}
	return from, ErrInvalidTransition
}

// Task represents a user-owned unit of trackable work.
type Task struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	GoalID            *string           `json:"goal_id,omitempty"`
	CategoryID        *string           `json:"category_id,omitempty"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Status            TaskStatus        `json:"status"`
	Priority          int               `json:"priority"`
	DueDate           *time.Time        `json:"due_date,omitempty"`
	StartTime         *time.Time        `json:"start_time,omitempty"`
	EndTime           *time.Time        `json:"end_time,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	Duration          int64             `json:"duration"`
	ActualDuration    int64             `json:"actual_duration"`
	EstimatedDuration int64             `json:"estimated_duration,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == TaskStatusCompleted
}

func (t *Task) IsRunning() bool {
	return t != nil && t.Status == TaskStatusInProgress
}

// Start moves the task into in-progress at now.
func (t *Task) Start(now time.Time) error {
	next, err := NextStatus(t.Status, ActionStart)
	if err != nil {
		return err
	}
	t.Status = next
	t.StartTime = timePtr(now)
	t.EndTime = nil
	t.CompletedAt = nil
	t.UpdatedAt = now
	return nil
}

// Stop returns a running task to todo and accrues elapsed seconds.
func (t *Task) Stop(now time.Time, elapsed int64) error {
	next, err := NextStatus(t.Status, ActionStop)
	if err != nil {
		return err
	}
	t.accrue(elapsed)
	t.Status = next
	t.EndTime = timePtr(now)
	t.UpdatedAt = now
	return nil
}

// Complete marks the task completed. elapsed is only accrued when the task was running.
// It reports false when the task was already completed and nothing changed.
func (t *Task) Complete(now time.Time, elapsed int64) (bool, error) {
	if t.Status == TaskStatusCompleted {
		return false, nil
	}
	wasRunning := t.IsRunning()
	next, err := NextStatus(t.Status, ActionComplete)
	if err != nil {
		return false, err
	}
	if wasRunning {
		t.accrue(elapsed)
		t.EndTime = timePtr(now)
	}
	t.Status = next
	t.CompletedAt = timePtr(now)
	t.UpdatedAt = now
	return true, nil
}

// LiveDuration projects the displayed duration at now without mutating the task.
func (t *Task) LiveDuration(now time.Time) int64 {
	if t == nil {
		return 0
	}
	if !t.IsRunning() || t.StartTime == nil {
		return t.Duration
	}
	running := now.Sub(*t.StartTime).Milliseconds() / 1000
	if running < 0 {
		running = 0
	}
	return t.Duration + running
}

// ActivityTime is the timestamp used to place a task on the hour-of-day axis.
func (t *Task) ActivityTime() time.Time {
	if t.StartTime != nil {
		return *t.StartTime
	}
	return t.CreatedAt
}

// BelongsToGoal reports whether the task references goalID.
func (t *Task) BelongsToGoal(goalID string) bool {
	return t != nil && t.GoalID != nil && *t.GoalID == goalID
}

func (t *Task) accrue(elapsed int64) {
	if elapsed <= 0 {
		return
	}
	t.Duration += elapsed
	t.ActualDuration += elapsed
}

func timePtr(t time.Time) *time.Time {
	return &t
}
