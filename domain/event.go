package domain

import (
	"encoding/json"
	"time"
)

const (
	EventTaskCreated        = "task.created"
	EventTaskStarted        = "task.started"
	EventTaskStopped        = "task.stopped"
	EventTaskCompleted      = "task.completed"
	EventTaskDeleted        = "task.deleted"
	EventIntervalReconciled = "interval.reconciled"
)

// Event records a state change applied to a task. Events are appended in the same
// transaction as the change they describe.
type Event struct {
	ID        string            `json:"id"`
	TaskID    string            `json:"task_id"`
	UserID    string            `json:"user_id"`
	Name      string            `json:"name"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewTaskEvent builds an event for task with a best-effort JSON payload.
func NewTaskEvent(id, name string, task *Task, payload interface{}, at time.Time) Event {
	ev := Event{
		ID:        id,
		TaskID:    task.ID,
		UserID:    task.UserID,
		Name:      name,
		CreatedAt: at,
		Metadata:  map[string]string{"status": string(task.Status)},
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			ev.Payload = raw
		}
	}
	return ev
}
