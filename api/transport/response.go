package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/focus/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// TaskView renders a task together with the duration a client should display right now.
// LiveDuration is never written back.
type TaskView struct {
	domain.Task
	LiveDuration int64 `json:"live_duration"`
}

func NewTaskView(task *domain.Task, now time.Time) *TaskView {
	if task == nil {
		return nil
	}
	return &TaskView{Task: *task, LiveDuration: task.LiveDuration(now)}
}

func NewTaskViews(tasks []domain.Task, now time.Time) []TaskView {
	out := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, TaskView{Task: tasks[i], LiveDuration: tasks[i].LiveDuration(now)})
	}
	return out
}

type StartResponse struct {
	Task      *TaskView         `json:"task"`
	TimeEntry *domain.TimeEntry `json:"time_entry"`
}

type StopResponse struct {
	Task     *TaskView `json:"task"`
	Duration int64     `json:"duration"`
}

type CompleteResponse struct {
	Task *TaskView `json:"task"`
}

type ReconcileResponse struct {
	Stopped []StopResponse     `json:"stopped"`
	Closed  []domain.TimeEntry `json:"closed"`
}
