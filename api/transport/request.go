package transport

type TaskRequest struct {
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	GoalID            string            `json:"goal_id"`
	CategoryID        string            `json:"category_id"`
	Priority          int               `json:"priority"`
	DueDate           string            `json:"due_date"`
	EstimatedDuration int64             `json:"estimated_duration"`
	Metadata          map[string]string `json:"metadata"`
}

type GoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	TargetDate  string `json:"target_date"`
}

type GoalStatusRequest struct {
	Status string `json:"status"`
}

type CategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type ReconcileRequest struct {
	OlderThanSeconds int64 `json:"older_than_seconds"`
}
