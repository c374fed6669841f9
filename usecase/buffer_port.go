package usecase

import "context"

// Command names understood by the dispatcher when buffered work is replayed.
const (
	CommandGoalRecompute = "goal.recompute"
)

// GoalRecompute is the payload of CommandGoalRecompute.
type GoalRecompute struct {
	UserID string `json:"user_id"`
	GoalID string `json:"goal_id"`
}

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferGoalRecompute(ctx context.Context, userID, goalID string) error
}
