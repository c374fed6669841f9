package services

import (
	"context"
	"encoding/json"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/internal/infrastructure/buffer"
	"github.com/fastygo/focus/usecase"
)

// BufferBridge turns use case requests into buffer items.
type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

// BufferGoalRecompute defers a progress recomputation. Items are keyed by goal so a burst
// of failures leaves a single pending recompute.
func (b *BufferBridge) BufferGoalRecompute(ctx context.Context, userID, goalID string) error {
	if b.processor == nil || goalID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(usecase.GoalRecompute{UserID: userID, GoalID: goalID})
	if err != nil {
		return err
	}
	item := buffer.Item{
		ID:        buffer.EntityGoal + ":" + buffer.OperationRecompute + ":" + goalID,
		UserID:    userID,
		Entity:    buffer.EntityGoal,
		Operation: buffer.OperationRecompute,
		Command:   usecase.CommandGoalRecompute,
		Data:      payload,
		Priority:  2,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
