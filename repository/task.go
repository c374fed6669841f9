package repository

import (
	"context"

	"github.com/fastygo/focus/domain"
)

type TaskFilter struct {
	UserID     string
	GoalID     string
	CategoryID string
	Status     string
	Limit      int
	Offset     int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// GetForUpdate loads the task and holds a write lock on it until the transaction ends.
	GetForUpdate(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	ListByGoal(ctx context.Context, goalID string) ([]domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}
