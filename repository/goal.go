package repository

import (
	"context"

	"github.com/fastygo/focus/domain"
)

type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Goal, error)
	Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error)
	UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error
	// UpdateProgress writes the cached progress column.
	UpdateProgress(ctx context.Context, id string, percentage float64) error
}

type CategoryRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
}

type EventRepository interface {
	Append(ctx context.Context, event domain.Event) error
	ListByTask(ctx context.Context, taskID string) ([]domain.Event, error)
}
