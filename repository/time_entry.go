package repository

import (
	"context"

	"github.com/fastygo/focus/domain"
)

type TimeEntryRepository interface {
	// Create inserts an entry. A second open entry for the same task fails with
	// domain.ErrIntervalAlreadyOpen.
	Create(ctx context.Context, entry *domain.TimeEntry) error
	// GetOpen returns the open entry with the latest start for taskID, or nil.
	GetOpen(ctx context.Context, taskID string) (*domain.TimeEntry, error)
	// Close persists end time and duration for an open entry.
	Close(ctx context.Context, entry *domain.TimeEntry) error
	ListOpenByUser(ctx context.Context, userID string) ([]domain.TimeEntry, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error)
	DeleteByTask(ctx context.Context, taskID string) (int, error)
}
