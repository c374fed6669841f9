// Package ledger records work intervals and keeps at most one open interval per task.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/repository"
)

// Ledger operates on the entry repository it is built with, usually one bound to a
// transaction.
type Ledger struct {
	entries     repository.TimeEntryRepository
	maxInterval time.Duration
	logger      *zap.Logger
}

// CloseResult describes a closed interval. Entry is nil when nothing was open.
type CloseResult struct {
	Entry     *domain.TimeEntry
	Duration  int64
	Anomalous bool
}

func New(entries repository.TimeEntryRepository, maxInterval time.Duration, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		entries:     entries,
		maxInterval: maxInterval,
		logger:      logger,
	}
}

// OpenInterval starts a new interval for task at start.
func (l *Ledger) OpenInterval(ctx context.Context, task *domain.Task, start time.Time) (*domain.TimeEntry, error) {
	if task == nil || task.ID == "" {
		return nil, domain.ErrInvalidPayload
	}
	open, err := l.entries.GetOpen(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, domain.ErrIntervalAlreadyOpen
	}

	entry := &domain.TimeEntry{
		ID:        uuid.NewString(),
		TaskID:    task.ID,
		UserID:    task.UserID,
		GoalID:    task.GoalID,
		StartTime: start,
		CreatedAt: start,
	}
	if err := l.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// CloseInterval closes the most recently started open interval of taskID. When none is
// open it logs a warning and reports a zero duration.
func (l *Ledger) CloseInterval(ctx context.Context, taskID string, end time.Time) (*CloseResult, error) {
	open, err := l.entries.GetOpen(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		l.logger.Warn("no open interval to close", zap.String("task_id", taskID))
		return &CloseResult{}, nil
	}
	return l.close(ctx, open, end)
}

// Reconcile closes a specific open entry at end.
func (l *Ledger) Reconcile(ctx context.Context, entry *domain.TimeEntry, end time.Time) (*CloseResult, error) {
	if entry == nil {
		return &CloseResult{}, nil
	}
	return l.close(ctx, entry, end)
}

// ListOpenIntervals returns the user's open intervals, oldest first.
func (l *Ledger) ListOpenIntervals(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	return l.entries.ListOpenByUser(ctx, userID)
}

func (l *Ledger) close(ctx context.Context, entry *domain.TimeEntry, end time.Time) (*CloseResult, error) {
	seconds, anomalous := clock.Elapsed(entry.StartTime, end, l.maxInterval)
	if anomalous {
		l.logger.Warn("anomalous interval duration clamped to zero",
			zap.String("task_id", entry.TaskID),
			zap.String("entry_id", entry.ID),
			zap.Time("start", entry.StartTime),
			zap.Time("end", end))
	}
	if err := entry.Close(end, seconds, anomalous); err != nil {
		return nil, err
	}
	if err := l.entries.Close(ctx, entry); err != nil {
		return nil, err
	}
	return &CloseResult{Entry: entry, Duration: seconds, Anomalous: anomalous}, nil
}
