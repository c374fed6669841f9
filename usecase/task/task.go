package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/repository"
	"github.com/fastygo/focus/usecase/ledger"
	"github.com/fastygo/focus/usecase/timer"
)

type GoalRefresher interface {
	Refresh(ctx context.Context, userID string, goalID *string)
}

// Stopper stops a running task; it is satisfied by timer.UseCase.
type Stopper interface {
	Stop(ctx context.Context, userID, taskID string) (*timer.StopResult, error)
}

type Dependencies struct {
	Cache repository.ReportCache
	Goals GoalRefresher
	Timer Stopper
	Clock clock.Clock
}

type Config struct {
	MaxInterval time.Duration
}

// ReconcileResult lists what a reconciliation pass touched.
type ReconcileResult struct {
	Stopped []timer.StopResult `json:"stopped"`
	Closed  []domain.TimeEntry `json:"closed"`
}

type UseCase struct {
	store  repository.Store
	deps   Dependencies
	cfg    Config
	logger *zap.Logger
}

func New(store repository.Store, deps Dependencies, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	return &UseCase{
		store:  store,
		deps:   deps,
		cfg:    cfg,
		logger: logger,
	}
}

func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	tasks, err := uc.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, domain.Unavailable("list tasks", err)
	}
	return tasks, nil
}

func (uc *UseCase) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, domain.Unavailable("get task", err)
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// Create stores a new task. Every task starts in todo with no tracked time regardless of
// what the caller sent.
func (uc *UseCase) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil || task.UserID == "" || strings.TrimSpace(task.Title) == "" {
		return nil, domain.ErrInvalidPayload
	}
	now := uc.deps.Clock.Now()
	task.ID = uuid.NewString()
	task.Title = strings.TrimSpace(task.Title)
	task.Status = domain.TaskStatusTodo
	task.StartTime, task.EndTime, task.CompletedAt = nil, nil, nil
	task.Duration, task.ActualDuration = 0, 0
	task.CreatedAt, task.UpdatedAt = now, now

	var created *domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := checkRefs(ctx, repos, task); err != nil {
			return err
		}
		var err error
		created, err = repos.Tasks().Create(ctx, task)
		if err != nil {
			return err
		}
		return repos.Events().Append(ctx, domain.NewTaskEvent(uuid.NewString(), domain.EventTaskCreated, created, nil, now))
	})
	if err != nil {
		return nil, domain.Unavailable("create task", err)
	}

	uc.logger.Debug("task created", zap.String("task_id", created.ID))
	uc.afterChange(ctx, created.UserID, created.GoalID)
	return created, nil
}

// Delete removes the task together with its time entries.
func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	var deleted *domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		task, err := repos.Tasks().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if task.UserID != userID {
			return domain.ErrTaskNotFound
		}
		removed, err := repos.TimeEntries().DeleteByTask(ctx, id)
		if err != nil {
			return err
		}
		if err := repos.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		payload := map[string]int{"entries_removed": removed}
		deleted = task
		return repos.Events().Append(ctx, domain.NewTaskEvent(uuid.NewString(), domain.EventTaskDeleted, task, payload, uc.deps.Clock.Now()))
	})
	if err != nil {
		return domain.Unavailable("delete task", err)
	}

	uc.logger.Debug("task deleted", zap.String("task_id", id))
	uc.afterChange(ctx, userID, deleted.GoalID)
	return nil
}

// Entries returns the task's time entries in start order.
func (uc *UseCase) Entries(ctx context.Context, userID, taskID string) ([]domain.TimeEntry, error) {
	if _, err := uc.Get(ctx, userID, taskID); err != nil {
		return nil, err
	}
	entries, err := uc.store.TimeEntries().ListByTask(ctx, taskID)
	if err != nil {
		return nil, domain.Unavailable("list time entries", err)
	}
	return entries, nil
}

// OpenIntervals lists every interval of the user that has not been closed.
func (uc *UseCase) OpenIntervals(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	entries, err := ledger.New(uc.store.TimeEntries(), uc.cfg.MaxInterval, uc.logger).ListOpenIntervals(ctx, userID)
	if err != nil {
		return nil, domain.Unavailable("list open intervals", err)
	}
	return entries, nil
}

// Reconcile stops running tasks whose open interval started more than olderThan ago.
// Intervals on tasks that are not running are closed with zero duration.
func (uc *UseCase) Reconcile(ctx context.Context, userID string, olderThan time.Duration) (*ReconcileResult, error) {
	if olderThan <= 0 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "older_than must be positive", nil)
	}
	open, err := uc.OpenIntervals(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{}
	cutoff := uc.deps.Clock.Now().Add(-olderThan)
	for i := range open {
		entry := open[i]
		if !entry.StartTime.Before(cutoff) {
			continue
		}
		stopped, closed, err := uc.reconcileEntry(ctx, userID, &entry)
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			uc.logger.Debug("stale interval skipped, task is gone",
				zap.String("task_id", entry.TaskID),
				zap.String("entry_id", entry.ID))
			continue
		}
		if err != nil {
			return result, err
		}
		if stopped != nil {
			result.Stopped = append(result.Stopped, *stopped)
		}
		if closed != nil {
			result.Closed = append(result.Closed, *closed)
		}
	}
	if len(result.Stopped)+len(result.Closed) > 0 {
		uc.logger.Info("stale intervals reconciled",
			zap.String("user_id", userID),
			zap.Int("stopped", len(result.Stopped)),
			zap.Int("closed", len(result.Closed)))
	}
	return result, nil
}

func (uc *UseCase) reconcileEntry(ctx context.Context, userID string, entry *domain.TimeEntry) (*timer.StopResult, *domain.TimeEntry, error) {
	task, err := uc.Get(ctx, userID, entry.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if task.IsRunning() && uc.deps.Timer != nil {
		stopped, err := uc.deps.Timer.Stop(ctx, userID, task.ID)
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			// stopped concurrently
			return nil, nil, nil
		}
		return stopped, nil, err
	}

	var closed *domain.TimeEntry
	err = uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		current, err := repos.Tasks().GetForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		if current.IsRunning() {
			return nil
		}
		open, err := repos.TimeEntries().GetOpen(ctx, task.ID)
		if err != nil || open == nil {
			return err
		}
		if _, err := ledger.New(repos.TimeEntries(), uc.cfg.MaxInterval, uc.logger).Reconcile(ctx, open, open.StartTime); err != nil {
			return err
		}
		closed = open
		payload := map[string]string{"entry_id": open.ID}
		return repos.Events().Append(ctx, domain.NewTaskEvent(uuid.NewString(), domain.EventIntervalReconciled, current, payload, uc.deps.Clock.Now()))
	})
	if err != nil {
		return nil, nil, domain.Unavailable("reconcile interval", err)
	}
	return nil, closed, nil
}

func (uc *UseCase) afterChange(ctx context.Context, userID string, goalID *string) {
	if uc.deps.Cache != nil {
		if err := uc.deps.Cache.Invalidate(ctx, userID); err != nil {
			uc.logger.Warn("report cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if uc.deps.Goals != nil {
		uc.deps.Goals.Refresh(ctx, userID, goalID)
	}
}

// checkRefs makes sure the goal and category the task points at belong to its owner.
func checkRefs(ctx context.Context, repos repository.Repositories, task *domain.Task) error {
	if task.GoalID != nil && *task.GoalID == "" {
		task.GoalID = nil
	}
	if task.CategoryID != nil && *task.CategoryID == "" {
		task.CategoryID = nil
	}
	if task.GoalID != nil {
		g, err := repos.Goals().GetByID(ctx, *task.GoalID)
		if err != nil {
			return err
		}
		if g.UserID != task.UserID {
			return domain.ErrGoalNotFound
		}
	}
	if task.CategoryID != nil {
		c, err := repos.Categories().GetByID(ctx, *task.CategoryID)
		if err != nil {
			return err
		}
		if c.UserID != task.UserID {
			return domain.ErrCategoryNotFound
		}
	}
	return nil
}
