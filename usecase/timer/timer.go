// Package timer drives task start, stop and complete. Each call validates the transition,
// records the interval in the ledger and updates task durations inside one transaction.
package timer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/repository"
	"github.com/fastygo/focus/usecase/ledger"
)

// GoalRefresher recomputes a goal's cached progress after a task changes.
type GoalRefresher interface {
	Refresh(ctx context.Context, userID string, goalID *string)
}

// Dependencies are the optional collaborators of the use case.
type Dependencies struct {
	Locker repository.TaskLocker
	Cache  repository.ReportCache
	Goals  GoalRefresher
	Clock  clock.Clock
}

type Config struct {
	// MaxInterval bounds a single interval; longer ones are clamped to zero as anomalous.
	MaxInterval time.Duration
}

type StartResult struct {
	Task      *domain.Task      `json:"task"`
	TimeEntry *domain.TimeEntry `json:"time_entry"`
}

type StopResult struct {
	Task     *domain.Task `json:"task"`
	Duration int64        `json:"duration"`
}

type CompleteResult struct {
	Task     *domain.Task `json:"task"`
	Duration int64        `json:"duration"`
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

// Start opens a new interval for the task. Other running tasks of the same user are left alone.
func (uc *UseCase) Start(ctx context.Context, userID, taskID string) (*StartResult, error) {
	var (
		result       StartResult
		wasCompleted bool
	)
	err := uc.transition(ctx, taskID, func(ctx context.Context, repos repository.Repositories) error {
		task, err := ownedTask(ctx, repos, userID, taskID)
		if err != nil {
			return err
		}
		wasCompleted = task.IsCompleted()
		now := uc.deps.Clock.Now()
		if err := task.Start(now); err != nil {
			return err
		}

		led := uc.ledger(repos)
		if err := uc.discardDangling(ctx, repos, led, task, now); err != nil {
			return err
		}
		entry, err := led.OpenInterval(ctx, task, now)
		if err != nil {
			return err
		}
		if err := repos.Tasks().Update(ctx, task); err != nil {
			return err
		}
		if err := uc.record(ctx, repos, domain.EventTaskStarted, task, map[string]string{"entry_id": entry.ID}, now); err != nil {
			return err
		}
		result = StartResult{Task: task, TimeEntry: entry}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("start task", err)
	}

	uc.logger.Debug("task started", zap.String("task_id", taskID), zap.String("entry_id", result.TimeEntry.ID))
	uc.afterCommit(ctx, userID, result.Task.GoalID, wasCompleted)
	return &result, nil
}

// Stop closes the open interval and returns the task to todo.
func (uc *UseCase) Stop(ctx context.Context, userID, taskID string) (*StopResult, error) {
	var result StopResult
	err := uc.transition(ctx, taskID, func(ctx context.Context, repos repository.Repositories) error {
		task, err := ownedTask(ctx, repos, userID, taskID)
		if err != nil {
			return err
		}
		if _, err := domain.NextStatus(task.Status, domain.ActionStop); err != nil {
			return err
		}
		now := uc.deps.Clock.Now()
		closed, err := uc.ledger(repos).CloseInterval(ctx, task.ID, now)
		if err != nil {
			return err
		}
		if closed.Entry == nil {
			uc.logger.Warn("running task had no open interval, stopping with zero duration", zap.String("task_id", task.ID))
		}
		if err := task.Stop(now, closed.Duration); err != nil {
			return err
		}
		if err := repos.Tasks().Update(ctx, task); err != nil {
			return err
		}
		if err := uc.record(ctx, repos, domain.EventTaskStopped, task, closePayload(closed), now); err != nil {
			return err
		}
		result = StopResult{Task: task, Duration: closed.Duration}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("stop task", err)
	}

	uc.logger.Debug("task stopped", zap.String("task_id", taskID), zap.Int64("duration", result.Duration))
	uc.afterCommit(ctx, userID, result.Task.GoalID, false)
	return &result, nil
}

// Complete finishes the task, closing its interval first when it is running. Completing a
// completed task changes nothing.
func (uc *UseCase) Complete(ctx context.Context, userID, taskID string) (*CompleteResult, error) {
	var (
		result  CompleteResult
		changed bool
	)
	err := uc.transition(ctx, taskID, func(ctx context.Context, repos repository.Repositories) error {
		task, err := ownedTask(ctx, repos, userID, taskID)
		if err != nil {
			return err
		}
		if task.IsCompleted() {
			result = CompleteResult{Task: task}
			return nil
		}

		now := uc.deps.Clock.Now()
		closed := &ledger.CloseResult{}
		if task.IsRunning() {
			closed, err = uc.ledger(repos).CloseInterval(ctx, task.ID, now)
			if err != nil {
				return err
			}
		}
		changed, err = task.Complete(now, closed.Duration)
		if err != nil {
			return err
		}
		if err := repos.Tasks().Update(ctx, task); err != nil {
			return err
		}
		if err := uc.record(ctx, repos, domain.EventTaskCompleted, task, closePayload(closed), now); err != nil {
			return err
		}
		result = CompleteResult{Task: task, Duration: closed.Duration}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("complete task", err)
	}
	if !changed {
		return &result, nil
	}

	uc.logger.Debug("task completed", zap.String("task_id", taskID), zap.Int64("duration", result.Duration))
	uc.afterCommit(ctx, userID, result.Task.GoalID, true)
	return &result, nil
}

func (uc *UseCase) transition(ctx context.Context, taskID string, fn repository.TxFunc) error {
	if uc.deps.Locker != nil {
		unlock, err := uc.deps.Locker.Lock(ctx, taskID)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return uc.store.WithinTx(ctx, fn)
}

// discardDangling closes an interval left open by a crash on a task that is not running.
// The interval never counted toward the task, so it is closed at its own start.
func (uc *UseCase) discardDangling(ctx context.Context, repos repository.Repositories, led *ledger.Ledger, task *domain.Task, now time.Time) error {
	open, err := repos.TimeEntries().GetOpen(ctx, task.ID)
	if err != nil || open == nil {
		return err
	}
	uc.logger.Warn("closing dangling interval before start",
		zap.String("task_id", task.ID),
		zap.String("entry_id", open.ID),
		zap.Time("opened_at", open.StartTime))
	if _, err := led.Reconcile(ctx, open, open.StartTime); err != nil {
		return err
	}
	return uc.record(ctx, repos, domain.EventIntervalReconciled, task, map[string]string{"entry_id": open.ID}, now)
}

func (uc *UseCase) ledger(repos repository.Repositories) *ledger.Ledger {
	return ledger.New(repos.TimeEntries(), uc.cfg.MaxInterval, uc.logger)
}

func (uc *UseCase) record(ctx context.Context, repos repository.Repositories, name string, task *domain.Task, payload interface{}, at time.Time) error {
	return repos.Events().Append(ctx, domain.NewTaskEvent(uuid.NewString(), name, task, payload, at))
}

func (uc *UseCase) afterCommit(ctx context.Context, userID string, goalID *string, completionChanged bool) {
	if uc.deps.Cache != nil {
		if err := uc.deps.Cache.Invalidate(ctx, userID); err != nil {
			uc.logger.Warn("report cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	if completionChanged && uc.deps.Goals != nil {
		uc.deps.Goals.Refresh(ctx, userID, goalID)
	}
}

func closePayload(res *ledger.CloseResult) map[string]interface{} {
	payload := map[string]interface{}{"duration": res.Duration}
	if res.Entry != nil {
		payload["entry_id"] = res.Entry.ID
	}
	if res.Anomalous {
		payload["anomalous"] = true
	}
	return payload
}

func ownedTask(ctx context.Context, repos repository.Repositories, userID, id string) (*domain.Task, error) {
	task, err := repos.Tasks().GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}
