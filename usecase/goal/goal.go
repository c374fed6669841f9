package goal

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
	"github.com/fastygo/focus/usecase"
	"github.com/fastygo/focus/usecase/progress"
)

// Policy holds product decisions that are not derivable from the data.
type Policy struct {
	// AutoComplete flips an active goal to completed once every one of its tasks is completed.
	AutoComplete bool
}

type UseCase struct {
	store  repository.Store
	buffer usecase.OperationBuffer
	policy Policy
	logger *zap.Logger
}

func New(store repository.Store, buffer usecase.OperationBuffer, policy Policy, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:  store,
		buffer: buffer,
		policy: policy,
		logger: logger,
	}
}

func (uc *UseCase) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal == nil || goal.UserID == "" || strings.TrimSpace(goal.Title) == "" {
		return nil, domain.ErrInvalidPayload
	}
	icon, err := domain.ParseIcon(string(goal.Icon))
	if err != nil {
		return nil, err
	}
	goal.Icon = icon
	if goal.Status == "" {
		goal.Status = domain.GoalStatusActive
	}
	if !goal.Status.Valid() {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid goal status", nil)
	}
	goal.Title = strings.TrimSpace(goal.Title)
	goal.ProgressPercentage = 0

	created, err := uc.store.Goals().Create(ctx, goal)
	if err != nil {
		return nil, domain.Unavailable("create goal", err)
	}
	return created, nil
}

// Get returns the goal with progress derived from its current tasks.
func (uc *UseCase) Get(ctx context.Context, userID, id string) (*domain.Goal, error) {
	var goal *domain.Goal
	err := uc.store.WithinSnapshot(ctx, func(ctx context.Context, repos repository.Repositories) error {
		g, err := ownedGoal(ctx, repos, userID, id)
		if err != nil {
			return err
		}
		tasks, err := repos.Tasks().ListByGoal(ctx, id)
		if err != nil {
			return err
		}
		g.ProgressPercentage = progress.GoalProgress(*g, tasks).Percentage
		goal = g
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("get goal", err)
	}
	return goal, nil
}

func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	var goals []domain.Goal
	err := uc.store.WithinSnapshot(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		goals, err = repos.Goals().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		tasks, err := repos.Tasks().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for i := range goals {
			goals[i].ProgressPercentage = progress.GoalProgress(goals[i], tasks).Percentage
		}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("list goals", err)
	}
	return goals, nil
}

// UpdateStatus applies a user-driven status change.
func (uc *UseCase) UpdateStatus(ctx context.Context, userID, id string, status domain.GoalStatus) (*domain.Goal, error) {
	var goal *domain.Goal
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		g, err := ownedGoal(ctx, repos, userID, id)
		if err != nil {
			return err
		}
		if !g.Status.CanTransition(status) {
			return domain.ErrInvalidTransition
		}
		if err := repos.Goals().UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		g.Status = status
		goal = g
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("update goal status", err)
	}
	return goal, nil
}

// RecomputeProgress derives the goal's progress from its tasks and writes the cached
// column. It never trusts the stored value.
func (uc *UseCase) RecomputeProgress(ctx context.Context, userID, goalID string) (*domain.Progress, error) {
	var result domain.Progress
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		g, err := ownedGoal(ctx, repos, userID, goalID)
		if err != nil {
			return err
		}
		tasks, err := repos.Tasks().ListByGoal(ctx, goalID)
		if err != nil {
			return err
		}
		result = progress.GoalProgress(*g, tasks)
		if err := repos.Goals().UpdateProgress(ctx, goalID, result.Percentage); err != nil {
			return err
		}
		if uc.shouldAutoComplete(g, result) {
			if err := repos.Goals().UpdateStatus(ctx, goalID, domain.GoalStatusCompleted); err != nil {
				return err
			}
			uc.logger.Info("goal auto-completed", zap.String("goal_id", goalID))
		}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("recompute goal progress", err)
	}
	return &result, nil
}

// Refresh recomputes progress after a task change. Transient failures are buffered for
// the background processor instead of failing the caller.
func (uc *UseCase) Refresh(ctx context.Context, userID string, goalID *string) {
	if goalID == nil || *goalID == "" {
		return
	}
	_, err := uc.RecomputeProgress(ctx, userID, *goalID)
	if err == nil {
		return
	}
	if !domain.IsDomainError(err, domain.ErrCodeUnavailable) || uc.buffer == nil {
		uc.logger.Warn("goal progress refresh skipped", zap.String("goal_id", *goalID), zap.Error(err))
		return
	}
	if bufErr := uc.buffer.BufferGoalRecompute(ctx, userID, *goalID); bufErr != nil {
		uc.logger.Error("failed to buffer goal recompute", zap.String("goal_id", *goalID), zap.Error(bufErr))
		return
	}
	uc.logger.Warn("goal recompute buffered", zap.String("goal_id", *goalID), zap.Error(err))
}

// HandleRecompute replays a buffered usecase.GoalRecompute command.
func (uc *UseCase) HandleRecompute(ctx context.Context, payload []byte) error {
	var cmd usecase.GoalRecompute
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return err
	}
	_, err := uc.RecomputeProgress(ctx, cmd.UserID, cmd.GoalID)
	if domain.IsDomainError(err, domain.ErrCodeNotFound) {
		// the goal was deleted while the command sat in the buffer
		return nil
	}
	return err
}

func (uc *UseCase) shouldAutoComplete(g *domain.Goal, p domain.Progress) bool {
	return uc.policy.AutoComplete &&
		g.Status == domain.GoalStatusActive &&
		p.TaskCount > 0 &&
		p.CompletedCount == p.TaskCount
}

func ownedGoal(ctx context.Context, repos repository.Repositories, userID, id string) (*domain.Goal, error) {
	g, err := repos.Goals().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != userID {
		return nil, domain.ErrGoalNotFound
	}
	return g, nil
}
