// Package report assembles the aggregate view over a consistent snapshot of a user's tasks.
package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/repository"
	"github.com/fastygo/focus/usecase/insight"
	"github.com/fastygo/focus/usecase/progress"
)

const (
	DefaultDays = 7
	MaxDays     = 90
)

type Config struct {
	Days         int
	Location     *time.Location
	InsightLimit int
	CacheTTL     time.Duration
}

// Query selects the report scope. An empty GoalID covers every task of the user.
type Query struct {
	UserID string
	GoalID string
	Days   int
}

type UseCase struct {
	store  repository.Store
	cache  repository.ReportCache
	clock  clock.Clock
	cfg    Config
	logger *zap.Logger
}

func New(store repository.Store, cache repository.ReportCache, clk clock.Clock, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clk == nil {
		clk = clock.System{}
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Days <= 0 {
		cfg.Days = DefaultDays
	}
	if cfg.InsightLimit <= 0 {
		cfg.InsightLimit = insight.DefaultLimit
	}
	return &UseCase{
		store:  store,
		cache:  cache,
		clock:  clk,
		cfg:    cfg,
		logger: logger,
	}
}

// Aggregate builds the report for q. All figures come from one snapshot, so a concurrent
// transition is either fully reflected or not at all.
func (uc *UseCase) Aggregate(ctx context.Context, q Query) (*domain.Report, error) {
	if q.UserID == "" {
		return nil, domain.ErrUnauthorized
	}
	if q.Days <= 0 {
		q.Days = uc.cfg.Days
	}
	if q.Days > MaxDays {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "days out of range", nil)
	}

	key, cacheable := uc.cacheKey(ctx, q)
	if cacheable {
		if cached := uc.cached(ctx, key); cached != nil {
			return cached, nil
		}
	}

	var (
		tasks      []domain.Task
		goals      []domain.Goal
		categories []domain.Category
		scope      *domain.Goal
	)
	err := uc.store.WithinSnapshot(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		if q.GoalID != "" {
			scope, err = repos.Goals().GetByID(ctx, q.GoalID)
			if err != nil {
				return err
			}
			if scope.UserID != q.UserID {
				return domain.ErrGoalNotFound
			}
			tasks, err = repos.Tasks().ListByGoal(ctx, q.GoalID)
		} else {
			tasks, err = repos.Tasks().ListByUser(ctx, q.UserID)
		}
		if err != nil {
			return err
		}
		if goals, err = repos.Goals().ListByUser(ctx, q.UserID); err != nil {
			return err
		}
		categories, err = repos.Categories().ListByUser(ctx, q.UserID)
		return err
	})
	if err != nil {
		return nil, domain.Unavailable("aggregate report", err)
	}

	report := uc.build(q, scope, tasks, goals, categories, uc.clock.Now())
	if cacheable {
		uc.remember(ctx, key, report)
	}
	return report, nil
}

func (uc *UseCase) build(q Query, scope *domain.Goal, tasks []domain.Task, goals []domain.Goal, categories []domain.Category, now time.Time) *domain.Report {
	loc := uc.cfg.Location
	report := &domain.Report{
		UserID:      q.UserID,
		GoalID:      q.GoalID,
		GeneratedAt: now,
	}
	if scope != nil {
		report.Progress = progress.GoalProgress(*scope, tasks)
	} else {
		report.Progress = progress.OverallProgress(tasks)
		report.Goals = make([]domain.Progress, 0, len(goals))
		for _, g := range goals {
			report.Goals = append(report.Goals, progress.GoalProgress(g, tasks))
		}
	}

	report.CategoryTotals = progress.CategoryTotals(tasks, categories)
	report.DailySeries = progress.DailySeries(tasks, q.Days, now, loc)
	report.PeakHours = progress.PeakHours(tasks, loc)
	peak, hasPeak := progress.PeakHour(report.PeakHours)
	report.PeakHour = peak
	report.Streak = progress.Streak(report.DailySeries)
	report.WeekTotal, report.PreviousWeekTotal = progress.WeekTotals(tasks, now, loc)
	report.WeekOverWeekChange = progress.WeekOverWeekChange(report.WeekTotal, report.PreviousWeekTotal)

	report.Insights = insight.Generate(insight.Input{
		WeekTotal:          report.WeekTotal,
		PreviousWeekTotal:  report.PreviousWeekTotal,
		WeekOverWeekChange: report.WeekOverWeekChange,
		Streak:             report.Streak,
		PeakHour:           peak,
		HasPeakHour:        hasPeak,
		TaskCount:          len(tasks),
		CompletionRate:     progress.CompletionRate(tasks),
		CategoryTotals:     report.CategoryTotals,
	}, uc.cfg.InsightLimit)
	return report
}

// cacheKey pins the user's cache generation before any data is read. It reports false
// when caching is off or the generation is unknown.
func (uc *UseCase) cacheKey(ctx context.Context, q Query) (repository.ReportKey, bool) {
	key := repository.ReportKey{UserID: q.UserID, GoalID: q.GoalID, Days: q.Days}
	if uc.cache == nil || uc.cfg.CacheTTL <= 0 {
		return key, false
	}
	gen, err := uc.cache.Generation(ctx, q.UserID)
	if err != nil {
		uc.logger.Warn("report cache generation read failed", zap.String("user_id", q.UserID), zap.Error(err))
		return key, false
	}
	key.Generation = gen
	return key, true
}

func (uc *UseCase) cached(ctx context.Context, key repository.ReportKey) *domain.Report {
	report, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn("report cache read failed", zap.String("user_id", key.UserID), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return report
}

func (uc *UseCase) remember(ctx context.Context, key repository.ReportKey, report *domain.Report) {
	if err := uc.cache.Set(ctx, key, report, uc.cfg.CacheTTL); err != nil {
		uc.logger.Warn("report cache write failed", zap.String("user_id", key.UserID), zap.Error(err))
	}
}
