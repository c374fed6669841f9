package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/pkg/clock"
	"github.com/fastygo/focus/repository"
	"github.com/fastygo/focus/repository/memory"
	"github.com/fastygo/focus/usecase/goal"
	"github.com/fastygo/focus/usecase/timer"
)

var t0 = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	clock *clock.Manual
	goals *goal.UseCase
	timer *timer.UseCase
	uc    *UseCase
}

func newFixture() *fixture {
	store := memory.NewStore()
	clk := clock.NewManual(t0)
	goals := goal.New(store, nil, goal.Policy{}, nil)
	tm := timer.New(store, timer.Dependencies{Goals: goals, Clock: clk}, timer.Config{}, nil)
	uc := New(store, Dependencies{Goals: goals, Timer: tm, Clock: clk}, Config{}, nil)
	return &fixture{store: store, clock: clk, goals: goals, timer: tm, uc: uc}
}

func TestCreateForcesTodo(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.uc.Create(ctx, &domain.Task{
		UserID:   "u1",
		Title:    " Draft chapter ",
		Status:   domain.TaskStatusCompleted,
		Duration: 999,
	})
	require.NoError(t, err)
	assert.Equal(t, "Draft chapter", created.Title)
	assert.Equal(t, domain.TaskStatusTodo, created.Status)
	assert.Zero(t, created.Duration)
	assert.Nil(t, created.CompletedAt)
	assert.Equal(t, t0, created.CreatedAt)

	events, err := f.store.Events().ListByTask(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventTaskCreated, events[0].Name)
}

func TestCreateChecksReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	foreign, err := f.goals.Create(ctx, &domain.Goal{UserID: "u2", Title: "Theirs"})
	require.NoError(t, err)

	_, err = f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "x", GoalID: &foreign.ID})
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)

	missing := "nope"
	_, err = f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "x", CategoryID: &missing})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = f.uc.Create(ctx, &domain.Task{UserID: "u1"})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	empty := ""
	created, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "loose", GoalID: &empty})
	require.NoError(t, err)
	assert.Nil(t, created.GoalID)
}

func TestCreateAndDeleteRefreshGoal(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	g, err := f.goals.Create(ctx, &domain.Goal{UserID: "u1", Title: "Garden"})
	require.NoError(t, err)

	a, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "dig", GoalID: &g.ID})
	require.NoError(t, err)
	b, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "plant", GoalID: &g.ID})
	require.NoError(t, err)
	_, err = f.timer.Complete(ctx, "u1", a.ID)
	require.NoError(t, err)

	stored, err := f.store.Goals().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, stored.ProgressPercentage, 1e-9)

	require.NoError(t, f.uc.Delete(ctx, "u1", b.ID))
	stored, err = f.store.Goals().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stored.ProgressPercentage, 1e-9)
}

func TestDeleteCascadesEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	task, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "tracked"})
	require.NoError(t, err)
	_, err = f.timer.Start(ctx, "u1", task.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, "u2", task.ID), domain.ErrTaskNotFound)
	require.NoError(t, f.uc.Delete(ctx, "u1", task.ID))

	entries, err := f.store.TimeEntries().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
	_, err = f.uc.Get(ctx, "u1", task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	events, err := f.store.Events().ListByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventTaskDeleted, events[len(events)-1].Name)
}

func TestListAndEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "first"})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	_, err = f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "second"})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, &domain.Task{UserID: "u2", Title: "foreign"})
	require.NoError(t, err)

	_, err = f.uc.List(ctx, repository.TaskFilter{})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	tasks, err := f.uc.List(ctx, repository.TaskFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "second", tasks[0].Title)

	_, err = f.timer.Start(ctx, "u1", first.ID)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Second)
	_, err = f.timer.Stop(ctx, "u1", first.ID)
	require.NoError(t, err)

	entries, err := f.uc.Entries(ctx, "u1", first.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.EqualValues(t, 30, entries[0].Seconds())

	_, err = f.uc.Entries(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestReconcileStopsStaleTimers(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	stale, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "forgotten"})
	require.NoError(t, err)
	fresh, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "current"})
	require.NoError(t, err)
	dangling, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "crashed"})
	require.NoError(t, err)

	_, err = f.timer.Start(ctx, "u1", stale.ID)
	require.NoError(t, err)
	require.NoError(t, f.store.TimeEntries().Create(ctx, &domain.TimeEntry{TaskID: dangling.ID, UserID: "u1", StartTime: t0}))
	f.clock.Advance(3 * time.Hour)
	_, err = f.timer.Start(ctx, "u1", fresh.ID)
	require.NoError(t, err)

	open, err := f.uc.OpenIntervals(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, open, 3)

	_, err = f.uc.Reconcile(ctx, "u1", 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	res, err := f.uc.Reconcile(ctx, "u1", time.Hour)
	require.NoError(t, err)
	require.Len(t, res.Stopped, 1)
	assert.Equal(t, stale.ID, res.Stopped[0].Task.ID)
	assert.EqualValues(t, 3*3600, res.Stopped[0].Duration)
	require.Len(t, res.Closed, 1)
	assert.Equal(t, dangling.ID, res.Closed[0].TaskID)
	assert.Zero(t, res.Closed[0].Seconds())

	open, err = f.uc.OpenIntervals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, fresh.ID, open[0].TaskID)
}

func TestReconcileSkipsVanishedTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	first, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "first"})
	require.NoError(t, err)
	second, err := f.uc.Create(ctx, &domain.Task{UserID: "u1", Title: "second"})
	require.NoError(t, err)
	_, err = f.timer.Start(ctx, "u1", first.ID)
	require.NoError(t, err)
	_, err = f.timer.Start(ctx, "u1", second.ID)
	require.NoError(t, err)
	f.clock.Advance(2 * time.Hour)

	// The task behind whichever entry comes first disappears mid-pass.
	f.store.InjectFault("tasks.get", domain.ErrTaskNotFound)
	res, err := f.uc.Reconcile(ctx, "u1", time.Hour)
	require.NoError(t, err)
	require.Len(t, res.Stopped, 1)
	assert.EqualValues(t, 2*3600, res.Stopped[0].Duration)

	open, err := f.uc.OpenIntervals(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.NotEqual(t, res.Stopped[0].Task.ID, open[0].TaskID)
}
