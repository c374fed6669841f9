package goal

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository/memory"
	"github.com/fastygo/focus/usecase"
)

type fakeBuffer struct {
	calls []usecase.GoalRecompute
	err   error
}

func (b *fakeBuffer) BufferGoalRecompute(ctx context.Context, userID, goalID string) error {
	b.calls = append(b.calls, usecase.GoalRecompute{UserID: userID, GoalID: goalID})
	return b.err
}

func seedTasks(t *testing.T, store *memory.Store, userID, goalID string, statuses ...domain.TaskStatus) {
	t.Helper()
	for _, status := range statuses {
		gid := goalID
		_, err := store.Tasks().Create(context.Background(), &domain.Task{
			UserID: userID,
			GoalID: &gid,
			Title:  "step",
			Status: status,
		})
		require.NoError(t, err)
	}
}

func TestCreateValidatesInput(t *testing.T) {
	ctx := context.Background()
	uc := New(memory.NewStore(), nil, Policy{}, nil)

	_, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)

	_, err = uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "Run", Icon: "unicorn"})
	assert.ErrorIs(t, err, domain.ErrUnknownIcon)

	g, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: " Run a marathon ", Icon: "Dumbbell"})
	require.NoError(t, err)
	assert.Equal(t, "Run a marathon", g.Title)
	assert.Equal(t, domain.IconDumbbell, g.Icon)
	assert.Equal(t, domain.GoalStatusActive, g.Status)
	assert.Zero(t, g.ProgressPercentage)
}

func TestGetDerivesProgressFromTasks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := New(store, nil, Policy{}, nil)
	g, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "Learn Go"})
	require.NoError(t, err)
	seedTasks(t, store, "u1", g.ID,
		domain.TaskStatusCompleted, domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusTodo)

	got, err := uc.Get(ctx, "u1", g.ID)
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got.ProgressPercentage, 1e-9)

	list, err := uc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.InDelta(t, 25.0, list[0].ProgressPercentage, 1e-9)

	_, err = uc.Get(ctx, "u2", g.ID)
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	uc := New(memory.NewStore(), nil, Policy{}, nil)
	g, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "Read"})
	require.NoError(t, err)

	paused, err := uc.UpdateStatus(ctx, "u1", g.ID, domain.GoalStatusPaused)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalStatusPaused, paused.Status)

	archived, err := uc.UpdateStatus(ctx, "u1", g.ID, domain.GoalStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalStatusArchived, archived.Status)

	_, err = uc.UpdateStatus(ctx, "u1", g.ID, domain.GoalStatusPaused)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = uc.UpdateStatus(ctx, "u1", g.ID, domain.GoalStatus("deleted"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestRecomputeAutoCompletePolicy(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
		want   domain.GoalStatus
	}{
		{name: "policy off", policy: Policy{}, want: domain.GoalStatusActive},
		{name: "policy on", policy: Policy{AutoComplete: true}, want: domain.GoalStatusCompleted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.NewStore()
			uc := New(store, nil, tc.policy, nil)
			g, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "Ship"})
			require.NoError(t, err)
			seedTasks(t, store, "u1", g.ID, domain.TaskStatusCompleted, domain.TaskStatusCompleted)

			p, err := uc.RecomputeProgress(ctx, "u1", g.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, p.TaskCount)
			assert.InDelta(t, 100.0, p.Percentage, 1e-9)

			stored, err := store.Goals().GetByID(ctx, g.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, stored.Status)
			assert.InDelta(t, 100.0, stored.ProgressPercentage, 1e-9)
		})
	}
}

func TestRecomputeEmptyGoalNeverAutoCompletes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := New(store, nil, Policy{AutoComplete: true}, nil)
	g, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "Empty"})
	require.NoError(t, err)

	p, err := uc.RecomputeProgress(ctx, "u1", g.ID)
	require.NoError(t, err)
	assert.Zero(t, p.Percentage)

	stored, err := store.Goals().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.GoalStatusActive, stored.Status)
}

func TestRefreshBuffersTransientFailure(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	buffer := &fakeBuffer{}
	uc := New(store, buffer, Policy{}, nil)
	g, err := uc.Create(ctx, &domain.Goal{UserID: "u1", Title: "Write"})
	require.NoError(t, err)
	seedTasks(t, store, "u1", g.ID, domain.TaskStatusCompleted)

	store.InjectFault("goals.update_progress", errors.New("connection refused"))
	uc.Refresh(ctx, "u1", &g.ID)
	require.Len(t, buffer.calls, 1)
	assert.Equal(t, usecase.GoalRecompute{UserID: "u1", GoalID: g.ID}, buffer.calls[0])

	stored, err := store.Goals().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.ProgressPercentage)

	payload, err := json.Marshal(buffer.calls[0])
	require.NoError(t, err)
	require.NoError(t, uc.HandleRecompute(ctx, payload))

	stored, err = store.Goals().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stored.ProgressPercentage, 1e-9)
}

func TestRefreshSkipsDomainErrors(t *testing.T) {
	ctx := context.Background()
	buffer := &fakeBuffer{}
	uc := New(memory.NewStore(), buffer, Policy{}, nil)

	missing := "missing"
	uc.Refresh(ctx, "u1", &missing)
	uc.Refresh(ctx, "u1", nil)
	assert.Empty(t, buffer.calls)
}

func TestHandleRecomputeDropsDeletedGoal(t *testing.T) {
	uc := New(memory.NewStore(), nil, Policy{}, nil)
	payload, err := json.Marshal(usecase.GoalRecompute{UserID: "u1", GoalID: "gone"})
	require.NoError(t, err)
	assert.NoError(t, uc.HandleRecompute(context.Background(), payload))
	assert.Error(t, uc.HandleRecompute(context.Background(), []byte("{")))
}
