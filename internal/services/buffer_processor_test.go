package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/internal/infrastructure/buffer"
	"github.com/fastygo/focus/repository/memory"
	"github.com/fastygo/focus/usecase"
	"github.com/fastygo/focus/usecase/goal"
)

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

func newBuffer(t *testing.T) *buffer.Store {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "ops", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDrainReplaysThroughDispatcher(t *testing.T) {
	ctx := context.Background()
	dispatcher := usecase.NewDispatcher()
	var replayed []string
	dispatcher.RegisterCommand(usecase.CommandGoalRecompute, func(ctx context.Context, payload []byte) error {
		replayed = append(replayed, string(payload))
		return nil
	})

	bp := NewBufferProcessor(newBuffer(t), staticHealth(true), dispatcher, nil, ProcessorConfig{})
	bridge := NewBufferBridge(bp)
	require.NoError(t, bridge.BufferGoalRecompute(ctx, "u1", "g1"))
	require.NoError(t, bridge.BufferGoalRecompute(ctx, "u1", "g1"))
	require.NoError(t, bridge.BufferGoalRecompute(ctx, "u1", "g2"))
	assert.Equal(t, 2, bp.Size())

	require.NoError(t, bp.Drain(ctx))
	assert.Zero(t, bp.Size())
	require.Len(t, replayed, 2)
	assert.JSONEq(t, `{"user_id":"u1","goal_id":"g1"}`, replayed[0])
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	ctx := context.Background()
	dispatcher := usecase.NewDispatcher()
	dispatcher.RegisterCommand(usecase.CommandGoalRecompute, func(ctx context.Context, payload []byte) error {
		t.Fatal("must not replay while offline")
		return nil
	})
	bp := NewBufferProcessor(newBuffer(t), staticHealth(false), dispatcher, nil, ProcessorConfig{})
	require.NoError(t, NewBufferBridge(bp).BufferGoalRecompute(ctx, "u1", "g1"))

	require.NoError(t, bp.Drain(ctx))
	assert.Equal(t, 1, bp.Size())
}

func TestDrainRetriesThenDrops(t *testing.T) {
	ctx := context.Background()
	dispatcher := usecase.NewDispatcher()
	calls := 0
	dispatcher.RegisterCommand(usecase.CommandGoalRecompute, func(ctx context.Context, payload []byte) error {
		calls++
		return errors.New("still down")
	})
	bp := NewBufferProcessor(newBuffer(t), nil, dispatcher, nil, ProcessorConfig{MaxRetries: 2})
	require.NoError(t, NewBufferBridge(bp).BufferGoalRecompute(ctx, "u1", "g1"))

	require.NoError(t, bp.Drain(ctx))
	assert.Equal(t, 1, bp.Size())
	require.NoError(t, bp.Drain(ctx))
	assert.Zero(t, bp.Size())
	assert.Equal(t, 2, calls)
}

func TestBufferOperationValidates(t *testing.T) {
	bp := NewBufferProcessor(newBuffer(t), nil, usecase.NewDispatcher(), nil, ProcessorConfig{})
	assert.Error(t, bp.BufferOperation(context.Background(), buffer.Item{ID: "x"}))
	assert.ErrorIs(t, NewBufferBridge(bp).BufferGoalRecompute(context.Background(), "u1", ""), domain.ErrInvalidPayload)

	var missing *BufferProcessor
	assert.Error(t, missing.BufferOperation(context.Background(), buffer.Item{Command: "c"}))
}

func TestUnregisteredCommandIsRetried(t *testing.T) {
	bp := NewBufferProcessor(newBuffer(t), nil, usecase.NewDispatcher(), nil, ProcessorConfig{})
	require.NoError(t, bp.BufferOperation(context.Background(), buffer.Item{ID: "x", Command: "unknown"}))
	require.NoError(t, bp.Drain(context.Background()))
	assert.Equal(t, 1, bp.Size())
}

func TestCleanupUsesRetention(t *testing.T) {
	store := newBuffer(t)
	bp := NewBufferProcessor(store, nil, usecase.NewDispatcher(), nil, ProcessorConfig{Retention: time.Hour})
	require.NoError(t, store.Enqueue(buffer.Item{ID: "old", Command: "c", Timestamp: time.Now().Add(-2 * time.Hour)}))
	require.NoError(t, store.Enqueue(buffer.Item{ID: "new", Command: "c", Timestamp: time.Now()}))

	removed, err := bp.Cleanup(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, bp.Size())
}

// A failed progress write is buffered and applied by the next drain.
func TestGoalRecomputeRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	dispatcher := usecase.NewDispatcher()
	bp := NewBufferProcessor(newBuffer(t), staticHealth(true), dispatcher, nil, ProcessorConfig{})
	goals := goal.New(store, NewBufferBridge(bp), goal.Policy{}, nil)
	dispatcher.RegisterCommand(usecase.CommandGoalRecompute, goals.HandleRecompute)

	g, err := goals.Create(ctx, &domain.Goal{UserID: "u1", Title: "Finish book"})
	require.NoError(t, err)
	_, err = store.Tasks().Create(ctx, &domain.Task{UserID: "u1", GoalID: &g.ID, Status: domain.TaskStatusCompleted})
	require.NoError(t, err)

	store.InjectFault("goals.update_progress", errors.New("connection reset"))
	goals.Refresh(ctx, "u1", &g.ID)
	assert.Equal(t, 1, bp.Size())

	require.NoError(t, bp.Drain(ctx))
	assert.Zero(t, bp.Size())
	stored, err := store.Goals().GetByID(ctx, g.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stored.ProgressPercentage, 1e-9)
}
