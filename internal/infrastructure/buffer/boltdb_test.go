package buffer

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, maxSize int) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "test", maxSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func recompute(id string, priority int, at time.Time) Item {
	return Item{
		ID:        id,
		UserID:    "u1",
		Entity:    EntityGoal,
		Operation: OperationRecompute,
		Command:   "goal.recompute",
		Data:      json.RawMessage(`{"goal_id":"` + id + `"}`),
		Priority:  priority,
		Timestamp: at,
	}
}

func TestBatchFollowsPriorityThenAge(t *testing.T) {
	store := openTemp(t, 0)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Enqueue(recompute("late", 2, base.Add(time.Minute))))
	require.NoError(t, store.Enqueue(recompute("early", 2, base)))
	require.NoError(t, store.Enqueue(recompute("urgent", 1, base.Add(time.Hour))))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"urgent", "early", "late"}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.JSONEq(t, `{"goal_id":"urgent"}`, string(items[0].Data))

	batch, err := store.GetBatch(2)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestEnqueueReplacesSameID(t *testing.T) {
	store := openTemp(t, 0)
	first := recompute("goal-1", 3, time.Now())
	first.Retries = 2
	require.NoError(t, store.Enqueue(first))
	require.NoError(t, store.Enqueue(recompute("goal-1", 3, time.Now().Add(time.Second))))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Retries)
}

func TestEnqueueRespectsMaxSize(t *testing.T) {
	store := openTemp(t, 2)
	require.NoError(t, store.Enqueue(recompute("a", 3, time.Now())))
	require.NoError(t, store.Enqueue(recompute("b", 3, time.Now())))
	assert.ErrorIs(t, store.Enqueue(recompute("c", 3, time.Now())), ErrFull)
	assert.NoError(t, store.Enqueue(recompute("a", 3, time.Now())))
}

func TestRemoveRequeueAndCleanup(t *testing.T) {
	store := openTemp(t, 0)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Enqueue(recompute("stale", 3, old)))
	require.NoError(t, store.Enqueue(recompute("fresh", 3, time.Now())))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "stale", items[0].ID)

	items[0].Retries++
	require.NoError(t, store.Requeue(items[0]))
	items, err = store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "fresh", items[0].ID)
	assert.Equal(t, 1, items[1].Retries)

	removed, err := store.Cleanup(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	require.NoError(t, store.Enqueue(recompute("x", 3, time.Now())))
	require.NoError(t, store.Remove(Item{ID: "x"}))
	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestNilStore(t *testing.T) {
	var store *Store
	assert.Error(t, store.Enqueue(Item{}))
	_, err := store.Size()
	assert.Error(t, err)
	assert.NoError(t, store.Close())
}
