package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

// testStore migrates the database at TEST_DATABASE_URL and skips when it is not set.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	m, err := migrate.New("file://../../assets/migrations", url)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		require.NoError(t, err)
	}
	_, _ = m.Close()

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewStore(pool)
}

func seedTask(t *testing.T, s *Store, userID string) *domain.Task {
	t.Helper()
	task, err := s.Tasks().Create(context.Background(), &domain.Task{
		UserID: userID,
		Title:  "integration",
		Status: domain.TaskStatusTodo,
	})
	require.NoError(t, err)
	return task
}

func TestOneOpenEntryPerTask(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	user := uuid.NewString()
	task := seedTask(t, s, user)
	start := time.Now().UTC().Truncate(time.Second)

	first := &domain.TimeEntry{TaskID: task.ID, UserID: user, StartTime: start}
	require.NoError(t, s.TimeEntries().Create(ctx, first))

	err := s.TimeEntries().Create(ctx, &domain.TimeEntry{TaskID: task.ID, UserID: user, StartTime: start})
	assert.ErrorIs(t, err, domain.ErrIntervalAlreadyOpen)

	open, err := s.TimeEntries().GetOpen(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, first.ID, open.ID)

	require.NoError(t, open.Close(start.Add(42*time.Second), 42, false))
	require.NoError(t, s.TimeEntries().Close(ctx, open))
	assert.ErrorIs(t, s.TimeEntries().Close(ctx, open), domain.ErrIntervalClosed)

	open, err = s.TimeEntries().GetOpen(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, open)
}

func TestWithinTxRollsBack(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	task := seedTask(t, s, uuid.NewString())
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		locked, err := repos.Tasks().GetForUpdate(ctx, task.ID)
		if err != nil {
			return err
		}
		locked.Status = domain.TaskStatusInProgress
		if err := repos.Tasks().Update(ctx, locked); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusTodo, got.Status)
}

func TestDeleteByTaskAndLookups(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	user := uuid.NewString()
	task := seedTask(t, s, user)
	start := time.Now().UTC()
	require.NoError(t, s.TimeEntries().Create(ctx, &domain.TimeEntry{TaskID: task.ID, UserID: user, StartTime: start}))

	open, err := s.TimeEntries().ListOpenByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, open, 1)

	removed, err := s.TimeEntries().DeleteByTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	require.NoError(t, s.Tasks().Delete(ctx, task.ID))

	_, err = s.Tasks().GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = s.Tasks().GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = s.Goals().GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrGoalNotFound)
	require.NoError(t, s.Ping(ctx))
}
