package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

// testClient connects to TEST_REDIS_URL and skips when it is not set.
func testClient(t *testing.T) *redislib.Client {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redislib.ParseURL(url)
	require.NoError(t, err)
	client := redislib.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return client
}

func TestTaskLockerExcludes(t *testing.T) {
	ctx := context.Background()
	locker := NewTaskLocker(testClient(t), time.Second, 0, nil)
	taskID := uuid.NewString()

	unlock, err := locker.Lock(ctx, taskID)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, taskID)
	assert.ErrorIs(t, err, domain.ErrTaskBusy)

	other, err := locker.Lock(ctx, uuid.NewString())
	require.NoError(t, err)
	other()

	unlock()
	again, err := locker.Lock(ctx, taskID)
	require.NoError(t, err)
	again()
}

func TestTaskLockerWaitsForRelease(t *testing.T) {
	ctx := context.Background()
	locker := NewTaskLocker(testClient(t), time.Second, time.Second, nil)
	taskID := uuid.NewString()

	unlock, err := locker.Lock(ctx, taskID)
	require.NoError(t, err)
	time.AfterFunc(50*time.Millisecond, unlock)

	second, err := locker.Lock(ctx, taskID)
	require.NoError(t, err)
	second()
}

func TestReportCacheGenerations(t *testing.T) {
	ctx := context.Background()
	cache := NewReportCache(testClient(t))
	key := repository.ReportKey{UserID: uuid.NewString(), Days: 7}
	gen, err := cache.Generation(ctx, key.UserID)
	require.NoError(t, err)
	assert.Zero(t, gen)
	key.Generation = gen

	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	report := &domain.Report{UserID: key.UserID, Streak: 3, PeakHour: 9}
	require.NoError(t, cache.Set(ctx, key, report, time.Minute))

	got, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Streak)

	require.NoError(t, cache.Invalidate(ctx, key.UserID))
	fresh := key
	fresh.Generation, err = cache.Generation(ctx, key.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, fresh.Generation)
	_, ok, err = cache.Get(ctx, fresh)
	require.NoError(t, err)
	assert.False(t, ok)

	// A report built before the invalidate lands under the old generation.
	require.NoError(t, cache.Set(ctx, key, &domain.Report{UserID: key.UserID, Streak: 1}, time.Minute))
	_, ok, err = cache.Get(ctx, fresh)
	require.NoError(t, err)
	assert.False(t, ok)
}
