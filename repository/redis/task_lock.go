package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

// unlockScript deletes the lock only while it still holds our token.
var unlockScript = redislib.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type taskLocker struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	logger *zap.Logger
}

// NewTaskLocker returns a lock keyed per task. Lock retries until wait elapses and then
// fails with domain.ErrTaskBusy.
func NewTaskLocker(client *redislib.Client, ttl, wait time.Duration, logger *zap.Logger) repository.TaskLocker {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if wait < 0 {
		wait = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &taskLocker{
		client: client,
		prefix: "focus:lock:task:",
		ttl:    ttl,
		wait:   wait,
		logger: logger,
	}
}

func (l *taskLocker) Lock(ctx context.Context, taskID string) (func(), error) {
	key := l.key(taskID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)
	backoff := 10 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, domain.WrapError(domain.ErrCodeUnavailable, "acquire task lock", err)
		}
		if ok {
			return func() { l.release(key, token) }, nil
		}
		if !time.Now().Before(deadline) {
			return nil, domain.ErrTaskBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 200*time.Millisecond {
			backoff *= 2
		}
	}
}

func (l *taskLocker) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.logger.Warn("task lock release failed", zap.String("key", key), zap.Error(err))
	}
}

func (l *taskLocker) key(taskID string) string {
	return fmt.Sprintf("%s%s", l.prefix, taskID)
}
