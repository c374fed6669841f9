package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

// reportCache namespaces entries by a per-user generation counter. Invalidate bumps the
// counter, which orphans every cached report of the user at once; orphans expire by TTL.
type reportCache struct {
	client *redislib.Client
	prefix string
}

func NewReportCache(client *redislib.Client) repository.ReportCache {
	return &reportCache{client: client, prefix: "focus:report:"}
}

func (c *reportCache) Get(ctx context.Context, key repository.ReportKey) (*domain.Report, bool, error) {
	raw, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redislib.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var report domain.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, false, err
	}
	return &report, true, nil
}

// Set writes under key.Generation. It never rereads the counter, so a report built before
// an Invalidate stays unreachable.
func (c *reportCache) Set(ctx context.Context, key repository.ReportKey, report *domain.Report, ttl time.Duration) error {
	if report == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.entryKey(key), payload, ttl).Err()
}

func (c *reportCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Incr(ctx, c.genKey(userID)).Err()
}

func (c *reportCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(userID)).Int64()
	if errors.Is(err, redislib.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *reportCache) genKey(userID string) string {
	return fmt.Sprintf("%sgen:%s", c.prefix, userID)
}

func (c *reportCache) entryKey(key repository.ReportKey) string {
	return fmt.Sprintf("%s%s:%d:%s:%d", c.prefix, key.UserID, key.Generation, key.GoalID, key.Days)
}
