package repository

import (
	"context"
	"time"

	"github.com/fastygo/focus/domain"
)

// Repositories groups the entity repositories bound to one connection or transaction.
type Repositories interface {
	Tasks() TaskRepository
	TimeEntries() TimeEntryRepository
	Goals() GoalRepository
	Categories() CategoryRepository
	Events() EventRepository
}

// TxFunc runs against repositories scoped to a single transaction.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store is the persistence boundary used by the use cases.
type Store interface {
	Repositories
	// WithinTx commits when fn returns nil and rolls everything back otherwise.
	WithinTx(ctx context.Context, fn TxFunc) error
	// WithinSnapshot runs fn against a read-only consistent snapshot.
	WithinSnapshot(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
}

// TaskLocker serializes state transitions per task across processes.
type TaskLocker interface {
	Lock(ctx context.Context, taskID string) (unlock func(), err error)
}

// ReportCache stores rendered reports; entries are an optimization only.
//
// Entries live under the user's generation. Callers read the generation before loading
// the data a report is built from and pass it in the key, so a report computed from data
// older than the latest Invalidate is written where no reader will look.
type ReportCache interface {
	Generation(ctx context.Context, userID string) (int64, error)
	Get(ctx context.Context, key ReportKey) (*domain.Report, bool, error)
	Set(ctx context.Context, key ReportKey, report *domain.Report, ttl time.Duration) error
	Invalidate(ctx context.Context, userID string) error
}

type ReportKey struct {
	UserID     string
	GoalID     string
	Days       int
	Generation int64
}
