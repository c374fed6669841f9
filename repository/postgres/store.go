package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/focus/repository"
)

// Store implements repository.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	repos
}

// NewStore returns a Postgres-backed Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, repos: repos{db: pool}}
}

func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(ctx, repos{db: tx})
	})
}

// WithinSnapshot runs fn in a read-only repeatable read transaction, so every query sees
// the same committed state.
func (s *Store) WithinSnapshot(ctx context.Context, fn repository.TxFunc) error {
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		return fn(ctx, repos{db: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

type repos struct {
	db querier
}

func (r repos) Tasks() repository.TaskRepository           { return &taskRepository{db: r.db} }
func (r repos) TimeEntries() repository.TimeEntryRepository { return &timeEntryRepository{db: r.db} }
func (r repos) Goals() repository.GoalRepository           { return &goalRepository{db: r.db} }
func (r repos) Categories() repository.CategoryRepository  { return &categoryRepository{db: r.db} }
func (r repos) Events() repository.EventRepository         { return &eventRepository{db: r.db} }
