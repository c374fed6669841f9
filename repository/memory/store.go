// Package memory keeps all entities in process. Transactions work on a copy of the state
// that replaces the live state only on commit.
package memory

import (
	"context"
	"sync"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

type state struct {
	tasks      map[string]domain.Task
	entries    map[string]domain.TimeEntry
	goals      map[string]domain.Goal
	categories map[string]domain.Category
	events     []domain.Event
	seq        int64
	order      map[string]int64
}

func newState() *state {
	return &state{
		tasks:      make(map[string]domain.Task),
		entries:    make(map[string]domain.TimeEntry),
		goals:      make(map[string]domain.Goal),
		categories: make(map[string]domain.Category),
		order:      make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := &state{
		tasks:      make(map[string]domain.Task, len(s.tasks)),
		entries:    make(map[string]domain.TimeEntry, len(s.entries)),
		goals:      make(map[string]domain.Goal, len(s.goals)),
		categories: make(map[string]domain.Category, len(s.categories)),
		events:     append([]domain.Event(nil), s.events...),
		seq:        s.seq,
		order:      make(map[string]int64, len(s.order)),
	}
	for k, v := range s.tasks {
		c.tasks[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.goals {
		c.goals[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.order {
		c.order[k] = v
	}
	return c
}

func (s *state) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

// Store is a process-local implementation of repository.Store.
type Store struct {
	mu    sync.Mutex
	state *state
	root  *repos

	// faultMu guards faults on its own: snapshot reads run without mu.
	faultMu sync.Mutex
	faults  map[string]error
}

// NewStore returns an empty store.
func NewStore() *Store {
	s := &Store{
		state:  newState(),
		faults: make(map[string]error),
	}
	s.root = &repos{store: s, st: s.state, autoLock: true}
	return s
}

// InjectFault makes the next call of op fail with err. Ops are named "<repo>.<method>",
// for example "tasks.update" or "entries.close".
func (s *Store) InjectFault(op string, err error) {
	s.faultMu.Lock()
	s.faults[op] = err
	s.faultMu.Unlock()
}

func (s *Store) Tasks() repository.TaskRepository           { return &taskRepo{s.root} }
func (s *Store) TimeEntries() repository.TimeEntryRepository { return &entryRepo{s.root} }
func (s *Store) Goals() repository.GoalRepository           { return &goalRepo{s.root} }
func (s *Store) Categories() repository.CategoryRepository  { return &categoryRepo{s.root} }
func (s *Store) Events() repository.EventRepository         { return &eventRepo{s.root} }

func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	tx := &repos{store: s, st: working}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	*s.state = *working
	return nil
}

func (s *Store) WithinSnapshot(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()
	return fn(ctx, &repos{store: s, st: snapshot})
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// repos binds repositories to a state. autoLock is set for the live state outside of
// transactions, where every call takes the store mutex itself.
type repos struct {
	store    *Store
	st       *state
	autoLock bool
}

func (r *repos) Tasks() repository.TaskRepository           { return &taskRepo{r} }
func (r *repos) TimeEntries() repository.TimeEntryRepository { return &entryRepo{r} }
func (r *repos) Goals() repository.GoalRepository           { return &goalRepo{r} }
func (r *repos) Categories() repository.CategoryRepository  { return &categoryRepo{r} }
func (r *repos) Events() repository.EventRepository         { return &eventRepo{r} }

// enter locks when needed and consumes an injected fault for op.
func (r *repos) enter(op string) (func(), error) {
	unlock := func() {}
	if r.autoLock {
		r.store.mu.Lock()
		unlock = r.store.mu.Unlock
	}
	if err := r.store.takeFault(op); err != nil {
		unlock()
		return func() {}, err
	}
	return unlock, nil
}

func (s *Store) takeFault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	err, ok := s.faults[op]
	if !ok {
		return nil
	}
	delete(s.faults, op)
	return err
}
