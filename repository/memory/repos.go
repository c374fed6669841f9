package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

type taskRepo struct{ *repos }

func (r *taskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	unlock, err := r.enter("tasks.get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	task, ok := r.st.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &task, nil
}

// GetForUpdate relies on the store mutex held by the surrounding transaction.
func (r *taskRepo) GetForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	return r.GetByID(ctx, id)
}

func (r *taskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	unlock, err := r.enter("tasks.list")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var out []domain.Task
	for _, t := range r.st.tasks {
		if filter.UserID != "" && t.UserID != filter.UserID {
			continue
		}
		if filter.GoalID != "" && !t.BelongsToGoal(filter.GoalID) {
			continue
		}
		if filter.CategoryID != "" && (t.CategoryID == nil || *t.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		out = append(out, t)
	}
	r.sortTasks(out)

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	if filter.Offset > 0 {
		out = out[filter.Offset:]
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *taskRepo) ListByGoal(ctx context.Context, goalID string) ([]domain.Task, error) {
	return r.collect("tasks.list_by_goal", func(t domain.Task) bool { return t.BelongsToGoal(goalID) })
}

func (r *taskRepo) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	return r.collect("tasks.list_by_user", func(t domain.Task) bool { return t.UserID == userID })
}

func (r *taskRepo) collect(op string, keep func(domain.Task) bool) ([]domain.Task, error) {
	unlock, err := r.enter(op)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []domain.Task
	for _, t := range r.st.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	r.sortTasks(out)
	return out, nil
}

func (r *taskRepo) sortTasks(tasks []domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return r.st.order[tasks[i].ID] > r.st.order[tasks[j].ID]
	})
}

func (r *taskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	unlock, err := r.enter("tasks.create")
	if err != nil {
		return nil, err
	}
	defer unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = task.CreatedAt
	r.st.tasks[task.ID] = *task
	r.st.next(task.ID)
	return task, nil
}

func (r *taskRepo) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	unlock, err := r.enter("tasks.update")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.st.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = time.Now().UTC()
	}
	r.st.tasks[task.ID] = *task
	return nil
}

// Delete removes the task and, like the foreign key cascade in Postgres, its entries.
func (r *taskRepo) Delete(ctx context.Context, id string) error {
	unlock, err := r.enter("tasks.delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.st.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.st.tasks, id)
	for entryID, e := range r.st.entries {
		if e.TaskID == id {
			delete(r.st.entries, entryID)
		}
	}
	return nil
}

type entryRepo struct{ *repos }

func (r *entryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	if entry == nil || entry.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	unlock, err := r.enter("entries.create")
	if err != nil {
		return err
	}
	defer unlock()

	if _, ok := r.st.tasks[entry.TaskID]; !ok {
		return domain.ErrTaskNotFound
	}
	if entry.IsOpen() {
		for _, e := range r.st.entries {
			if e.TaskID == entry.TaskID && e.IsOpen() {
				return domain.ErrIntervalAlreadyOpen
			}
		}
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	r.st.entries[entry.ID] = *entry
	r.st.next(entry.ID)
	return nil
}

func (r *entryRepo) GetOpen(ctx context.Context, taskID string) (*domain.TimeEntry, error) {
	unlock, err := r.enter("entries.get_open")
	if err != nil {
		return nil, err
	}
	defer unlock()

	var latest *domain.TimeEntry
	for _, e := range r.st.entries {
		if e.TaskID != taskID || !e.IsOpen() {
			continue
		}
		if latest == nil || e.StartTime.After(latest.StartTime) {
			entry := e
			latest = &entry
		}
	}
	return latest, nil
}

func (r *entryRepo) Close(ctx context.Context, entry *domain.TimeEntry) error {
	if entry == nil || entry.EndTime == nil {
		return domain.ErrInvalidPayload
	}
	unlock, err := r.enter("entries.close")
	if err != nil {
		return err
	}
	defer unlock()

	stored, ok := r.st.entries[entry.ID]
	if !ok || !stored.IsOpen() {
		return domain.ErrIntervalClosed
	}
	stored.EndTime = entry.EndTime
	stored.Duration = entry.Duration
	stored.Anomalous = entry.Anomalous
	r.st.entries[entry.ID] = stored
	return nil
}

func (r *entryRepo) ListOpenByUser(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	return r.collect("entries.list_open", func(e domain.TimeEntry) bool { return e.UserID == userID && e.IsOpen() })
}

func (r *entryRepo) ListByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	return r.collect("entries.list_by_task", func(e domain.TimeEntry) bool { return e.TaskID == taskID })
}

func (r *entryRepo) collect(op string, keep func(domain.TimeEntry) bool) ([]domain.TimeEntry, error) {
	unlock, err := r.enter(op)
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []domain.TimeEntry
	for _, e := range r.st.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return r.st.order[out[i].ID] < r.st.order[out[j].ID]
	})
	return out, nil
}

func (r *entryRepo) DeleteByTask(ctx context.Context, taskID string) (int, error) {
	unlock, err := r.enter("entries.delete_by_task")
	if err != nil {
		return 0, err
	}
	defer unlock()
	removed := 0
	for id, e := range r.st.entries {
		if e.TaskID == taskID {
			delete(r.st.entries, id)
			removed++
		}
	}
	return removed, nil
}

type goalRepo struct{ *repos }

func (r *goalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	unlock, err := r.enter("goals.get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	goal, ok := r.st.goals[id]
	if !ok {
		return nil, domain.ErrGoalNotFound
	}
	return &goal, nil
}

func (r *goalRepo) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	unlock, err := r.enter("goals.list")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []domain.Goal
	for _, g := range r.st.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.st.order[out[i].ID] < r.st.order[out[j].ID] })
	return out, nil
}

func (r *goalRepo) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal == nil {
		return nil, domain.ErrInvalidPayload
	}
	unlock, err := r.enter("goals.create")
	if err != nil {
		return nil, err
	}
	defer unlock()
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = goal.CreatedAt
	r.st.goals[goal.ID] = *goal
	r.st.next(goal.ID)
	return goal, nil
}

func (r *goalRepo) UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error {
	return r.mutate("goals.update_status", id, func(g *domain.Goal) { g.Status = status })
}

func (r *goalRepo) UpdateProgress(ctx context.Context, id string, percentage float64) error {
	return r.mutate("goals.update_progress", id, func(g *domain.Goal) { g.ProgressPercentage = percentage })
}

func (r *goalRepo) mutate(op, id string, apply func(*domain.Goal)) error {
	unlock, err := r.enter(op)
	if err != nil {
		return err
	}
	defer unlock()
	goal, ok := r.st.goals[id]
	if !ok {
		return domain.ErrGoalNotFound
	}
	apply(&goal)
	goal.UpdatedAt = time.Now().UTC()
	r.st.goals[id] = goal
	return nil
}

type categoryRepo struct{ *repos }

func (r *categoryRepo) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	unlock, err := r.enter("categories.get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	category, ok := r.st.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return &category, nil
}

func (r *categoryRepo) ListByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	unlock, err := r.enter("categories.list")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []domain.Category
	for _, c := range r.st.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	unlock, err := r.enter("categories.create")
	if err != nil {
		return nil, err
	}
	defer unlock()
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}
	r.st.categories[category.ID] = *category
	r.st.next(category.ID)
	return category, nil
}

type eventRepo struct{ *repos }

func (r *eventRepo) Append(ctx context.Context, event domain.Event) error {
	unlock, err := r.enter("events.append")
	if err != nil {
		return err
	}
	defer unlock()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	r.st.events = append(r.st.events, event)
	return nil
}

func (r *eventRepo) ListByTask(ctx context.Context, taskID string) ([]domain.Event, error) {
	unlock, err := r.enter("events.list")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []domain.Event
	for _, e := range r.st.events {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}
