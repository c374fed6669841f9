package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/focus/domain"
	"github.com/fastygo/focus/repository"
)

const taskColumns = `id, user_id, goal_id, category_id, title, description, status, priority, due_date,
	start_time, end_time, completed_at, duration, actual_duration, estimated_duration, metadata,
	created_at, updated_at`

type taskRepository struct {
	db querier
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *taskRepository) GetForUpdate(ctx context.Context, id string) (*domain.Task, error) {
	if !validID(id) {
		return nil, domain.ErrTaskNotFound
	}
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	return scanTask(r.db.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if (filter.GoalID != "" && !validID(filter.GoalID)) || (filter.CategoryID != "" && !validID(filter.CategoryID)) {
		return []domain.Task{}, nil
	}
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR goal_id::text = $2)
	  AND ($3 = '' OR category_id::text = $3)
	  AND ($4 = '' OR status = $4)
	ORDER BY created_at DESC
	LIMIT $5 OFFSET $6
	`
	rows, err := r.db.Query(ctx, query,
		filter.UserID,
		filter.GoalID,
		filter.CategoryID,
		filter.Status,
		clampLimit(filter.Limit),
		clampOffset(filter.Offset),
	)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

func (r *taskRepository) ListByGoal(ctx context.Context, goalID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE goal_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, goalID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string) ([]domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanTask)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO tasks (id, user_id, goal_id, category_id, title, description, status, priority,
		due_date, estimated_duration, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()), COALESCE($12, NOW()))
	RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.GoalID,
		task.CategoryID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.EstimatedDuration,
		marshalMap(task.Metadata),
		nullTime(task.CreatedAt),
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		priority = $5,
		due_date = $6,
		start_time = $7,
		end_time = $8,
		completed_at = $9,
		duration = $10,
		actual_duration = $11,
		estimated_duration = $12,
		metadata = $13,
		updated_at = COALESCE($14, NOW())
	WHERE id = $1
	RETURNING updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.StartTime,
		task.EndTime,
		task.CompletedAt,
		task.Duration,
		task.ActualDuration,
		task.EstimatedDuration,
		marshalMap(task.Metadata),
		nullTime(task.UpdatedAt),
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task     domain.Task
		metadata []byte
	)
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.GoalID,
		&task.CategoryID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.StartTime,
		&task.EndTime,
		&task.CompletedAt,
		&task.Duration,
		&task.ActualDuration,
		&task.EstimatedDuration,
		&metadata,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &task.Metadata)
	}
	return &task, nil
}
