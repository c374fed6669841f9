package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/focus/domain"
)

const goalColumns = `id, user_id, title, description, icon, status, progress_percentage, target_date, created_at, updated_at`

type goalRepository struct {
	db querier
}

func (r *goalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	if !validID(id) {
		return nil, domain.ErrGoalNotFound
	}
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1`
	return scanGoal(r.db.QueryRow(ctx, query, id))
}

func (r *goalRepository) ListByUser(ctx context.Context, userID string) ([]domain.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE user_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanGoal)
}

func (r *goalRepository) Create(ctx context.Context, goal *domain.Goal) (*domain.Goal, error) {
	if goal == nil {
		return nil, domain.ErrInvalidPayload
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO goals (id, user_id, title, description, icon, status, progress_percentage, target_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`
	if err := r.db.QueryRow(ctx, query,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.Description,
		goal.Icon,
		goal.Status,
		goal.ProgressPercentage,
		goal.TargetDate,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt); err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *goalRepository) UpdateStatus(ctx context.Context, id string, status domain.GoalStatus) error {
	return r.exec(ctx, `UPDATE goals SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *goalRepository) UpdateProgress(ctx context.Context, id string, percentage float64) error {
	return r.exec(ctx, `UPDATE goals SET progress_percentage = $2, updated_at = NOW() WHERE id = $1`, id, percentage)
}

func (r *goalRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func scanGoal(row scanner) (*domain.Goal, error) {
	var goal domain.Goal
	if err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&goal.Icon,
		&goal.Status,
		&goal.ProgressPercentage,
		&goal.TargetDate,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, err
	}
	return &goal, nil
}

type categoryRepository struct {
	db querier
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	if !validID(id) {
		return nil, domain.ErrCategoryNotFound
	}
	const query = `SELECT id, user_id, name, color, icon, created_at FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRow(ctx, query, id))
}

func (r *categoryRepository) ListByUser(ctx context.Context, userID string) ([]domain.Category, error) {
	const query = `SELECT id, user_id, name, color, icon, created_at FROM categories WHERE user_id = $1 ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCategory)
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, domain.ErrInvalidPayload
	}
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO categories (id, user_id, name, color, icon)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		category.ID,
		category.UserID,
		category.Name,
		category.Color,
		category.Icon,
	).Scan(&category.CreatedAt); err != nil {
		return nil, err
	}
	return category, nil
}

func scanCategory(row scanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.Icon, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}
