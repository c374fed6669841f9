package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fastygo/focus/domain"
)

// openEntryIndex is the partial unique index allowing one open entry per task.
const openEntryIndex = "time_entries_one_open_per_task"

const entryColumns = `id, task_id, user_id, goal_id, start_time, end_time, duration, anomalous, created_at`

type timeEntryRepository struct {
	db querier
}

func (r *timeEntryRepository) Create(ctx context.Context, entry *domain.TimeEntry) error {
	if entry == nil || entry.TaskID == "" {
		return domain.ErrInvalidPayload
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO time_entries (id, task_id, user_id, goal_id, start_time, end_time, duration, anomalous, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, NOW()))
	RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		entry.ID,
		entry.TaskID,
		entry.UserID,
		entry.GoalID,
		entry.StartTime,
		entry.EndTime,
		entry.Duration,
		entry.Anomalous,
		nullTime(entry.CreatedAt),
	).Scan(&entry.CreatedAt)
	if isUniqueViolation(err, openEntryIndex) {
		return domain.ErrIntervalAlreadyOpen
	}
	return err
}

func (r *timeEntryRepository) GetOpen(ctx context.Context, taskID string) (*domain.TimeEntry, error) {
	query := `
	SELECT ` + entryColumns + `
	FROM time_entries
	WHERE task_id = $1 AND end_time IS NULL
	ORDER BY start_time DESC
	LIMIT 1
	`
	entry, err := scanEntry(r.db.QueryRow(ctx, query, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return entry, err
}

func (r *timeEntryRepository) Close(ctx context.Context, entry *domain.TimeEntry) error {
	if entry == nil || entry.EndTime == nil {
		return domain.ErrInvalidPayload
	}
	const query = `
	UPDATE time_entries
	SET end_time = $2, duration = $3, anomalous = $4
	WHERE id = $1 AND end_time IS NULL
	`
	tag, err := r.db.Exec(ctx, query, entry.ID, entry.EndTime, entry.Duration, entry.Anomalous)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIntervalClosed
	}
	return nil
}

func (r *timeEntryRepository) ListOpenByUser(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	query := `
	SELECT ` + entryColumns + `
	FROM time_entries
	WHERE user_id = $1 AND end_time IS NULL
	ORDER BY start_time ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEntry)
}

func (r *timeEntryRepository) ListByTask(ctx context.Context, taskID string) ([]domain.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE task_id = $1 ORDER BY start_time ASC, created_at ASC`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEntry)
}

func (r *timeEntryRepository) DeleteByTask(ctx context.Context, taskID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM time_entries WHERE task_id = $1`, taskID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// scanEntry returns pgx.ErrNoRows untranslated; a missing open entry is not an error.
func scanEntry(row scanner) (*domain.TimeEntry, error) {
	var entry domain.TimeEntry
	if err := row.Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.UserID,
		&entry.GoalID,
		&entry.StartTime,
		&entry.EndTime,
		&entry.Duration,
		&entry.Anomalous,
		&entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}
