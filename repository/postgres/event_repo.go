package postgres

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/fastygo/focus/domain"
)

type eventRepository struct {
	db querier
}

func (r *eventRepository) Append(ctx context.Context, event domain.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	const query = `
	INSERT INTO task_events (id, task_id, user_id, name, payload, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
	`
	var payload []byte
	if len(event.Payload) > 0 {
		payload = []byte(event.Payload)
	}
	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.TaskID,
		event.UserID,
		event.Name,
		payload,
		marshalMap(event.Metadata),
		nullTime(event.CreatedAt),
	)
	return err
}

func (r *eventRepository) ListByTask(ctx context.Context, taskID string) ([]domain.Event, error) {
	const query = `
	SELECT id, task_id, user_id, name, payload, metadata, created_at
	FROM task_events
	WHERE task_id = $1
	ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanEvent)
}

func scanEvent(row scanner) (*domain.Event, error) {
	var (
		event    domain.Event
		payload  []byte
		metadata []byte
	)
	if err := row.Scan(
		&event.ID,
		&event.TaskID,
		&event.UserID,
		&event.Name,
		&payload,
		&metadata,
		&event.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		event.Payload = make(json.RawMessage, len(payload))
		copy(event.Payload, payload)
	}
	if len(metadata) > 0 {
		_ = json.Unmarshal(metadata, &event.Metadata)
	}
	return &event, nil
}
