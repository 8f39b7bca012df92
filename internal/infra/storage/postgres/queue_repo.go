package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pointme/resilience/internal/core/domain"
)

// QueueRepo implements storage.QueueRepository on PostgreSQL. The queue is
// replaced wholesale inside one transaction so readers never observe a
// partially written list.
type QueueRepo struct {
	db *DB
}

func NewQueueRepo(db *DB) *QueueRepo {
	return &QueueRepo{db: db}
}

type actionRow struct {
	ID         string `db:"id"`
	Kind       string `db:"kind"`
	Payload    []byte `db:"payload"`
	EnqueuedAt int64  `db:"enqueued_at"`
	Attempts   int    `db:"attempts"`
	Position   int    `db:"position"`
}

func (r *QueueRepo) Load(ctx context.Context) ([]*domain.QueuedAction, error) {
	var rows []actionRow
	query := `
		SELECT id, kind, payload, enqueued_at, attempts, position
		FROM action_queue
		ORDER BY position ASC
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to load action queue: %w", err)
	}

	actions := make([]*domain.QueuedAction, len(rows))
	for i, row := range rows {
		actions[i] = &domain.QueuedAction{
			ID:         row.ID,
			Kind:       row.Kind,
			Payload:    json.RawMessage(row.Payload),
			EnqueuedAt: row.EnqueuedAt,
			Attempts:   row.Attempts,
		}
	}
	return actions, nil
}

func (r *QueueRepo) Save(ctx context.Context, actions []*domain.QueuedAction) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM action_queue`); err != nil {
		return fmt.Errorf("failed to clear action queue: %w", err)
	}

	insert := `
		INSERT INTO action_queue (id, kind, payload, enqueued_at, attempts, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, a := range actions {
		if _, err := tx.ExecContext(ctx, insert,
			a.ID, a.Kind, []byte(a.Payload), a.EnqueuedAt, a.Attempts, i); err != nil {
			return fmt.Errorf("failed to insert action %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit action queue: %w", err)
	}
	return nil
}

func (r *QueueRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM action_queue`); err != nil {
		return fmt.Errorf("failed to clear action queue: %w", err)
	}
	return nil
}
