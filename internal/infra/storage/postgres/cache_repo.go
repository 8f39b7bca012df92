package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pointme/resilience/internal/core/domain"
)

// CacheRepo implements storage.CacheRepository on PostgreSQL.
type CacheRepo struct {
	db *DB
}

func NewCacheRepo(db *DB) *CacheRepo {
	return &CacheRepo{db: db}
}

type cacheRow struct {
	Key       string `db:"key"`
	Data      []byte `db:"data"`
	StoredAt  int64  `db:"stored_at"`
	ExpiresAt int64  `db:"expires_at"`
	Version   string `db:"version"`
}

func (r *CacheRepo) Put(ctx context.Context, key string, entry *domain.CacheEntry) error {
	query := `
		INSERT INTO cache_entries (key, data, stored_at, expires_at, version)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data,
		    stored_at = EXCLUDED.stored_at,
		    expires_at = EXCLUDED.expires_at,
		    version = EXCLUDED.version
	`
	_, err := r.db.ExecContext(ctx, query,
		key, []byte(entry.Data), entry.StoredAt, entry.ExpiresAt, entry.Version)
	return err
}

func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	var row cacheRow
	query := `SELECT key, data, stored_at, expires_at, version FROM cache_entries WHERE key = $1`
	err := r.db.GetContext(ctx, &row, query, key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &domain.CacheEntry{
		Data:      json.RawMessage(row.Data),
		StoredAt:  row.StoredAt,
		ExpiresAt: row.ExpiresAt,
		Version:   row.Version,
	}, nil
}

func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = $1`, key)
	return err
}

func (r *CacheRepo) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	return err
}
