package storage

import (
	"context"
	"errors"

	"github.com/pointme/resilience/internal/core/domain"
)

var (
	// ErrUnavailable is returned when the persistence substrate cannot be
	// reached (quota, connection loss). Callers re-raise it as a
	// STORAGE_ERROR structured error.
	ErrUnavailable = errors.New("storage unavailable")
)

// CacheRepository persists cache entries. Implementations store entries
// verbatim; expiry and version policy live in the cache store on top.
type CacheRepository interface {
	// Put writes an entry, overwriting any prior entry for the key.
	Put(ctx context.Context, key string, entry *domain.CacheEntry) error

	// Get retrieves an entry. Returns (nil, nil) when absent.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Delete removes an entry. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry in the cache namespace.
	Clear(ctx context.Context) error
}

// QueueRepository persists the offline action queue as one ordered list,
// replaced wholesale on every mutation. The persisted list is the single
// source of truth for pending work.
type QueueRepository interface {
	// Load returns the queued actions in FIFO order. Empty queue yields an
	// empty slice, not an error.
	Load(ctx context.Context) ([]*domain.QueuedAction, error)

	// Save replaces the persisted queue with the given list.
	Save(ctx context.Context, actions []*domain.QueuedAction) error

	// Clear discards the persisted queue.
	Clear(ctx context.Context) error
}
