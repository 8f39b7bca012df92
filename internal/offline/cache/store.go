// Package cache implements the local cache store: versioned, expiring
// key/value persistence used to serve stale-but-available data when the
// backend is unreachable.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/core/domain"
	"github.com/pointme/resilience/internal/infra/storage"
	"github.com/pointme/resilience/internal/metrics"
)

// NoExpiry marks an entry that never goes stale.
const NoExpiry time.Duration = -1

// Store layers expiry and version policy over a CacheRepository. It is
// constructed once by the composition root and injected where needed.
type Store struct {
	repo storage.CacheRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewStore(repo storage.CacheRepository, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		repo: repo,
		log:  log.With("component", "cache"),
		now:  time.Now,
	}
}

// Set writes an entry, replacing any prior entry for the key. A positive ttl
// sets the expiry deadline; ttl == 0 means the entry is already expired
// (useful for forced invalidation on the next read); NoExpiry disables the
// deadline. Persistence failures come back as retryable STORAGE_ERROR
// structured errors, never as raw substrate errors.
func (s *Store) Set(ctx context.Context, key string, data any, ttl time.Duration, version string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return apperr.Wrap(err, apperr.CodeValidation).WithAction("cache.set")
	}

	now := s.now()
	entry := &domain.CacheEntry{
		Data:     raw,
		StoredAt: now.UnixNano(),
		Version:  version,
	}
	if ttl >= 0 {
		entry.ExpiresAt = now.Add(ttl).UnixNano()
	}

	if err := s.repo.Put(ctx, key, entry); err != nil {
		s.log.Warn("cache write failed", "key", key, "error", err)
		return apperr.Wrap(err, apperr.CodeStorage).WithAction("cache.set")
	}
	return nil
}

// Get reads an entry into dest. The boolean reports whether usable data was
// found; version mismatch and expiry both evict the entry on the spot so the
// store never returns stale data even if cleanup has not run. An empty
// version skips the version check.
func (s *Store) Get(ctx context.Context, key string, version string, dest any) (bool, error) {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache read failed", "key", key, "error", err)
		return false, apperr.Wrap(err, apperr.CodeStorage).WithAction("cache.get")
	}
	if entry == nil {
		metrics.CacheMisses.WithLabelValues(key).Inc()
		return false, nil
	}

	if version != "" && entry.Version != version {
		s.evict(ctx, key, "version_mismatch")
		return false, nil
	}

	if entry.ExpiresAt != 0 && s.now().UnixNano() >= entry.ExpiresAt {
		s.evict(ctx, key, "expired")
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, dest); err != nil {
		s.evict(ctx, key, "corrupt")
		return false, nil
	}

	metrics.CacheHits.WithLabelValues(key).Inc()
	return true, nil
}

func (s *Store) evict(ctx context.Context, key, reason string) {
	metrics.CacheMisses.WithLabelValues(key).Inc()
	metrics.CacheEvictions.WithLabelValues(key, reason).Inc()
	if err := s.repo.Delete(ctx, key); err != nil {
		// The next read will retry the eviction; only log.
		s.log.Warn("failed to evict cache entry", "key", key, "reason", reason, "error", err)
	}
}

// Remove deletes an entry unconditionally.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, key); err != nil {
		return apperr.Wrap(err, apperr.CodeStorage).WithAction("cache.remove")
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return apperr.Wrap(err, apperr.CodeStorage).WithAction("cache.clear")
	}
	return nil
}
