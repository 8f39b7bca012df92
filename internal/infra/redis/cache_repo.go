package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/pointme/resilience/internal/core/domain"
)

// CacheRepo implements storage.CacheRepository on Redis. Entries are stored
// as JSON values under prefixed keys; the entry deadline, when set, is also
// applied as a physical key TTL so abandoned entries get reclaimed even if
// nothing reads them again.
type CacheRepo struct {
	client *Client
}

// NewCacheRepo creates a new Redis-backed cache repository.
func NewCacheRepo(client *Client) *CacheRepo {
	return &CacheRepo{client: client}
}

func (r *CacheRepo) Put(ctx context.Context, key string, entry *domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	var ttl time.Duration
	if entry.ExpiresAt > 0 {
		ttl = time.Until(time.Unix(0, entry.ExpiresAt))
		if ttl <= 0 {
			// Already expired. Keep the entry around for one second so the
			// evict-on-read path observes and reports it consistently.
			ttl = time.Second
		}
	}

	if err := r.client.rdb.Set(ctx, r.client.cacheKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	data, err := r.client.rdb.Get(ctx, r.client.cacheKey(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	return &entry, nil
}

func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	if err := r.client.rdb.Del(ctx, r.client.cacheKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

func (r *CacheRepo) Clear(ctx context.Context) error {
	pattern := r.client.cacheKey("*")
	iter := r.client.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}
