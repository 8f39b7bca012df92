package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/pointme/resilience/internal/core/domain"
)

// QueueRepo implements storage.QueueRepository on Redis. The whole queue is
// one JSON list under a single key, so a Save is atomic against readers.
type QueueRepo struct {
	client *Client
}

// NewQueueRepo creates a new Redis-backed queue repository.
func NewQueueRepo(client *Client) *QueueRepo {
	return &QueueRepo{client: client}
}

func (r *QueueRepo) Load(ctx context.Context) ([]*domain.QueuedAction, error) {
	data, err := r.client.rdb.Get(ctx, r.client.queueKey()).Bytes()
	if err == redis.Nil {
		return []*domain.QueuedAction{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get action queue: %w", err)
	}

	var actions []*domain.QueuedAction
	if err := json.Unmarshal(data, &actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal action queue: %w", err)
	}
	return actions, nil
}

func (r *QueueRepo) Save(ctx context.Context, actions []*domain.QueuedAction) error {
	data, err := json.Marshal(actions)
	if err != nil {
		return fmt.Errorf("failed to marshal action queue: %w", err)
	}
	if err := r.client.rdb.Set(ctx, r.client.queueKey(), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set action queue: %w", err)
	}
	return nil
}

func (r *QueueRepo) Clear(ctx context.Context) error {
	if err := r.client.rdb.Del(ctx, r.client.queueKey()).Err(); err != nil {
		return fmt.Errorf("failed to clear action queue: %w", err)
	}
	return nil
}
