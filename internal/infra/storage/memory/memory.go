package memory

import (
	"context"
	"sync"

	"github.com/pointme/resilience/internal/core/domain"
)

// MemoryStorage is the in-process substrate used when neither redis nor
// postgres is configured, and by tests.
type MemoryStorage struct {
	entries map[string]*domain.CacheEntry
	queue   []*domain.QueuedAction
	mu      sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		entries: make(map[string]*domain.CacheEntry),
	}
}

// -----------------------------------------------------------------------------
// Cache Repository
// -----------------------------------------------------------------------------

type CacheRepo struct {
	store *MemoryStorage
}

func NewCacheRepo(store *MemoryStorage) *CacheRepo {
	return &CacheRepo{store: store}
}

func (r *CacheRepo) Put(ctx context.Context, key string, entry *domain.CacheEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *entry
	r.store.entries[key] = &clone
	return nil
}

func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	entry, ok := r.store.entries[key]
	if !ok {
		return nil, nil
	}
	clone := *entry
	return &clone, nil
}

func (r *CacheRepo) Delete(ctx context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.entries, key)
	return nil
}

func (r *CacheRepo) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.entries = make(map[string]*domain.CacheEntry)
	return nil
}

// -----------------------------------------------------------------------------
// Queue Repository
// -----------------------------------------------------------------------------

type QueueRepo struct {
	store *MemoryStorage
}

func NewQueueRepo(store *MemoryStorage) *QueueRepo {
	return &QueueRepo{store: store}
}

func (r *QueueRepo) Load(ctx context.Context) ([]*domain.QueuedAction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*domain.QueuedAction, len(r.store.queue))
	for i, a := range r.store.queue {
		clone := *a
		out[i] = &clone
	}
	return out, nil
}

func (r *QueueRepo) Save(ctx context.Context, actions []*domain.QueuedAction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	queue := make([]*domain.QueuedAction, len(actions))
	for i, a := range actions {
		clone := *a
		queue[i] = &clone
	}
	r.store.queue = queue
	return nil
}

func (r *QueueRepo) Clear(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.queue = nil
	return nil
}
