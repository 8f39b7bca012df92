package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointme/resilience/internal/core/domain"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewClient(Config{URL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCacheRepo_RoundTrip(t *testing.T) {
	client := testClient(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	entry := &domain.CacheEntry{
		Data:     json.RawMessage(`{"name":"haircut"}`),
		StoredAt: time.Now().UnixNano(),
		Version:  "1.0.0",
	}
	require.NoError(t, repo.Put(ctx, "services", entry))

	got, err := repo.Get(ctx, "services")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"name":"haircut"}`, string(got.Data))
	assert.Equal(t, "1.0.0", got.Version)
}

func TestCacheRepo_AbsentAndDelete(t *testing.T) {
	client := testClient(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	got, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	entry := &domain.CacheEntry{Data: json.RawMessage(`1`), StoredAt: time.Now().UnixNano()}
	require.NoError(t, repo.Put(ctx, "profile", entry))
	require.NoError(t, repo.Delete(ctx, "profile"))

	got, err = repo.Get(ctx, "profile")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error
	require.NoError(t, repo.Delete(ctx, "profile"))
}

func TestCacheRepo_Clear(t *testing.T) {
	client := testClient(t)
	repo := NewCacheRepo(client)
	ctx := context.Background()

	for _, key := range []string{"services", "profile", "bookings"} {
		entry := &domain.CacheEntry{Data: json.RawMessage(`{}`), StoredAt: time.Now().UnixNano()}
		require.NoError(t, repo.Put(ctx, key, entry))
	}
	require.NoError(t, repo.Clear(ctx))

	for _, key := range []string{"services", "profile", "bookings"} {
		got, err := repo.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got, "key %s should be gone", key)
	}
}

func TestQueueRepo_SaveLoadOrder(t *testing.T) {
	client := testClient(t)
	repo := NewQueueRepo(client)
	ctx := context.Background()

	actions, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)

	saved := []*domain.QueuedAction{
		{ID: "a", Kind: "booking.create", Payload: json.RawMessage(`{"x":1}`), EnqueuedAt: 1},
		{ID: "b", Kind: "booking.cancel", Payload: json.RawMessage(`{"x":2}`), EnqueuedAt: 2},
	}
	require.NoError(t, repo.Save(ctx, saved))

	actions, err = repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "a", actions[0].ID)
	assert.Equal(t, "b", actions[1].ID)
}

func TestQueueRepo_Clear(t *testing.T) {
	client := testClient(t)
	repo := NewQueueRepo(client)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, []*domain.QueuedAction{{ID: "a", Kind: "noop"}}))
	require.NoError(t, repo.Clear(ctx))

	actions, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
