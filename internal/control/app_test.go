package control

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/core/domain"
	"github.com/pointme/resilience/internal/infra/backend"
	"github.com/pointme/resilience/internal/offline/netmon"
)

func newTestApp(t *testing.T, b backend.Backend) *App {
	t.Helper()
	app, err := NewApp(Config{MaxAttempts: 5, Topics: []string{"bookings"}}, b, nil)
	require.NoError(t, err)
	return app
}

// TestEndToEnd_OfflineWriteReplaysOnReconnect walks the whole loop: a write
// fails with NETWORK_ERROR, gets classified retryable, lands in the queue,
// the monitor observes reconnection, the drain replays it, and the queue
// ends up empty with the record on the backend.
func TestEndToEnd_OfflineWriteReplaysOnReconnect(t *testing.T) {
	b := backend.NewMemoryBackend()
	offline := true
	b.WriteHook = func(m backend.Mutation) error {
		if offline {
			return apperr.New("network unreachable", apperr.CodeNetwork)
		}
		return nil
	}

	app := newTestApp(t, b)
	ctx := context.Background()

	payload := map[string]any{
		"topic":  "bookings",
		"id":     "bk-1",
		"record": domain.Record{"id": "bk-1", "status": "pending"},
	}
	result, err := app.Do(ctx, "booking.create", payload)
	require.NoError(t, err)
	assert.True(t, result.Queued, "network failure must queue the action")
	assert.Equal(t, netmon.StatusOffline, app.Monitor().Status())

	depth, err := app.Queue().Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)

	// Connectivity returns; the reconnect edge drains the queue once.
	offline = false
	app.Monitor().SetStatus(ctx, netmon.StatusOnline)

	depth, err = app.Queue().Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, depth, "queue must be empty after replay")

	rec, err := b.ReadRecord(ctx, "bookings", "bk-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", rec["status"])
}

func TestDo_RedirectWorthyFailure(t *testing.T) {
	b := backend.NewMemoryBackend()
	b.WriteHook = func(m backend.Mutation) error {
		return apperr.New("session expired", apperr.CodeAuthRequired)
	}
	app := newTestApp(t, b)

	result, err := app.Do(context.Background(), "booking.create", map[string]any{
		"topic": "bookings", "id": "bk-2", "record": domain.Record{"id": "bk-2"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Redirect)
	assert.Equal(t, "/sign-in", result.Redirect.Path)
	assert.False(t, result.Queued)

	// Redirect-worthy failures are not queued
	depth, _ := app.Queue().Len(context.Background())
	assert.Equal(t, 0, depth)
}

func TestDo_NonNetworkFailureSurfacesResponse(t *testing.T) {
	b := backend.NewMemoryBackend()
	b.WriteHook = func(m backend.Mutation) error {
		return apperr.New("slot already taken", apperr.CodeBookingConflict)
	}
	app := newTestApp(t, b)

	result, err := app.Do(context.Background(), "booking.create", map[string]any{
		"topic": "bookings", "id": "bk-3", "record": domain.Record{"id": "bk-3"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Response)
	assert.Equal(t, apperr.CodeBookingConflict, result.Response.Code)
	assert.True(t, result.Response.Retry)
	assert.False(t, result.Queued, "booking conflicts are not network failures; not queued")
}

func TestDo_SuccessfulWrite(t *testing.T) {
	b := backend.NewMemoryBackend()
	app := newTestApp(t, b)

	result, err := app.Do(context.Background(), "booking.create", map[string]any{
		"topic": "bookings", "id": "bk-4", "record": domain.Record{"id": "bk-4"},
	})
	require.NoError(t, err)
	assert.True(t, result.OK())
}

func TestDrain_ConflictSurfacesThroughTaxonomy(t *testing.T) {
	// A queued action the server rejects with a classifiable conflict is not
	// silently dropped: the drain halts when the conflict is non-retryable,
	// or re-queues when it is. BOOKING_CONFLICT is retryable, so the action
	// goes to the tail.
	b := backend.NewMemoryBackend()
	b.WriteHook = func(m backend.Mutation) error {
		return apperr.New("slot already taken", apperr.CodeBookingConflict)
	}
	app := newTestApp(t, b)
	ctx := context.Background()

	_, err := app.Queue().Enqueue(ctx, "booking.create", map[string]any{
		"topic": "bookings", "id": "bk-5", "record": domain.Record{"id": "bk-5"},
	})
	require.NoError(t, err)

	result, err := app.DrainQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Requeued)
	assert.False(t, result.Halted)
}
