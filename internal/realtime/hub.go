package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pointme/resilience/internal/core/domain"
	"github.com/pointme/resilience/internal/infra/backend"
)

// Well-known collection topics.
const (
	TopicBookings = "bookings"
	TopicServices = "services"
)

// Hub owns one reconciled collection per subscribed topic and the backend
// handles behind them.
type Hub struct {
	backend backend.Backend
	log     *slog.Logger

	mu          sync.Mutex
	collections map[string]*Collection
}

func NewHub(b backend.Backend, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		backend:     b,
		log:         log,
		collections: make(map[string]*Collection),
	}
}

// Subscribe transitions a topic to Active: it performs the authoritative
// initial load, opens the change stream, and starts the reconciler.
// Subscribing an already-active topic returns the existing collection.
func (h *Hub) Subscribe(ctx context.Context, topic string) (*Collection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if coll, ok := h.collections[topic]; ok && coll.Active() {
		return coll, nil
	}

	seed, err := h.backend.List(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("initial load for %s failed: %w", topic, err)
	}

	sub, err := h.backend.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s failed: %w", topic, err)
	}

	coll, ok := h.collections[topic]
	if !ok {
		coll = NewCollection(topic, h.backfill, h.log)
		h.collections[topic] = coll
	}
	coll.Start(ctx, sub, seed)
	h.log.Info("collection subscribed", "topic", topic, "seeded", coll.Len())
	return coll, nil
}

// Unsubscribe transitions a topic back to Idle, releasing the stream handle.
func (h *Hub) Unsubscribe(topic string) {
	h.mu.Lock()
	coll, ok := h.collections[topic]
	h.mu.Unlock()
	if !ok {
		return
	}
	coll.Stop()
	h.log.Info("collection unsubscribed", "topic", topic)
}

// Collection returns the collection for a topic, if one exists.
func (h *Hub) Collection(topic string) (*Collection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	coll, ok := h.collections[topic]
	return coll, ok
}

// Close stops every active collection.
func (h *Hub) Close() {
	h.mu.Lock()
	colls := make([]*Collection, 0, len(h.collections))
	for _, c := range h.collections {
		colls = append(colls, c)
	}
	h.mu.Unlock()
	for _, c := range colls {
		c.Stop()
	}
}

func (h *Hub) backfill(ctx context.Context, topic, entityID string) (domain.Record, error) {
	raw, err := h.backend.Read(ctx, entityID)
	if err != nil {
		return nil, err
	}
	var rec domain.Record
	if err := unmarshalRecord(raw, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}
