// Package realtime merges unordered streams of change events into locally
// held entity collections. Each collection is consumed by a single goroutine
// so events for one collection apply strictly in arrival order; there is no
// cross-collection ordering guarantee.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/core/domain"
	"github.com/pointme/resilience/internal/infra/backend"
	"github.com/pointme/resilience/internal/metrics"
)

// Backfiller performs a point read for an entity the collection has never
// seen. Needed because the stream offers no ordering guarantee across
// network hiccups: an update can arrive before its insert.
type Backfiller func(ctx context.Context, topic, entityID string) (domain.Record, error)

// Collection is the authoritative local copy of one reconciled entity set.
// At most one record per identifier; the latest applied event wins.
type Collection struct {
	topic    string
	backfill Backfiller
	log      *slog.Logger

	mu      sync.RWMutex
	records map[string]domain.Record
	active  bool

	sub  backend.Subscription
	stop context.CancelFunc
	done chan struct{}
}

func NewCollection(topic string, backfill Backfiller, log *slog.Logger) *Collection {
	if log == nil {
		log = slog.Default()
	}
	return &Collection{
		topic:    topic,
		backfill: backfill,
		log:      log.With("component", "realtime", "collection", topic),
		records:  make(map[string]domain.Record),
	}
}

// Start seeds the collection from an authoritative initial load and begins
// consuming the subscription. Seed records must carry an "id" field; records
// without one are dropped with a log line.
func (c *Collection) Start(ctx context.Context, sub backend.Subscription, seed []domain.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return
	}

	c.records = make(map[string]domain.Record, len(seed))
	for _, rec := range seed {
		id, ok := recordID(rec)
		if !ok {
			c.log.Warn("seed record missing id, dropped")
			continue
		}
		c.records[id] = cloneRecord(rec)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.sub = sub
	c.stop = cancel
	c.done = make(chan struct{})
	c.active = true

	go c.consume(runCtx, sub, c.done)
}

func (c *Collection) consume(ctx context.Context, sub backend.Subscription, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			c.Apply(ctx, ev)
		}
	}
}

// Apply merges one change event into the collection.
func (c *Collection) Apply(ctx context.Context, ev domain.ChangeEvent) {
	if ev.EntityID == "" || !validOp(ev.Op) {
		e := apperr.Newf(apperr.CodeValidation, "malformed change event op=%q id=%q", ev.Op, ev.EntityID)
		c.log.Warn("dropping malformed change event", "error", e)
		return
	}

	metrics.ReconcilerEvents.WithLabelValues(c.topic, string(ev.Op)).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()

	switch ev.Op {
	case domain.OpInsert:
		// The stream may duplicate the first event for a row on a
		// subscription race; a re-insert behaves as an update.
		if existing, ok := c.records[ev.EntityID]; ok {
			c.records[ev.EntityID] = mergeRecords(existing, ev.New)
			return
		}
		c.records[ev.EntityID] = cloneRecord(ev.New)

	case domain.OpUpdate:
		existing, ok := c.records[ev.EntityID]
		if !ok {
			c.missedInsert(ctx, ev.EntityID)
			return
		}
		c.records[ev.EntityID] = mergeRecords(existing, ev.New)

	case domain.OpDelete:
		// Absent is a no-op, not an error.
		delete(c.records, ev.EntityID)
	}
}

// missedInsert handles an update or delete for an entity never seen locally:
// the insert was lost somewhere, so ask the backend for the authoritative
// current value instead of silently dropping the event. Called with c.mu held.
func (c *Collection) missedInsert(ctx context.Context, entityID string) {
	if c.backfill == nil {
		c.log.Warn("missed insert and no backfiller configured", "entity_id", entityID)
		return
	}
	metrics.BackfillReads.WithLabelValues(c.topic).Inc()
	rec, err := c.backfill(ctx, c.topic, entityID)
	if err != nil {
		c.log.Warn("backfill read failed", "entity_id", entityID, "error", err)
		return
	}
	c.records[entityID] = cloneRecord(rec)
}

// Snapshot returns a copy of every record.
func (c *Collection) Snapshot() []domain.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Record, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, cloneRecord(rec))
	}
	return out
}

// Get returns a copy of one record.
func (c *Collection) Get(entityID string) (domain.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[entityID]
	if !ok {
		return nil, false
	}
	return cloneRecord(rec), true
}

// Len returns the number of records held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Active reports whether the collection is consuming a stream.
func (c *Collection) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Stop releases the stream handle and discards any event that would arrive
// after cancellation. The collection keeps its (now stale) data until the
// next Start re-seeds it.
func (c *Collection) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	sub, stop, done := c.sub, c.stop, c.done
	c.sub, c.stop, c.done = nil, nil, nil
	c.mu.Unlock()

	stop()
	sub.Unsubscribe()
	<-done
}

func validOp(op domain.ChangeOp) bool {
	switch op {
	case domain.OpInsert, domain.OpUpdate, domain.OpDelete:
		return true
	}
	return false
}

func recordID(rec domain.Record) (string, bool) {
	id, ok := rec["id"].(string)
	return id, ok && id != ""
}

func cloneRecord(rec domain.Record) domain.Record {
	out := make(domain.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// mergeRecords is the shallow merge rule for updates: fields present in the
// event replace existing ones, fields absent from the event are preserved.
func mergeRecords(existing, update domain.Record) domain.Record {
	out := cloneRecord(existing)
	for k, v := range update {
		out[k] = v
	}
	return out
}
