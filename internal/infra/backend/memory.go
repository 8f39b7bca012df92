package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/core/domain"
)

// MemoryBackend is an in-process backend used by tests and local mode. It
// stores records per topic and fans every accepted write out to subscribers
// as change events.
type MemoryBackend struct {
	mu     sync.RWMutex
	topics map[string]map[string]domain.Record
	subs   map[string][]*memorySubscription

	// WriteHook, when set, runs before a write is applied and may reject it.
	// Tests use it to simulate backend failures.
	WriteHook func(m Mutation) error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		topics: make(map[string]map[string]domain.Record),
		subs:   make(map[string][]*memorySubscription),
	}
}

type memorySubscription struct {
	events chan domain.ChangeEvent
	once   sync.Once
	parent *MemoryBackend
	topic  string
}

func (s *memorySubscription) Events() <-chan domain.ChangeEvent { return s.events }

func (s *memorySubscription) Unsubscribe() {
	s.once.Do(func() {
		s.parent.mu.Lock()
		defer s.parent.mu.Unlock()
		subs := s.parent.subs[s.topic]
		for i, sub := range subs {
			if sub == s {
				s.parent.subs[s.topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(s.events)
	})
}

// Seed installs records for a topic without emitting events.
func (b *MemoryBackend) Seed(topic string, records map[string]domain.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	coll := make(map[string]domain.Record, len(records))
	for id, rec := range records {
		coll[id] = rec
	}
	b.topics[topic] = coll
}

func (b *MemoryBackend) Read(ctx context.Context, key string) (json.RawMessage, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, coll := range b.topics {
		if rec, ok := coll[key]; ok {
			return json.Marshal(rec)
		}
	}
	return nil, apperr.Newf(apperr.CodeServiceNotFound, "no record for key %s", key)
}

// ReadRecord is Read without the JSON round trip, for backfill callers.
func (b *MemoryBackend) ReadRecord(ctx context.Context, topic, id string) (domain.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	coll, ok := b.topics[topic]
	if !ok {
		return nil, apperr.Newf(apperr.CodeServiceNotFound, "unknown topic %s", topic)
	}
	rec, ok := coll[id]
	if !ok {
		return nil, apperr.Newf(apperr.CodeServiceNotFound, "no record %s in %s", id, topic)
	}
	return rec, nil
}

func (b *MemoryBackend) Write(ctx context.Context, m Mutation) error {
	if b.WriteHook != nil {
		if err := b.WriteHook(m); err != nil {
			return err
		}
	}

	var payload struct {
		Topic  string        `json:"topic"`
		ID     string        `json:"id"`
		Record domain.Record `json:"record"`
		Delete bool          `json:"delete"`
	}
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		return apperr.Wrap(err, apperr.CodeValidation)
	}
	if payload.Topic == "" || payload.ID == "" {
		return apperr.New("mutation missing topic or id", apperr.CodeValidation)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	coll, ok := b.topics[payload.Topic]
	if !ok {
		coll = make(map[string]domain.Record)
		b.topics[payload.Topic] = coll
	}

	var ev domain.ChangeEvent
	if payload.Delete {
		old := coll[payload.ID]
		delete(coll, payload.ID)
		ev = domain.ChangeEvent{Op: domain.OpDelete, EntityID: payload.ID, Old: old}
	} else if _, exists := coll[payload.ID]; exists {
		coll[payload.ID] = payload.Record
		ev = domain.ChangeEvent{Op: domain.OpUpdate, EntityID: payload.ID, New: payload.Record}
	} else {
		coll[payload.ID] = payload.Record
		ev = domain.ChangeEvent{Op: domain.OpInsert, EntityID: payload.ID, New: payload.Record}
	}

	for _, sub := range b.subs[payload.Topic] {
		select {
		case sub.events <- ev:
		default:
			// Slow subscriber; drop rather than block the writer.
		}
	}
	return nil
}

func (b *MemoryBackend) List(ctx context.Context, topic string) ([]domain.Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	coll := b.topics[topic]
	records := make([]domain.Record, 0, len(coll))
	for _, rec := range coll {
		records = append(records, rec)
	}
	return records, nil
}

func (b *MemoryBackend) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := &memorySubscription{
		events: make(chan domain.ChangeEvent, 64),
		parent: b,
		topic:  topic,
	}
	b.subs[topic] = append(b.subs[topic], sub)
	return sub, nil
}

// Emit injects a raw change event for a topic, bypassing Write. Tests use it
// to simulate out-of-order and duplicate stream delivery.
func (b *MemoryBackend) Emit(topic string, ev domain.ChangeEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := b.subs[topic]
	if len(subs) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}
	for _, sub := range subs {
		sub.events <- ev
	}
	return nil
}
