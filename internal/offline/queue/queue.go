// Package queue implements the offline action queue: an ordered, durable
// list of mutations that failed with a retryable classification, replayed
// when connectivity returns.
package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/core/domain"
	"github.com/pointme/resilience/internal/infra/storage"
	"github.com/pointme/resilience/internal/metrics"
)

// DefaultMaxAttempts is the replay budget before an action is dropped.
const DefaultMaxAttempts = 5

// ReplayFunc attempts one queued action against the backend. The returned
// error is classified through the taxonomy to decide what happens next.
type ReplayFunc func(ctx context.Context, action *domain.QueuedAction) error

// Queue is the durable FIFO of pending mutations. The persisted list is the
// single source of truth; the queue never reconstructs itself from cache
// entries. All operations are serialized by one mutex, so a drain has at
// most one replay in flight.
type Queue struct {
	repo        storage.QueueRepository
	log         *slog.Logger
	maxAttempts int
	mu          sync.Mutex
}

func New(repo storage.QueueRepository, log *slog.Logger, maxAttempts int) *Queue {
	if log == nil {
		log = slog.Default()
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Queue{
		repo:        repo,
		log:         log.With("component", "queue"),
		maxAttempts: maxAttempts,
	}
}

// Enqueue appends a mutation to the tail and persists the queue.
func (q *Queue) Enqueue(ctx context.Context, kind string, payload any) (*domain.QueuedAction, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeValidation).WithAction("queue.enqueue")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.repo.Load(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStorage).WithAction("queue.enqueue")
	}

	action := &domain.QueuedAction{
		ID:         uuid.New().String(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: time.Now().UnixMilli(),
	}
	actions = append(actions, action)

	if err := q.repo.Save(ctx, actions); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStorage).WithAction("queue.enqueue")
	}

	metrics.QueueDepth.Set(float64(len(actions)))
	q.log.Info("action queued for replay", "kind", kind, "id", action.ID, "depth", len(actions))
	return action, nil
}

// PeekAll returns a read-only snapshot of the queue in replay order.
func (q *Queue) PeekAll(ctx context.Context) ([]*domain.QueuedAction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	actions, err := q.repo.Load(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStorage).WithAction("queue.peek")
	}
	return actions, nil
}

// Len returns the number of pending actions.
func (q *Queue) Len(ctx context.Context) (int, error) {
	actions, err := q.PeekAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(actions), nil
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Replayed int
	Requeued int
	Dropped  int
	// Halted is set when a non-retryable failure stopped the drain; the
	// failing action and everything after it stay queued.
	Halted  bool
	HaltErr error
}

// Drain replays queued actions in enqueue order, one at a time.
//
// Policy on failure, decided by the same classification used at enqueue
// time: a retryable failure re-queues just that action at the tail and the
// drain continues with the remainder (later independent actions are not held
// hostage); a non-retryable failure halts the drain and leaves the failing
// action and everything after it untouched, preserving order for dependent
// mutations. An action that exhausts its replay budget is dropped with a
// warning rather than wedging the queue forever.
func (q *Queue) Drain(ctx context.Context, replay ReplayFunc) (*DrainResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending, err := q.repo.Load(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeStorage).WithAction("queue.drain")
	}

	result := &DrainResult{}
	var tail []*domain.QueuedAction

	persist := func(remaining []*domain.QueuedAction) error {
		combined := append(append([]*domain.QueuedAction{}, remaining...), tail...)
		if err := q.repo.Save(ctx, combined); err != nil {
			return apperr.Wrap(err, apperr.CodeStorage).WithAction("queue.drain")
		}
		metrics.QueueDepth.Set(float64(len(combined)))
		return nil
	}

	for i := 0; i < len(pending); i++ {
		if err := ctx.Err(); err != nil {
			if perr := persist(pending[i:]); perr != nil {
				return result, perr
			}
			return result, err
		}

		action := pending[i]
		replayErr := replay(ctx, action)
		if replayErr == nil {
			result.Replayed++
			metrics.ActionsReplayed.WithLabelValues(action.Kind).Inc()
			if err := persist(pending[i+1:]); err != nil {
				return result, err
			}
			continue
		}

		if !apperr.IsRetryable(replayErr) {
			q.log.Error("replay failed terminally, halting drain",
				"kind", action.Kind, "id", action.ID, "error", replayErr)
			result.Halted = true
			result.HaltErr = replayErr
			if err := persist(pending[i:]); err != nil {
				return result, err
			}
			return result, nil
		}

		action.Attempts++
		if action.Attempts >= q.maxAttempts {
			q.log.Warn("dropping action after exhausting replay budget",
				"kind", action.Kind, "id", action.ID, "attempts", action.Attempts)
			result.Dropped++
			metrics.ActionsDropped.WithLabelValues(action.Kind).Inc()
		} else {
			q.log.Info("replay failed, re-queuing at tail",
				"kind", action.Kind, "id", action.ID, "attempts", action.Attempts, "error", replayErr)
			result.Requeued++
			metrics.ActionsRequeued.WithLabelValues(action.Kind).Inc()
			tail = append(tail, action)
		}
		if err := persist(pending[i+1:]); err != nil {
			return result, err
		}
	}

	return result, nil
}

// Clear discards the entire queue. Used only on explicit user-initiated
// reset, e.g. sign-out.
func (q *Queue) Clear(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.repo.Clear(ctx); err != nil {
		return apperr.Wrap(err, apperr.CodeStorage).WithAction("queue.clear")
	}
	metrics.QueueDepth.Set(0)
	q.log.Info("action queue cleared")
	return nil
}
