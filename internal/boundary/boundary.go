// Package boundary implements the failure boundary: the outermost consumer
// of structured errors. It catches anything the layers below did not handle
// and decides between a bounded retry affordance and a terminal message.
package boundary

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/metrics"
)

// Policy constants. The delay is a deliberate throttle, not a correctness
// requirement.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = 1000 * time.Millisecond
)

// State of the boundary.
type State int

const (
	StateHealthy State = iota
	StateFailed
)

func (s State) String() string {
	if s == StateFailed {
		return "failed"
	}
	return "healthy"
}

// Report is what the boundary renders: taxonomy-sourced copy, verbatim.
type Report struct {
	State         State
	Message       string
	Severity      apperr.Severity
	RecoverySteps []string
	// CanRetry is the retry affordance: false once retries are exhausted or
	// when the classification says retrying cannot help.
	CanRetry    bool
	RetriesLeft int
}

// Boundary wraps an interactive subtree.
type Boundary struct {
	maxRetries int
	retryDelay time.Duration
	log        *slog.Logger
	sleep      func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	state      State
	err        *apperr.Error
	retryCount int
}

func New(maxRetries int, retryDelay time.Duration, log *slog.Logger) *Boundary {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	if log == nil {
		log = slog.Default()
	}
	return &Boundary{
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		log:        log.With("component", "boundary"),
		sleep:      sleepFor,
	}
}

func sleepFor(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Execute runs op and catches any escaping failure, transitioning the
// boundary to Failed. The classified error is returned so callers can still
// build a response from it.
func (b *Boundary) Execute(ctx context.Context, op func(context.Context) error) error {
	err := op(ctx)
	if err == nil {
		return nil
	}
	b.fail(err)
	return err
}

// Run is Execute with automatic bounded retries for failures whose
// classification is retryable. Non-retryable failures surface immediately.
func (b *Boundary) Run(ctx context.Context, op func(context.Context) error) error {
	backoff := retry.WithMaxRetries(uint64(b.maxRetries), retry.NewConstant(b.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			if apperr.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		b.fail(err)
	}
	return err
}

func (b *Boundary) fail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Wrap(err, apperr.CodeUnknown)
	}
	metrics.BoundaryFailures.WithLabelValues(string(e.Category())).Inc()

	if b.state == StateFailed {
		// Already failed; keep the retry budget, refresh the error.
		b.err = e
		return
	}
	b.state = StateFailed
	b.err = e
	b.retryCount = 0
	b.log.Error("failure reached boundary",
		"code", e.Kind.Code, "severity", e.Severity(), "error", e)
}

// CanRetry reports whether the retry affordance is still offered.
func (b *Boundary) CanRetry() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canRetryLocked()
}

func (b *Boundary) canRetryLocked() bool {
	if b.state != StateFailed || b.retryCount >= b.maxRetries {
		return false
	}
	// Unclassified failures get the benefit of the doubt; classified
	// non-retryable ones are terminal immediately.
	return b.err == nil || b.err.IsRetryable()
}

// Retry performs one explicit retry: wait the fixed delay, reset to Healthy,
// re-run op. Returns false without running anything when the affordance is
// exhausted. The retry budget persists across Failed cycles so a persistently
// broken dependency cannot cause an infinite retry loop.
func (b *Boundary) Retry(ctx context.Context, op func(context.Context) error) (bool, error) {
	b.mu.Lock()
	if !b.canRetryLocked() {
		b.mu.Unlock()
		return false, nil
	}
	b.retryCount++
	attempt := b.retryCount
	b.mu.Unlock()

	if err := b.sleep(ctx, b.retryDelay); err != nil {
		return false, err
	}

	b.mu.Lock()
	b.state = StateHealthy
	b.err = nil
	b.mu.Unlock()

	b.log.Info("boundary retry", "attempt", attempt, "max", b.maxRetries)

	err := op(ctx)
	if err != nil {
		b.mu.Lock()
		e, ok := apperr.As(err)
		if !ok {
			e = apperr.Wrap(err, apperr.CodeUnknown)
		}
		b.state = StateFailed
		b.err = e
		b.mu.Unlock()
		metrics.BoundaryFailures.WithLabelValues(string(e.Category())).Inc()
	}
	return true, err
}

// Reset returns the boundary to Healthy with a fresh retry budget. Used when
// the wrapped subtree is replaced outright.
func (b *Boundary) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateHealthy
	b.err = nil
	b.retryCount = 0
}

// Report renders the current state for presentation. Copy comes from the
// taxonomy; the boundary never invents its own.
func (b *Boundary) Report() Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHealthy {
		return Report{State: StateHealthy}
	}

	resp := apperr.ToResponse(b.err)
	left := b.maxRetries - b.retryCount
	if left < 0 {
		left = 0
	}
	return Report{
		State:         StateFailed,
		Message:       resp.Message,
		Severity:      resp.Severity,
		RecoverySteps: resp.RecoverySteps,
		CanRetry:      b.canRetryLocked(),
		RetriesLeft:   left,
	}
}
