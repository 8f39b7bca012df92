package boundary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pointme/resilience/internal/core/apperr"
)

func newTestBoundary() *Boundary {
	b := New(3, time.Millisecond, nil)
	b.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return b
}

func failingOp(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestBoundary_ExecuteCatchesFailure(t *testing.T) {
	b := newTestBoundary()
	ctx := context.Background()

	err := b.Execute(ctx, failingOp(apperr.New("down", apperr.CodeNetwork)))
	if err == nil {
		t.Fatal("Execute must return the failure")
	}

	report := b.Report()
	if report.State != StateFailed {
		t.Fatal("Boundary must be Failed")
	}
	if !report.CanRetry {
		t.Error("Retryable classification must offer retry")
	}
	if len(report.RecoverySteps) == 0 {
		t.Error("Report must carry taxonomy recovery steps verbatim")
	}
	if report.RetriesLeft != 3 {
		t.Errorf("Expected 3 retries left, got %d", report.RetriesLeft)
	}
}

func TestBoundary_ThreeRetriesExhaustAffordance(t *testing.T) {
	b := newTestBoundary()
	ctx := context.Background()
	op := failingOp(apperr.New("still down", apperr.CodeNetwork))

	_ = b.Execute(ctx, op)

	// Failed -> Healthy -> Failed, three times
	for i := 1; i <= 3; i++ {
		ran, err := b.Retry(ctx, op)
		if !ran {
			t.Fatalf("Retry %d should have run", i)
		}
		if err == nil {
			t.Fatalf("Retry %d should have failed again", i)
		}
	}

	report := b.Report()
	if report.State != StateFailed {
		t.Fatal("Boundary must be Failed after exhausted retries")
	}
	if report.CanRetry {
		t.Error("Third failure must offer no further retry affordance")
	}
	if report.RetriesLeft != 0 {
		t.Errorf("Expected 0 retries left, got %d", report.RetriesLeft)
	}

	ran, _ := b.Retry(ctx, op)
	if ran {
		t.Error("Retry past the budget must not run the op")
	}
}

func TestBoundary_RetrySucceedsAndHeals(t *testing.T) {
	b := newTestBoundary()
	ctx := context.Background()

	calls := 0
	op := func(context.Context) error {
		calls++
		if calls == 1 {
			return apperr.New("blip", apperr.CodeNetwork)
		}
		return nil
	}

	_ = b.Execute(ctx, op)
	ran, err := b.Retry(ctx, op)
	if !ran || err != nil {
		t.Fatalf("Retry should have run and succeeded: ran=%v err=%v", ran, err)
	}
	if b.Report().State != StateHealthy {
		t.Error("Boundary must be Healthy after a successful retry")
	}
}

func TestBoundary_NonRetryableIsTerminal(t *testing.T) {
	b := newTestBoundary()
	ctx := context.Background()

	_ = b.Execute(ctx, failingOp(apperr.New("bad schema", apperr.CodeDatabase)))

	report := b.Report()
	if report.CanRetry {
		t.Error("Non-retryable classification must not offer retry")
	}
	ran, _ := b.Retry(ctx, failingOp(nil))
	if ran {
		t.Error("Retry must refuse to run for non-retryable failures")
	}
}

func TestBoundary_UnclassifiedGetsBenefitOfDoubt(t *testing.T) {
	b := newTestBoundary()
	ctx := context.Background()

	_ = b.Execute(ctx, failingOp(errors.New("mystery")))
	if !b.CanRetry() {
		t.Error("Unclassified failures must offer retry")
	}
}

func TestBoundary_RunAutoRetriesRetryable(t *testing.T) {
	b := New(3, time.Millisecond, nil)
	ctx := context.Background()

	calls := 0
	err := b.Run(ctx, func(context.Context) error {
		calls++
		if calls < 3 {
			return apperr.New("flaky", apperr.CodeNetwork)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run should have recovered, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
	if b.Report().State != StateHealthy {
		t.Error("Successful Run must leave boundary Healthy")
	}
}

func TestBoundary_RunStopsOnNonRetryable(t *testing.T) {
	b := New(3, time.Millisecond, nil)
	ctx := context.Background()

	calls := 0
	err := b.Run(ctx, func(context.Context) error {
		calls++
		return apperr.New("rejected", apperr.CodeDatabase)
	})
	if err == nil {
		t.Fatal("Run must surface non-retryable failures")
	}
	if calls != 1 {
		t.Errorf("Non-retryable failure must not be retried, attempts=%d", calls)
	}
	if b.Report().State != StateFailed {
		t.Error("Boundary must be Failed")
	}
}
