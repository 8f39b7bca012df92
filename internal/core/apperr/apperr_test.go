package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify_KnownCodes(t *testing.T) {
	for _, code := range Codes() {
		k := Classify(code)
		if k.Code != code {
			t.Errorf("Classify(%s) returned kind %s", code, k.Code)
		}
		if k.Severity == "" || k.Category == "" {
			t.Errorf("Classify(%s) missing severity or category", code)
		}
		// Deterministic: two lookups agree
		again := Classify(code)
		if again.Code != k.Code || again.Retryable != k.Retryable {
			t.Errorf("Classify(%s) not deterministic", code)
		}
	}
}

func TestClassify_UnknownCode(t *testing.T) {
	k := Classify("NOT_A_REAL_CODE")
	if k.Code != CodeUnknown {
		t.Errorf("Expected %s, got %s", CodeUnknown, k.Code)
	}
	if k.Category != CategorySystem {
		t.Errorf("Expected system category, got %s", k.Category)
	}
	if k.Retryable {
		t.Error("Unknown kind must not be retryable")
	}
}

func TestError_Projections(t *testing.T) {
	e := New("connection refused", CodeNetwork)
	if !e.IsRetryable() {
		t.Error("NETWORK_ERROR should be retryable")
	}
	if e.ShouldRedirect() {
		t.Error("NETWORK_ERROR should not redirect")
	}
	if e.Category() != CategoryNetwork {
		t.Errorf("Expected network category, got %s", e.Category())
	}
	if len(e.RecoverySteps()) == 0 {
		t.Error("NETWORK_ERROR should carry recovery steps")
	}
	if e.Context.Timestamp.IsZero() {
		t.Error("New must stamp the context timestamp")
	}

	auth := New("session missing", CodeAuthRequired)
	if !auth.ShouldRedirect() {
		t.Error("AUTH_REQUIRED should redirect")
	}
	if auth.RedirectPath() != "/sign-in" {
		t.Errorf("Expected /sign-in, got %s", auth.RedirectPath())
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("i/o timeout")
	e := Wrap(cause, CodeNetwork)
	if !errors.Is(e, cause) {
		t.Error("Wrap must preserve the cause for errors.Is")
	}

	// Classification survives further wrapping
	wrapped := fmt.Errorf("write booking: %w", e)
	got, ok := As(wrapped)
	if !ok {
		t.Fatal("As failed to find structured error in chain")
	}
	if got.Kind.Code != CodeNetwork {
		t.Errorf("Expected NETWORK_ERROR, got %s", got.Kind.Code)
	}
}

func TestToResponse_NoContextLeak(t *testing.T) {
	e := New("boom", CodeBookingConflict).WithContext(Context{
		Actor:     "user-123",
		RequestID: "req-9",
	})
	resp := ToResponse(e)
	if resp.Code != CodeBookingConflict {
		t.Errorf("Expected BOOKING_CONFLICT, got %s", resp.Code)
	}
	if !resp.Retry {
		t.Error("BOOKING_CONFLICT response should allow retry")
	}
	if len(resp.RecoverySteps) != 2 {
		t.Errorf("Expected 2 recovery steps, got %d", len(resp.RecoverySteps))
	}
	// Response is a flat value type; the assertion here is that it has no
	// field through which the actor could travel.
	if resp.Message != "boom" {
		t.Errorf("Expected message boom, got %s", resp.Message)
	}
}

func TestToResponse_UnclassifiedError(t *testing.T) {
	resp := ToResponse(errors.New("plain failure"))
	if resp.Code != CodeUnknown {
		t.Errorf("Expected UNKNOWN_ERROR, got %s", resp.Code)
	}
	if !resp.Retry {
		t.Error("Unclassified errors default to retryable")
	}

	nilResp := ToResponse(nil)
	if nilResp.Message == "" {
		t.Error("ToResponse(nil) must still render a message")
	}
}

func TestRedirectFor(t *testing.T) {
	if _, ok := RedirectFor(New("x", CodeNetwork)); ok {
		t.Error("NETWORK_ERROR must not produce a redirect")
	}

	r, ok := RedirectFor(New("service gone", CodeServiceNotFound))
	if !ok {
		t.Fatal("SERVICE_NOT_FOUND must produce a redirect")
	}
	if r.Path != "/services" {
		t.Errorf("Expected /services, got %s", r.Path)
	}
	if r.Message != "service gone" {
		t.Errorf("Redirect must carry the message, got %s", r.Message)
	}
}
