package apperr

import (
	"errors"
	"fmt"
	"time"
)

// Context carries metadata captured at the point of failure. It is for logs
// and diagnostics only and is never exposed through ToResponse.
type Context struct {
	Actor      string         `json:"actor,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Action     string         `json:"action,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Error is a single classified failure instance. It is created at the point
// of failure and read-only afterward.
type Error struct {
	Kind    Kind
	Message string
	Context Context
	cause   error
}

// New builds a structured error for the given catalog code.
func New(message, code string) *Error {
	return &Error{
		Kind:    Classify(code),
		Message: message,
		Context: Context{Timestamp: time.Now()},
	}
}

// Newf is New with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return New(fmt.Sprintf(format, args...), code)
}

// Wrap classifies an underlying error, preserving it for errors.Unwrap.
func Wrap(err error, code string) *Error {
	e := New(err.Error(), code)
	e.cause = err
	return e
}

// WithContext returns a copy of the error carrying the given context. The
// timestamp is kept from the original error.
func (e *Error) WithContext(ctx Context) *Error {
	ctx.Timestamp = e.Context.Timestamp
	clone := *e
	clone.Context = ctx
	return &clone
}

// WithAction tags the error with the action that was being attempted.
func (e *Error) WithAction(action string) *Error {
	clone := *e
	clone.Context.Action = action
	return &clone
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Kind.Code, e.Kind.DefaultMessage)
	}
	return fmt.Sprintf("%s: %s", e.Kind.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// IsRetryable reports whether the operation may succeed if attempted again.
func (e *Error) IsRetryable() bool { return e.Kind.Retryable }

// ShouldRedirect reports whether the failure should be answered with a
// navigation instruction instead of being propagated.
func (e *Error) ShouldRedirect() bool { return e.Kind.RedirectTo != "" }

// RedirectPath returns the destination for redirect-worthy kinds.
func (e *Error) RedirectPath() string { return e.Kind.RedirectTo }

// RecoverySteps returns the ordered human recovery steps for this kind.
func (e *Error) RecoverySteps() []string { return e.Kind.RecoverySteps }

func (e *Error) Severity() Severity { return e.Kind.Severity }

func (e *Error) Category() Category { return e.Kind.Category }

// As extracts a structured error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsRetryable reports whether an arbitrary error is worth retrying.
// Unclassified errors are treated as retryable, matching the behavior for
// raw platform failures.
func IsRetryable(err error) bool {
	if e, ok := As(err); ok {
		return e.IsRetryable()
	}
	return err != nil
}

// CategoryOf returns the taxonomy category of an error, or CategorySystem
// for unclassified errors.
func CategoryOf(err error) Category {
	if e, ok := As(err); ok {
		return e.Category()
	}
	return CategorySystem
}
