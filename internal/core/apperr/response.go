package apperr

// Response is the only error shape handed to presentation layers. It carries
// no internal context (actor, request id, attributes).
type Response struct {
	Message       string   `json:"message"`
	Code          string   `json:"code"`
	Severity      Severity `json:"severity"`
	Category      Category `json:"category"`
	Retry         bool     `json:"retry"`
	RecoverySteps []string `json:"recovery_steps,omitempty"`
}

// Redirect is a silent navigation instruction carrying a message for the
// destination to display.
type Redirect struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ToResponse converts any error into a user-facing response. Unclassified
// errors become a generic retryable response so callers always have
// something to render.
func ToResponse(err error) Response {
	if e, ok := As(err); ok {
		msg := e.Message
		if msg == "" {
			msg = e.Kind.DefaultMessage
		}
		return Response{
			Message:       msg,
			Code:          e.Kind.Code,
			Severity:      e.Kind.Severity,
			Category:      e.Kind.Category,
			Retry:         e.Kind.Retryable,
			RecoverySteps: e.Kind.RecoverySteps,
		}
	}

	resp := Response{
		Message:  "An unexpected error occurred",
		Code:     CodeUnknown,
		Severity: SeverityError,
		Category: CategorySystem,
		Retry:    true,
	}
	if err != nil {
		resp.Message = err.Error()
	}
	return resp
}

// RedirectFor returns the navigation instruction for redirect-worthy
// failures. The boolean is false when the error should be handled in place.
func RedirectFor(err error) (Redirect, bool) {
	e, ok := As(err)
	if !ok || !e.ShouldRedirect() {
		return Redirect{}, false
	}
	msg := e.Message
	if msg == "" {
		msg = e.Kind.DefaultMessage
	}
	return Redirect{Path: e.RedirectPath(), Message: msg}, true
}
