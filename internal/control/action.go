package control

import (
	"context"
	"encoding/json"

	"github.com/pointme/resilience/internal/core/apperr"
	"github.com/pointme/resilience/internal/infra/backend"
	"github.com/pointme/resilience/internal/offline/netmon"
)

// ActionResult is the outcome of one interactive mutation attempt.
type ActionResult struct {
	// Queued is set when the mutation could not reach the backend but was
	// appended to the offline queue for replay.
	Queued bool
	// Redirect carries a silent navigation instruction for redirect-worthy
	// failures; nothing is propagated further in that case.
	Redirect *apperr.Redirect
	// Response is the user-facing error, when there is one.
	Response *apperr.Response
}

// OK reports whether the mutation reached the backend.
func (r *ActionResult) OK() bool {
	return !r.Queued && r.Redirect == nil && r.Response == nil
}

// Do attempts a backend mutation from an interactive surface. On failure the
// error is classified and exactly one of three things happens: a redirect
// instruction is returned, the mutation is queued for replay (retryable
// network failures only; the cache is left untouched), or an error response
// is surfaced to the caller. Do never panics and never leaks raw errors.
func (a *App) Do(ctx context.Context, kind string, payload any) (*ActionResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		e := apperr.Wrap(err, apperr.CodeValidation).WithAction(kind)
		resp := apperr.ToResponse(e)
		return &ActionResult{Response: &resp}, nil
	}

	writeErr := a.backend.Write(ctx, backend.Mutation{Kind: kind, Payload: raw})
	if writeErr == nil {
		return &ActionResult{}, nil
	}

	if redirect, ok := apperr.RedirectFor(writeErr); ok {
		a.log.Info("action redirected", "kind", kind, "path", redirect.Path)
		return &ActionResult{Redirect: &redirect}, nil
	}

	if apperr.IsRetryable(writeErr) && apperr.CategoryOf(writeErr) == apperr.CategoryNetwork {
		if _, qErr := a.queue.Enqueue(ctx, kind, payload); qErr != nil {
			// Queueing failed too; surface the original failure.
			a.log.Error("failed to queue action", "kind", kind, "error", qErr)
			resp := apperr.ToResponse(writeErr)
			return &ActionResult{Response: &resp}, nil
		}
		a.monitor.SetStatus(ctx, netmon.StatusOffline)
		resp := apperr.ToResponse(writeErr)
		return &ActionResult{Queued: true, Response: &resp}, nil
	}

	resp := apperr.ToResponse(writeErr)
	return &ActionResult{Response: &resp}, nil
}
