// Package netmon observes connectivity transitions and triggers queue
// replay on reconnection.
package netmon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pointme/resilience/internal/metrics"
)

// Status is the connectivity state.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Probe checks connectivity. A nil return means online.
type Probe func(ctx context.Context) error

// NotifyFunc receives user-visible notifications on transition edges.
type NotifyFunc func(status Status)

// Monitor is a passive observer with two states. On the offline-to-online
// edge it invokes the drain callback exactly once per transition; steady
// state never drains and never notifies. The monitor lives for the whole
// process; Run only returns when its context is cancelled.
type Monitor struct {
	drain  func(ctx context.Context)
	notify NotifyFunc
	log    *slog.Logger

	mu     sync.Mutex
	status Status
}

func New(drain func(ctx context.Context), notify NotifyFunc, log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	return &Monitor{
		drain:  drain,
		notify: notify,
		log:    log.With("component", "netmon"),
		status: StatusOnline,
	}
}

// Status returns the current connectivity state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetStatus applies a platform connectivity signal. Only edges have effects.
func (m *Monitor) SetStatus(ctx context.Context, status Status) {
	m.mu.Lock()
	if m.status == status {
		m.mu.Unlock()
		return
	}
	m.status = status
	m.mu.Unlock()

	metrics.NetworkTransitions.WithLabelValues(string(status)).Inc()

	switch status {
	case StatusOnline:
		m.log.Info("back online, draining action queue")
		if m.notify != nil {
			m.notify(StatusOnline)
		}
		if m.drain != nil {
			m.drain(ctx)
		}
	case StatusOffline:
		m.log.Warn("connection lost, queuing mode active")
		if m.notify != nil {
			m.notify(StatusOffline)
		}
	}
}

// Run polls the probe on the given interval and feeds the observed status
// through SetStatus until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, probe Probe, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status := StatusOnline
			if err := probe(ctx); err != nil {
				status = StatusOffline
			}
			m.SetStatus(ctx, status)
		}
	}
}
