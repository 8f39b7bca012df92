package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache reads served from the local store
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key"},
	)

	// CacheMisses tracks cache reads that found nothing usable
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key"},
	)

	// CacheEvictions tracks evict-on-read removals by reason
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_cache_evictions_total",
			Help: "Total number of cache entries evicted on read",
		},
		[]string{"key", "reason"},
	)

	// QueueDepth tracks the number of pending offline actions
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pointme_queue_depth",
			Help: "Number of actions waiting for replay",
		},
	)

	// ActionsReplayed tracks successful queue replays
	ActionsReplayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_actions_replayed_total",
			Help: "Total number of queued actions replayed successfully",
		},
		[]string{"kind"},
	)

	// ActionsRequeued tracks retryable replay failures sent to the tail
	ActionsRequeued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_actions_requeued_total",
			Help: "Total number of queued actions re-queued after a retryable failure",
		},
		[]string{"kind"},
	)

	// ActionsDropped tracks actions discarded after exhausting their budget
	ActionsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_actions_dropped_total",
			Help: "Total number of queued actions dropped after exhausting replay attempts",
		},
		[]string{"kind"},
	)

	// NetworkTransitions tracks connectivity edges
	NetworkTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_network_transitions_total",
			Help: "Total number of online/offline transitions",
		},
		[]string{"to"},
	)

	// ReconcilerEvents tracks change events applied per collection
	ReconcilerEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_reconciler_events_total",
			Help: "Total number of change events applied",
		},
		[]string{"collection", "op"},
	)

	// BackfillReads tracks point reads triggered by missed inserts
	BackfillReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_backfill_reads_total",
			Help: "Total number of backfill point reads",
		},
		[]string{"collection"},
	)

	// BoundaryFailures tracks failures reaching the failure boundary
	BoundaryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pointme_boundary_failures_total",
			Help: "Total number of failures caught by the failure boundary",
		},
		[]string{"category"},
	)
)
