// Package telemetry exposes prometheus counters for store and stream
// activity. Counters register on the default registry; the HTTP layer
// serves them at /metrics via promhttp.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ThreadsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_threads_created_total",
		Help: "Threads created in the content store.",
	})
	ThreadsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_threads_deleted_total",
		Help: "Threads hard-deleted (cascade) from the content store.",
	})
	ThreadsArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_threads_archived_total",
		Help: "Threads archived (flag set and metadata written).",
	})
	ThreadsRestored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_threads_restored_total",
		Help: "Archived threads restored to active.",
	})
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_posts_created_total",
		Help: "Posts created in the content store.",
	})
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_posts_deleted_total",
		Help: "Posts deleted individually from the content store.",
	})
	Reactions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_reactions_total",
		Help: "Reaction increments applied to the aggregate store.",
	})
	ActivityFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_activity_log_failures_total",
		Help: "Fire-and-forget activity log writes that failed and were swallowed.",
	})
	ChangeEventsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_change_events_emitted_total",
		Help: "Change stream events delivered to subscribers.",
	})
	ChangeEventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_change_events_dropped_total",
		Help: "Change stream events dropped because a subscriber buffer was full.",
	})
	ReconcileSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_reconcile_sweeps_total",
		Help: "Completed reconciliation sweeps of orphaned aggregate rows.",
	})
	ReconcileDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boardd_reconcile_rows_deleted_total",
		Help: "Aggregate rows removed by reconciliation sweeps.",
	})
)
