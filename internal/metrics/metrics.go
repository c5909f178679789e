// Package metrics defines and registers the custom Prometheus metrics of the
// task tracker API. Metric names, labels and help strings live here only.
//
// All metrics register with the default Prometheus registry on import, so
// the /metrics endpoint exposes them without further setup.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskapi"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login outcomes.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "duplicate" or "invalid_credentials"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
// Label:
//   - priority: "low", "medium" or "high"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)

// TaskStatusChangesTotal counts status updates that actually changed a task.
var TaskStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_changes_total",
		Help:      "Total number of task status changes, by new status.",
	},
	[]string{"status"},
)

// ── Activity log metrics ──────────────────────────────────────────────────────

// ActivityQueueDepth tracks entries waiting in each dispatcher worker channel.
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity entries pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ActivityDroppedTotal counts entries discarded because a worker channel was full.
var ActivityDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dropped_total",
		Help:      "Total number of activity entries dropped because the queue was full.",
	},
)

// ActivityErrorsTotal counts entries that failed to persist.
var ActivityErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_errors_total",
		Help:      "Total number of activity entries that failed to persist.",
	},
)

// ActivityWriteDuration measures a single activity insert.
var ActivityWriteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "activity_write_duration_seconds",
		Help:      "Duration of persisting one activity entry.",
		Buckets:   prometheus.DefBuckets,
	},
)
