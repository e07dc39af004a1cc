package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var DispatchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_dispatches_total",
		Help: "Total dispatches processed, by outcome",
	},
	[]string{"status"}, // sent | partial | suppressed
)

var DispatchDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "notification_dispatch_duration_seconds",
		Help:    "Wall time from job pickup to aggregate result",
		Buckets: prometheus.DefBuckets,
	},
)

var ChannelSendsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_channel_sends_total",
		Help: "Per-channel send attempts, by outcome",
	},
	[]string{"channel", "outcome"}, // outcome: success | failure
)

var ProviderFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "notification_provider_failures_total",
		Help: "Transport-level failures per external provider",
	},
	[]string{"provider"},
)

var PublishFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notification_realtime_publish_failures_total",
		Help: "Best-effort real-time publishes that failed and were swallowed",
	},
)

var InvalidJobsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notification_queue_invalid_jobs_total",
		Help: "Jobs rejected at the queue boundary",
	},
)

var HistoryWriteFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "notification_history_write_failures_total",
		Help: "History rows that could not be written after a dispatch",
	},
)
