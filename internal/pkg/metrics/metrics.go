package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_outcomes_total",
			Help: "Dispatch outcomes recorded, by variant and status.",
		},
		[]string{"variant", "status"},
	)
	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_rejections_total",
			Help: "Records that could not be classified, by category.",
		},
		[]string{"category"},
	)
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_batches_total",
			Help: "Batch invocations by category and terminal state.",
		},
		[]string{"category", "state"},
	)
	RetriesScheduledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_retries_scheduled_total",
			Help: "Batch re-invocations scheduled after a batch-level failure.",
		},
		[]string{"category"},
	)
	BatchesAbandonedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notify_batches_abandoned_total",
			Help: "Batches given up on after exhausting retries or hitting a fatal error.",
		},
		[]string{"category", "reason"},
	)
	GatewaySendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_gateway_send_duration_seconds",
			Help:    "Duration of gateway send requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"channel", "status"},
	)
	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_source_fetch_duration_seconds",
			Help:    "Duration of upstream record fetches.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"category", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notify_http_request_duration_seconds",
			Help:    "Duration of report and trigger API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
