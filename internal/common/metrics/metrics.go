// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IntentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_intents_total",
			Help: "Claim intents processed, by intent and envelope status",
		},
		[]string{"intent", "status"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_stage_failures_total",
			Help: "Pipeline stage failures, including best-effort stages",
		},
		[]string{"stage", "kind"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "claims_pipeline_duration_seconds",
			Help:    "Duration of one claim pipeline run in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_notifications_total",
			Help: "Notification publish attempts per recipient",
		},
		[]string{"recipient", "outcome"},
	)

	ActiveRuns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "claims_pipeline_active_runs",
			Help: "Pipeline runs currently in flight per transport",
		},
		[]string{"transport"},
	)
)
