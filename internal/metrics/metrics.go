package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pulsepoint"

// PulsePoint metrics
var (
	// TriageRequestsTotal counts triage attempts by outcome
	// (ok, validation_error, configuration_error, inference_error).
	TriageRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triage_requests_total",
			Help:      "Total number of triage requests",
		},
		[]string{"outcome"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "inference_duration_seconds",
			Help:      "Latency of the triage inference call",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"model"},
	)

	// AlertsTotal counts critical decisions by classification method.
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Total number of critical triage decisions",
		},
		[]string{"method"},
	)

	// SMSSendsTotal counts SMS attempts by status (sent, failed, coalesced).
	SMSSendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_sends_total",
			Help:      "Total number of emergency SMS send attempts",
		},
		[]string{"status"},
	)

	ModelResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_resolutions_total",
			Help:      "Total number of model resolutions by selection source",
		},
		[]string{"source"},
	)
)
