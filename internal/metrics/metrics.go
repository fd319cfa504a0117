// Package metrics holds the Prometheus collectors of the fraud backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fraud"

var (
	// Detection metrics
	DetectionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detection_runs_total",
			Help:      "Detection runs by trigger and final status",
		},
		[]string{"trigger", "status"},
	)

	DetectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "detection_run_duration_seconds",
		Help:      "Wall time of completed detection runs",
		Buckets:   prometheus.DefBuckets,
	})

	Findings = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detection_findings",
			Help:      "Findings of the latest completed run per pattern",
		},
		[]string{"kind"},
	)

	SuspiciousNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "suspicious_nodes",
		Help:      "Nodes flagged suspicious by the latest completed run",
	})

	// Intake metrics
	ClaimsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_submitted_total",
			Help:      "Claims filed through intake by assessed risk level",
		},
		[]string{"level"},
	)

	RiskAssessments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Risk assessments by level",
		},
		[]string{"level"},
	)

	// Graph metrics
	GraphNodes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes in the claims graph by primary label",
		},
		[]string{"label"},
	)

	RateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_exceeded_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)
