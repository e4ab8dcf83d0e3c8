package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the reactor dataflow engine.
var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactor_runs_total",
			Help: "Total number of Run invocations, by outcome",
		},
		[]string{"outcome"}, // ok|fatal
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reactor_run_duration_seconds",
			Help:    "Wall-clock time spent inside Run",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 20),
		},
	)

	RulesFiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactor_rules_fired_total",
			Help: "Total number of rule computations that have run",
		},
	)

	ErrorsReportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactor_errors_reported_total",
			Help: "Total number of SemanticErrors recorded, by kind",
		},
		[]string{"kind"}, // root|derived
	)
)
