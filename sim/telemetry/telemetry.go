// Package telemetry exposes Prometheus collectors for simulation runs.
// Collectors register with the default registry on package init.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcome label values.
const (
	OutcomeOK        = "ok"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_sim_runs_total",
		Help: "Total number of simulation runs, labelled by algorithm and outcome.",
	}, []string{"algorithm", "outcome"})

	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_sim_steps_total",
		Help: "Total number of operations attempted, labelled by algorithm.",
	}, []string{"algorithm"})

	SkippedOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_sim_skipped_operations_total",
		Help: "Operations whose target was absent at apply time, labelled by algorithm.",
	}, []string{"algorithm"})

	BatchRunFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resilience_sim_batch_run_failures_total",
		Help: "Runs skipped inside a multi-run batch because they failed, labelled by algorithm.",
	}, []string{"algorithm"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "resilience_sim_run_duration_seconds",
		Help:    "Wall-clock duration of a single simulation run.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"algorithm"})
)
