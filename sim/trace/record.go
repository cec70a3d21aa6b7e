// Package trace provides per-step decision recording for simulation runs.
// It has no dependencies on sim/ and stores plain data types.
package trace

import "time"

// StepRecord captures a single strategy decision and its effect on the graph.
type StepRecord struct {
	Step          int           `json:"step"`
	Operation     string        `json:"operation"`      // operation target as rendered by sim.Operation.String
	Applied       bool          `json:"applied"`        // false when the target was absent at apply time
	Fraction      float64       `json:"fraction"`       // progress fraction after the step
	LCC           float64       `json:"lcc"`            // LCC ratio after the step
	SelectLatency time.Duration `json:"select_latency"` // wall time spent inside the strategy
}

// StopReason records why a run ended.
type StopReason string

const (
	// StopBudget means the run used its whole operation budget.
	StopBudget StopReason = "budget"
	// StopEmptyGraph means no nodes remained.
	StopEmptyGraph StopReason = "empty-graph"
	// StopExhausted means the strategy reported no viable candidate.
	StopExhausted StopReason = "exhausted"
	// StopFailed means the strategy returned an error.
	StopFailed StopReason = "failed"
	// StopCancelled means the run's context was cancelled.
	StopCancelled StopReason = "cancelled"
)
