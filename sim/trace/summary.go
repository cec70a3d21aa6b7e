package trace

import "time"

// TraceSummary aggregates statistics from a RunTrace.
type TraceSummary struct {
	TotalSteps        int
	AppliedSteps      int
	SkippedSteps      int
	Stop              StopReason
	MeanSelectLatency time.Duration
	MaxSelectLatency  time.Duration
}

// Summarize computes aggregate statistics from a RunTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(rt *RunTrace) *TraceSummary {
	summary := &TraceSummary{}
	if rt == nil {
		return summary
	}

	summary.Stop = rt.Stop
	summary.TotalSteps = len(rt.Steps)
	var total time.Duration
	for _, s := range rt.Steps {
		if s.Applied {
			summary.AppliedSteps++
		} else {
			summary.SkippedSteps++
		}
		total += s.SelectLatency
		if s.SelectLatency > summary.MaxSelectLatency {
			summary.MaxSelectLatency = s.SelectLatency
		}
	}
	if summary.TotalSteps > 0 {
		summary.MeanSelectLatency = total / time.Duration(summary.TotalSteps)
	}

	return summary
}
