package trace

import (
	"testing"
	"time"
)

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)

	if summary.TotalSteps != 0 || summary.AppliedSteps != 0 || summary.SkippedSteps != 0 {
		t.Errorf("expected zero counts, got %+v", summary)
	}
	if summary.MeanSelectLatency != 0 || summary.MaxSelectLatency != 0 {
		t.Error("expected zero latencies")
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with two applied steps and one skipped step
	rt := NewRunTrace(TraceConfig{Level: TraceLevelSteps}, "fixed")
	rt.RecordStep(StepRecord{Step: 0, Operation: "1", Applied: true})
	rt.RecordStep(StepRecord{Step: 1, Operation: "1", Applied: false})
	rt.RecordStep(StepRecord{Step: 2, Operation: "3", Applied: true})
	rt.SetStop(StopExhausted)

	// WHEN summarized
	summary := Summarize(rt)

	// THEN counts match
	if summary.TotalSteps != 3 {
		t.Errorf("expected 3 total steps, got %d", summary.TotalSteps)
	}
	if summary.AppliedSteps != 2 {
		t.Errorf("expected 2 applied, got %d", summary.AppliedSteps)
	}
	if summary.SkippedSteps != 1 {
		t.Errorf("expected 1 skipped, got %d", summary.SkippedSteps)
	}
	if summary.Stop != StopExhausted {
		t.Errorf("expected stop %q, got %q", StopExhausted, summary.Stop)
	}
}

func TestSummarize_SelectLatency_MeanAndMax(t *testing.T) {
	// GIVEN steps with known selection latencies
	rt := NewRunTrace(TraceConfig{Level: TraceLevelSteps}, "external")
	rt.RecordStep(StepRecord{Step: 0, SelectLatency: 10 * time.Millisecond})
	rt.RecordStep(StepRecord{Step: 1, SelectLatency: 50 * time.Millisecond})
	rt.RecordStep(StepRecord{Step: 2, SelectLatency: 30 * time.Millisecond})

	// WHEN summarized
	summary := Summarize(rt)

	// THEN mean = 30ms, max = 50ms
	if summary.MeanSelectLatency != 30*time.Millisecond {
		t.Errorf("expected mean 30ms, got %v", summary.MeanSelectLatency)
	}
	if summary.MaxSelectLatency != 50*time.Millisecond {
		t.Errorf("expected max 50ms, got %v", summary.MaxSelectLatency)
	}
}
