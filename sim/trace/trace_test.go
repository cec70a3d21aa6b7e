package trace

import (
	"testing"
)

func TestRunTrace_RecordStep_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for steps
	rt := NewRunTrace(TraceConfig{Level: TraceLevelSteps}, "HighestDegree")

	// WHEN a step record is recorded
	rt.RecordStep(StepRecord{Step: 0, Operation: "1", Applied: true, Fraction: 0.2, LCC: 0.6})

	// THEN the trace contains one record with correct data
	if len(rt.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(rt.Steps))
	}
	if rt.Steps[0].Operation != "1" {
		t.Errorf("expected operation 1, got %s", rt.Steps[0].Operation)
	}
	if !rt.Steps[0].Applied {
		t.Error("expected applied=true")
	}
}

func TestRunTrace_MultipleRecords_PreservesOrder(t *testing.T) {
	rt := NewRunTrace(TraceConfig{Level: TraceLevelSteps}, "Random")

	rt.RecordStep(StepRecord{Step: 0, Operation: "4"})
	rt.RecordStep(StepRecord{Step: 1, Operation: "2"})
	rt.RecordStep(StepRecord{Step: 2, Operation: "9"})

	want := []string{"4", "2", "9"}
	for i, w := range want {
		if rt.Steps[i].Operation != w {
			t.Errorf("step %d: expected %s, got %s", i, w, rt.Steps[i].Operation)
		}
	}
}

func TestRunTrace_Enabled(t *testing.T) {
	var nilTrace *RunTrace
	if nilTrace.Enabled() {
		t.Error("nil trace must report disabled")
	}
	if NewRunTrace(TraceConfig{Level: TraceLevelNone}, "x").Enabled() {
		t.Error("level none must report disabled")
	}
	if !NewRunTrace(TraceConfig{Level: TraceLevelSteps}, "x").Enabled() {
		t.Error("level steps must report enabled")
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"", true},
		{"none", true},
		{"steps", true},
		{"decisions", false},
		{"verbose", false},
	}
	for _, tt := range tests {
		if got := IsValidTraceLevel(tt.level); got != tt.valid {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
		}
	}
}
