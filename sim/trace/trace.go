package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelSteps captures every strategy decision of a run.
	TraceLevelSteps TraceLevel = "steps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:  true,
	TraceLevelSteps: true,
	"":              true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// RunTrace collects decision records during one simulation run.
type RunTrace struct {
	Config    TraceConfig  `json:"-"`
	Algorithm string       `json:"algorithm"`
	Steps     []StepRecord `json:"steps"`
	Stop      StopReason   `json:"stop"`
}

// NewRunTrace creates a RunTrace ready for recording.
func NewRunTrace(config TraceConfig, algorithm string) *RunTrace {
	return &RunTrace{
		Config:    config,
		Algorithm: algorithm,
		Steps:     make([]StepRecord, 0),
	}
}

// Enabled reports whether records should be collected. Safe on a nil trace.
func (rt *RunTrace) Enabled() bool {
	return rt != nil && rt.Config.Level == TraceLevelSteps
}

// RecordStep appends a step record.
func (rt *RunTrace) RecordStep(record StepRecord) {
	rt.Steps = append(rt.Steps, record)
}

// SetStop records why the run ended.
func (rt *RunTrace) SetStop(reason StopReason) {
	rt.Stop = reason
}
