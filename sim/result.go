package sim

import (
	"errors"
	"fmt"
)

// ErrCurveLengthMismatch is returned when a curve's fraction and value
// sequences differ in length.
var ErrCurveLengthMismatch = errors.New("removal_fractions and lcc_values differ in length")

// Result is the fully computed outcome of one run (or an averaged batch).
// All derived fields (RRes, CollapseFraction) are filled before a Result is
// returned; callers must treat it as read-only.
type Result struct {
	AlgorithmName     string         `json:"algorithm_name"`
	DatasetName       string         `json:"dataset_name"`
	GraphName         string         `json:"graph_name"`
	AttackSequence    []Operation    `json:"attack_sequence"`
	RemovalFractions  []float64      `json:"removal_fractions"`
	LCCValues         []float64      `json:"lcc_values"`
	RRes              float64        `json:"r_res"`
	CollapseThreshold float64        `json:"collapse_threshold"`
	CollapseFraction  *float64       `json:"collapse_fraction"`
	InitialNodes      int            `json:"initial_nodes"`
	InitialEdges      int            `json:"initial_edges"`
	Budget            int            `json:"budget"`
	ExtraMetrics      map[string]any `json:"extra_metrics"`
}

// RunInfo carries the descriptive fields of a Result.
type RunInfo struct {
	AlgorithmName     string
	DatasetName       string
	GraphName         string
	InitialNodes      int
	InitialEdges      int
	Budget            int
	CollapseThreshold float64
}

// Curve is an LCC trajectory: Values[i] observed at Fractions[i].
type Curve struct {
	Fractions []float64
	Values    []float64
}

// NewResult builds a Result and computes R_res and the collapse fraction
// from the curve. The Result takes ownership of seq, curve and extra.
func NewResult(info RunInfo, seq []Operation, curve Curve, extra map[string]any) (*Result, error) {
	rres := ResilienceIntegral(curve.Fractions, curve.Values)
	return buildResult(info, seq, curve, extra, rres)
}

// buildResult is the single construction point for Result. rres is supplied
// by the caller so batch averages can carry the mean of per-run integrals.
func buildResult(info RunInfo, seq []Operation, curve Curve, extra map[string]any, rres float64) (*Result, error) {
	if len(curve.Fractions) != len(curve.Values) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrCurveLengthMismatch, len(curve.Fractions), len(curve.Values))
	}
	if seq == nil {
		seq = []Operation{}
	}
	if extra == nil {
		extra = map[string]any{}
	}
	r := &Result{
		AlgorithmName:     info.AlgorithmName,
		DatasetName:       info.DatasetName,
		GraphName:         info.GraphName,
		AttackSequence:    seq,
		RemovalFractions:  curve.Fractions,
		LCCValues:         curve.Values,
		RRes:              rres,
		CollapseThreshold: info.CollapseThreshold,
		InitialNodes:      info.InitialNodes,
		InitialEdges:      info.InitialEdges,
		Budget:            info.Budget,
		ExtraMetrics:      extra,
	}
	if frac, ok := CollapsePoint(curve.Fractions, curve.Values, info.CollapseThreshold); ok {
		r.CollapseFraction = &frac
	}
	return r, nil
}

// Collapsed reports whether the curve dropped below the collapse threshold.
func (r *Result) Collapsed() bool {
	return r.CollapseFraction != nil
}

// Steps returns the number of operations attempted.
func (r *Result) Steps() int {
	return len(r.AttackSequence)
}

// Curve returns the result's trajectory.
func (r *Result) Curve() Curve {
	return Curve{Fractions: r.RemovalFractions, Values: r.LCCValues}
}
