package evaluation

import (
	"github.com/google/uuid"

	"github.com/inference-sim/resilience-sim/sim"
	"github.com/inference-sim/resilience-sim/sim/graph"
)

// TaskType names the kind of evaluation an EvaluationResult holds.
type TaskType string

const (
	TaskDismantle TaskType = "dismant"
	TaskConstruct TaskType = "construct"
)

// Baseline names used as keys in EvaluationResult.
const (
	BaselineHDA             = "HDA"
	BaselineRandom          = "Random"
	BaselineRandomConstruct = "RandomConstruct"
	BaselineDegreeConstruct = "DegreeConstruct"
)

// ConstructResult scores a reconstructed graph by stress-testing it and the
// original graph under the same attack budget.
type ConstructResult struct {
	MethodName string `json:"method_name"`
	GraphName  string `json:"graph_name"`

	RTar         float64 `json:"r_tar"` // R_res of the reconstructed graph under HDA
	RRan         float64 `json:"r_ran"` // mean R_res of the reconstructed graph under Random
	RImprovement float64 `json:"r_improvement"`
	ROriginalTar float64 `json:"r_original_tar"`
	ROriginalRan float64 `json:"r_original_ran"`

	HDALCCCurve            []float64 `json:"hda_lcc_curve"`
	HDARemovalFractions    []float64 `json:"hda_removal_fractions"`
	RandomLCCCurve         []float64 `json:"random_lcc_curve"`
	RandomRemovalFractions []float64 `json:"random_removal_fractions"`

	AddedEdges   []graph.Edge `json:"added_edges"`
	InitialNodes int          `json:"initial_nodes"`
	InitialEdges int          `json:"initial_edges"`
	FinalEdges   int          `json:"final_edges"`
	Budget       int          `json:"budget"` // number of added edges
	AttackBudget int          `json:"attack_budget"`
}

// newConstructResult derives every score from the two stress baselines.
// The improvement is relative to the original HDA resilience and is 0 when
// that is 0.
func newConstructResult(method, graphName string, original, reconstructed *graph.Graph, added []graph.Edge,
	attackBudget int, origBase, candBase *StressBaseline) *ConstructResult {
	if added == nil {
		added = []graph.Edge{}
	}
	r := &ConstructResult{
		MethodName:             method,
		GraphName:              graphName,
		RTar:                   candBase.RTar(),
		RRan:                   candBase.RRan(),
		ROriginalTar:           origBase.RTar(),
		ROriginalRan:           origBase.RRan(),
		HDALCCCurve:            candBase.HDA.LCCValues,
		HDARemovalFractions:    candBase.HDA.RemovalFractions,
		RandomLCCCurve:         candBase.Random.Average.LCCValues,
		RandomRemovalFractions: candBase.Random.Average.RemovalFractions,
		AddedEdges:             added,
		InitialNodes:           original.NumNodes(),
		InitialEdges:           original.NumEdges(),
		FinalEdges:             reconstructed.NumEdges(),
		Budget:                 len(added),
		AttackBudget:           attackBudget,
	}
	if r.ROriginalTar > 0 {
		r.RImprovement = (r.RTar - r.ROriginalTar) / r.ROriginalTar
	}
	return r
}

// EvaluationResult binds a method's result to its baselines for
// side-by-side reporting. Failures maps a component name to the error that
// prevented it from being computed; the other components are still present.
type EvaluationResult struct {
	ID                 string                      `json:"id"`
	TaskType           TaskType                    `json:"task_type"`
	GraphName          string                      `json:"graph_name"`
	Dismant            *sim.Result                 `json:"dismant,omitempty"`
	Construct          *ConstructResult            `json:"construct,omitempty"`
	Baselines          map[string]*sim.Result      `json:"baselines,omitempty"`
	ConstructBaselines map[string]*ConstructResult `json:"construct_baselines,omitempty"`
	BaselineStdRRes    map[string]float64          `json:"baseline_std_r_res,omitempty"`
	Failures           map[string]string           `json:"failures,omitempty"`
}

func newEvaluationResult(task TaskType, graphName string) *EvaluationResult {
	return &EvaluationResult{
		ID:        uuid.NewString(),
		TaskType:  task,
		GraphName: graphName,
	}
}

// FailureCount is the number of components that could not be computed.
func (r *EvaluationResult) FailureCount() int {
	return len(r.Failures)
}

func (r *EvaluationResult) recordFailure(name string, err error) {
	if r.Failures == nil {
		r.Failures = make(map[string]string)
	}
	r.Failures[name] = err.Error()
}

// Results returns the method result followed by the dismantle baselines in
// a fixed order, for tabular export.
func (r *EvaluationResult) Results() []*sim.Result {
	var out []*sim.Result
	if r.Dismant != nil {
		out = append(out, r.Dismant)
	}
	for _, name := range []string{BaselineHDA, BaselineRandom} {
		if b, ok := r.Baselines[name]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Save writes r as indented JSON to path, creating parent directories.
func (r *EvaluationResult) Save(path string) error {
	return sim.WriteJSONFile(path, r)
}
