package evaluation

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/resilience-sim/sim"
	"github.com/inference-sim/resilience-sim/sim/graph"
	"github.com/inference-sim/resilience-sim/sim/internal/testutil"
)

func testEvaluator() *Evaluator {
	e := NewEvaluator()
	e.RandomRuns = 3
	e.Workers = 2
	e.DatasetName = "synthetic"
	return e
}

func scaleFree(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g, err := graph.BarabasiAlbert(n, 2, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	return g
}

func TestEvaluateDismant_ReplaysSequence(t *testing.T) {
	seq := sim.RemovalSequence([]graph.NodeID{1, 3})

	res, err := testEvaluator().EvaluateDismant(context.Background(), testutil.PathGraph(5), seq, "LLM", "path5")
	require.NoError(t, err)

	assert.Equal(t, "LLM", res.AlgorithmName)
	assert.Equal(t, 2, res.Budget)
	testutil.AssertFloat64Equal(t, "r_res", 0.24, res.RRes, 1e-9)
	assert.Equal(t, "synthetic", res.DatasetName)
}

func TestEvaluateDismantWithBaselines(t *testing.T) {
	// GIVEN a sequence longer than the budget
	req := DismantRequest{
		GraphName:  "path5",
		MethodName: "LLM",
		Sequence:   sim.RemovalSequence([]graph.NodeID{1, 3, 4}),
		Budget:     2,
	}

	// WHEN evaluating with both baselines
	out, err := testEvaluator().EvaluateDismantWithBaselines(context.Background(), testutil.PathGraph(5), req)
	require.NoError(t, err)

	// THEN the method result is truncated to the budget
	require.NotNil(t, out.Dismant)
	assert.Len(t, out.Dismant.AttackSequence, 2)
	// THEN HDA picks the same nodes and scores the same
	require.Contains(t, out.Baselines, BaselineHDA)
	assert.InDelta(t, out.Dismant.RRes, out.Baselines[BaselineHDA].RRes, 1e-12)
	// THEN Random is the 3-run average
	require.Contains(t, out.Baselines, BaselineRandom)
	assert.Equal(t, "Random_avg3", out.Baselines[BaselineRandom].AlgorithmName)
	assert.Contains(t, out.BaselineStdRRes, BaselineRandom)

	assert.Equal(t, TaskDismantle, out.TaskType)
	_, err = uuid.Parse(out.ID)
	assert.NoError(t, err)
	assert.Zero(t, out.FailureCount())
	assert.Len(t, out.Results(), 3)
}

func TestEvaluateDismantWithBaselines_DefaultBudgetAndSkips(t *testing.T) {
	g := scaleFree(t, 40)

	out, err := testEvaluator().EvaluateDismantWithBaselines(context.Background(), g, DismantRequest{GraphName: "ba40", SkipRandom: true})
	require.NoError(t, err)

	assert.Nil(t, out.Dismant)
	assert.NotContains(t, out.Baselines, BaselineRandom)
	require.Contains(t, out.Baselines, BaselineHDA)
	assert.Equal(t, 12, out.Baselines[BaselineHDA].Budget, "30 percent of 40 nodes")
}

func TestEvaluateConstruct_IdenticalGraphsScoreTheSame(t *testing.T) {
	// GIVEN the original graph passed as its own reconstruction
	g := scaleFree(t, 50)

	res, err := testEvaluator().EvaluateConstruct(context.Background(), g, g, nil, ConstructRequest{GraphName: "ba50"})
	require.NoError(t, err)

	// THEN the stress tests agree exactly and there is no improvement
	assert.Equal(t, res.ROriginalTar, res.RTar)
	assert.Equal(t, res.ROriginalRan, res.RRan)
	assert.Equal(t, 0.0, res.RImprovement)
	assert.Equal(t, 0, res.Budget)
	assert.NotNil(t, res.AddedEdges)
	assert.Equal(t, res.InitialEdges, res.FinalEdges)
}

func TestEvaluateConstruct_ClosingAPathIntoACycle(t *testing.T) {
	// GIVEN path 0-1-2-3-4 closed into a 5-cycle
	original := testutil.PathGraph(5)
	reconstructed, added := Reconstruct(original, []sim.Operation{sim.AddEdge(0, 4)})

	res, err := testEvaluator().EvaluateConstruct(context.Background(), original, reconstructed, added,
		ConstructRequest{GraphName: "path5", MethodName: "LLM", AttackBudget: 2})
	require.NoError(t, err)

	// THEN HDA on the cycle removes 0 (LCC .8) then 2 (LCC .4): .18 + .12
	assert.InDelta(t, 0.30, res.RTar, 1e-12)
	assert.InDelta(t, 0.24, res.ROriginalTar, 1e-12)
	assert.InDelta(t, 0.25, res.RImprovement, 1e-12)
	testutil.AssertCurveEqual(t, "hda curve", []float64{1, 0.8, 0.4}, res.HDALCCCurve, 1e-12)
	assert.Equal(t, []graph.Edge{{U: 0, V: 4}}, res.AddedEdges)
	assert.Equal(t, 1, res.Budget)
	assert.Equal(t, 5, res.FinalEdges)
	assert.Equal(t, 4, res.InitialEdges)
}

func TestEvaluateConstructAgainst_MatchesUncachedEvaluation(t *testing.T) {
	e := testEvaluator()
	original := scaleFree(t, 40)
	reconstructed, added := sim.DegreeConstruct(original, 4)
	req := ConstructRequest{GraphName: "ba40", AttackBudget: 10}

	base, err := e.StressTest(context.Background(), original, 10, "ba40")
	require.NoError(t, err)
	cached, err := e.EvaluateConstructAgainst(context.Background(), base, original, reconstructed, added, req)
	require.NoError(t, err)
	fresh, err := e.EvaluateConstruct(context.Background(), original, reconstructed, added, req)
	require.NoError(t, err)

	assert.Equal(t, fresh.RTar, cached.RTar)
	assert.Equal(t, fresh.RRan, cached.RRan)
	assert.Equal(t, fresh.ROriginalTar, cached.ROriginalTar)
	assert.Equal(t, fresh.ROriginalRan, cached.ROriginalRan)
}

func TestEvaluateConstructWithBaselines(t *testing.T) {
	e := testEvaluator()
	original := scaleFree(t, 40)
	reconstructed, added := sim.DegreeConstruct(original, 3)

	out, err := e.EvaluateConstructWithBaselines(context.Background(), original, ConstructBaselinesRequest{
		ConstructRequest: ConstructRequest{GraphName: "ba40", MethodName: "LLM", AttackBudget: 10},
		Reconstructed:    reconstructed,
		AddedEdges:       added,
		EdgeBudget:       5,
	})
	require.NoError(t, err)

	require.NotNil(t, out.Construct)
	assert.Equal(t, "LLM", out.Construct.MethodName)
	assert.Equal(t, 3, out.Construct.Budget)
	require.Contains(t, out.ConstructBaselines, BaselineRandomConstruct)
	require.Contains(t, out.ConstructBaselines, BaselineDegreeConstruct)
	assert.Equal(t, 5, out.ConstructBaselines[BaselineRandomConstruct].Budget)
	assert.Equal(t, 5, out.ConstructBaselines[BaselineDegreeConstruct].Budget)

	// THEN every candidate is compared against the same original baseline
	for name, r := range out.ConstructBaselines {
		assert.Equal(t, out.Construct.ROriginalTar, r.ROriginalTar, name)
		assert.Equal(t, 10, r.AttackBudget, name)
	}
	assert.Equal(t, TaskConstruct, out.TaskType)
	assert.Zero(t, out.FailureCount())
}

func TestEvaluateConstructWithBaselines_RandomConstructIsSeeded(t *testing.T) {
	original := scaleFree(t, 30)
	req := ConstructBaselinesRequest{ConstructRequest: ConstructRequest{GraphName: "ba30"}, EdgeBudget: 4, SkipDegree: true}

	a, err := testEvaluator().EvaluateConstructWithBaselines(context.Background(), original, req)
	require.NoError(t, err)
	b, err := testEvaluator().EvaluateConstructWithBaselines(context.Background(), original, req)
	require.NoError(t, err)

	assert.Nil(t, a.Construct)
	assert.NotContains(t, a.ConstructBaselines, BaselineDegreeConstruct)
	assert.Equal(t, a.ConstructBaselines[BaselineRandomConstruct].AddedEdges, b.ConstructBaselines[BaselineRandomConstruct].AddedEdges)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEvaluator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := testEvaluator()
	g := testutil.PathGraph(10)

	_, err := e.EvaluateDismantWithBaselines(ctx, g, DismantRequest{Budget: 3})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = e.EvaluateConstruct(ctx, g, g, nil, ConstructRequest{AttackBudget: 3})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluationResult_Save(t *testing.T) {
	out, err := testEvaluator().EvaluateDismantWithBaselines(context.Background(), testutil.PathGraph(5),
		DismantRequest{GraphName: "path5", Budget: 2, SkipRandom: true})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "eval", "result.json")

	require.NoError(t, out.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, out.ID, raw["id"])
	assert.Equal(t, "dismant", raw["task_type"])
	assert.Contains(t, raw, "baselines")
	assert.NotContains(t, raw, "construct")
}

func TestReconstruct_SkipsInvalidEdges(t *testing.T) {
	g := testutil.PathGraph(3)

	h, added := Reconstruct(g, []sim.Operation{sim.AddEdge(0, 2), sim.AddEdge(0, 1), sim.AddEdge(0, 9), sim.RemoveNode(1)})

	assert.Equal(t, []graph.Edge{{U: 0, V: 2}}, added)
	assert.Equal(t, 3, h.NumEdges())
	assert.Equal(t, 2, g.NumEdges())
}

func TestDefaultBudgets(t *testing.T) {
	g := scaleFree(t, 40)

	assert.Equal(t, 12, DefaultAttackBudget(g))
	assert.Equal(t, int(float64(g.NumEdges())*0.1), DefaultEdgeBudget(g))
}
