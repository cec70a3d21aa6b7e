package evaluation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/inference-sim/resilience-sim/sim"
	"github.com/inference-sim/resilience-sim/sim/graph"
)

// Defaults used by NewEvaluator and by budget resolution.
const (
	DefaultRandomRuns       = 10
	DefaultRandomSeed int64 = 42

	// DefaultAttackFraction of the graph's nodes is the attack budget when none is given.
	DefaultAttackFraction = 0.3
	// DefaultEdgeFraction of the graph's edges is the construction budget when none is given.
	DefaultEdgeFraction = 0.1

	defaultMethodName = "Policy"
)

// DefaultAttackBudget returns 30% of g's nodes, truncated.
func DefaultAttackBudget(g *graph.Graph) int {
	return int(float64(g.NumNodes()) * DefaultAttackFraction)
}

// DefaultEdgeBudget returns 10% of g's edges, truncated.
func DefaultEdgeBudget(g *graph.Graph) int {
	return int(float64(g.NumEdges()) * DefaultEdgeFraction)
}

// Evaluator runs standardized dismantle and construct evaluations. HDA and an
// averaged Random attack act as fixed stress tests, so scores of different
// candidate graphs are comparable.
//
// Evaluator holds configuration only and is safe for concurrent use.
type Evaluator struct {
	CollapseThreshold float64
	RandomRuns        int
	RandomSeed        int64
	Workers           int // bound on concurrent runs; <= 0 means GOMAXPROCS
	DatasetName       string
}

// NewEvaluator returns an Evaluator with the default threshold, run count and seed.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		CollapseThreshold: sim.DefaultCollapseThreshold,
		RandomRuns:        DefaultRandomRuns,
		RandomSeed:        DefaultRandomSeed,
	}
}

func (e *Evaluator) runConfig(budget int, graphName string) sim.RunConfig {
	return sim.RunConfig{
		Budget:            budget,
		CollapseThreshold: e.CollapseThreshold,
		DatasetName:       e.DatasetName,
		GraphName:         graphName,
	}
}

func (e *Evaluator) newGroup(ctx context.Context) (*errgroup.Group, context.Context) {
	eg, egCtx := errgroup.WithContext(ctx)
	if e.Workers > 0 {
		eg.SetLimit(e.Workers)
	}
	return eg, egCtx
}

// EvaluateDismant replays seq on g and scores it. The budget is len(seq);
// operations whose target is already gone are no-ops.
func (e *Evaluator) EvaluateDismant(ctx context.Context, g *graph.Graph, seq []sim.Operation, method, graphName string) (*sim.Result, error) {
	if method == "" {
		method = defaultMethodName
	}
	return sim.Run(ctx, g, sim.NewFixedSequence(method, seq), e.runConfig(len(seq), graphName))
}

// DismantRequest describes a dismantle evaluation with baselines.
type DismantRequest struct {
	GraphName  string
	MethodName string
	Sequence   []sim.Operation // optional; truncated to Budget
	Budget     int             // <= 0 means DefaultAttackBudget
	SkipHDA    bool
	SkipRandom bool
}

// EvaluateDismantWithBaselines scores the request's sequence (if any) next to
// HDA and the Random average under one budget. The three parts run
// concurrently. A part that fails is recorded in Failures; only ctx
// cancellation returns an error.
func (e *Evaluator) EvaluateDismantWithBaselines(ctx context.Context, g *graph.Graph, req DismantRequest) (*EvaluationResult, error) {
	budget := req.Budget
	if budget <= 0 {
		budget = DefaultAttackBudget(g)
	}
	out := newEvaluationResult(TaskDismantle, req.GraphName)
	out.Baselines = make(map[string]*sim.Result)

	methodName := req.MethodName
	if methodName == "" {
		methodName = defaultMethodName
	}
	seq := req.Sequence
	if len(seq) > budget {
		seq = seq[:budget]
	}

	var (
		method, hda               *sim.Result
		random                    *sim.BatchResult
		methodErr, hdaErr, rndErr error
	)
	eg, egCtx := e.newGroup(ctx)
	if len(seq) > 0 {
		eg.Go(func() error {
			method, methodErr = e.EvaluateDismant(egCtx, g, seq, methodName, req.GraphName)
			return ctx.Err()
		})
	}
	if !req.SkipHDA {
		eg.Go(func() error {
			hda, hdaErr = sim.Run(egCtx, g, &sim.HighestDegree{}, e.runConfig(budget, req.GraphName))
			return ctx.Err()
		})
	}
	if !req.SkipRandom {
		eg.Go(func() error {
			random, rndErr = e.randomBatch(egCtx, g, budget, req.GraphName)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("dismantle evaluation of %q cancelled: %w", req.GraphName, err)
	}

	switch {
	case methodErr != nil:
		out.recordFailure(methodName, methodErr)
	case method != nil:
		out.Dismant = method
	}
	switch {
	case hdaErr != nil:
		out.recordFailure(BaselineHDA, hdaErr)
	case hda != nil:
		out.Baselines[BaselineHDA] = hda
	}
	switch {
	case rndErr != nil:
		out.recordFailure(BaselineRandom, rndErr)
	case random != nil:
		out.Baselines[BaselineRandom] = random.Average
		out.BaselineStdRRes = map[string]float64{BaselineRandom: random.StdRRes}
	}
	for name, msg := range out.Failures {
		logrus.Warnf("dismantle evaluation of %q: %s skipped: %s", req.GraphName, name, msg)
	}
	logrus.Infof("dismantle evaluation of %q done: budget=%d baselines=%d failures=%d",
		req.GraphName, budget, len(out.Baselines), out.FailureCount())
	return out, nil
}

func (e *Evaluator) randomBatch(ctx context.Context, g *graph.Graph, budget int, graphName string) (*sim.BatchResult, error) {
	return sim.RunBatch(ctx, g, func(seed int64) sim.Strategy { return sim.NewRandom(seed) }, sim.BatchConfig{
		Runs:     e.RandomRuns,
		BaseSeed: e.RandomSeed,
		Workers:  e.Workers,
		Run:      e.runConfig(budget, graphName),
	})
}

// StressBaseline is the outcome of the two fixed stress tests on one graph.
type StressBaseline struct {
	Budget int
	HDA    *sim.Result
	Random *sim.BatchResult
}

// RTar is the graph's R_res under HDA.
func (b *StressBaseline) RTar() float64 { return b.HDA.RRes }

// RRan is the graph's mean R_res under Random.
func (b *StressBaseline) RRan() float64 { return b.Random.Average.RRes }

// StressTest attacks g with HDA and the Random average under budget
// (<= 0 means DefaultAttackBudget). The result depends only on g, budget and
// the Evaluator's settings, so callers scoring many reconstructions of one
// original graph may compute it once and pass it to EvaluateConstructAgainst.
func (e *Evaluator) StressTest(ctx context.Context, g *graph.Graph, budget int, graphName string) (*StressBaseline, error) {
	if budget <= 0 {
		budget = DefaultAttackBudget(g)
	}
	base := &StressBaseline{Budget: budget}
	eg, egCtx := e.newGroup(ctx)
	eg.Go(func() error {
		r, err := sim.Run(egCtx, g, &sim.HighestDegree{}, e.runConfig(budget, graphName))
		if err != nil {
			return fmt.Errorf("HDA stress test: %w", err)
		}
		base.HDA = r
		return nil
	})
	eg.Go(func() error {
		b, err := e.randomBatch(egCtx, g, budget, graphName)
		if err != nil {
			return fmt.Errorf("Random stress test: %w", err)
		}
		base.Random = b
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return base, nil
}

// ConstructRequest describes a construct evaluation.
type ConstructRequest struct {
	GraphName    string
	MethodName   string
	AttackBudget int // <= 0 means DefaultAttackBudget of the reconstructed graph
}

// EvaluateConstruct stress-tests reconstructed and original under the same
// attack budget and reports R_tar, R_ran, their original-graph counterparts
// and the relative HDA improvement. The original baseline is recomputed on
// every call; see StressTest to reuse it.
func (e *Evaluator) EvaluateConstruct(ctx context.Context, original, reconstructed *graph.Graph, added []graph.Edge, req ConstructRequest) (*ConstructResult, error) {
	budget := req.AttackBudget
	if budget <= 0 {
		budget = DefaultAttackBudget(reconstructed)
	}
	orig, err := e.StressTest(ctx, original, budget, req.GraphName)
	if err != nil {
		return nil, fmt.Errorf("stress testing original graph: %w", err)
	}
	return e.EvaluateConstructAgainst(ctx, orig, original, reconstructed, added, req)
}

// EvaluateConstructAgainst is EvaluateConstruct with a precomputed original
// baseline. The attack budget is taken from origBase.
func (e *Evaluator) EvaluateConstructAgainst(ctx context.Context, origBase *StressBaseline, original, reconstructed *graph.Graph, added []graph.Edge, req ConstructRequest) (*ConstructResult, error) {
	cand, err := e.StressTest(ctx, reconstructed, origBase.Budget, req.GraphName)
	if err != nil {
		return nil, fmt.Errorf("stress testing reconstructed graph: %w", err)
	}
	method := req.MethodName
	if method == "" {
		method = defaultMethodName
	}
	r := newConstructResult(method, req.GraphName, original, reconstructed, added, origBase.Budget, origBase, cand)
	logrus.Debugf("[%s] construct on %q: r_tar=%.6f r_ran=%.6f improvement=%.4f",
		method, req.GraphName, r.RTar, r.RRan, r.RImprovement)
	return r, nil
}

// ConstructBaselinesRequest describes a construct evaluation with baselines.
type ConstructBaselinesRequest struct {
	ConstructRequest
	Reconstructed *graph.Graph // optional method output
	AddedEdges    []graph.Edge
	EdgeBudget    int // <= 0 means DefaultEdgeBudget of the original graph
	SkipRandom    bool
	SkipDegree    bool
}

// EvaluateConstructWithBaselines scores the method's reconstruction (if any)
// next to RandomConstruct and DegreeConstruct reconstructions built with the
// same edge budget. The original graph is stress-tested once and shared by
// all candidates. A candidate that fails is recorded in Failures; only ctx
// cancellation or a failed original stress test returns an error.
func (e *Evaluator) EvaluateConstructWithBaselines(ctx context.Context, original *graph.Graph, req ConstructBaselinesRequest) (*EvaluationResult, error) {
	edgeBudget := req.EdgeBudget
	if edgeBudget <= 0 {
		edgeBudget = DefaultEdgeBudget(original)
	}
	attackBudget := req.AttackBudget
	if attackBudget <= 0 {
		attackBudget = DefaultAttackBudget(original)
	}
	out := newEvaluationResult(TaskConstruct, req.GraphName)
	out.ConstructBaselines = make(map[string]*ConstructResult)

	origBase, err := e.StressTest(ctx, original, attackBudget, req.GraphName)
	if err != nil {
		return nil, fmt.Errorf("stress testing original graph %q: %w", req.GraphName, err)
	}

	type candidate struct {
		name     string
		graph    *graph.Graph
		added    []graph.Edge
		isMethod bool
	}
	var candidates []candidate
	methodName := req.MethodName
	if methodName == "" {
		methodName = defaultMethodName
	}
	if req.Reconstructed != nil && len(req.AddedEdges) > 0 {
		candidates = append(candidates, candidate{methodName, req.Reconstructed, req.AddedEdges, true})
	}
	if !req.SkipRandom {
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(e.RandomSeed)).ForSubsystem(sim.SubsystemConstruct)
		h, added := sim.RandomConstruct(original, edgeBudget, rng)
		candidates = append(candidates, candidate{BaselineRandomConstruct, h, added, false})
	}
	if !req.SkipDegree {
		h, added := sim.DegreeConstruct(original, edgeBudget)
		candidates = append(candidates, candidate{BaselineDegreeConstruct, h, added, false})
	}

	results := make([]*ConstructResult, len(candidates))
	errs := make([]error, len(candidates))
	eg, egCtx := e.newGroup(ctx)
	for i, c := range candidates {
		i, c := i, c
		eg.Go(func() error {
			creq := ConstructRequest{GraphName: req.GraphName, MethodName: c.name, AttackBudget: attackBudget}
			results[i], errs[i] = e.EvaluateConstructAgainst(egCtx, origBase, original, c.graph, c.added, creq)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("construct evaluation of %q cancelled: %w", req.GraphName, err)
	}

	for i, c := range candidates {
		if errs[i] != nil {
			out.recordFailure(c.name, errs[i])
			logrus.Warnf("construct evaluation of %q: %s skipped: %v", req.GraphName, c.name, errs[i])
			continue
		}
		if c.isMethod {
			out.Construct = results[i]
			continue
		}
		out.ConstructBaselines[c.name] = results[i]
	}
	logrus.Infof("construct evaluation of %q done: edge_budget=%d attack_budget=%d baselines=%d failures=%d",
		req.GraphName, edgeBudget, attackBudget, len(out.ConstructBaselines), out.FailureCount())
	return out, nil
}

// Reconstruct applies the AddEdge operations in ops to a copy of g and
// returns it with the edges that were actually added. Other operations and
// edges that cannot be added are ignored.
func Reconstruct(g *graph.Graph, ops []sim.Operation) (*graph.Graph, []graph.Edge) {
	h := g.Copy()
	added := []graph.Edge{}
	for _, op := range ops {
		if op.Kind == sim.OpAddEdge && h.AddEdge(op.U, op.V) {
			added = append(added, graph.Edge{U: op.U, V: op.V})
		}
	}
	return h, added
}
