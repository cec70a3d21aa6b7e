package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/inference-sim/resilience-sim/sim/graph"
)

// Strategy selects the next structural operation for a run.
// Returning ok=false means no viable candidate remains; the run ends early
// without error. step is 0-based; budget is the run's operation budget.
// A non-nil error fails the run.
type Strategy interface {
	Name() string
	SelectOperation(ctx context.Context, g *graph.Graph, step, budget int) (op Operation, ok bool, err error)
}

// Preparer is implemented by strategies that need to inspect the graph once
// before the first selection (e.g. to precompute a ranking).
type Preparer interface {
	Prepare(g *graph.Graph)
}

// Strategy names accepted by NewStrategy.
const (
	StrategyHighestDegree       = "hda"
	StrategyHighestDegreeStatic = "hda-static"
	StrategyRandom              = "random"
)

// validStrategies is the set of names NewStrategy can build.
var validStrategies = map[string]bool{
	StrategyHighestDegree:       true,
	StrategyHighestDegreeStatic: true,
	StrategyRandom:              true,
}

// IsValidStrategy reports whether name is accepted by NewStrategy.
func IsValidStrategy(name string) bool {
	return validStrategies[name]
}

// ValidStrategyNames returns the accepted strategy names, sorted.
func ValidStrategyNames() []string {
	names := make([]string, 0, len(validStrategies))
	for n := range validStrategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewStrategy creates a built-in strategy by name. seed is only used by
// "random". Panics on unrecognized names; check IsValidStrategy first.
func NewStrategy(name string, seed int64) Strategy {
	switch name {
	case StrategyHighestDegree:
		return &HighestDegree{}
	case StrategyHighestDegreeStatic:
		return &HighestDegreeStatic{}
	case StrategyRandom:
		return NewRandom(seed)
	default:
		panic(fmt.Sprintf("unknown strategy %q", name))
	}
}

// HighestDegree removes the node with the greatest current degree, recomputed
// on every call. Ties are broken by smallest node ID. O(V) per call.
type HighestDegree struct{}

// Name implements Strategy.
func (*HighestDegree) Name() string { return "HighestDegree" }

// SelectOperation implements Strategy for HighestDegree.
func (*HighestDegree) SelectOperation(_ context.Context, g *graph.Graph, _, _ int) (Operation, bool, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return Operation{}, false, nil
	}
	// nodes ascend, so strict > keeps the smallest ID among equal degrees
	best := nodes[0]
	bestDeg := g.Degree(best)
	for _, id := range nodes[1:] {
		if d := g.Degree(id); d > bestDeg {
			best, bestDeg = id, d
		}
	}
	return RemoveNode(best), true, nil
}

// HighestDegreeStatic ranks nodes once by initial degree (descending, ties by
// smallest ID) and removes them in that order, skipping nodes already gone.
type HighestDegreeStatic struct {
	ranking []graph.NodeID
	next    int
}

// Name implements Strategy.
func (*HighestDegreeStatic) Name() string { return "InitialDegree" }

// Prepare computes the degree ranking of g. Called by Run before the first step.
func (s *HighestDegreeStatic) Prepare(g *graph.Graph) {
	nodes := g.Nodes()
	degrees := make(map[graph.NodeID]int, len(nodes))
	for _, id := range nodes {
		degrees[id] = g.Degree(id)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return degrees[nodes[i]] > degrees[nodes[j]]
	})
	s.ranking = nodes
	s.next = 0
}

// SelectOperation implements Strategy for HighestDegreeStatic.
func (s *HighestDegreeStatic) SelectOperation(_ context.Context, g *graph.Graph, _, _ int) (Operation, bool, error) {
	for s.next < len(s.ranking) {
		id := s.ranking[s.next]
		s.next++
		if g.HasNode(id) {
			return RemoveNode(id), true, nil
		}
	}
	return Operation{}, false, nil
}

// Random removes a node sampled uniformly from the current nodes using its
// own generator. Two instances built with the same seed produce the same
// sequence on the same graph.
type Random struct {
	seed int64
	rng  *rand.Rand
}

// NewRandom creates a Random strategy seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Name implements Strategy.
func (*Random) Name() string { return "Random" }

// Seed returns the seed the strategy was built with.
func (r *Random) Seed() int64 { return r.seed }

// SelectOperation implements Strategy for Random.
func (r *Random) SelectOperation(_ context.Context, g *graph.Graph, _, _ int) (Operation, bool, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return Operation{}, false, nil
	}
	return RemoveNode(nodes[r.rng.Intn(len(nodes))]), true, nil
}

// PolicyFunc is an external selection callback, e.g. a learned scorer.
// It receives a private copy of the run's graph and may block.
type PolicyFunc func(ctx context.Context, snapshot *graph.Graph, step, budget int) (Operation, bool, error)

// ExternalPolicy adapts a PolicyFunc to the Strategy contract.
type ExternalPolicy struct {
	name   string
	policy PolicyFunc
}

// NewExternalPolicy wraps fn under the given algorithm name.
func NewExternalPolicy(name string, fn PolicyFunc) *ExternalPolicy {
	return &ExternalPolicy{name: name, policy: fn}
}

// Name implements Strategy.
func (p *ExternalPolicy) Name() string { return p.name }

// SelectOperation implements Strategy by delegating to the callback.
func (p *ExternalPolicy) SelectOperation(ctx context.Context, g *graph.Graph, step, budget int) (Operation, bool, error) {
	op, ok, err := p.policy(ctx, g.Copy(), step, budget)
	if err != nil {
		return Operation{}, false, fmt.Errorf("external policy %s at step %d: %w", p.name, step, err)
	}
	return op, ok, nil
}

// FixedSequence replays a precomputed list of operations, one per step.
// It is exhausted when the list runs out.
type FixedSequence struct {
	name string
	ops  []Operation
	next int
}

// NewFixedSequence replays ops under the given algorithm name.
func NewFixedSequence(name string, ops []Operation) *FixedSequence {
	return &FixedSequence{name: name, ops: ops}
}

// Name implements Strategy.
func (f *FixedSequence) Name() string { return f.name }

// Prepare rewinds the sequence to its first operation.
func (f *FixedSequence) Prepare(*graph.Graph) { f.next = 0 }

// SelectOperation implements Strategy for FixedSequence.
func (f *FixedSequence) SelectOperation(_ context.Context, _ *graph.Graph, _, _ int) (Operation, bool, error) {
	if f.next >= len(f.ops) {
		return Operation{}, false, nil
	}
	op := f.ops[f.next]
	f.next++
	return op, true, nil
}
