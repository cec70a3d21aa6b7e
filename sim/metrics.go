// Resilience metrics: LCC ratio, R_res integral, collapse point, and
// per-node / per-edge impact scoring.

package sim

import (
	"math"
	"sort"

	"github.com/inference-sim/resilience-sim/sim/graph"
	"gonum.org/v1/gonum/integrate"
)

// DefaultCollapseThreshold is the LCC ratio below which a network is
// considered collapsed.
const DefaultCollapseThreshold = 0.2

// zeroGainEpsilon is the magnitude below which an LCC gain counts as zero.
const zeroGainEpsilon = 1e-6

// LCCRatio returns the largest connected component size divided by
// initialNodes. The denominator is fixed at the run's initial node count so
// the curve is anchored regardless of how many nodes remain.
// Returns 0 for an empty graph or non-positive initialNodes.
func LCCRatio(g *graph.Graph, initialNodes int) float64 {
	if g.NumNodes() == 0 || initialNodes <= 0 {
		return 0
	}
	return float64(g.LargestComponentSize()) / float64(initialNodes)
}

// ResilienceIntegral integrates values over fractions with the trapezoidal
// rule. Fewer than two points yields exactly 0. If the slices differ in
// length the shorter length is used.
func ResilienceIntegral(fractions, values []float64) float64 {
	n := min(len(fractions), len(values))
	if n < 2 {
		return 0
	}
	x, f := fractions[:n], values[:n]
	if sort.Float64sAreSorted(x) {
		return integrate.Trapezoidal(x, f)
	}
	// integrate.Trapezoidal rejects unsorted abscissae; keep the signed
	// trapezoid sum so hand-built curves still get a value.
	sum := 0.0
	for i := 0; i < n-1; i++ {
		sum += 0.5 * (x[i+1] - x[i]) * (f[i] + f[i+1])
	}
	return sum
}

// CollapsePoint returns the fraction at which values first drop below
// threshold, linearly interpolated between the crossing point and its
// predecessor. ok is false when the curve never drops below threshold.
func CollapsePoint(fractions, values []float64, threshold float64) (frac float64, ok bool) {
	n := min(len(fractions), len(values))
	for i := 0; i < n; i++ {
		if values[i] >= threshold {
			continue
		}
		if i > 0 && values[i-1] != values[i] {
			t := (values[i-1] - threshold) / (values[i-1] - values[i])
			return fractions[i-1] + t*(fractions[i]-fractions[i-1]), true
		}
		return fractions[i], true
	}
	return 0, false
}

// NodeImpact is the drop in LCC ratio caused by removing node from g,
// measured against the current node count and clamped to [0, 1].
// Absent nodes score 0. g is not modified.
func NodeImpact(g *graph.Graph, node graph.NodeID) float64 {
	if !g.HasNode(node) {
		return 0
	}
	n := g.NumNodes()
	before := LCCRatio(g, n)
	h := g.Copy()
	h.RemoveNode(node)
	after := LCCRatio(h, n)
	return clamp01(before - after)
}

// EdgeGain is the increase in LCC ratio from adding u-v, clamped to [0, 1].
// Absent endpoints, self-loops and existing edges score 0. When the edge
// would not change the LCC (both endpoints already share a component, or
// neither touches the largest one) the gain falls back to a small structural
// proxy that favours endpoints with low clustering:
//
//	(2 - C(u) - C(v)) / (2n) * 0.1
//
// so a candidate is never scored as exactly "no effect". g is not modified.
func EdgeGain(g *graph.Graph, u, v graph.NodeID) float64 {
	if u == v || !g.HasNode(u) || !g.HasNode(v) || g.HasEdge(u, v) {
		return 0
	}
	n := g.NumNodes()
	labels, sizes := g.ComponentLabels()
	largest := 0
	for _, s := range sizes {
		largest = max(largest, s)
	}
	after := largest
	if cu, cv := labels[u], labels[v]; cu != cv {
		after = max(after, sizes[cu]+sizes[cv])
	}
	gain := float64(after-largest) / float64(n)
	if math.Abs(gain) < zeroGainEpsilon {
		gain = (2.0 - g.Clustering(u) - g.Clustering(v)) / (2.0 * float64(n)) * 0.1
	}
	return clamp01(gain)
}

// NodeImpacts scores every candidate with NodeImpact.
func NodeImpacts(g *graph.Graph, candidates []graph.NodeID) map[graph.NodeID]float64 {
	scores := make(map[graph.NodeID]float64, len(candidates))
	for _, id := range candidates {
		scores[id] = NodeImpact(g, id)
	}
	return scores
}

// EdgeGains scores every candidate edge with EdgeGain. Keys are normalized.
func EdgeGains(g *graph.Graph, candidates []graph.Edge) map[graph.Edge]float64 {
	scores := make(map[graph.Edge]float64, len(candidates))
	for _, e := range candidates {
		scores[e.Normalize()] = EdgeGain(g, e.U, e.V)
	}
	return scores
}

// NodeScore pairs a node with its impact score.
type NodeScore struct {
	Node  graph.NodeID
	Score float64
}

// RankNodesByImpact returns candidates ordered by descending NodeImpact,
// ties broken by ascending node ID.
func RankNodesByImpact(g *graph.Graph, candidates []graph.NodeID) []NodeScore {
	ranked := make([]NodeScore, 0, len(candidates))
	for id, s := range NodeImpacts(g, candidates) {
		ranked = append(ranked, NodeScore{Node: id, Score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Node < ranked[j].Node
	})
	return ranked
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
