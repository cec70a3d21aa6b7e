package sim

import (
	"math/rand"
	"sort"

	"github.com/inference-sim/resilience-sim/sim/graph"
)

// degreePoolSize is how many of the lowest-degree nodes DegreeConstruct pairs up.
const degreePoolSize = 20

// attemptsPerEdge bounds RandomConstruct sampling at edgeBudget*attemptsPerEdge draws.
const attemptsPerEdge = 100

// RandomConstruct adds up to edgeBudget edges between uniformly sampled
// distinct node pairs, skipping pairs that are already adjacent. Sampling
// stops after edgeBudget*100 draws so dense or tiny graphs terminate.
// Returns the new graph and the added edges in insertion order; g is not modified.
func RandomConstruct(g *graph.Graph, edgeBudget int, rng *rand.Rand) (*graph.Graph, []graph.Edge) {
	h := g.Copy()
	nodes := h.Nodes()
	added := []graph.Edge{}
	if len(nodes) < 2 || edgeBudget <= 0 {
		return h, added
	}
	maxAttempts := edgeBudget * attemptsPerEdge
	for attempts := 0; len(added) < edgeBudget && attempts < maxAttempts; attempts++ {
		i := rng.Intn(len(nodes))
		j := rng.Intn(len(nodes) - 1)
		if j >= i {
			j++
		}
		u, v := nodes[i], nodes[j]
		if h.AddEdge(u, v) {
			added = append(added, graph.Edge{U: u, V: v})
		}
	}
	return h, added
}

// DegreeConstruct adds up to edgeBudget edges among the lowest-degree nodes.
// Each iteration ranks nodes by ascending degree (ties by ascending ID),
// keeps the first 20, and adds the first missing pair in rank order. It stops
// early once every pair in the pool is adjacent.
// Returns the new graph and the added edges in insertion order; g is not modified.
func DegreeConstruct(g *graph.Graph, edgeBudget int) (*graph.Graph, []graph.Edge) {
	h := g.Copy()
	added := []graph.Edge{}
	for len(added) < edgeBudget {
		pool := lowestDegree(h, degreePoolSize)
		e, ok := firstMissingPair(h, pool)
		if !ok {
			break
		}
		h.AddEdge(e.U, e.V)
		added = append(added, e)
	}
	return h, added
}

// lowestDegree returns up to k nodes ordered by ascending degree, ties by ID.
func lowestDegree(g *graph.Graph, k int) []graph.NodeID {
	nodes := g.Nodes()
	sort.SliceStable(nodes, func(i, j int) bool {
		return g.Degree(nodes[i]) < g.Degree(nodes[j])
	})
	if len(nodes) > k {
		nodes = nodes[:k]
	}
	return nodes
}

func firstMissingPair(g *graph.Graph, pool []graph.NodeID) (graph.Edge, bool) {
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			if !g.HasEdge(pool[i], pool[j]) {
				return graph.Edge{U: pool[i], V: pool[j]}, true
			}
		}
	}
	return graph.Edge{}, false
}

// EdgeAdditions wraps edges as AddEdge operations.
func EdgeAdditions(edges []graph.Edge) []Operation {
	ops := make([]Operation, len(edges))
	for i, e := range edges {
		ops[i] = AddEdge(e.U, e.V)
	}
	return ops
}
