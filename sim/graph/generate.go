package graph

import (
	"fmt"
	"math/rand"
)

// Path returns the path graph 0-1-...-(n-1).
func Path(n int) *Graph {
	g := New()
	for i := 0; i < n; i++ {
		g.AddNode(NodeID(i))
		if i > 0 {
			g.AddEdge(NodeID(i-1), NodeID(i))
		}
	}
	return g
}

// BarabasiAlbert grows a preferential-attachment graph of n nodes where each
// new node attaches to m distinct existing nodes chosen with probability
// proportional to degree. The seed graph is a star on nodes 0..m.
// The result is connected and fully determined by rng.
func BarabasiAlbert(n, m int, rng *rand.Rand) (*Graph, error) {
	if m < 1 || m >= n {
		return nil, fmt.Errorf("barabasi-albert requires 1 <= m < n, got m=%d n=%d", m, n)
	}
	g := New()
	for i := 0; i <= m; i++ {
		g.AddNode(NodeID(i))
	}
	for i := 1; i <= m; i++ {
		g.AddEdge(0, NodeID(i))
	}

	// one entry per edge endpoint, so uniform picks are degree-weighted
	repeated := make([]NodeID, 0, 2*m*n)
	for i := 1; i <= m; i++ {
		repeated = append(repeated, 0, NodeID(i))
	}

	for source := m + 1; source < n; source++ {
		src := NodeID(source)
		targets := make(map[NodeID]struct{}, m)
		for len(targets) < m {
			targets[repeated[rng.Intn(len(repeated))]] = struct{}{}
		}
		ordered := make([]NodeID, 0, m)
		for t := range targets {
			ordered = append(ordered, t)
		}
		sortIDs(ordered)

		g.AddNode(src)
		for _, t := range ordered {
			g.AddEdge(src, t)
			repeated = append(repeated, t, src)
		}
	}
	return g, nil
}

// ErdosRenyi returns a G(n, p) random graph: each of the n(n-1)/2 pairs is
// joined independently with probability p. Pairs are visited in (i, j)
// lexicographic order so the result is fully determined by rng.
func ErdosRenyi(n int, p float64, rng *rand.Rand) (*Graph, error) {
	if n < 0 {
		return nil, fmt.Errorf("erdos-renyi requires n >= 0, got %d", n)
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("erdos-renyi requires 0 <= p <= 1, got %f", p)
	}
	g := New()
	for i := 0; i < n; i++ {
		g.AddNode(NodeID(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() < p {
				g.AddEdge(NodeID(i), NodeID(j))
			}
		}
	}
	return g, nil
}
