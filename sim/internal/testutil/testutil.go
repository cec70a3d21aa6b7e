// Package testutil provides shared test infrastructure for the resilience
// simulator: float tolerance assertions and small fixture graphs used across
// sim/ and sim/evaluation/ test packages.
package testutil

import (
	"math"
	"testing"

	"github.com/inference-sim/resilience-sim/sim/graph"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertCurveEqual compares two curves elementwise with absolute tolerance.
func AssertCurveEqual(t *testing.T, name string, want, got []float64, absTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Errorf("%s: length %d, want %d (got %v, want %v)", name, len(got), len(want), got, want)
		return
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > absTol {
			t.Errorf("%s[%d]: got %v, want %v", name, i, got[i], want[i])
		}
	}
}

// PathGraph returns the path 0-1-...-(n-1).
func PathGraph(n int) *graph.Graph {
	return graph.Path(n)
}

// StarGraph returns a star with center 0 and leaves 1..leaves.
func StarGraph(leaves int) *graph.Graph {
	g := graph.New()
	g.AddNode(0)
	for i := 1; i <= leaves; i++ {
		g.AddNode(graph.NodeID(i))
		g.AddEdge(0, graph.NodeID(i))
	}
	return g
}

// CompleteGraph returns the complete graph on nodes 0..n-1.
func CompleteGraph(n int) *graph.Graph {
	g := graph.New()
	for i := 0; i < n; i++ {
		g.AddNode(graph.NodeID(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.AddEdge(graph.NodeID(i), graph.NodeID(j))
		}
	}
	return g
}

// TwoTriangles returns triangles {0,1,2} and {3,4,5} with no edge between them.
func TwoTriangles() *graph.Graph {
	return graph.FromEdges([]graph.Edge{
		{U: 0, V: 1}, {U: 1, V: 2}, {U: 0, V: 2},
		{U: 3, V: 4}, {U: 4, V: 5}, {U: 3, V: 5},
	})
}
