// Package graph provides the mutable undirected graph every simulation run
// operates on. It has no dependencies on sim/ and holds no global state.
//
// Enumeration order is deterministic: Nodes, Edges, Neighbors and
// ConnectedComponents all return identifiers sorted ascending, so strategies
// that scan them resolve ties the same way on every run.
package graph

import (
	"fmt"
	"sort"
)

// NodeID identifies a node. IDs are stable until the node is removed.
type NodeID int64

// Edge is an undirected edge. Edges returned by Graph are normalized so U < V.
type Edge struct {
	U NodeID `json:"u" yaml:"u"`
	V NodeID `json:"v" yaml:"v"`
}

// Normalize returns the edge with endpoints ordered U <= V.
func (e Edge) Normalize() Edge {
	if e.V < e.U {
		return Edge{U: e.V, V: e.U}
	}
	return e
}

func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e.U, e.V)
}

// Graph is a simple undirected graph: no self-loops, no parallel edges.
// Not safe for concurrent mutation; every simulation run owns its own Copy.
type Graph struct {
	adj   map[NodeID]map[NodeID]struct{}
	edges int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adj: make(map[NodeID]map[NodeID]struct{})}
}

// FromEdges builds a graph containing every endpoint in edges.
// Self-loops and duplicate edges are dropped.
func FromEdges(edges []Edge) *Graph {
	g := New()
	for _, e := range edges {
		g.AddNode(e.U)
		g.AddNode(e.V)
		g.AddEdge(e.U, e.V)
	}
	return g
}

// AddNode inserts id if missing. Returns false if it already existed.
func (g *Graph) AddNode(id NodeID) bool {
	if _, ok := g.adj[id]; ok {
		return false
	}
	g.adj[id] = make(map[NodeID]struct{})
	return true
}

// HasNode reports whether id is present.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.adj[id]
	return ok
}

// HasEdge reports whether the undirected edge u-v is present.
func (g *Graph) HasEdge(u, v NodeID) bool {
	nbrs, ok := g.adj[u]
	if !ok {
		return false
	}
	_, ok = nbrs[v]
	return ok
}

// AddEdge inserts u-v. It is a no-op returning false when either endpoint is
// missing, u == v, or the edge already exists.
func (g *Graph) AddEdge(u, v NodeID) bool {
	if u == v || !g.HasNode(u) || !g.HasNode(v) || g.HasEdge(u, v) {
		return false
	}
	g.adj[u][v] = struct{}{}
	g.adj[v][u] = struct{}{}
	g.edges++
	return true
}

// RemoveNode deletes id and its incident edges. Returns false if id was absent.
func (g *Graph) RemoveNode(id NodeID) bool {
	nbrs, ok := g.adj[id]
	if !ok {
		return false
	}
	for n := range nbrs {
		delete(g.adj[n], id)
	}
	g.edges -= len(nbrs)
	delete(g.adj, id)
	return true
}

// Degree returns the number of neighbors of id, or 0 if id is absent.
func (g *Graph) Degree(id NodeID) int {
	return len(g.adj[id])
}

// NumNodes returns the current node count.
func (g *Graph) NumNodes() int {
	return len(g.adj)
}

// NumEdges returns the current edge count.
func (g *Graph) NumEdges() int {
	return g.edges
}

// Nodes returns all node IDs in ascending order.
func (g *Graph) Nodes() []NodeID {
	ids := make([]NodeID, 0, len(g.adj))
	for id := range g.adj {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// Neighbors returns the neighbors of id in ascending order (nil if absent).
func (g *Graph) Neighbors(id NodeID) []NodeID {
	nbrs, ok := g.adj[id]
	if !ok {
		return nil
	}
	ids := make([]NodeID, 0, len(nbrs))
	for n := range nbrs {
		ids = append(ids, n)
	}
	sortIDs(ids)
	return ids
}

// Edges returns all edges, normalized and sorted by (U, V).
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.edges)
	for u, nbrs := range g.adj {
		for v := range nbrs {
			if u < v {
				edges = append(edges, Edge{U: u, V: v})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].U != edges[j].U {
			return edges[i].U < edges[j].U
		}
		return edges[i].V < edges[j].V
	})
	return edges
}

// Copy returns an independent deep clone.
func (g *Graph) Copy() *Graph {
	c := &Graph{
		adj:   make(map[NodeID]map[NodeID]struct{}, len(g.adj)),
		edges: g.edges,
	}
	for id, nbrs := range g.adj {
		m := make(map[NodeID]struct{}, len(nbrs))
		for n := range nbrs {
			m[n] = struct{}{}
		}
		c.adj[id] = m
	}
	return c
}

func sortIDs(ids []NodeID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
