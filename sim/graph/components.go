package graph

// ConnectedComponents returns every connected component as a sorted slice of
// node IDs. Components are ordered by their smallest member.
func (g *Graph) ConnectedComponents() [][]NodeID {
	visited := make(map[NodeID]bool, len(g.adj))
	var components [][]NodeID

	// BFS from each unvisited node, in ascending ID order
	for _, start := range g.Nodes() {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []NodeID{start}
		var component []NodeID
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			component = append(component, id)
			for n := range g.adj[id] {
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
		sortIDs(component)
		components = append(components, component)
	}
	return components
}

// ComponentLabels maps each node to the index of its component in
// ConnectedComponents and returns the component sizes by index.
func (g *Graph) ComponentLabels() (map[NodeID]int, []int) {
	components := g.ConnectedComponents()
	labels := make(map[NodeID]int, len(g.adj))
	sizes := make([]int, len(components))
	for i, c := range components {
		sizes[i] = len(c)
		for _, id := range c {
			labels[id] = i
		}
	}
	return labels, sizes
}

// LargestComponentSize returns the node count of the largest connected
// component, or 0 for an empty graph.
func (g *Graph) LargestComponentSize() int {
	largest := 0
	for _, c := range g.ConnectedComponents() {
		if len(c) > largest {
			largest = len(c)
		}
	}
	return largest
}

// Clustering returns the local clustering coefficient of id: the fraction of
// neighbor pairs that are themselves connected. Nodes with fewer than two
// neighbors, or absent nodes, have coefficient 0.
func (g *Graph) Clustering(id NodeID) float64 {
	nbrs := g.Neighbors(id)
	k := len(nbrs)
	if k < 2 {
		return 0
	}
	triangles := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if g.HasEdge(nbrs[i], nbrs[j]) {
				triangles++
			}
		}
	}
	return float64(triangles) / float64(k*(k-1)/2)
}
