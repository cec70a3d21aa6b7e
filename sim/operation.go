package sim

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/inference-sim/resilience-sim/sim/graph"
)

// OpKind tags the variant of an Operation.
type OpKind int

const (
	// OpRemoveNode deletes Operation.Node and its incident edges.
	OpRemoveNode OpKind = iota
	// OpAddEdge inserts the undirected edge Operation.U-Operation.V.
	OpAddEdge
)

// Operation is a single structural change: RemoveNode(target) or AddEdge(u, v).
// Values are immutable once selected.
type Operation struct {
	Kind OpKind
	Node graph.NodeID // OpRemoveNode target
	U    graph.NodeID // OpAddEdge endpoints
	V    graph.NodeID
}

// RemoveNode returns a node-removal operation.
func RemoveNode(id graph.NodeID) Operation {
	return Operation{Kind: OpRemoveNode, Node: id}
}

// AddEdge returns an edge-addition operation.
func AddEdge(u, v graph.NodeID) Operation {
	return Operation{Kind: OpAddEdge, U: u, V: v}
}

// RemovalSequence wraps node IDs as removal operations.
func RemovalSequence(ids []graph.NodeID) []Operation {
	ops := make([]Operation, len(ids))
	for i, id := range ids {
		ops[i] = RemoveNode(id)
	}
	return ops
}

// apply mutates g. Returns false when the target is absent or the edge cannot
// be added; the graph is left unchanged in that case.
func (o Operation) apply(g *graph.Graph) bool {
	switch o.Kind {
	case OpRemoveNode:
		return g.RemoveNode(o.Node)
	case OpAddEdge:
		return g.AddEdge(o.U, o.V)
	default:
		return false
	}
}

// String renders the operation target: "7" for a removal, "3-9" for an addition.
func (o Operation) String() string {
	if o.Kind == OpAddEdge {
		return fmt.Sprintf("%d-%d", o.U, o.V)
	}
	return strconv.FormatInt(int64(o.Node), 10)
}

// ParseOperation is the inverse of Operation.String.
func ParseOperation(s string) (Operation, error) {
	if u, v, ok := strings.Cut(s, "-"); ok && u != "" {
		a, err := strconv.ParseInt(u, 10, 64)
		if err != nil {
			return Operation{}, fmt.Errorf("parsing edge source %q: %w", s, err)
		}
		b, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Operation{}, fmt.Errorf("parsing edge target %q: %w", s, err)
		}
		return AddEdge(graph.NodeID(a), graph.NodeID(b)), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Operation{}, fmt.Errorf("parsing node %q: %w", s, err)
	}
	return RemoveNode(graph.NodeID(n)), nil
}

// MarshalJSON encodes the operation as its target string.
func (o Operation) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON decodes a target string produced by MarshalJSON.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := ParseOperation(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}
