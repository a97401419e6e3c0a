package dag

import "errors"

var (
	// ErrUnknownSourceNode is returned by [Validator.Check] under
	// [PolicyReject] when an edge starts at a node that was not declared.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Validator.Check] under
	// [PolicyReject] when an edge ends at a node that was not declared.
	ErrUnknownTargetNode = errors.New("unknown target node")
)

// Edge is a directed connection from Source to Target.
// Parallel edges between the same pair are allowed.
type Edge struct {
	Source string
	Target string
}

// Adjacency maps each declared node to its outgoing neighbors, in edge
// input order.
type Adjacency map[string][]string

// BuildAdjacency returns the outgoing-neighbor lists for nodes.
//
// Every declared node gets a key, even when it has no outgoing edges, so
// isolated nodes are still visited by a traversal over the map. An edge is
// recorded only when its source is declared; edges from unknown sources are
// dropped without error. Targets are recorded as given, declared or not.
func BuildAdjacency(nodes []string, edges []Edge) Adjacency {
	adj := make(Adjacency, len(nodes))
	for _, id := range nodes {
		if _, ok := adj[id]; !ok {
			adj[id] = []string{}
		}
	}
	for _, e := range edges {
		if out, ok := adj[e.Source]; ok {
			adj[e.Source] = append(out, e.Target)
		}
	}
	return adj
}

// Children returns the outgoing neighbors of id, or nil for a node that is
// not a key of the map.
func (a Adjacency) Children(id string) []string {
	return a[id]
}

// EdgeCount returns the number of arcs recorded in the map. It is lower than
// the submitted edge count when edges from unknown sources were dropped.
func (a Adjacency) EdgeCount() int {
	n := 0
	for _, out := range a {
		n += len(out)
	}
	return n
}
