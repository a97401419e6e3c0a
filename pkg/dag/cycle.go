package dag

// State is the traversal mark of a node during cycle detection.
type State uint8

const (
	// Unvisited nodes have not been entered yet.
	Unvisited State = iota
	// InProgress nodes are on the current depth-first path.
	InProgress
	// Done nodes have been fully explored. Edges into them are cross or
	// forward edges and never close a cycle.
	Done
)

// String returns a lowercase name for the state.
func (s State) String() string {
	switch s {
	case Unvisited:
		return "unvisited"
	case InProgress:
		return "in-progress"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// frame is one level of the explicit depth-first stack: the node being
// explored and the index of the next neighbor to look at.
type frame struct {
	node string
	next int
}

// IsAcyclic reports whether the graph formed by nodes and edges contains no
// directed cycle. Self-loops count as cycles. An empty node list is
// acyclic.
func IsAcyclic(nodes []string, edges []Edge) bool {
	return FindCycle(nodes, edges) == nil
}

// FindCycle returns the first directed cycle found, as a closed path whose
// first and last elements are the same node (a self-loop on a is [a a]).
// It returns nil when the graph is acyclic.
//
// Roots are visited in node input order and neighbors in edge input order,
// so the reported cycle is deterministic for a given input.
func FindCycle(nodes []string, edges []Edge) []string {
	if len(nodes) == 0 {
		return nil
	}
	return findCycle(nodes, BuildAdjacency(nodes, edges))
}

func findCycle(nodes []string, adj Adjacency) []string {
	state := make(map[string]State, len(adj))
	var stack []frame

	for _, root := range nodes {
		if state[root] != Unvisited {
			continue
		}
		state[root] = InProgress
		stack = append(stack[:0], frame{node: root})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := adj[top.node]
			if top.next == len(children) {
				state[top.node] = Done
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++

			switch state[child] {
			case Unvisited:
				state[child] = InProgress
				stack = append(stack, frame{node: child})
			case InProgress:
				return cyclePath(stack, child)
			}
		}
	}
	return nil
}

// cyclePath reads the cycle closed by a back-edge into target off the
// current stack. target is InProgress, so it is on the stack.
func cyclePath(stack []frame, target string) []string {
	start := len(stack) - 1
	for start > 0 && stack[start].node != target {
		start--
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.node)
	}
	return append(path, target)
}
