// Package dag decides whether a pipeline graph is a directed acyclic graph
// and produces the status report the editor shows to its users.
//
// # Overview
//
// A pipeline is a list of node identifiers plus a list of directed edges
// between them. Nothing else about a node (its type, its data, its position
// on the canvas) takes part in validation. The package is a set of pure
// functions over that input: nothing is mutated, nothing is retained between
// calls, and every function is safe to call from many goroutines at once.
//
// # Basic Usage
//
//	nodes := []string{"input-1", "text-1", "llm-1", "output-1"}
//	edges := []dag.Edge{
//	    {Source: "input-1", Target: "text-1"},
//	    {Source: "text-1", Target: "llm-1"},
//	    {Source: "llm-1", Target: "output-1"},
//	}
//	res := dag.Validate(nodes, edges)
//	fmt.Println(res.Message) // Pipeline is valid! 4 nodes, 3 edges.
//
// # Cycle Detection
//
// [IsAcyclic] and [FindCycle] run a depth-first search from every unvisited
// node, so disconnected components are all checked. Each node carries one of
// three states ([Unvisited], [InProgress], [Done]); an edge into an
// InProgress node is a back-edge and therefore a cycle. The search keeps an
// explicit stack of frames instead of recursing, so a chain of many
// thousands of nodes does not grow the goroutine stack.
//
// # Malformed Edges
//
// Edges whose source is not a declared node are ignored; edges whose target
// is undeclared are followed as leaves. A [Validator] configured with
// [PolicyReject] refuses such edges instead, returning
// [ErrUnknownSourceNode] or [ErrUnknownTargetNode].
//
// # Complexity
//
// All operations run in O(V + E) time and O(V) auxiliary space.
package dag
