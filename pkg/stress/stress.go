// Package stress generates large synthetic pipelines for load and
// performance testing.
//
// The shapes match the editor's stress-test button: nodes cycle through the
// common node types on a square-ish grid and each row is chained left to
// right. Node ids are deterministic ("node-1", "node-2", ...) so generated
// files are reproducible and cache-friendly.
package stress

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// Grid spacing in canvas units.
const (
	SpacingX = 300
	SpacingY = 200
)

// nodeTypes is the order in which generated nodes are typed.
var nodeTypes = []string{
	pipeline.TypeInput,
	pipeline.TypeOutput,
	pipeline.TypeLLM,
	pipeline.TypeText,
	pipeline.TypeMath,
	pipeline.TypeDelay,
}

// NodeID returns the id of the i-th generated node (zero-based).
func NodeID(i int) string {
	return fmt.Sprintf("node-%d", i+1)
}

// EdgeID returns the editor's id for an edge between two nodes.
func EdgeID(source, target string) string {
	return fmt.Sprintf("edge-%s-%s", source, target)
}

// Columns returns the grid width for count nodes: ceil(sqrt(count)).
func Columns(count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(count))))
}

// Nodes returns count nodes laid out on the grid. Negative counts yield an
// empty slice.
func Nodes(count int) []pipeline.Node {
	count = max(count, 0)
	cols := Columns(count)
	nodes := make([]pipeline.Node, count)
	for i := range nodes {
		nodes[i] = pipeline.Node{
			ID:   NodeID(i),
			Type: nodeTypes[i%len(nodeTypes)],
			Data: map[string]any{},
			Position: pipeline.Position{
				X: float64((i % cols) * SpacingX),
				Y: float64((i / cols) * SpacingY),
			},
		}
	}
	return nodes
}

// Grid returns count grid nodes with each row chained left to right. The
// result is always a DAG; rows are not connected to each other.
func Grid(count int) *pipeline.Payload {
	nodes := Nodes(count)
	cols := Columns(len(nodes))
	edges := []pipeline.Edge{}
	for i := 0; i+1 < len(nodes); i++ {
		if (i+1)%cols != 0 {
			edges = append(edges, link(nodes[i].ID, nodes[i+1].ID))
		}
	}
	return &pipeline.Payload{Nodes: nodes, Edges: edges}
}

// Chain returns count grid nodes joined into a single path
// node-1 -> node-2 -> ... -> node-count.
func Chain(count int) *pipeline.Payload {
	nodes := Nodes(count)
	edges := make([]pipeline.Edge, 0, max(len(nodes)-1, 0))
	for i := 0; i+1 < len(nodes); i++ {
		edges = append(edges, link(nodes[i].ID, nodes[i+1].ID))
	}
	return &pipeline.Payload{Nodes: nodes, Edges: edges}
}

// WithBackEdge returns a copy of p with an extra edge from its last node to
// its first, closing a cycle when a path connects them. Payloads without
// nodes are copied unchanged.
func WithBackEdge(p *pipeline.Payload) *pipeline.Payload {
	out := &pipeline.Payload{
		Nodes: slices.Clone(p.Nodes),
		Edges: slices.Clone(p.Edges),
	}
	if out.Edges == nil {
		out.Edges = []pipeline.Edge{}
	}
	if len(p.Nodes) == 0 {
		return out
	}
	first, last := p.Nodes[0].ID, p.Nodes[len(p.Nodes)-1].ID
	out.Edges = append(out.Edges, link(last, first))
	return out
}

func link(source, target string) pipeline.Edge {
	return pipeline.Edge{ID: EdgeID(source, target), Source: source, Target: target}
}
