// Package pipeline holds the wire model shared by the editor, the HTTP
// server, the remote client and the CLI, plus the [Runner] that validates a
// submitted pipeline with caching.
//
// # Wire format
//
// The editor posts its whole canvas:
//
//	{
//	  "nodes": [{"id": "input-1", "type": "inputNode", "data": {...}, "position": {"x": 0, "y": 0}}],
//	  "edges": [{"id": "edge-input-1-llm-1", "source": "input-1", "target": "llm-1"}]
//	}
//
// and receives a [Response]:
//
//	{"num_nodes": 2, "num_edges": 1, "is_dag": true, "message": "Pipeline is valid! 2 nodes, 1 edges."}
//
// Only node ids and edge endpoints take part in validation. Data, position
// and any other canvas fields are carried through untouched or ignored.
//
// # Usage
//
//	p, err := pipeline.ReadFile("canvas.json")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(dag.Validator{}, c, nil, logger)
//	out, err := runner.Run(ctx, p)
//	resp := pipeline.NewResponse(out.Report.Result)
package pipeline

import (
	"encoding/json"

	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/errors"
)

// Position is a node's canvas coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one canvas node.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Position Position       `json:"position"`
}

// Edge is one canvas connection.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// UnmarshalJSON requires "id" to be present and non-null. An empty id is
// allowed.
func (n *Node) UnmarshalJSON(b []byte) error {
	type plain Node
	aux := struct {
		ID *string `json:"id"`
		*plain
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.ID == nil {
		return missingField("node", "id")
	}
	n.ID = *aux.ID
	return nil
}

// UnmarshalJSON requires "id", "source" and "target" to be present and
// non-null.
func (e *Edge) UnmarshalJSON(b []byte) error {
	type plain Edge
	aux := struct {
		ID     *string `json:"id"`
		Source *string `json:"source"`
		Target *string `json:"target"`
		*plain
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	for _, f := range []struct {
		name string
		val  *string
		dst  *string
	}{{"id", aux.ID, &e.ID}, {"source", aux.Source, &e.Source}, {"target", aux.Target, &e.Target}} {
		if f.val == nil {
			return missingField("edge", f.name)
		}
		*f.dst = *f.val
	}
	return nil
}

func missingField(kind, field string) error {
	return errors.New(errors.ErrCodeInvalidPayload, "%s %s: field required", kind, field)
}

// Payload is the body of a validation request. Both arrays must be present;
// they may be empty.
type Payload struct {
	Nodes []Node `json:"nodes" validate:"required,dive"`
	Edges []Edge `json:"edges" validate:"required,dive"`
}

// Response is the body of a validation reply.
type Response struct {
	NumNodes int    `json:"num_nodes"`
	NumEdges int    `json:"num_edges"`
	IsDAG    bool   `json:"is_dag"`
	Message  string `json:"message"`
}

// NewResponse converts a validation result to its wire form.
func NewResponse(r dag.Result) Response {
	return Response{
		NumNodes: r.NodeCount,
		NumEdges: r.EdgeCount,
		IsDAG:    r.IsAcyclic,
		Message:  r.Message,
	}
}

// Result converts the wire form back to a validation result.
func (r Response) Result() dag.Result {
	return dag.Result{
		NodeCount: r.NumNodes,
		EdgeCount: r.NumEdges,
		IsAcyclic: r.IsDAG,
		Message:   r.Message,
	}
}

// Graph extracts the node ids and edge endpoints, in input order.
func (p *Payload) Graph() ([]string, []dag.Edge) {
	nodes := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		nodes[i] = n.ID
	}
	edges := make([]dag.Edge, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = dag.Edge{Source: e.Source, Target: e.Target}
	}
	return nodes, edges
}

// NodeType returns the type of the node with the given id, or "" if there
// is none.
func (p *Payload) NodeType(id string) string {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n.Type
		}
	}
	return ""
}
