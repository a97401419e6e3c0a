// Package pkg provides the libraries behind pipecheck, the pipeline graph
// validator.
//
// # Overview
//
// The editor sends each pipeline as a list of nodes and edges. pipecheck
// decides whether those edges form a directed acyclic graph and returns a
// short verdict the editor shows to the user. The pkg directory is organized
// into three areas:
//
//  1. Domain: [dag] (cycle detection), [pipeline] (payload types, limits and
//     the cached [pipeline.Runner]), [stress] (synthetic pipelines) and
//     [render] (Graphviz diagrams)
//  2. Transport: [server] (HTTP API), [client] (remote validation with a
//     fallback result) and [httputil] (retries)
//  3. Infrastructure: [cache], [config], [errors], [metrics],
//     [observability] and [buildinfo]
//
// # Data flow
//
//	editor JSON
//	     ↓
//	[pipeline] Decode + Limits.Check
//	     ↓
//	[cache] lookup by graph hash
//	     ↓
//	[dag] Validator.Check
//	     ↓
//	{"num_nodes", "num_edges", "is_dag", "message"}
//
// # Quick Start
//
//	p, _ := pipeline.ReadFile("pipeline.json")
//	nodes, edges := p.Graph()
//	res := dag.Validate(nodes, edges)
//	fmt.Println(res.Message)
package pkg
