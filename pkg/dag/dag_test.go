package dag

import (
	"reflect"
	"testing"
)

func TestBuildAdjacency(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges []Edge
		want  Adjacency
	}{
		{
			name:  "empty",
			nodes: nil,
			edges: nil,
			want:  Adjacency{},
		},
		{
			name:  "isolated nodes get keys",
			nodes: []string{"a", "b"},
			want:  Adjacency{"a": {}, "b": {}},
		},
		{
			name:  "edge order preserved",
			nodes: []string{"a", "b", "c"},
			edges: []Edge{{"a", "c"}, {"a", "b"}},
			want:  Adjacency{"a": {"c", "b"}, "b": {}, "c": {}},
		},
		{
			name:  "unknown source dropped",
			nodes: []string{"a"},
			edges: []Edge{{"ghost", "a"}},
			want:  Adjacency{"a": {}},
		},
		{
			name:  "unknown target kept",
			nodes: []string{"a"},
			edges: []Edge{{"a", "ghost"}},
			want:  Adjacency{"a": {"ghost"}},
		},
		{
			name:  "parallel edges kept",
			nodes: []string{"a", "b"},
			edges: []Edge{{"a", "b"}, {"a", "b"}},
			want:  Adjacency{"a": {"b", "b"}, "b": {}},
		},
		{
			name:  "duplicate node ids collapse",
			nodes: []string{"a", "a"},
			edges: []Edge{{"a", "a"}},
			want:  Adjacency{"a": {"a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildAdjacency(tt.nodes, tt.edges)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildAdjacency() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildAdjacencyDoesNotMutateInput(t *testing.T) {
	nodes := []string{"a", "b"}
	edges := []Edge{{"a", "b"}}
	_ = BuildAdjacency(nodes, edges)

	if !reflect.DeepEqual(nodes, []string{"a", "b"}) {
		t.Errorf("nodes mutated: %v", nodes)
	}
	if !reflect.DeepEqual(edges, []Edge{{"a", "b"}}) {
		t.Errorf("edges mutated: %v", edges)
	}
}

func TestAdjacencyEdgeCount(t *testing.T) {
	adj := BuildAdjacency([]string{"a", "b"}, []Edge{{"a", "b"}, {"x", "a"}, {"b", "a"}})
	if got := adj.EdgeCount(); got != 2 {
		t.Errorf("EdgeCount() = %d, want 2", got)
	}
	if got := adj.Children("a"); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Children(a) = %v, want [b]", got)
	}
	if got := adj.Children("missing"); got != nil {
		t.Errorf("Children(missing) = %v, want nil", got)
	}
}
