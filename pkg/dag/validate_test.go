package dag

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	pipeline := []string{"input-1", "text-1", "llm-1", "output-1"}
	linked := []Edge{
		{"input-1", "text-1"},
		{"text-1", "llm-1"},
		{"llm-1", "output-1"},
	}

	tests := []struct {
		name  string
		nodes []string
		edges []Edge
		want  Result
	}{
		{
			name: "empty",
			want: Result{NodeCount: 0, EdgeCount: 0, IsAcyclic: true, Message: MessageEmpty},
		},
		{
			name:  "empty with dangling edges",
			edges: []Edge{{"a", "b"}},
			want:  Result{NodeCount: 0, EdgeCount: 1, IsAcyclic: true, Message: MessageEmpty},
		},
		{
			name:  "single node",
			nodes: []string{"a"},
			want:  Result{NodeCount: 1, EdgeCount: 0, IsAcyclic: true, Message: "Pipeline is valid! 1 nodes, 0 edges."},
		},
		{
			name:  "single self loop",
			nodes: []string{"a"},
			edges: []Edge{{"a", "a"}},
			want:  Result{NodeCount: 1, EdgeCount: 1, IsAcyclic: false, Message: MessageCycle},
		},
		{
			name:  "disconnected",
			nodes: []string{"a", "b", "c"},
			want:  Result{NodeCount: 3, EdgeCount: 0, IsAcyclic: true, Message: MessageDisconnected},
		},
		{
			name:  "linear pipeline",
			nodes: pipeline,
			edges: linked,
			want:  Result{NodeCount: 4, EdgeCount: 3, IsAcyclic: true, Message: "Pipeline is valid! 4 nodes, 3 edges."},
		},
		{
			name:  "linear pipeline closed into a loop",
			nodes: pipeline,
			edges: append(append([]Edge(nil), linked...), Edge{"output-1", "input-1"}),
			want:  Result{NodeCount: 4, EdgeCount: 4, IsAcyclic: false, Message: MessageCycle},
		},
		{
			name:  "dropped edges still counted",
			nodes: []string{"a", "b"},
			edges: []Edge{{"ghost", "a"}},
			want:  Result{NodeCount: 2, EdgeCount: 1, IsAcyclic: true, Message: "Pipeline is valid! 2 nodes, 1 edges."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.nodes, tt.edges)
			if got != tt.want {
				t.Errorf("Validate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateIdempotent(t *testing.T) {
	nodes := []string{"a", "b", "c"}
	edges := []Edge{{"a", "b"}, {"b", "c"}, {"c", "a"}}

	first := Validate(nodes, edges)
	second := Validate(nodes, edges)
	if first != second {
		t.Errorf("Validate not idempotent: %+v != %+v", first, second)
	}
}

func TestInspectReportsCycle(t *testing.T) {
	r := Inspect([]string{"a", "b"}, []Edge{{"a", "b"}, {"b", "a"}})
	if r.IsAcyclic {
		t.Fatal("expected cycle")
	}
	if got, want := r.CycleString(), "a -> b -> a"; got != want {
		t.Errorf("CycleString() = %q, want %q", got, want)
	}

	r = Inspect([]string{"a"}, nil)
	if r.Cycle != nil || r.CycleString() != "" {
		t.Errorf("acyclic report has cycle %v", r.Cycle)
	}
}

func TestParseEdgePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    EdgePolicy
		wantErr bool
	}{
		{"", PolicyDrop, false},
		{"drop", PolicyDrop, false},
		{"Reject", PolicyReject, false},
		{" reject ", PolicyReject, false},
		{"strict", PolicyDrop, true},
	}
	for _, tt := range tests {
		got, err := ParseEdgePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEdgePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEdgePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEdgePolicyString(t *testing.T) {
	if PolicyDrop.String() != "drop" || PolicyReject.String() != "reject" {
		t.Errorf("unexpected names: %s, %s", PolicyDrop, PolicyReject)
	}
	if got := EdgePolicy(7).String(); got != "EdgePolicy(7)" {
		t.Errorf("EdgePolicy(7).String() = %q", got)
	}
}

func TestValidatorCheck(t *testing.T) {
	nodes := []string{"a", "b"}

	tests := []struct {
		name    string
		policy  EdgePolicy
		edges   []Edge
		wantErr error
	}{
		{"drop ignores unknown source", PolicyDrop, []Edge{{"x", "a"}}, nil},
		{"drop ignores unknown target", PolicyDrop, []Edge{{"a", "x"}}, nil},
		{"reject unknown source", PolicyReject, []Edge{{"a", "b"}, {"x", "a"}}, ErrUnknownSourceNode},
		{"reject unknown target", PolicyReject, []Edge{{"a", "x"}}, ErrUnknownTargetNode},
		{"reject passes clean graph", PolicyReject, []Edge{{"a", "b"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validator{Policy: tt.policy}
			r, err := v.Check(nodes, tt.edges)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Check() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check() unexpected error: %v", err)
			}
			if r.Result != Validate(nodes, tt.edges) {
				t.Errorf("Check() = %+v, want %+v", r.Result, Validate(nodes, tt.edges))
			}
		})
	}
}
