package cli

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/pipecheck/pkg/pipeline"
	"github.com/matzehuels/pipecheck/pkg/stress"
)

func TestNodeRows(t *testing.T) {
	p := &pipeline.Payload{
		Nodes: []pipeline.Node{
			{ID: "a", Type: pipeline.TypeInput},
			{ID: "b", Type: pipeline.TypeText, Data: map[string]any{"text": "{{x}} and {{ y }}"}},
			{ID: "a", Type: pipeline.TypeOutput},
			{ID: "c", Type: "customNode"},
		},
		Edges: []pipeline.Edge{
			{Source: "a", Target: "b"},
			{Source: "a", Target: "b"},
			{Source: "b", Target: "a"},
			{Source: "b", Target: "ghost"},
		},
	}
	m := NewInspectModel("t", p)

	if len(m.Rows) != 4 {
		t.Fatalf("rows = %d, want 4 (a, b, c, ghost)", len(m.Rows))
	}
	a, b, c, ghost := m.Rows[0], m.Rows[1], m.Rows[2], m.Rows[3]

	if a.kind() != "Input" || !slices.Equal(a.Children, []string{"b"}) || !slices.Equal(a.Parents, []string{"b"}) {
		t.Errorf("a = %+v", a)
	}
	if !slices.Equal(b.Vars, []string{"x", "y"}) || !slices.Equal(b.Children, []string{"a", "ghost"}) {
		t.Errorf("b = %+v", b)
	}
	if !a.OnCycle || !b.OnCycle || c.OnCycle {
		t.Errorf("cycle marks: a=%v b=%v c=%v", a.OnCycle, b.OnCycle, c.OnCycle)
	}
	if c.kind() != "customNode" {
		t.Errorf("unknown type kind = %q", c.kind())
	}
	if ghost.ID != "ghost" || ghost.Declared || ghost.kind() != "undeclared" {
		t.Errorf("ghost = %+v", ghost)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m InspectModel, keys ...string) InspectModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(InspectModel)
	}
	return m
}

func TestInspectModelNavigation(t *testing.T) {
	m := NewInspectModel("grid", stress.Grid(30))
	m.Height = 5

	m = update(m, "up")
	if m.Cursor != 0 {
		t.Errorf("cursor moved above the first row: %d", m.Cursor)
	}

	m = update(m, "down", "j", "down", "down", "down", "down")
	if m.Cursor != 6 || m.Offset != 2 {
		t.Errorf("cursor=%d offset=%d, want 6 and 2", m.Cursor, m.Offset)
	}

	m = update(m, "end")
	if m.Cursor != 29 || m.Offset != 25 {
		t.Errorf("after end: cursor=%d offset=%d", m.Cursor, m.Offset)
	}
	m = update(m, "down")
	if m.Cursor != 29 {
		t.Errorf("cursor moved past the last row: %d", m.Cursor)
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestInspectModelJumpToCycle(t *testing.T) {
	p := stress.WithBackEdge(stress.Chain(4))
	p.Nodes = append(p.Nodes, pipeline.Node{ID: "extra"})
	m := NewInspectModel("cycle", p)

	m = update(m, "end", "c")
	if m.Cursor != 0 {
		t.Errorf("c from the last row should wrap to node-1, got %d", m.Cursor)
	}
	m = update(m, "c")
	if m.Cursor != 1 {
		t.Errorf("c should move to the next cycle node, got %d", m.Cursor)
	}

	acyclic := update(NewInspectModel("dag", stress.Chain(3)), "c")
	if acyclic.Cursor != 0 {
		t.Errorf("c without a cycle should not move, got %d", acyclic.Cursor)
	}
}

func TestInspectModelView(t *testing.T) {
	m := NewInspectModel("pipeline.json", stress.Chain(3))
	view := m.View()
	for _, want := range []string{"pipeline.json", "Pipeline is valid! 3 nodes, 2 edges.", "node-1", "[1/3]", "children"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty := NewInspectModel("empty", &pipeline.Payload{Nodes: []pipeline.Node{}, Edges: []pipeline.Edge{}})
	if view := empty.View(); !strings.Contains(view, "(no nodes)") {
		t.Errorf("empty view:\n%s", view)
	}
	// Navigation on an empty model must not panic.
	update(empty, "down", "end", "c")
}
