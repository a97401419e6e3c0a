package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/pipecheck/pkg/dag"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	listCycleStyle = lipgloss.NewStyle().Foreground(colorRed)
	detailKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
)

// =============================================================================
// Node rows
// =============================================================================

// nodeRow is one node of the inspected pipeline with its neighbors.
type nodeRow struct {
	ID       string
	Type     string
	Parents  []string
	Children []string
	Vars     []string
	OnCycle  bool
	Declared bool
}

// nodeRows lists declared nodes in payload order followed by undeclared edge
// endpoints, each with its in- and out-neighbors. Duplicate ids appear once.
func nodeRows(p *pipeline.Payload, report dag.Report) []nodeRow {
	onCycle := make(map[string]bool, len(report.Cycle))
	for _, id := range report.Cycle {
		onCycle[id] = true
	}
	vars := p.TextVariables()

	index := make(map[string]int, len(p.Nodes))
	var rows []nodeRow
	add := func(id, typ string, declared bool) {
		if _, ok := index[id]; ok {
			return
		}
		index[id] = len(rows)
		rows = append(rows, nodeRow{ID: id, Type: typ, Vars: vars[id], OnCycle: onCycle[id], Declared: declared})
	}
	for _, n := range p.Nodes {
		add(n.ID, n.Type, true)
	}
	for _, e := range p.Edges {
		add(e.Source, "", false)
		add(e.Target, "", false)
		src, dst := &rows[index[e.Source]], &rows[index[e.Target]]
		if !slices.Contains(src.Children, e.Target) {
			src.Children = append(src.Children, e.Target)
		}
		if !slices.Contains(dst.Parents, e.Source) {
			dst.Parents = append(dst.Parents, e.Source)
		}
	}
	return rows
}

func (r nodeRow) kind() string {
	if !r.Declared {
		return "undeclared"
	}
	if k, ok := pipeline.LookupKind(r.Type); ok {
		return k.Label
	}
	if r.Type == "" {
		return "untyped"
	}
	return r.Type
}

// =============================================================================
// InspectModel - Interactive node browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a pipeline's nodes.
type InspectModel struct {
	Title  string
	Report dag.Report
	Rows   []nodeRow
	Cursor int
	Height int
	Offset int

	// Static renders for non-interactive output: no key hints or cursor,
	// and an adjacency list in place of the detail panel.
	Static bool
}

// NewInspectModel creates an inspect model for p.
func NewInspectModel(title string, p *pipeline.Payload) InspectModel {
	nodes, edges := p.Graph()
	report := dag.Inspect(nodes, edges)
	return InspectModel{
		Title:  title,
		Report: report,
		Rows:   nodeRows(p, report),
		Height: 15,
	}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Rows))
		case "end", "G":
			m.move(len(m.Rows))
		case "c":
			m.jumpToCycle()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
		m.clampOffset()
	}
	return m, nil
}

func (m *InspectModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	m.clampOffset()
}

func (m *InspectModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// jumpToCycle moves the cursor to the next node on the cycle, wrapping.
func (m *InspectModel) jumpToCycle() {
	for i := 1; i <= len(m.Rows); i++ {
		j := (m.Cursor + i) % len(m.Rows)
		if m.Rows[j].OnCycle {
			m.Cursor = j
			m.clampOffset()
			return
		}
	}
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	if m.Report.IsAcyclic {
		b.WriteString(StyleSuccess.Render(iconSuccess + " " + m.Report.Message))
	} else {
		b.WriteString(listCycleStyle.Render(iconError + " " + m.Report.Message))
		if len(m.Report.Cycle) > 0 {
			b.WriteString("\n")
			b.WriteString(StyleWarning.Render(iconCycle + " " + strings.Join(m.Report.Cycle, " "+iconArrow+" ")))
		}
	}
	b.WriteString("\n")
	if !m.Static {
		keys := "↑/↓ navigate  q quit"
		if len(m.Report.Cycle) > 0 {
			keys = "↑/↓ navigate  c next cycle node  q quit"
		}
		b.WriteString(listDimStyle.Render(keys))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.Rows) == 0 {
		b.WriteString(listDimStyle.Render("  (no nodes)"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.table())
	b.WriteString("\n")
	if m.Static {
		b.WriteString(m.adjacency())
		return b.String()
	}
	b.WriteString(m.detail())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))

	return b.String()
}

func (m InspectModel) table() string {
	end := min(m.Offset+m.Height, len(m.Rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := ""
		if r.OnCycle {
			mark = iconCycle
		}
		rows = append(rows, []string{cursor, r.ID, r.kind(), fmt.Sprint(len(r.Parents)), fmt.Sprint(len(r.Children)), mark})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "In", "Out", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			r := m.Rows[idx]
			base := lipgloss.NewStyle()
			switch {
			case r.OnCycle:
				base = base.Foreground(colorRed)
			case !r.Declared:
				base = base.Foreground(colorDim)
			case col == 3 || col == 4:
				base = base.Foreground(colorGray)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
			}
			return base
		})

	return t.Render()
}

// detail describes the node under the cursor.
func (m InspectModel) detail() string {
	r := m.Rows[m.Cursor]
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString("  " + detailKeyStyle.Render(key) + " " + StyleValue.Render(value) + "\n")
	}
	line("id", r.ID)
	line("kind", r.kind())
	line("parents", listOrDash(r.Parents))
	line("children", listOrDash(r.Children))
	if len(r.Vars) > 0 {
		line("variables", strings.Join(r.Vars, ", "))
	}
	return b.String()
}

// adjacency lists the children of every node that has any.
func (m InspectModel) adjacency() string {
	var b strings.Builder
	for _, r := range m.Rows {
		if len(r.Children) == 0 {
			continue
		}
		b.WriteString("  " + StyleValue.Render(r.ID) + " " + StyleDim.Render(iconArrow) + " " + strings.Join(r.Children, ", ") + "\n")
	}
	return b.String()
}

func listOrDash(ids []string) string {
	if len(ids) == 0 {
		return "—"
	}
	return strings.Join(ids, ", ")
}
