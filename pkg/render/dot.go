// Package render draws pipelines as Graphviz diagrams.
//
// Convert a payload to DOT, optionally highlighting the cycle reported by
// validation, then render it to SVG:
//
//	report := dag.Inspect(p.Graph())
//	dot := render.ToDOT(p, report.Cycle, render.Options{})
//	svg, err := render.RenderSVG(ctx, dot)
//
// Nodes are filled with their canvas color. Edges that validation ignores
// or follows to an undeclared node are drawn dashed, and their undeclared
// endpoints are drawn as dashed outlines.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// Options configures DOT output.
type Options struct {
	// Detailed adds template variables of text nodes to their labels.
	Detailed bool
	// RankDir is the Graphviz rank direction. Empty selects "LR".
	RankDir string
}

const (
	cycleColor  = "#dc2626"
	ghostColor  = "#9ca3af"
	defaultFill = "white"
)

// ToDOT converts a payload to Graphviz DOT. cycle is a closed path as
// returned by dag.FindCycle, or nil; its nodes and edges are drawn in red.
func ToDOT(p *pipeline.Payload, cycle []string, opts Options) string {
	rankdir := opts.RankDir
	if rankdir == "" {
		rankdir = "LR"
	}

	declared := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		declared[n.ID] = true
	}
	onCycle := make(map[string]bool, len(cycle))
	cycleEdges := make(map[[2]string]bool, len(cycle))
	for i, id := range cycle {
		onCycle[id] = true
		if i+1 < len(cycle) {
			cycleEdges[[2]string{id, cycle[i+1]}] = true
		}
	}
	var vars map[string][]string
	if opts.Detailed {
		vars = p.TextVariables()
	}

	var buf bytes.Buffer
	buf.WriteString("digraph pipeline {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#64748b\"];\n")
	buf.WriteString("\n")

	seen := make(map[string]bool, len(p.Nodes))
	for _, n := range p.Nodes {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		attrs := []string{"label=" + quote(nodeLabel(n, vars[n.ID])), "fillcolor=" + quote(fill(n.Type))}
		if onCycle[n.ID] {
			attrs = append(attrs, "color="+quote(cycleColor), "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quote(n.ID), strings.Join(attrs, ", "))
	}

	for _, e := range p.Edges {
		for _, id := range []string{e.Source, e.Target} {
			if !declared[id] && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&buf, "  %s [label=%s, style=\"rounded,dashed\", color=%s, fontcolor=%s];\n",
					quote(id), quote(id+" (undeclared)"), quote(ghostColor), quote(ghostColor))
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		var attrs []string
		switch {
		case cycleEdges[[2]string{e.Source, e.Target}]:
			attrs = append(attrs, "color="+quote(cycleColor), "penwidth=2.5")
		case !declared[e.Source] || !declared[e.Target]:
			attrs = append(attrs, "style=dashed", "color="+quote(ghostColor))
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %s -> %s [%s];\n", quote(e.Source), quote(e.Target), strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %s -> %s;\n", quote(e.Source), quote(e.Target))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n pipeline.Node, vars []string) string {
	label := n.ID
	if n.Type != "" {
		label += " (" + n.Type + ")"
	}
	if len(vars) > 0 {
		label += "\n{{ " + strings.Join(vars, " }} {{ ") + " }}"
	}
	return label
}

func fill(nodeType string) string {
	if k, ok := pipeline.LookupKind(nodeType); ok {
		return k.Color
	}
	return defaultFill
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// quote renders s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
