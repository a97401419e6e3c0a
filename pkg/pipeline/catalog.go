package pipeline

import "strings"

// Node types registered by the editor.
const (
	TypeInput     = "inputNode"
	TypeOutput    = "outputNode"
	TypeLLM       = "llmNode"
	TypeText      = "textNode"
	TypeMath      = "mathNode"
	TypeDelay     = "delayNode"
	TypeMerge     = "mergeNode"
	TypeCondition = "conditionNode"
	TypeNote      = "noteNode"
)

// NodeKind describes one entry of the editor's node palette.
type NodeKind struct {
	Type        string
	Label       string
	Description string
	Color       string // hex fill used by the canvas
}

// Catalog lists the node kinds in palette order.
var Catalog = []NodeKind{
	{TypeInput, "Input", "Data entry point", "#1dd781"},
	{TypeOutput, "Output", "Data exit point", "#18acf1"},
	{TypeLLM, "LLM", "Language model", "#fabd23"},
	{TypeText, "Text", "Template with variables", "#9048f4"},
	{TypeMath, "Math", "Arithmetic operations", "#ef4444"},
	{TypeDelay, "Delay", "Wait before proceeding", "#11b6c5"},
	{TypeMerge, "Merge", "Combine multiple inputs", "#ad47e1"},
	{TypeCondition, "Condition", "Branch based on logic", "#ff9f1a"},
	{TypeNote, "Note", "Free-form annotation", "#9ca3af"},
}

// LookupKind returns the catalog entry for a node type. The match ignores
// case and accepts the short form ("llm" for "llmNode").
func LookupKind(nodeType string) (NodeKind, bool) {
	want := strings.ToLower(nodeType)
	for _, k := range Catalog {
		full := strings.ToLower(k.Type)
		if want == full || want+"node" == full {
			return k, true
		}
	}
	return NodeKind{}, false
}
