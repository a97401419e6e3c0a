package pipeline

import "regexp"

var variablePattern = regexp.MustCompile(`\{\{\s*([\w$]+)\s*\}\}`)

// Variables returns the template variables referenced in text as
// "{{ name }}", deduplicated in first-seen order.
func Variables(text string) []string {
	var vars []string
	seen := make(map[string]bool)
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		if name := m[1]; !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	return vars
}

// TextVariables collects the variables of every text node, keyed by node id.
// Text nodes keep their template in data["text"].
func (p *Payload) TextVariables() map[string][]string {
	out := make(map[string][]string)
	for _, n := range p.Nodes {
		if n.Type != TypeText {
			continue
		}
		text, _ := n.Data["text"].(string)
		if vars := Variables(text); len(vars) > 0 {
			out[n.ID] = vars
		}
	}
	return out
}
