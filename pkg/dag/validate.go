package dag

import (
	"fmt"
	"strings"
)

// Status messages reported by [Validate], in priority order.
const (
	MessageEmpty        = "Pipeline is empty. Add some nodes to get started."
	MessageCycle        = "Pipeline contains a cycle! Please remove circular connections."
	MessageDisconnected = "Pipeline is valid but nodes are not connected."
	messageValidFormat  = "Pipeline is valid! %d nodes, %d edges."
)

// Result is the outcome of validating one pipeline. It is a plain value;
// callers may copy and compare it freely.
type Result struct {
	NodeCount int
	EdgeCount int
	IsAcyclic bool
	Message   string
}

// Report is a [Result] plus the cycle that made the graph invalid, if any.
// Cycle is a closed path as returned by [FindCycle] and is nil for a DAG.
type Report struct {
	Result
	Cycle []string
}

// CycleString renders the cycle as "a -> b -> a", or "" for a DAG.
func (r Report) CycleString() string {
	return strings.Join(r.Cycle, " -> ")
}

// Validate checks nodes and edges and returns the status report.
//
// NodeCount and EdgeCount are the raw input lengths, so duplicate node IDs
// and dropped edges are still counted. Validate never fails: malformed edges
// are tolerated as described in [BuildAdjacency].
func Validate(nodes []string, edges []Edge) Result {
	return Inspect(nodes, edges).Result
}

// Inspect is like [Validate] but also returns the offending cycle.
func Inspect(nodes []string, edges []Edge) Report {
	cycle := FindCycle(nodes, edges)
	res := Result{
		NodeCount: len(nodes),
		EdgeCount: len(edges),
		IsAcyclic: cycle == nil,
	}
	res.Message = message(res)
	return Report{Result: res, Cycle: cycle}
}

func message(r Result) string {
	switch {
	case r.NodeCount == 0:
		return MessageEmpty
	case !r.IsAcyclic:
		return MessageCycle
	case r.EdgeCount == 0 && r.NodeCount > 1:
		return MessageDisconnected
	default:
		return fmt.Sprintf(messageValidFormat, r.NodeCount, r.EdgeCount)
	}
}

// EdgePolicy selects how edges that reference undeclared nodes are handled.
type EdgePolicy int

const (
	// PolicyDrop ignores edges from undeclared sources and follows edges to
	// undeclared targets as leaves. This is the editor's behavior.
	PolicyDrop EdgePolicy = iota
	// PolicyReject fails validation when any edge endpoint is undeclared.
	PolicyReject
)

// String returns the configuration name of the policy.
func (p EdgePolicy) String() string {
	switch p {
	case PolicyDrop:
		return "drop"
	case PolicyReject:
		return "reject"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", int(p))
	}
}

// ParseEdgePolicy converts a configuration name ("drop" or "reject") into
// an EdgePolicy. The empty string selects [PolicyDrop].
func ParseEdgePolicy(s string) (EdgePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return PolicyDrop, nil
	case "reject":
		return PolicyReject, nil
	default:
		return PolicyDrop, fmt.Errorf("unknown edge policy %q (want drop or reject)", s)
	}
}

// Validator applies an [EdgePolicy] before validating. The zero value uses
// [PolicyDrop] and behaves exactly like [Inspect].
type Validator struct {
	Policy EdgePolicy
}

// Check validates nodes and edges under the validator's policy.
//
// Under [PolicyReject] the first edge with an undeclared endpoint produces
// an error wrapping [ErrUnknownSourceNode] or [ErrUnknownTargetNode]; no
// report is produced in that case. Under [PolicyDrop] Check never fails.
func (v Validator) Check(nodes []string, edges []Edge) (Report, error) {
	if v.Policy == PolicyReject {
		if err := checkEndpoints(nodes, edges); err != nil {
			return Report{}, err
		}
	}
	return Inspect(nodes, edges), nil
}

func checkEndpoints(nodes []string, edges []Edge) error {
	declared := make(map[string]struct{}, len(nodes))
	for _, id := range nodes {
		declared[id] = struct{}{}
	}
	for i, e := range edges {
		if _, ok := declared[e.Source]; !ok {
			return fmt.Errorf("edge %d (%s -> %s): %w", i, e.Source, e.Target, ErrUnknownSourceNode)
		}
		if _, ok := declared[e.Target]; !ok {
			return fmt.Errorf("edge %d (%s -> %s): %w", i, e.Source, e.Target, ErrUnknownTargetNode)
		}
	}
	return nil
}
