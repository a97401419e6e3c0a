package pipeline

import (
	"github.com/matzehuels/pipecheck/pkg/errors"
)

// Default limits for network-facing validation.
const (
	DefaultMaxNodes    = 50_000
	DefaultMaxEdges    = 200_000
	DefaultMaxIDLength = 256
)

// Limits bounds the size of an accepted payload. Zero fields are unlimited.
type Limits struct {
	MaxNodes    int `toml:"max_nodes"`
	MaxEdges    int `toml:"max_edges"`
	MaxIDLength int `toml:"max_id_length"`
}

// DefaultLimits returns the limits used by the server unless configured.
func DefaultLimits() Limits {
	return Limits{
		MaxNodes:    DefaultMaxNodes,
		MaxEdges:    DefaultMaxEdges,
		MaxIDLength: DefaultMaxIDLength,
	}
}

// Check reports the first limit p exceeds. Count limits fail with
// [errors.ErrCodeTooLarge]; bad identifiers fail with
// [errors.ErrCodeInvalidPayload].
func (l Limits) Check(p *Payload) error {
	if l.MaxNodes > 0 && len(p.Nodes) > l.MaxNodes {
		return errors.New(errors.ErrCodeTooLarge, "pipeline has %d nodes (max %d)", len(p.Nodes), l.MaxNodes)
	}
	if l.MaxEdges > 0 && len(p.Edges) > l.MaxEdges {
		return errors.New(errors.ErrCodeTooLarge, "pipeline has %d edges (max %d)", len(p.Edges), l.MaxEdges)
	}
	for _, n := range p.Nodes {
		if err := errors.ValidateNodeID(n.ID, l.MaxIDLength); err != nil {
			return err
		}
	}
	for _, e := range p.Edges {
		if err := errors.ValidateNodeID(e.Source, l.MaxIDLength); err != nil {
			return err
		}
		if err := errors.ValidateNodeID(e.Target, l.MaxIDLength); err != nil {
			return err
		}
	}
	return nil
}
