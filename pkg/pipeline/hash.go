package pipeline

import (
	"encoding/binary"

	"github.com/matzehuels/pipecheck/pkg/cache"
)

// Hash returns a SHA-256 content hash over node ids and edge endpoints in
// input order. Moving a node on the canvas or editing its data does not
// change the hash.
//
// Every string is hashed as its raw bytes behind a length prefix, so ids
// that are not valid UTF-8 still hash apart.
func (p *Payload) Hash() string {
	buf := make([]byte, 0, 16*(len(p.Nodes)+2*len(p.Edges)))
	buf = binary.AppendUvarint(buf, uint64(len(p.Nodes)))
	for _, n := range p.Nodes {
		buf = appendString(buf, n.ID)
	}
	buf = binary.AppendUvarint(buf, uint64(len(p.Edges)))
	for _, e := range p.Edges {
		buf = appendString(buf, e.Source)
		buf = appendString(buf, e.Target)
	}
	return cache.Hash(buf)
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
