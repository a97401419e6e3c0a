package dag

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// randomGraph builds a graph of n nodes from index pairs; indices wrap
// modulo n so every generated edge references a declared node.
func randomGraph(n int, srcs, tgts []int) ([]string, []Edge) {
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("node-%d", i)
	}
	m := min(len(srcs), len(tgts))
	edges := make([]Edge, m)
	for i := range m {
		edges[i] = Edge{Source: nodes[srcs[i]%n], Target: nodes[tgts[i]%n]}
	}
	return nodes, edges
}

func TestGraphProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	indices := gen.SliceOf(gen.IntRange(0, 63))

	properties.Property("validate is idempotent", prop.ForAll(
		func(n int, srcs, tgts []int) bool {
			nodes, edges := randomGraph(n, srcs, tgts)
			return Validate(nodes, edges) == Validate(nodes, edges)
		},
		gen.IntRange(1, 40), indices, indices,
	))

	properties.Property("permuting input keeps verdict and counts", prop.ForAll(
		func(n int, srcs, tgts []int, seed int64) bool {
			nodes, edges := randomGraph(n, srcs, tgts)
			want := Validate(nodes, edges)

			rng := rand.New(rand.NewSource(seed))
			pn := append([]string(nil), nodes...)
			pe := append([]Edge(nil), edges...)
			rng.Shuffle(len(pn), func(i, j int) { pn[i], pn[j] = pn[j], pn[i] })
			rng.Shuffle(len(pe), func(i, j int) { pe[i], pe[j] = pe[j], pe[i] })

			return Validate(pn, pe) == want
		},
		gen.IntRange(1, 40), indices, indices, gen.Int64(),
	))

	properties.Property("forward-only edges are acyclic", prop.ForAll(
		func(n int, srcs, tgts []int) bool {
			nodes, edges := randomGraph(n, srcs, tgts)
			forward := edges[:0]
			for i, e := range edges {
				s, d := srcs[i]%n, tgts[i]%n
				if s < d {
					forward = append(forward, e)
				}
			}
			return IsAcyclic(nodes, forward)
		},
		gen.IntRange(1, 40), indices, indices,
	))

	properties.Property("reported cycle is a real closed walk", prop.ForAll(
		func(n int, srcs, tgts []int) bool {
			nodes, edges := randomGraph(n, srcs, tgts)
			cycle := FindCycle(nodes, edges)
			if cycle == nil {
				return IsAcyclic(nodes, edges)
			}
			if len(cycle) < 2 || cycle[0] != cycle[len(cycle)-1] {
				return false
			}
			arcs := make(map[Edge]bool, len(edges))
			for _, e := range edges {
				arcs[e] = true
			}
			for i := 1; i < len(cycle); i++ {
				if !arcs[Edge{Source: cycle[i-1], Target: cycle[i]}] {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 40), indices, indices,
	))

	properties.TestingRun(t)
}
