package greedy

import (
	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
)

// Modularity evaluates Newman's modularity of a partition:
//
//	Q = 1/2m * sum_ij [A_ij - resolution * k_i*k_j/2m] * delta(c_i, c_j)
//
// A graph without edges has modularity 0. Nodes missing from the partition
// contribute nothing.
func Modularity(g *bipartite.Graph, p Partition, resolution float64) float64 {
	if g.TotalWeight == 0 {
		return 0
	}

	membership := p.Membership(g.NumNodes())
	internal := make([]float64, len(p))
	total := make([]float64, len(p))

	for ci, community := range p {
		for _, node := range community {
			total[ci] += g.Strength(node)
		}
	}
	for _, e := range g.Edges() {
		c := membership[e.From]
		if c >= 0 && c == membership[e.To] {
			internal[c] += e.Weight
		}
	}

	m := g.TotalWeight
	m2 := 2 * m
	q := 0.0
	for c := range p {
		q += internal[c]/m - resolution*(total[c]/m2)*(total[c]/m2)
	}
	return q
}
