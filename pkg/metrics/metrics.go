package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
)

// AverageDegree is the mean unweighted degree, 0 for an empty graph
func AverageDegree(g *bipartite.Graph) Value {
	n := g.NumNodes()
	if n == 0 {
		return Of(0)
	}
	return Of(2 * float64(g.NumEdges()) / float64(n))
}

// Diameter is the longest shortest path in hops. It is Infinite when the
// graph is empty or disconnected.
func Diameter(g *bipartite.Graph) Value {
	if g.NumNodes() == 0 {
		return Inf()
	}
	summary := summarizePaths(g)
	if !summary.connected {
		return Inf()
	}
	return Of(float64(summary.maxDist))
}

// AveragePathLength is the mean hop distance over ordered node pairs
func AveragePathLength(g *bipartite.Graph) Value {
	n := g.NumNodes()
	if n == 0 {
		return Inf()
	}
	if n == 1 {
		return Of(0)
	}
	summary := summarizePaths(g)
	if !summary.connected {
		return Inf()
	}
	return Of(summary.sumDist / float64(n*(n-1)))
}

// LocalClustering returns the fraction of closed neighbor pairs around node.
// Nodes with fewer than two neighbors score 0.
func LocalClustering(g *bipartite.Graph, node int) float64 {
	neighbors, _ := g.Neighbors(node)
	k := len(neighbors)
	if k < 2 {
		return 0
	}

	triangles := 0
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if g.HasEdge(neighbors[i], neighbors[j]) {
				triangles++
			}
		}
	}
	return 2 * float64(triangles) / float64(k*(k-1))
}

// AverageClustering is the mean local clustering coefficient
func AverageClustering(g *bipartite.Graph) Value {
	n := g.NumNodes()
	if n == 0 {
		return Of(0)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += LocalClustering(g, i)
	}
	return Of(sum / float64(n))
}

// Density is 2E / n(n-1), 0 for graphs with at most one node
func Density(g *bipartite.Graph) Value {
	n := g.NumNodes()
	if n <= 1 {
		return Of(0)
	}
	return Of(2 * float64(g.NumEdges()) / float64(n*(n-1)))
}

// Assortativity is the Pearson correlation between endpoint degrees, each
// edge counted in both directions. Undefined without edges or when every
// endpoint has the same degree.
func Assortativity(g *bipartite.Graph) Value {
	edges := g.Edges()
	if len(edges) == 0 {
		return NaN()
	}

	x := make([]float64, 0, 2*len(edges))
	y := make([]float64, 0, 2*len(edges))
	for _, e := range edges {
		du, dv := float64(g.Degree(e.From)), float64(g.Degree(e.To))
		x = append(x, du, dv)
		y = append(y, dv, du)
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return NaN()
	}
	return Of(r)
}

// Modularity reports the partition's modularity
func Modularity(g *bipartite.Graph, p greedy.Partition, resolution float64) Value {
	return Of(greedy.Modularity(g, p, resolution))
}
