package metrics

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
)

// ToGonum converts the graph to an unweighted gonum graph. Node i keeps
// gonum id i.
func ToGonum(g *bipartite.Graph) *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := 0; i < g.NumNodes(); i++ {
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges() {
		ug.SetEdge(ug.NewEdge(simple.Node(int64(e.From)), simple.Node(int64(e.To))))
	}
	return ug
}

// bfsDistances returns hop counts from source, -1 for unreachable nodes
func bfsDistances(ug *simple.UndirectedGraph, n, source int) []int {
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}

	var bf traverse.BreadthFirst
	bf.Walk(ug, simple.Node(int64(source)), func(node graph.Node, depth int) bool {
		dist[node.ID()] = depth
		return false
	})
	return dist
}

// BFSDistances returns hop counts from source, -1 for unreachable nodes
func BFSDistances(g *bipartite.Graph, source int) []int {
	return bfsDistances(ToGonum(g), g.NumNodes(), source)
}

// HopDistances returns the all-pairs hop distance table
func HopDistances(g *bipartite.Graph) [][]int {
	n := g.NumNodes()
	ug := ToGonum(g)
	table := make([][]int, n)
	for s := 0; s < n; s++ {
		table[s] = bfsDistances(ug, n, s)
	}
	return table
}

// pathSummary holds all-pairs shortest path aggregates
type pathSummary struct {
	connected bool
	maxDist   int
	sumDist   float64
}

func summarizePaths(g *bipartite.Graph) pathSummary {
	n := g.NumNodes()
	ug := ToGonum(g)
	summary := pathSummary{connected: true}

	for s := 0; s < n; s++ {
		dist := bfsDistances(ug, n, s)
		for t, d := range dist {
			if d < 0 {
				summary.connected = false
				return summary
			}
			if t == s {
				continue
			}
			summary.sumDist += float64(d)
			if d > summary.maxDist {
				summary.maxDist = d
			}
		}
	}
	return summary
}
