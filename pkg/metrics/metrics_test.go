package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// path graph Electronics - C1 - Books - C2
func exampleGraph(t *testing.T) *bipartite.Graph {
	t.Helper()
	g, err := bipartite.Build([]models.EdgeRecord{
		{CustomerID: 1, CategoryCode: 1, Quantity: 3},
		{CustomerID: 1, CategoryCode: 2, Quantity: 1},
		{CustomerID: 2, CategoryCode: 1, Quantity: 5},
	})
	require.NoError(t, err)
	return g
}

func completeGraph(t *testing.T, n int) *bipartite.Graph {
	t.Helper()
	g := bipartite.NewGraph()
	for i := 0; i < n; i++ {
		g.AddNode(models.CustomerKey(int64(i)))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			require.NoError(t, g.AddEdge(models.CustomerKey(int64(i)), models.CustomerKey(int64(j)), 1))
		}
	}
	return g
}

func starGraph(t *testing.T, leaves int) *bipartite.Graph {
	t.Helper()
	g := bipartite.NewGraph()
	hub := models.ProductKey(1)
	g.AddNode(hub)
	for i := 1; i <= leaves; i++ {
		leaf := models.CustomerKey(int64(i))
		g.AddNode(leaf)
		require.NoError(t, g.AddEdge(leaf, hub, float64(i)))
	}
	return g
}

func TestExampleGraphMetrics(t *testing.T) {
	g := exampleGraph(t)

	assert.Equal(t, 1.5, AverageDegree(g).Number)
	assert.Equal(t, "3", Diameter(g).IntString())
	assert.InDelta(t, 20.0/12.0, AveragePathLength(g).Number, 1e-12)
	assert.Equal(t, 0.0, AverageClustering(g).Number)
	assert.Equal(t, 0.5, Density(g).Number)

	r := Assortativity(g)
	require.True(t, r.IsDefined())
	assert.InDelta(t, -0.5, r.Number, 1e-12)
}

func TestZeroEdgeGraph(t *testing.T) {
	g := bipartite.NewGraph()
	for i := int64(1); i <= 3; i++ {
		g.AddNode(models.CustomerKey(i))
	}

	assert.Equal(t, 0.0, Density(g).Number)
	assert.Equal(t, 0.0, AverageDegree(g).Number)
	assert.Equal(t, 0.0, AverageClustering(g).Number)
	assert.Equal(t, Infinite, Diameter(g).State)
	assert.Equal(t, Infinite, AveragePathLength(g).State)
	assert.Equal(t, Undefined, Assortativity(g).State)
}

func TestEmptyGraph(t *testing.T) {
	g := bipartite.NewGraph()

	assert.Equal(t, 0.0, AverageDegree(g).Number)
	assert.Equal(t, 0.0, Density(g).Number)
	assert.Equal(t, 0.0, AverageClustering(g).Number)
	assert.Equal(t, "Inf", Diameter(g).String())
	assert.Equal(t, "Inf", AveragePathLength(g).String())
	assert.Equal(t, "nan", Assortativity(g).String())
}

func TestSingleNode(t *testing.T) {
	g := bipartite.NewGraph()
	g.AddNode(models.CustomerKey(7))

	assert.Equal(t, "0", Diameter(g).IntString())
	assert.Equal(t, 0.0, AveragePathLength(g).Number)
	assert.Equal(t, 0.0, Density(g).Number)
}

func TestCompleteGraph(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		g := completeGraph(t, n)

		assert.Equal(t, 1.0, Density(g).Number, "density of K_%d", n)
		assert.Equal(t, 1.0, Diameter(g).Number, "diameter of K_%d", n)
		assert.Equal(t, 1.0, AveragePathLength(g).Number, "path length of K_%d", n)
		assert.Equal(t, float64(n-1), AverageDegree(g).Number)
		assert.Equal(t, Undefined, Assortativity(g).State, "regular graph has no degree variance")
		if n >= 3 {
			assert.Equal(t, 1.0, AverageClustering(g).Number)
		}
	}
}

func TestStarGraph(t *testing.T) {
	g := starGraph(t, 4)

	assert.Equal(t, 2.0, Diameter(g).Number)
	assert.InDelta(t, -1.0, Assortativity(g).Number, 1e-12)
	assert.Equal(t, 0.0, LocalClustering(g, 0))
	assert.InDelta(t, 4.0/10.0, Density(g).Number, 1e-12)
}

func TestDisconnectedGraph(t *testing.T) {
	g := exampleGraph(t)
	g.AddNode(models.ProductKey(3))

	assert.Equal(t, Infinite, Diameter(g).State)
	assert.Equal(t, Infinite, AveragePathLength(g).State)
	assert.True(t, AverageDegree(g).IsDefined())
}

func TestLocalClusteringTriangleWithTail(t *testing.T) {
	g := completeGraph(t, 3)
	tail := models.CustomerKey(10)
	g.AddNode(tail)
	require.NoError(t, g.AddEdge(models.CustomerKey(0), tail, 1))

	// node 0 has neighbors 1, 2, tail and one closed pair
	assert.InDelta(t, 1.0/3.0, LocalClustering(g, 0), 1e-12)
	assert.Equal(t, 1.0, LocalClustering(g, 1))
	assert.Equal(t, 0.0, LocalClustering(g, 3))
	assert.InDelta(t, (1.0/3.0+1+1+0)/4, AverageClustering(g).Number, 1e-12)
}

func TestBFSDistances(t *testing.T) {
	g := exampleGraph(t)
	electronics, ok := g.Index(models.ProductKey(2))
	require.True(t, ok)

	dist := BFSDistances(g, electronics)
	c1, _ := g.Index(models.CustomerKey(1))
	c2, _ := g.Index(models.CustomerKey(2))
	books, _ := g.Index(models.ProductKey(1))

	assert.Equal(t, 0, dist[electronics])
	assert.Equal(t, 1, dist[c1])
	assert.Equal(t, 2, dist[books])
	assert.Equal(t, 3, dist[c2])
}

func TestCompute(t *testing.T) {
	g := exampleGraph(t)
	result, err := greedy.Run(g, greedy.DefaultConfig())
	require.NoError(t, err)

	report, err := Compute(context.Background(), g, result.Partition, 1.0)
	require.NoError(t, err)

	assert.InDelta(t, result.Modularity, report.Modularity.Number, 1e-12)
	assert.Equal(t, AverageDegree(g), report.AverageDegree)
	assert.Equal(t, Diameter(g), report.Diameter)
	assert.Equal(t, AveragePathLength(g), report.AveragePathLength)
	assert.Equal(t, AverageClustering(g), report.Clustering)
	assert.Equal(t, Density(g), report.Density)
	assert.Equal(t, Assortativity(g), report.Assortativity)
	assert.Equal(t, 4, report.NumNodes)
	assert.Equal(t, 3, report.NumEdges)
}

func TestComputeAbortsOnInternalFailure(t *testing.T) {
	g := exampleGraph(t)
	broken := greedy.Partition{{0, 99}}

	report, err := Compute(context.Background(), g, broken, 1.0)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(ctx, exampleGraph(t), greedy.Partition{{0, 1, 2, 3}}, 1.0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"integral", Of(3), "3.0"},
		{"fraction", Of(1.5), "1.5"},
		{"repeating", Of(2.0 / 3.0), "0.6666666666666666"},
		{"negative", Of(-0.5), "-0.5"},
		{"zero", Of(0), "0.0"},
		{"tiny", Of(1e-5), "1e-05"},
		{"infinite", Inf(), "Inf"},
		{"undefined", NaN(), "nan"},
		{"wrapped nan", Of(math.NaN()), "nan"},
		{"wrapped inf", Of(math.Inf(1)), "Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}

	assert.Equal(t, "3", Of(3).IntString())
	assert.Equal(t, "Inf", Inf().IntString())
}
