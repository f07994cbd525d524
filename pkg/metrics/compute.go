package metrics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/greedy"
)

// Report holds every graph-level statistic of a run
type Report struct {
	Modularity        Value `json:"modularity"`
	AverageDegree     Value `json:"average_degree"`
	Diameter          Value `json:"diameter"`
	AveragePathLength Value `json:"average_path_length"`
	Clustering        Value `json:"clustering_coefficient"`
	Density           Value `json:"density"`
	Assortativity     Value `json:"assortativity"`

	NumNodes int `json:"num_nodes"`
	NumEdges int `json:"num_edges"`
}

type metricFunc func() Value

// Compute evaluates all metrics concurrently. Each metric only reads the
// graph and partition. A metric that panics fails the whole report.
func Compute(ctx context.Context, g *bipartite.Graph, p greedy.Partition, resolution float64) (*Report, error) {
	if g == nil {
		return nil, fmt.Errorf("metrics: graph is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		NumNodes: g.NumNodes(),
		NumEdges: g.NumEdges(),
	}

	jobs := []struct {
		name string
		dst  *Value
		fn   metricFunc
	}{
		{"modularity", &report.Modularity, func() Value { return Modularity(g, p, resolution) }},
		{"average_degree", &report.AverageDegree, func() Value { return AverageDegree(g) }},
		{"diameter", &report.Diameter, func() Value { return Diameter(g) }},
		{"average_path_length", &report.AveragePathLength, func() Value { return AveragePathLength(g) }},
		{"clustering_coefficient", &report.Clustering, func() Value { return AverageClustering(g) }},
		{"density", &report.Density, func() Value { return Density(g) }},
		{"assortativity", &report.Assortativity, func() Value { return Assortativity(g) }},
	}

	var group errgroup.Group
	for _, job := range jobs {
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("metric %s failed: %v", job.name, r)
				}
			}()
			*job.dst = job.fn()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return report, nil
}
