package coordinates

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/metrics"
)

// MDSLayout places nodes with classical multidimensional scaling over hop
// distances
type MDSLayout struct {
	config      Config
	maxDistance float64 // distance used for unreachable pairs
}

// NewMDSLayout creates an MDS layout
func NewMDSLayout(config Config) *MDSLayout {
	return &MDSLayout{
		config:      config,
		maxDistance: 10.0,
	}
}

// WithMaxDistance sets the distance assigned to unreachable pairs
func (ml *MDSLayout) WithMaxDistance(maxDist float64) *MDSLayout {
	ml.maxDistance = maxDist
	return ml
}

// Compute runs Torgerson scaling and keeps the two leading components
func (ml *MDSLayout) Compute(g *bipartite.Graph) (map[int]Position, error) {
	n := g.NumNodes()
	if n == 0 {
		return map[int]Position{}, nil
	}
	if n == 1 {
		return map[int]Position{0: center(ml.config)}, nil
	}

	distMatrix := ml.distanceMatrix(g)

	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, distMatrix)
	if k == 0 || coords.IsEmpty() {
		return nil, fmt.Errorf("MDS computation failed: no positive eigenvalues")
	}

	_, cols := coords.Dims()
	positions := make(map[int]Position, n)
	for i := 0; i < n; i++ {
		p := Position{X: coords.At(i, 0)}
		if cols > 1 {
			p.Y = coords.At(i, 1)
		}
		positions[i] = p
	}
	return normalize(positions, ml.config.Width, ml.config.Height, ml.config.Padding), nil
}

// distanceMatrix computes all-pairs hop distances, capped for unreachable pairs
func (ml *MDSLayout) distanceMatrix(g *bipartite.Graph) *mat.SymDense {
	n := g.NumNodes()
	distMatrix := mat.NewSymDense(n, nil)

	hops := metrics.HopDistances(g)
	for i := 0; i < n; i++ {
		distances := hops[i]
		for j := i + 1; j < n; j++ {
			dist := float64(distances[j])
			if distances[j] < 0 {
				dist = ml.maxDistance
			}
			distMatrix.SetSym(i, j, dist)
		}
	}
	return distMatrix
}
