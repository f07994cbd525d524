package greedy

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

// Config contains configuration for greedy modularity clustering
type Config struct {
	Resolution float64        `json:"resolution"`
	Logger     zerolog.Logger `json:"-"`
}

// DefaultConfig returns the standard modularity configuration
func DefaultConfig() Config {
	return Config{
		Resolution: 1.0,
		Logger:     zerolog.Nop(),
	}
}

// Community is an ordered list of node indices
type Community []int

// Partition is an ordered sequence of disjoint communities
type Partition []Community

// Merge records one agglomeration step
type Merge struct {
	Step       int     `json:"step"`
	Kept       int     `json:"kept"`     // community id that survives
	Absorbed   int     `json:"absorbed"` // community id merged into Kept
	Gain       float64 `json:"gain"`
	Modularity float64 `json:"modularity"` // modularity after the merge
}

// Statistics contains algorithm execution metrics
type Statistics struct {
	Merges            int     `json:"merges"`
	InitialModularity float64 `json:"initial_modularity"`
	RuntimeMS         int64   `json:"runtime_ms"`
}

// Result contains the complete result of greedy clustering
type Result struct {
	Partition  Partition  `json:"partition"`
	Membership []int      `json:"membership"` // node index -> position in Partition
	Modularity float64    `json:"modularity"`
	Merges     []Merge    `json:"merges"`
	Statistics Statistics `json:"statistics"`
}

// NumCommunities returns the number of communities
func (r *Result) NumCommunities() int {
	return len(r.Partition)
}

// Validate checks that the partition covers nodes 0..n-1 exactly once
func (p Partition) Validate(numNodes int) error {
	seen := make([]bool, numNodes)
	covered := 0
	for ci, community := range p {
		if len(community) == 0 {
			return fmt.Errorf("community %d is empty", ci)
		}
		for _, node := range community {
			if node < 0 || node >= numNodes {
				return fmt.Errorf("community %d references node %d outside [0,%d)", ci, node, numNodes)
			}
			if seen[node] {
				return fmt.Errorf("node %d appears in more than one community", node)
			}
			seen[node] = true
			covered++
		}
	}
	if covered != numNodes {
		return fmt.Errorf("partition covers %d of %d nodes", covered, numNodes)
	}
	return nil
}

// Membership returns node index -> community position
func (p Partition) Membership(numNodes int) []int {
	membership := make([]int, numNodes)
	for i := range membership {
		membership[i] = -1
	}
	for ci, community := range p {
		for _, node := range community {
			membership[node] = ci
		}
	}
	return membership
}

// Keys resolves each community into node keys
func (p Partition) Keys(g *bipartite.Graph) [][]models.NodeKey {
	keys := make([][]models.NodeKey, len(p))
	for ci, community := range p {
		keys[ci] = make([]models.NodeKey, len(community))
		for i, node := range community {
			keys[ci][i] = g.Key(node)
		}
	}
	return keys
}
