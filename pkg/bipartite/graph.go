package bipartite

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

var (
	// ErrDuplicateEdge is returned when a node pair is connected twice
	ErrDuplicateEdge = errors.New("duplicate edge")
	// ErrSelfLoop is returned for an edge from a node to itself
	ErrSelfLoop = errors.New("self-loop")
	// ErrUnknownNode is returned when an edge references a node that was never added
	ErrUnknownNode = errors.New("unknown node")
)

// Graph is a weighted undirected graph with integer node indices.
// Nodes keep their insertion order; index i maps to Keys[i].
type Graph struct {
	Keys        []models.NodeKey       `json:"keys"`
	Adjacency   [][]int                `json:"-"` // adjacency[i] = neighbors of node i
	Weights     [][]float64            `json:"-"` // weights[i][j] = weight to adjacency[i][j]
	Strengths   []float64              `json:"strengths"`
	TotalWeight float64                `json:"total_weight"`
	index       map[models.NodeKey]int
	numEdges    int
}

// Edge is an undirected edge between two node indices with From < To
type Edge struct {
	From   int
	To     int
	Weight float64
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{index: make(map[models.NodeKey]int)}
}

// AddNode adds a node if it is not present and returns its index
func (g *Graph) AddNode(key models.NodeKey) int {
	if idx, exists := g.index[key]; exists {
		return idx
	}
	idx := len(g.Keys)
	g.Keys = append(g.Keys, key)
	g.Adjacency = append(g.Adjacency, nil)
	g.Weights = append(g.Weights, nil)
	g.Strengths = append(g.Strengths, 0)
	g.index[key] = idx
	return idx
}

// AddEdge connects two existing nodes with a positive weight
func (g *Graph) AddEdge(u, v models.NodeKey, weight float64) error {
	from, ok := g.index[u]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, u)
	}
	to, ok := g.index[v]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, v)
	}
	if from == to {
		return fmt.Errorf("%w: %s", ErrSelfLoop, u)
	}
	if weight <= 0 || math.IsNaN(weight) || math.IsInf(weight, 0) {
		return fmt.Errorf("edge weight must be positive and finite: %s-%s %v", u, v, weight)
	}
	if g.HasEdge(from, to) {
		return fmt.Errorf("%w: %s-%s", ErrDuplicateEdge, u, v)
	}

	g.Adjacency[from] = append(g.Adjacency[from], to)
	g.Weights[from] = append(g.Weights[from], weight)
	g.Adjacency[to] = append(g.Adjacency[to], from)
	g.Weights[to] = append(g.Weights[to], weight)

	g.Strengths[from] += weight
	g.Strengths[to] += weight
	g.TotalWeight += weight
	g.numEdges++
	return nil
}

// NumNodes returns the number of nodes
func (g *Graph) NumNodes() int {
	return len(g.Keys)
}

// NumEdges returns the number of undirected edges
func (g *Graph) NumEdges() int {
	return g.numEdges
}

// Key returns the key of node i
func (g *Graph) Key(i int) models.NodeKey {
	return g.Keys[i]
}

// Index returns the index of a key
func (g *Graph) Index(key models.NodeKey) (int, bool) {
	idx, ok := g.index[key]
	return idx, ok
}

// Neighbors returns the neighbors of a node and the corresponding edge weights
func (g *Graph) Neighbors(node int) ([]int, []float64) {
	if node < 0 || node >= len(g.Keys) {
		return nil, nil
	}
	return g.Adjacency[node], g.Weights[node]
}

// Degree returns the unweighted degree of a node
func (g *Graph) Degree(node int) int {
	if node < 0 || node >= len(g.Keys) {
		return 0
	}
	return len(g.Adjacency[node])
}

// Strength returns the weighted degree of a node
func (g *Graph) Strength(node int) float64 {
	if node < 0 || node >= len(g.Keys) {
		return 0
	}
	return g.Strengths[node]
}

// HasEdge reports whether u and v are adjacent
func (g *Graph) HasEdge(u, v int) bool {
	_, ok := g.edgeWeight(u, v)
	return ok
}

// EdgeWeight returns the weight between u and v, 0 if absent
func (g *Graph) EdgeWeight(u, v int) float64 {
	w, _ := g.edgeWeight(u, v)
	return w
}

func (g *Graph) edgeWeight(u, v int) (float64, bool) {
	if u < 0 || u >= len(g.Keys) || v < 0 || v >= len(g.Keys) {
		return 0, false
	}
	// scan the shorter list
	if len(g.Adjacency[v]) < len(g.Adjacency[u]) {
		u, v = v, u
	}
	for i, neighbor := range g.Adjacency[u] {
		if neighbor == v {
			return g.Weights[u][i], true
		}
	}
	return 0, false
}

// Edges returns every edge once, sorted by (From, To)
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, g.numEdges)
	for u, neighbors := range g.Adjacency {
		for i, v := range neighbors {
			if u < v {
				edges = append(edges, Edge{From: u, To: v, Weight: g.Weights[u][i]})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// NodesOfKind returns the indices of all nodes of one kind in index order
func (g *Graph) NodesOfKind(kind models.NodeKind) []int {
	var nodes []int
	for i, key := range g.Keys {
		if key.Kind == kind {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// Equal reports whether two graphs have the same nodes, order and weighted edges
func (g *Graph) Equal(other *Graph) bool {
	if g.NumNodes() != other.NumNodes() || g.NumEdges() != other.NumEdges() {
		return false
	}
	for i, key := range g.Keys {
		if other.Keys[i] != key {
			return false
		}
	}
	a, b := g.Edges(), other.Edges()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks adjacency, symmetry and weight consistency
func (g *Graph) Validate() error {
	if len(g.Adjacency) != len(g.Keys) || len(g.Weights) != len(g.Keys) || len(g.Strengths) != len(g.Keys) {
		return fmt.Errorf("node arrays have inconsistent lengths")
	}

	total := 0.0
	for i := range g.Keys {
		if len(g.Adjacency[i]) != len(g.Weights[i]) {
			return fmt.Errorf("adjacency and edge weights length mismatch for node %d", i)
		}

		strength := 0.0
		for j, neighbor := range g.Adjacency[i] {
			if neighbor < 0 || neighbor >= len(g.Keys) {
				return fmt.Errorf("invalid neighbor %d for node %d", neighbor, i)
			}
			weight := g.Weights[i][j]
			reverse, ok := g.edgeWeight(neighbor, i)
			if !ok || math.Abs(reverse-weight) > 1e-9 {
				return fmt.Errorf("graph is not symmetric: edge %d->%d", i, neighbor)
			}
			strength += weight
			total += weight
		}
		if math.Abs(strength-g.Strengths[i]) > 1e-9 {
			return fmt.Errorf("strength mismatch for node %d: %f != %f", i, strength, g.Strengths[i])
		}
	}

	if math.Abs(total/2-g.TotalWeight) > 1e-9 {
		return fmt.Errorf("total weight mismatch: %f != %f", total/2, g.TotalWeight)
	}
	return nil
}

// ValidateBipartite checks that every edge joins a customer and a product
func (g *Graph) ValidateBipartite() error {
	for _, e := range g.Edges() {
		if g.Keys[e.From].Kind == g.Keys[e.To].Kind {
			return fmt.Errorf("edge %s-%s connects two %s nodes", g.Keys[e.From], g.Keys[e.To], g.Keys[e.From].Kind)
		}
	}
	return nil
}
