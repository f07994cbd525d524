package bipartite

import (
	"fmt"
	"sort"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

// Build constructs the customer-product graph from aggregated records.
//
// Customer nodes come first in ascending id order, followed by product nodes
// in order of first appearance. Each record becomes one edge weighted by its
// summed quantity; a repeated (customer, category) pair is an error.
func Build(records []models.EdgeRecord) (*Graph, error) {
	g := NewGraph()

	customers := make([]int64, 0, len(records))
	seenCustomers := make(map[int64]bool, len(records))
	for _, rec := range records {
		if !seenCustomers[rec.CustomerID] {
			seenCustomers[rec.CustomerID] = true
			customers = append(customers, rec.CustomerID)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i] < customers[j] })
	for _, id := range customers {
		g.AddNode(models.CustomerKey(id))
	}

	for _, rec := range records {
		g.AddNode(models.ProductKey(rec.CategoryCode))
	}

	for _, rec := range records {
		if err := g.AddEdge(models.CustomerKey(rec.CustomerID), models.ProductKey(rec.CategoryCode), rec.Quantity); err != nil {
			return nil, fmt.Errorf("failed to add edge for customer %d category %d: %w", rec.CustomerID, rec.CategoryCode, err)
		}
	}

	if err := g.ValidateBipartite(); err != nil {
		return nil, fmt.Errorf("built graph is not bipartite: %w", err)
	}
	return g, nil
}
