package parser

import (
	"fmt"
	"sort"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

type groupKey struct {
	customer int64
	label    string
}

// Aggregate sums quantities per (customer, category) and maps each label
// to its code. Output is ordered by customer id, then category label. A
// label missing from the table fails the whole aggregation.
func Aggregate(rows []models.Transaction, categories models.CategoryTable) ([]models.EdgeRecord, error) {
	sums := make(map[groupKey]float64)
	var keys []groupKey

	for _, row := range rows {
		if _, ok := categories.Lookup(row.Category); !ok {
			return nil, &models.OpError{
				Op:    "parser.Aggregate",
				Kind:  models.KindUnknownCategory,
				Row:   row.Row,
				Value: row.Category,
				Err:   fmt.Errorf("category %q has no code", row.Category),
			}
		}

		key := groupKey{customer: row.CustomerID, label: row.Category}
		if _, seen := sums[key]; !seen {
			keys = append(keys, key)
		}
		sums[key] += row.Quantity
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].customer != keys[j].customer {
			return keys[i].customer < keys[j].customer
		}
		return keys[i].label < keys[j].label
	})

	records := make([]models.EdgeRecord, len(keys))
	for i, key := range keys {
		code, _ := categories.Lookup(key.label)
		records[i] = models.EdgeRecord{
			CustomerID:   key.customer,
			CategoryCode: code,
			Quantity:     sums[key],
		}
	}
	return records, nil
}
