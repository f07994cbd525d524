package models

import (
	"fmt"
	"strconv"
)

// NodeKind tags which side of the bipartite graph a node belongs to
type NodeKind int

const (
	Customer NodeKind = iota
	Product
)

func (k NodeKind) String() string {
	switch k {
	case Customer:
		return "customer"
	case Product:
		return "product"
	default:
		return "unknown"
	}
}

// NodeKey identifies a node by kind and id. Customer 1 and product code 1
// are different keys.
type NodeKey struct {
	Kind NodeKind `json:"kind"`
	ID   int64    `json:"id"`
}

// CustomerKey returns the key of a customer node
func CustomerKey(id int64) NodeKey {
	return NodeKey{Kind: Customer, ID: id}
}

// ProductKey returns the key of a product category node
func ProductKey(code int) NodeKey {
	return NodeKey{Kind: Product, ID: int64(code)}
}

// Canonical returns the integer written to the cluster file
func (k NodeKey) Canonical() int64 {
	return k.ID
}

func (k NodeKey) String() string {
	switch k.Kind {
	case Customer:
		return "C" + strconv.FormatInt(k.ID, 10)
	case Product:
		return "P" + strconv.FormatInt(k.ID, 10)
	default:
		return fmt.Sprintf("?%d", k.ID)
	}
}

// Less orders customers before products, then by id
func (k NodeKey) Less(other NodeKey) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	return k.ID < other.ID
}

// Transaction is one row of the raw input table
type Transaction struct {
	CustomerID int64   `json:"customer_id"`
	Category   string  `json:"category"`
	Quantity   float64 `json:"quantity"`
	Row        int     `json:"-"` // 1-based data row in the source file
}

// EdgeRecord is one aggregated (customer, category) pair
type EdgeRecord struct {
	CustomerID   int64   `json:"customer_id"`
	CategoryCode int     `json:"category_code"`
	Quantity     float64 `json:"quantity"`
}

// CategoryCode maps a category label to its integer code
type CategoryCode struct {
	Label string `json:"label" mapstructure:"label" validate:"required"`
	Code  int    `json:"code" mapstructure:"code" validate:"gt=0"`
}

// DefaultCategories is the fixed enumeration used when no table is configured
func DefaultCategories() []CategoryCode {
	return []CategoryCode{
		{Label: "Books", Code: 1},
		{Label: "Electronics", Code: 2},
		{Label: "Home", Code: 3},
		{Label: "Clothing", Code: 4},
	}
}

// CategoryTable is a lookup from label to code
type CategoryTable map[string]int

// NewCategoryTable builds a table, rejecting duplicate labels or codes
func NewCategoryTable(entries []CategoryCode) (CategoryTable, error) {
	table := make(CategoryTable, len(entries))
	seenCodes := make(map[int]string, len(entries))
	for _, entry := range entries {
		if _, exists := table[entry.Label]; exists {
			return nil, ValidationError{Field: "categories", Message: "duplicate label", Value: entry.Label}
		}
		if prev, exists := seenCodes[entry.Code]; exists {
			return nil, ValidationError{
				Field:   "categories",
				Message: fmt.Sprintf("code already used by %q", prev),
				Value:   strconv.Itoa(entry.Code),
			}
		}
		table[entry.Label] = entry.Code
		seenCodes[entry.Code] = entry.Label
	}
	return table, nil
}

// Lookup returns the code for a label
func (t CategoryTable) Lookup(label string) (int, bool) {
	code, ok := t[label]
	return code, ok
}
