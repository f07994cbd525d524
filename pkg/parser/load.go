package parser

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/validation"
)

// LoadOptions controls sampling and category mapping
type LoadOptions struct {
	Columns    ColumnMapping
	Fraction   float64
	Seed       uint64
	Categories models.CategoryTable
	Logger     zerolog.Logger
}

// DefaultLoadOptions returns the standard sampling setup
func DefaultLoadOptions() LoadOptions {
	table, _ := models.NewCategoryTable(models.DefaultCategories())
	return LoadOptions{
		Columns:    DefaultColumns(),
		Fraction:   0.005,
		Seed:       42,
		Categories: table,
		Logger:     zerolog.Nop(),
	}
}

// Dataset is the aggregated input of one run
type Dataset struct {
	Records     []models.EdgeRecord
	TotalRows   int
	SampledRows int
	Customers   int
	Categories  int
}

// Load reads, samples and aggregates a transaction file
func Load(path string, opts LoadOptions) (*Dataset, error) {
	logger := opts.Logger

	if err := validation.ValidateInputFile(path); err != nil {
		return nil, err
	}

	rows, err := ReadTransactions(path, opts.Columns)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateTransactions(rows); err != nil {
		return nil, err
	}
	logger.Info().Str("path", path).Int("rows", len(rows)).Msg("Read transactions")

	sampled, err := Sample(rows, opts.Fraction, opts.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("sampled", len(sampled)).
		Float64("fraction", opts.Fraction).
		Uint64("seed", opts.Seed).
		Msg("Sampled transactions")

	records, err := Aggregate(sampled, opts.Categories)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateRecords(records, opts.Categories); err != nil {
		return nil, fmt.Errorf("aggregation produced invalid records: %w", err)
	}

	customers := make(map[int64]bool)
	codes := make(map[int]bool)
	for _, r := range records {
		customers[r.CustomerID] = true
		codes[r.CategoryCode] = true
	}

	logger.Info().
		Int("records", len(records)).
		Int("customers", len(customers)).
		Int("categories", len(codes)).
		Msg("Aggregated customer-category pairs")

	return &Dataset{
		Records:     records,
		TotalRows:   len(rows),
		SampledRows: len(sampled),
		Customers:   len(customers),
		Categories:  len(codes),
	}, nil
}
