package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

// ColumnMapping names the input columns holding each transaction field
type ColumnMapping struct {
	Customer string `json:"customer" mapstructure:"customer" validate:"required"`
	Category string `json:"category" mapstructure:"category" validate:"required"`
	Quantity string `json:"quantity" mapstructure:"quantity" validate:"required"`
}

// DefaultColumns returns the column names of the standard export
func DefaultColumns() ColumnMapping {
	return ColumnMapping{
		Customer: "Customer ID",
		Category: "Product Category",
		Quantity: "Quantity",
	}
}

type columnIndex struct {
	customer, category, quantity int
	width                        int
}

func resolveColumns(header []string, columns ColumnMapping) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	idx := columnIndex{}
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{columns.Customer, &idx.customer},
		{columns.Category, &idx.category},
		{columns.Quantity, &idx.quantity},
	} {
		pos, ok := positions[col.name]
		if !ok {
			return idx, fmt.Errorf("missing column %q", col.name)
		}
		*col.dst = pos
		idx.width = max(idx.width, pos+1)
	}
	return idx, nil
}

// ReadTransactions reads every data row of a CSV file
func ReadTransactions(path string, columns ColumnMapping) ([]models.Transaction, error) {
	const op = "parser.ReadTransactions"

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &models.OpError{Op: op, Kind: models.KindNotFound, Path: path, Err: err}
		}
		return nil, &models.OpError{Op: op, Kind: models.KindParse, Path: path, Err: err}
	}
	defer file.Close()

	transactions, err := DecodeTransactions(file, columns)
	if err != nil {
		var oe *models.OpError
		if errors.As(err, &oe) {
			oe.Path = path
			return nil, oe
		}
		return nil, &models.OpError{Op: op, Kind: models.KindParse, Path: path, Err: err}
	}
	return transactions, nil
}

// DecodeTransactions parses CSV content with a header row
func DecodeTransactions(r io.Reader, columns ColumnMapping) ([]models.Transaction, error) {
	const op = "parser.DecodeTransactions"

	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &models.OpError{Op: op, Kind: models.KindParse, Err: fmt.Errorf("missing header row")}
	}
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindParse, Err: err}
	}

	idx, err := resolveColumns(header, columns)
	if err != nil {
		return nil, &models.OpError{Op: op, Kind: models.KindParse, Err: err}
	}

	var transactions []models.Transaction
	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &models.OpError{Op: op, Kind: models.KindParse, Row: row, Err: err}
		}
		if len(record) < idx.width {
			return nil, &models.OpError{
				Op: op, Kind: models.KindParse, Row: row,
				Value: strings.Join(record, ","),
				Err:   fmt.Errorf("expected at least %d fields, got %d", idx.width, len(record)),
			}
		}

		tx, perr := parseRecord(record, idx)
		if perr != nil {
			perr.Row = row
			return nil, perr
		}
		tx.Row = row
		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func parseRecord(record []string, idx columnIndex) (models.Transaction, *models.OpError) {
	const op = "parser.parseRecord"

	rawCustomer := strings.TrimSpace(record[idx.customer])
	customer, err := strconv.ParseInt(rawCustomer, 10, 64)
	if err != nil {
		return models.Transaction{}, &models.OpError{
			Op: op, Kind: models.KindParse, Value: rawCustomer,
			Err: fmt.Errorf("customer id is not an integer"),
		}
	}

	category := strings.TrimSpace(record[idx.category])
	if category == "" {
		return models.Transaction{}, &models.OpError{
			Op: op, Kind: models.KindParse,
			Err: fmt.Errorf("empty product category"),
		}
	}

	rawQuantity := strings.TrimSpace(record[idx.quantity])
	quantity, err := strconv.ParseFloat(rawQuantity, 64)
	if err != nil || math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return models.Transaction{}, &models.OpError{
			Op: op, Kind: models.KindParse, Value: rawQuantity,
			Err: fmt.Errorf("quantity is not a finite number"),
		}
	}

	return models.Transaction{
		CustomerID: customer,
		Category:   category,
		Quantity:   quantity,
	}, nil
}
