package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/bipartite"
	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

// validate is a singleton validator instance
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks struct tags and reports every failing field
func ValidateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &models.OpError{Op: "validation.ValidateStruct", Kind: models.KindInvalidConfig, Err: err}
	}

	result := make(models.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		result = append(result, models.ValidationError{
			Field:   fe.Namespace(),
			Message: describe(fe),
			Value:   fmt.Sprint(fe.Value()),
		})
	}
	return &models.OpError{Op: "validation.ValidateStruct", Kind: models.KindInvalidConfig, Err: result}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "dive":
		return "invalid element in array"
	default:
		return fmt.Sprintf("validation failed (%s)", fe.Tag())
	}
}

// ValidateInputFile checks that the transaction file exists and is a
// readable regular file
func ValidateInputFile(path string) error {
	const op = "validation.ValidateInputFile"

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return &models.OpError{Op: op, Kind: models.KindNotFound, Path: path, Err: err}
	}
	if err != nil {
		return &models.OpError{Op: op, Kind: models.KindParse, Path: path, Err: err}
	}
	if info.IsDir() {
		return &models.OpError{Op: op, Kind: models.KindParse, Path: path, Err: fmt.Errorf("input is a directory")}
	}

	file, err := os.Open(path)
	if err != nil {
		return &models.OpError{Op: op, Kind: models.KindParse, Path: path, Err: fmt.Errorf("cannot open file: %w", err)}
	}
	return file.Close()
}

// ValidateOutputPath checks that the directory of an output file exists or
// can be created, and that the path is not a directory itself
func ValidateOutputPath(path string) error {
	const op = "validation.ValidateOutputPath"

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return &models.OpError{Op: op, Kind: models.KindInvalidConfig, Path: path, Err: fmt.Errorf("output path is a directory")}
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &models.OpError{Op: op, Kind: models.KindInvalidConfig, Path: dir, Err: fmt.Errorf("cannot create output directory: %w", err)}
		}
		return nil
	}
	if err != nil {
		return &models.OpError{Op: op, Kind: models.KindInvalidConfig, Path: dir, Err: fmt.Errorf("cannot access output directory: %w", err)}
	}
	if !info.IsDir() {
		return &models.OpError{Op: op, Kind: models.KindInvalidConfig, Path: dir, Err: fmt.Errorf("output parent is not a directory")}
	}
	return nil
}

// ValidatePlotPath accepts an empty path (no rendering) or a supported image
// extension
func ValidatePlotPath(path string) error {
	if path == "" {
		return nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg":
		return ValidateOutputPath(path)
	default:
		return &models.OpError{
			Op: "validation.ValidatePlotPath", Kind: models.KindInvalidConfig, Path: path,
			Err: fmt.Errorf("unsupported image extension %q", filepath.Ext(path)),
		}
	}
}

// ValidateTransactions checks row-level invariants the CSV decoder does not
func ValidateTransactions(rows []models.Transaction) error {
	for _, row := range rows {
		if row.Quantity <= 0 {
			return &models.OpError{
				Op: "validation.ValidateTransactions", Kind: models.KindParse, Row: row.Row,
				Value: fmt.Sprint(row.Quantity),
				Err:   fmt.Errorf("quantity must be positive"),
			}
		}
	}
	return nil
}

// ValidateRecords checks that aggregated records form a valid edge list
func ValidateRecords(records []models.EdgeRecord, categories models.CategoryTable) error {
	codes := make(map[int]bool, len(categories))
	for _, code := range categories {
		codes[code] = true
	}

	type pair struct {
		customer int64
		code     int
	}
	seen := make(map[pair]bool, len(records))

	var errs models.ValidationErrors
	for i, r := range records {
		field := fmt.Sprintf("records[%d]", i)
		if !codes[r.CategoryCode] {
			errs = append(errs, models.ValidationError{Field: field, Message: "unknown category code", Value: fmt.Sprint(r.CategoryCode)})
		}
		if r.Quantity <= 0 {
			errs = append(errs, models.ValidationError{Field: field, Message: "quantity must be positive", Value: fmt.Sprint(r.Quantity)})
		}
		p := pair{r.CustomerID, r.CategoryCode}
		if seen[p] {
			errs = append(errs, models.ValidationError{Field: field, Message: "duplicate customer-category pair", Value: fmt.Sprintf("%d/%d", r.CustomerID, r.CategoryCode)})
		}
		seen[p] = true
	}

	if len(errs) > 0 {
		return &models.OpError{Op: "validation.ValidateRecords", Kind: models.KindInternal, Err: errs}
	}
	return nil
}

// ValidateGraph performs structural and bipartite validation
func ValidateGraph(g *bipartite.Graph) error {
	if g == nil {
		return &models.OpError{Op: "validation.ValidateGraph", Kind: models.KindGraph, Err: fmt.Errorf("graph is nil")}
	}
	if err := g.Validate(); err != nil {
		return &models.OpError{Op: "validation.ValidateGraph", Kind: models.KindGraph, Err: err}
	}
	if err := g.ValidateBipartite(); err != nil {
		return &models.OpError{Op: "validation.ValidateGraph", Kind: models.KindGraph, Err: err}
	}
	return nil
}
