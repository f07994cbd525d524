package parser

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/models"
)

// SampleSize returns round(fraction * total), rounding halves to even
func SampleSize(total int, fraction float64) int {
	n := int(math.RoundToEven(fraction * float64(total)))
	return min(max(n, 0), total)
}

// Sample draws a reproducible subset of rows without replacement.
//
// The selection is a partial Fisher-Yates shuffle over row positions driven by
// a PCG generator seeded with (seed, seed). Selected rows are returned in
// their original order. The same rows, fraction and seed always produce the
// same subset.
func Sample(rows []models.Transaction, fraction float64, seed uint64) ([]models.Transaction, error) {
	if fraction <= 0 || fraction > 1 || math.IsNaN(fraction) {
		return nil, &models.OpError{
			Op:    "parser.Sample",
			Kind:  models.KindInvalidConfig,
			Value: fmt.Sprint(fraction),
			Err:   fmt.Errorf("sampling fraction must be in (0, 1]"),
		}
	}

	n := SampleSize(len(rows), fraction)
	if n == len(rows) {
		out := make([]models.Transaction, len(rows))
		copy(out, rows)
		return out, nil
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	perm := make([]int, len(rows))
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(perm)-i)
		perm[i], perm[j] = perm[j], perm[i]
	}

	chosen := perm[:n]
	sort.Ints(chosen)

	out := make([]models.Transaction, n)
	for i, pos := range chosen {
		out[i] = rows[pos]
	}
	return out, nil
}
