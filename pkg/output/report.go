package output

import (
	"fmt"
	"io"

	"github.com/gilchrisn/purchase-graph-clustering/pkg/metrics"
)

// ReportLine is one "Name: value" console line
type ReportLine struct {
	Name  string
	Value string
}

// ReportLines returns the console lines in print order
func ReportLines(r *metrics.Report) []ReportLine {
	return []ReportLine{
		{"Modularity", r.Modularity.String()},
		{"Average Degree", r.AverageDegree.String()},
		{"Diameter", r.Diameter.IntString()},
		{"Average Path Length", r.AveragePathLength.String()},
		{"Clustering Coefficient", r.Clustering.String()},
		{"Graph Density", r.Density.String()},
		{"Assortativity", r.Assortativity.String()},
	}
}

// WriteReport prints the metric summary, one metric per line
func WriteReport(w io.Writer, r *metrics.Report) error {
	for _, line := range ReportLines(r) {
		if _, err := fmt.Fprintf(w, "%s: %s\n", line.Name, line.Value); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return nil
}
