package exporter

import "perfmerge/pkg/contracts/domain"

// formatValue renders a cell for text outputs. Empty stays empty.
func formatValue(v domain.Value) string {
	return v.String()
}

// axisTitle labels the value axis of a variance chart.
func axisTitle(mode domain.VarianceMode) string {
	if mode == domain.VarianceAbsolute {
		return "Variance"
	}
	return "Variance (%)"
}

// chartTitle names the chart of one variance column.
func chartTitle(label string) string {
	return "Graph of " + label
}

// formatThreshold renders a band edge the shortest way, e.g. 1.8 or 2.
func formatThreshold(f float64) string {
	return domain.Some(f).String()
}
