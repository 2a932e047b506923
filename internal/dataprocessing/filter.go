package dataprocessing

import "perfmerge/pkg/contracts/domain"

// Bands holds the rows of one report that fall into the graded latency
// bands. Empty values never qualify.
type Bands struct {
	Warn   []domain.Row
	Severe []domain.Row
}

// FilterBands splits t into its WARN and SEVERE rows, keeping source order.
func (th Thresholds) FilterBands(t domain.ReportTable) Bands {
	var b Bands
	for _, r := range t.Rows {
		switch th.Classify(r.Value) {
		case domain.SeverityWarn:
			b.Warn = append(b.Warn, r)
		case domain.SeveritySevere:
			b.Severe = append(b.Severe, r)
		}
	}
	return b
}
