package domain

// ColumnKind tells report columns apart from derived ones.
type ColumnKind string

const (
	ColumnKindReport   ColumnKind = "report"
	ColumnKindVariance ColumnKind = "variance"
)

// Column holds one value per key of the owning table's Order.
type Column struct {
	Label  string        `json:"label"`
	Kind   ColumnKind    `json:"kind"`
	Values []Value       `json:"values"`
	Pair   *VariancePair `json:"pair,omitempty"`
	Mode   VarianceMode  `json:"mode,omitempty"`
}

// DuplicateKey records a key that appeared more than once in one report.
type DuplicateKey struct {
	Report      int    `json:"report"` // 1-based
	Key         string `json:"key"`
	Occurrences int    `json:"occurrences"`
}

// MergedTable is the wide comparison table. Order comes verbatim from the
// base report; every column has exactly len(Order) slots.
type MergedTable struct {
	Order      []string       `json:"order"`
	Columns    []Column       `json:"columns"`
	Duplicates []DuplicateKey `json:"duplicates,omitempty"`
}

// RowCount returns the number of transactions in the table.
func (t *MergedTable) RowCount() int {
	return len(t.Order)
}

// ReportCount returns how many report columns the table carries.
func (t *MergedTable) ReportCount() int {
	n := 0
	for _, c := range t.Columns {
		if c.Kind == ColumnKindReport {
			n++
		}
	}
	return n
}

// Report returns the i-th report column, 1-based.
func (t *MergedTable) Report(i int) (*Column, bool) {
	n := 0
	for idx := range t.Columns {
		if t.Columns[idx].Kind != ColumnKindReport {
			continue
		}
		n++
		if n == i {
			return &t.Columns[idx], true
		}
	}
	return nil, false
}

// Column looks a column up by label.
func (t *MergedTable) Column(label string) (*Column, bool) {
	for idx := range t.Columns {
		if t.Columns[idx].Label == label {
			return &t.Columns[idx], true
		}
	}
	return nil, false
}

// ReportLabels lists report column labels in report order.
func (t *MergedTable) ReportLabels() []string {
	var labels []string
	for _, c := range t.Columns {
		if c.Kind == ColumnKindReport {
			labels = append(labels, c.Label)
		}
	}
	return labels
}

// VarianceColumns returns the derived columns in derivation order.
func (t *MergedTable) VarianceColumns() []Column {
	var cols []Column
	for _, c := range t.Columns {
		if c.Kind == ColumnKindVariance {
			cols = append(cols, c)
		}
	}
	return cols
}
