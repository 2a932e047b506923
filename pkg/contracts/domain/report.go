package domain

// Row is one measured transaction inside a single report.
type Row struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// ReportTable is the content of one input report, rows kept in source
// order. It is treated as immutable once read.
type ReportTable struct {
	Name    string `json:"name"`
	Rows    []Row  `json:"rows"`
	Dropped int    `json:"dropped"` // rows that could not be reduced to (key, value)
}

// Keys returns the transaction keys in source order, duplicates included.
func (t ReportTable) Keys() []string {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = r.Key
	}
	return keys
}

// Source names one input file. Index order decides report identity: the
// first source is the base, the last one the latest run.
type Source struct {
	Name string `json:"name" validate:"required"`
	Path string `json:"path" validate:"required"`
}
