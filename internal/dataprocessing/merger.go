package dataprocessing

import (
	"fmt"
	"log/slog"

	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

// ReportLabel returns the default column label for the i-th report (1-based).
func ReportLabel(i int) string {
	return fmt.Sprintf("R%d", i)
}

// Merger joins report tables onto the row order of the first one.
type Merger struct {
	logger *slog.Logger
}

// NewMerger creates a merger that reports duplicate keys through logger.
func NewMerger(logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{logger: logger}
}

// Merge is a convenience wrapper using the default logger and R1..RN labels.
func Merge(tables []domain.ReportTable) (*domain.MergedTable, error) {
	return NewMerger(nil).Merge(tables)
}

// Merge labels the report columns R1..RN.
func (m *Merger) Merge(tables []domain.ReportTable) (*domain.MergedTable, error) {
	labels := make([]string, len(tables))
	for i := range tables {
		labels[i] = ReportLabel(i + 1)
	}
	return m.MergeWithLabels(tables, labels)
}

// MergeWithLabels left-joins every table onto the base (tables[0]) key
// order. Keys missing from a report become empty slots; keys that only
// non-base reports carry are dropped.
func (m *Merger) MergeWithLabels(tables []domain.ReportTable, labels []string) (*domain.MergedTable, error) {
	if len(tables) == 0 {
		return nil, apperrors.NewEmptyInputError("no report tables supplied", nil)
	}
	if len(labels) != len(tables) {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("got %d labels for %d report tables", len(labels), len(tables)))
	}
	seenLabel := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if l == "" {
			return nil, apperrors.NewAppValidationError("report label must not be empty")
		}
		if _, dup := seenLabel[l]; dup {
			return nil, apperrors.NewAppValidationError(fmt.Sprintf("duplicate report label %q", l))
		}
		seenLabel[l] = struct{}{}
	}

	order, inOrder := baseOrder(tables[0])
	merged := &domain.MergedTable{
		Order:   order,
		Columns: make([]domain.Column, 0, len(tables)),
	}

	for i, t := range tables {
		lookup, dups := m.buildLookup(i+1, t)
		merged.Duplicates = append(merged.Duplicates, dups...)

		values := make([]domain.Value, len(order))
		for j, key := range order {
			values[j] = lookup[key] // absent keys yield the zero Value, i.e. empty
		}

		orphans := 0
		for key := range lookup {
			if _, ok := inOrder[key]; !ok {
				orphans++
			}
		}
		if orphans > 0 {
			m.logger.Debug("Keys absent from base report dropped",
				slog.Int("report", i+1),
				slog.String("name", t.Name),
				slog.Int("dropped_keys", orphans))
		}

		merged.Columns = append(merged.Columns, domain.Column{
			Label:  labels[i],
			Kind:   domain.ColumnKindReport,
			Values: values,
		})
	}

	return merged, nil
}

// baseOrder keeps the first occurrence of every base key.
func baseOrder(base domain.ReportTable) ([]string, map[string]struct{}) {
	order := make([]string, 0, len(base.Rows))
	seen := make(map[string]struct{}, len(base.Rows))
	for _, r := range base.Rows {
		if _, ok := seen[r.Key]; ok {
			continue
		}
		seen[r.Key] = struct{}{}
		order = append(order, r.Key)
	}
	return order, seen
}

// buildLookup maps key to value with last-value-wins, flagging repeats.
func (m *Merger) buildLookup(report int, t domain.ReportTable) (map[string]domain.Value, []domain.DuplicateKey) {
	lookup := make(map[string]domain.Value, len(t.Rows))
	counts := make(map[string]int, len(t.Rows))
	for _, r := range t.Rows {
		lookup[r.Key] = r.Value
		counts[r.Key]++
	}

	var dups []domain.DuplicateKey
	for _, r := range t.Rows {
		n := counts[r.Key]
		if n < 2 {
			continue
		}
		counts[r.Key] = 0 // report each key once, at its first position
		warning := apperrors.NewDuplicateKeyWarning(report, r.Key, n)
		m.logger.Warn("Duplicate transaction key",
			slog.Int("report", report),
			slog.String("name", t.Name),
			slog.String("key", r.Key),
			slog.Int("occurrences", n),
			slog.String("warning", warning.Error()))
		dups = append(dups, domain.DuplicateKey{Report: report, Key: r.Key, Occurrences: n})
	}
	return lookup, dups
}
