package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

func report(name string, kv ...interface{}) domain.ReportTable {
	t := domain.ReportTable{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		row := domain.Row{Key: kv[i].(string)}
		switch v := kv[i+1].(type) {
		case float64:
			row.Value = domain.Some(v)
		case nil:
			row.Value = domain.Empty()
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func TestMerge_OrderComesFromBase(t *testing.T) {
	tests := []struct {
		name   string
		tables []domain.ReportTable
	}{
		{
			name:   "single table",
			tables: []domain.ReportTable{report("r1", "z", 1.0, "a", 2.0, "m", 3.0)},
		},
		{
			name: "later tables in different order",
			tables: []domain.ReportTable{
				report("r1", "z", 1.0, "a", 2.0, "m", 3.0),
				report("r2", "m", 1.1, "a", 2.1, "z", 3.1),
				report("r3", "a", 1.2, "z", 2.2),
			},
		},
		{
			name: "disjoint keys",
			tables: []domain.ReportTable{
				report("r1", "z", 1.0, "a", 2.0, "m", 3.0),
				report("r2", "x", 1.0, "y", 2.0),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, err := Merge(tt.tables)
			require.NoError(t, err)

			assert.Equal(t, tt.tables[0].Keys(), merged.Order)
			assert.Equal(t, len(tt.tables), merged.ReportCount())
			for _, c := range merged.Columns {
				assert.Len(t, c.Values, len(merged.Order))
			}
		})
	}
}

func TestMerge_MissingValuesAreEmptyNotZero(t *testing.T) {
	merged, err := Merge([]domain.ReportTable{
		report("r1", "a", 1.0, "b", 1.9, "c", nil),
		report("r2", "b", 2.1),
	})
	require.NoError(t, err)

	r1, ok := merged.Report(1)
	require.True(t, ok)
	r2, ok := merged.Report(2)
	require.True(t, ok)

	assert.Equal(t, []domain.Value{domain.Some(1.0), domain.Some(1.9), domain.Empty()}, r1.Values)
	assert.Equal(t, []domain.Value{domain.Empty(), domain.Some(2.1), domain.Empty()}, r2.Values)
	assert.Equal(t, "R1", r1.Label)
	assert.Equal(t, "R2", r2.Label)
}

func TestMerge_DisjointKeysGiveEmptyColumn(t *testing.T) {
	merged, err := Merge([]domain.ReportTable{
		report("r1", "a", 1.0, "b", 2.0),
		report("r2", "x", 1.0, "y", 2.0),
	})
	require.NoError(t, err)

	r2, _ := merged.Report(2)
	for _, v := range r2.Values {
		assert.True(t, v.IsEmpty())
	}
}

func TestMerge_NonBaseKeysDropped(t *testing.T) {
	merged, err := Merge([]domain.ReportTable{
		report("T1", "a", 1.0, "b", 1.9),
		report("T2", "a", 1.2, "b", 2.1, "c", 0.5),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, merged.Order)
	assert.NotContains(t, merged.Order, "c")
}

func TestMerge_DuplicateKeysLastValueWins(t *testing.T) {
	merged, err := Merge([]domain.ReportTable{
		report("r1", "a", 1.0, "b", 2.0, "a", 3.0),
		report("r2", "b", 1.0, "b", 5.0, "b", 7.0),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, merged.Order, "base duplicates keep their first position")
	r1, _ := merged.Report(1)
	r2, _ := merged.Report(2)
	assert.Equal(t, domain.Some(3.0), r1.Values[0])
	assert.Equal(t, domain.Some(7.0), r2.Values[1])

	assert.Equal(t, []domain.DuplicateKey{
		{Report: 1, Key: "a", Occurrences: 2},
		{Report: 2, Key: "b", Occurrences: 3},
	}, merged.Duplicates)
}

func TestMerge_EmptyInput(t *testing.T) {
	_, err := Merge(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmptyInput))
}

func TestMergeWithLabels(t *testing.T) {
	tables := []domain.ReportTable{report("r1", "a", 1.0), report("r2", "a", 2.0)}

	merged, err := NewMerger(nil).MergeWithLabels(tables, []string{"Baseline", "Candidate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Baseline", "Candidate"}, merged.ReportLabels())

	_, err = NewMerger(nil).MergeWithLabels(tables, []string{"only-one"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))

	_, err = NewMerger(nil).MergeWithLabels(tables, []string{"same", "same"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}

func TestMerge_SingleTableRoundTrip(t *testing.T) {
	in := report("only", "a", 1.0, "b", nil, "c", 3.0)

	merged, err := Merge([]domain.ReportTable{in})
	require.NoError(t, err)
	require.NoError(t, DeriveVariance(merged, nil, domain.VarianceRelativePercent))

	assert.Equal(t, in.Keys(), merged.Order)
	assert.Len(t, merged.Columns, 1)
	assert.Empty(t, merged.VarianceColumns())
	assert.Equal(t, []domain.Value{domain.Some(1.0), domain.Empty(), domain.Some(3.0)}, merged.Columns[0].Values)
}
