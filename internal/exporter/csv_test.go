package exporter

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfmerge/internal/dataprocessing"
	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		expected string
	}{
		{
			name: "records with empty value",
			options: WriteOptions{
				Records: [][]string{{"Login", "1.2"}, {"Search", ""}},
			},
			expected: "Login,1.2\nSearch,\n",
		},
		{
			name: "bom prefix",
			options: WriteOptions{
				Records:   [][]string{{"a"}},
				BOMPrefix: true,
			},
			expected: "\xEF\xBB\xBFa\n",
		},
		{
			name: "ragged records and quoting",
			options: WriteOptions{
				Records: [][]string{{"Report 1: Filtered Data for a,b.xlsx"}, {}, {"k", "1"}},
			},
			expected: "\"Report 1: Filtered Data for a,b.xlsx\"\n\nk,1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewCSVWriter(nil).WriteCSV(&buf, tt.options))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCSVWriter_WriteCSV_Error(t *testing.T) {
	err := NewCSVWriter(nil).WriteCSV(failingWriter{}, WriteOptions{Records: [][]string{{"a"}}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestWriteFilterReport(t *testing.T) {
	th := dataprocessing.DefaultThresholds
	sections := []FilterSection{
		{
			Name: "run1.xlsx",
			Bands: th.FilterBands(domain.ReportTable{Rows: []domain.Row{
				{Key: "Login", Value: domain.Some(0.5)},
				{Key: "Search", Value: domain.Some(1.9)},
				{Key: "Checkout", Value: domain.Some(2.0)},
			}}),
		},
		{Name: "run2.xlsx"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteFilterReport(&buf, sections, th, false))

	expected := "Report 1: Filtered Data for run1.xlsx\n" +
		"Table: Transactions with 1.8 to <2 seconds\n" +
		"Search,1.9\n" +
		"\n" +
		"Table: Transactions with >=2 seconds\n" +
		"Checkout,2\n" +
		"\n" +
		"Report 2: Filtered Data for run2.xlsx\n" +
		"Table: Transactions with 1.8 to <2 seconds\n" +
		"\n" +
		"Table: Transactions with >=2 seconds\n" +
		"\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteFilterReport_BOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteFilterReport(&buf, []FilterSection{{Name: "run1.xlsx"}}, dataprocessing.DefaultThresholds, true))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, buf.String(), "Report 1: Filtered Data for run1.xlsx\n")
}

func TestFilterRecords_CustomThresholds(t *testing.T) {
	records := FilterRecords([]FilterSection{{Name: "x"}}, dataprocessing.Thresholds{Warn: 0.75, Severe: 1.5})

	require.Len(t, records, 5)
	assert.Equal(t, []string{"Table: Transactions with 0.75 to <1.5 seconds"}, records[1])
	assert.Equal(t, []string{"Table: Transactions with >=1.5 seconds"}, records[3])
}
