package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"perfmerge/internal/dataprocessing"
	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes the records to w. Records may differ in length.
func (cw *CSVWriter) WriteCSV(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.NewStorageError("failed to write BOM", err)
		}
	}

	writer := csv.NewWriter(w)

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write record %d", i), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewStorageError("failed to flush csv", err)
	}
	return nil
}

// FilterSection is the filtered view of one source report.
type FilterSection struct {
	Name  string
	Bands dataprocessing.Bands
}

// FilterRecords lays the sections out as the consolidated filter report:
// per report a heading, the WARN band table, a blank line, the SEVERE band
// table and another blank line. Reports are numbered from 1.
func FilterRecords(sections []FilterSection, th dataprocessing.Thresholds) [][]string {
	warnTitle := fmt.Sprintf("Table: Transactions with %s to <%s seconds",
		formatThreshold(th.Warn), formatThreshold(th.Severe))
	severeTitle := fmt.Sprintf("Table: Transactions with >=%s seconds", formatThreshold(th.Severe))

	var records [][]string
	for i, s := range sections {
		records = append(records, []string{fmt.Sprintf("Report %d: Filtered Data for %s", i+1, s.Name)})

		records = append(records, []string{warnTitle})
		records = append(records, rowRecords(s.Bands.Warn)...)
		records = append(records, []string{})

		records = append(records, []string{severeTitle})
		records = append(records, rowRecords(s.Bands.Severe)...)
		records = append(records, []string{})
	}
	return records
}

// WriteFilterReport writes the consolidated filter report to w, led by a
// UTF-8 BOM when bom is set.
func (cw *CSVWriter) WriteFilterReport(w io.Writer, sections []FilterSection, th dataprocessing.Thresholds, bom bool) error {
	records := FilterRecords(sections, th)

	cw.logger.Info("Writing filter report",
		slog.Int("reports", len(sections)),
		slog.Int("record_count", len(records)),
		slog.Bool("bom", bom))

	return cw.WriteCSV(w, WriteOptions{Records: records, BOMPrefix: bom})
}

func rowRecords(rows []domain.Row) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{r.Key, formatValue(r.Value)}
	}
	return out
}
