package dataprocessing

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

// DefaultReadConcurrency bounds parallel source reads.
const DefaultReadConcurrency = 4

// SkippedSource is a source that could not be turned into a ReportTable.
type SkippedSource struct {
	Source domain.Source
	Err    error
}

// ReadResult lists the tables that were read, in source order, and the
// sources that were skipped.
type ReadResult struct {
	Tables  []domain.ReportTable
	Sources []domain.Source
	Skipped []SkippedSource
}

// Dropped sums dropped rows over all tables.
func (r ReadResult) Dropped() int {
	n := 0
	for _, t := range r.Tables {
		n += t.Dropped
	}
	return n
}

// Reader turns report files into ReportTables.
type Reader struct {
	logger      *slog.Logger
	concurrency int
}

// NewReader creates a reader. A concurrency below one falls back to
// DefaultReadConcurrency.
func NewReader(logger *slog.Logger, concurrency int) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = DefaultReadConcurrency
	}
	return &Reader{logger: logger, concurrency: concurrency}
}

// ReadFile reads one .xlsx or .csv source. The header row is skipped; the
// first column is the transaction key and the second one the timing.
func (r *Reader) ReadFile(src domain.Source) (domain.ReportTable, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(src.Path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbookRows(src.Path)
	case ".csv":
		rows, err = readCSVRows(src.Path)
	default:
		return domain.ReportTable{}, apperrors.NewSchemaError(src.Name,
			fmt.Sprintf("unsupported file type %q", filepath.Ext(src.Path)))
	}
	if err != nil {
		return domain.ReportTable{}, err
	}

	table, err := tableFromRows(src.Name, rows)
	if err != nil {
		return domain.ReportTable{}, err
	}

	r.logger.Info("Report read",
		slog.String("name", src.Name),
		slog.Int("rows", len(table.Rows)),
		slog.Int("dropped_rows", table.Dropped))
	return table, nil
}

// ReadAll reads sources concurrently and returns them in input order.
// Unreadable sources are skipped and logged; the call fails only when the
// context is cancelled or no source at all could be read.
func (r *Reader) ReadAll(ctx context.Context, sources []domain.Source) (*ReadResult, error) {
	if len(sources) == 0 {
		return nil, apperrors.NewEmptyInputError("no report sources supplied", nil)
	}

	type outcome struct {
		table domain.ReportTable
		err   error
	}
	outcomes := make([]outcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := r.ReadFile(src)
			outcomes[i] = outcome{table: t, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reading report sources: %w", err)
	}

	result := &ReadResult{}
	var failures []error
	for i, o := range outcomes {
		if o.err != nil {
			r.logger.Error("Skipping unreadable report",
				slog.String("name", sources[i].Name),
				slog.String("path", sources[i].Path),
				slog.String("error", o.err.Error()))
			result.Skipped = append(result.Skipped, SkippedSource{Source: sources[i], Err: o.err})
			failures = append(failures, o.err)
			continue
		}
		result.Tables = append(result.Tables, o.table)
		result.Sources = append(result.Sources, sources[i])
	}

	if len(result.Tables) == 0 {
		return nil, apperrors.NewEmptyInputError("no readable report source", errors.Join(failures...))
	}
	return result, nil
}

func readWorkbookRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewSchemaError(filepath.Base(path), "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet "+sheets[0], err).WithContext("path", path)
	}
	return rows, nil
}

func readCSVRows(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open csv", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse csv", err).WithContext("path", path)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// tableFromRows reduces raw sheet rows to (key, value) pairs.
func tableFromRows(name string, rows [][]string) (domain.ReportTable, error) {
	if len(rows) == 0 {
		return domain.ReportTable{}, apperrors.NewSchemaError(name, "source has no header row")
	}
	if nonBlank(rows[0]) < 2 {
		return domain.ReportTable{}, apperrors.NewSchemaError(name, "header row has fewer than two columns")
	}

	table := domain.ReportTable{Name: name, Rows: make([]domain.Row, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if nonBlank(row) == 0 {
			continue
		}
		key := ""
		if len(row) > 0 {
			key = strings.TrimSpace(row[0])
		}
		if key == "" {
			table.Dropped++
			continue
		}
		value := domain.Empty()
		if len(row) > 1 {
			value = ParseValue(row[1])
		}
		table.Rows = append(table.Rows, domain.Row{Key: key, Value: value})
	}
	return table, nil
}

// thousandsPattern matches numbers written with comma thousands groups,
// such as 1,234 or -12,345.6.
var thousandsPattern = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseValue coerces a cell to a number. Blank or non-numeric text becomes
// empty, never zero. Commas are accepted only as thousands separators, so a
// decimal comma such as 1,9 is empty rather than 19.
func ParseValue(s string) domain.Value {
	s = strings.TrimSpace(s)
	if thousandsPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	if s == "" {
		return domain.Empty()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return domain.Empty()
	}
	return domain.Some(f)
}

func nonBlank(row []string) int {
	n := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}
