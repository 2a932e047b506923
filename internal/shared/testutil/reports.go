package testutil

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// ReportHeader is the header row written by the load test tool.
var ReportHeader = []interface{}{"Transactions", "90 Percent"}

// WriteReport writes rows into the first sheet of a new workbook at
// dir/name and returns the path. Rows are written as given, header included.
func WriteReport(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// WriteCSVReport writes records to dir/name and returns the path.
func WriteCSVReport(t *testing.T, dir, name string, records [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := csv.NewWriter(file)
	require.NoError(t, w.WriteAll(records))
	return path
}

// Timings builds report rows, header first, from key/value pairs. A nil
// value leaves the timing cell blank.
func Timings(kv ...interface{}) [][]interface{} {
	rows := [][]interface{}{ReportHeader}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == nil {
			rows = append(rows, []interface{}{kv[i]})
			continue
		}
		rows = append(rows, []interface{}{kv[i], kv[i+1]})
	}
	return rows
}

// ScenarioDir writes two runs into a fresh temp dir: run1 {a:1.0, b:1.9}
// and run2 {a:1.2, b:2.1, c:3.0}. Relative variance of run2 against run1
// is 16.67% for a; b is WARN in run1 and SEVERE in run2; c is absent from
// the base report.
func ScenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteReport(t, dir, "run1.xlsx", Timings("a", 1.0, "b", 1.9))
	WriteReport(t, dir, "run2.xlsx", Timings("a", 1.2, "b", 2.1, "c", 3.0))
	return dir
}
