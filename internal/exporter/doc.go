// Package exporter renders consolidated results to files.
//
// WorkbookWriter turns a merged table into a styled xlsx workbook. Report
// cells are coloured by latency grade, variance cells by direction, and
// each variance column can get a trend chart, either as a native Excel
// line chart or as an embedded PNG drawn with gonum/plot. The single
// layout keeps everything on one "Data" sheet; the multi layout puts the
// table on "Table" and the charts on "Graphs".
//
// CSVWriter writes plain CSV and the consolidated threshold filter report.
//
// Example usage:
//
//	ww := exporter.NewWorkbookWriter(logger)
//	err := ww.Write(w, merged, exporter.WorkbookOptions{
//	    Layout: domain.LayoutMulti,
//	    Chart:  domain.ChartNative,
//	    Arrows: true,
//	})
package exporter
