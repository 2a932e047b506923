// Package shared holds code used by several packages but owned by none.
//
// testutil carries the test fixtures: report workbooks written with
// excelize into a test's temp directory, and a slog handler that captures
// records so tests can assert on what a component logged.
package shared
