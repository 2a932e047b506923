// Package files provides report discovery and safe output writing.
//
// Discovery lists the report files of a directory in file-name order, which
// is the order the reports are merged in. Manager writes finished outputs
// through a temporary file so a failed run never leaves a truncated report
// behind.
//
// Example usage:
//
//	found, err := files.NewDiscovery(".").FindReportFiles("reports")
//	sources := files.Sources(found)
//
//	err = files.NewManager(logger).WriteAtomic("merged.xlsx", func(w io.Writer) error {
//	    return book.Write(w)
//	})
package files
