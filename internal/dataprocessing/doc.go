// Package dataprocessing turns performance-test report files into one
// comparison table.
//
// # Pipeline
//
//	sources → Reader.ReadAll → ReportTables → Merger.Merge → MergedTable → DeriveVariance
//
// The first table is the base: its keys, in their original order, are the
// rows of the merged table. Every other report is left-joined onto it.
// Missing values stay empty rather than becoming zero, and keys that only
// later reports carry are dropped.
//
// # Usage
//
//	res, err := dataprocessing.NewReader(logger, 4).ReadAll(ctx, sources)
//	if err != nil {
//	    return err
//	}
//	table, err := dataprocessing.NewMerger(logger).Merge(res.Tables)
//	if err != nil {
//	    return err
//	}
//	pairs := dataprocessing.LatestAndConsecutive(table.ReportLabels())
//	err = dataprocessing.DeriveVariance(table, pairs, domain.VarianceRelativePercent)
//
// # Classification
//
// Classify grades raw timings (OK, WARN, SEVERE) and ClassifyTrend grades
// derived variances (UP, DOWN, FLAT). Presentation maps those grades to
// colors; nothing here knows about colors.
package dataprocessing
