// Package services implements the run layer of perfmerge. A service wires
// discovery, reading, merging, variance derivation and export into one
// call and owns the run id, progress reporting and run metrics.
//
// # Consolidation
//
//	svc := services.NewConsolidationService(cfg, logger)
//	result, err := svc.Consolidate(ctx, services.ConsolidateRequest{
//	    InputDir:   "reports",
//	    OutputPath: "merged_output.xlsx",
//	    Options:    cfg.ToPipelineOptions(),
//	})
//
// Unreadable sources are skipped and listed in RunResult.Skipped; the run
// fails only when no source can be read or the workbook cannot be written.
//
// # Filtering
//
// Filter reads the same sources and writes the WARN and SEVERE latency
// bands of every report to one CSV file.
package services
