package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"perfmerge/internal/config"
	"perfmerge/internal/dataprocessing"
	apperrors "perfmerge/internal/errors"
	"perfmerge/internal/exporter"
	"perfmerge/internal/files"
	"perfmerge/internal/infrastructure"
	"perfmerge/internal/validation"
	"perfmerge/pkg/contracts/domain"
)

// Run step names, used for progress and metrics.
const (
	StepDiscover = "discover"
	StepRead     = "read"
	StepMerge    = "merge"
	StepDerive   = "derive"
	StepWrite    = "write"
	StepFilter   = "filter"
)

// ProgressReporter receives step updates during a run.
type ProgressReporter interface {
	SendProgress(step, message string, progress int)
	SendComplete(step, message string, success bool)
}

// ConsolidateRequest describes one consolidation run. Sources, when set,
// win over InputDir. Pattern, when set, narrows discovery in InputDir to a
// glob such as "perf_*.xlsx".
type ConsolidateRequest struct {
	InputDir    string
	Pattern     string
	Sources     []domain.Source
	OutputPath  string
	Options     domain.PipelineOptions
	MetricsFile string
}

// FilterRequest describes one threshold filter run.
type FilterRequest struct {
	InputDir   string
	Pattern    string
	Sources    []domain.Source
	OutputPath string
	BOM        bool
}

// RunResult summarises a consolidation run.
type RunResult struct {
	RunID           string                         `json:"run_id"`
	OutputPath      string                         `json:"output_path"`
	Reports         []string                       `json:"reports"`
	Rows            int                            `json:"rows"`
	Columns         int                            `json:"columns"`
	VarianceColumns int                            `json:"variance_columns"`
	Dropped         int                            `json:"dropped"`
	Duplicates      int                            `json:"duplicates"`
	Skipped         []dataprocessing.SkippedSource `json:"-"`
	Severity        map[domain.Severity]int        `json:"severity"`
	Duration        time.Duration                  `json:"-"`
	DurationSeconds float64                        `json:"duration_seconds"`
}

// FilterResult summarises a filter run.
type FilterResult struct {
	RunID      string                         `json:"run_id"`
	OutputPath string                         `json:"output_path"`
	Reports    int                            `json:"reports"`
	Warn       int                            `json:"warn"`
	Severe     int                            `json:"severe"`
	Skipped    []dataprocessing.SkippedSource `json:"-"`
}

// ConsolidationService runs the read, merge, derive and export pipeline.
type ConsolidationService struct {
	logger     *slog.Logger
	thresholds dataprocessing.Thresholds
	discovery  *files.Discovery
	reader     *dataprocessing.Reader
	merger     *dataprocessing.Merger
	workbook   *exporter.WorkbookWriter
	csv        *exporter.CSVWriter
	fileMgr    *files.Manager
	validator  *validation.FileValidator
	progress   ProgressReporter
}

// NewConsolidationService wires the pipeline components from cfg.
func NewConsolidationService(cfg *config.Config, logger *slog.Logger) *ConsolidationService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.Default()
	}
	logger = infrastructure.WithComponent(logger, "consolidation")

	return &ConsolidationService{
		logger: logger,
		thresholds: dataprocessing.Thresholds{
			Warn:   cfg.Pipeline.WarnThreshold,
			Severe: cfg.Pipeline.SevereThreshold,
		},
		discovery: files.NewDiscovery(""),
		reader:    dataprocessing.NewReader(logger, cfg.Pipeline.Concurrency),
		merger:    dataprocessing.NewMerger(logger),
		workbook:  exporter.NewWorkbookWriter(logger),
		csv:       exporter.NewCSVWriter(logger),
		fileMgr:   files.NewManager(logger),
		validator: validation.NewFileValidator(logger),
	}
}

// SetProgressReporter attaches a reporter; nil detaches it.
func (s *ConsolidationService) SetProgressReporter(p ProgressReporter) {
	s.progress = p
}

// Consolidate discovers and reads the reports, merges them on the base
// report's keys, derives the variance columns and writes the workbook.
func (s *ConsolidationService) Consolidate(ctx context.Context, req ConsolidateRequest) (result *RunResult, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	start := time.Now()

	metrics := infrastructure.NewRunMetrics()
	defer func() {
		metrics.Finish(time.Since(start), err)
		if req.MetricsFile == "" {
			return
		}
		if werr := metrics.WriteTextfile(req.MetricsFile); werr != nil {
			s.logger.ErrorContext(ctx, "Failed to write metrics textfile",
				slog.String("path", req.MetricsFile),
				slog.String("error", werr.Error()))
			if err == nil {
				err = apperrors.NewStorageError("failed to write metrics textfile", werr)
			}
		}
	}()

	if err := req.Options.Validate(); err != nil {
		return nil, apperrors.NewConfigError("invalid pipeline options", err)
	}
	if err := s.validator.ValidateOutputFile(req.OutputPath, ".xlsx"); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Consolidation started",
		slog.String("input_dir", req.InputDir),
		slog.String("output", req.OutputPath),
		slog.String("variance_mode", string(req.Options.VarianceMode)),
		slog.String("pairs", string(req.Options.PairPreset)),
		slog.String("chart", string(req.Options.ChartOutput)))

	stepStart := time.Now()
	sources, invalid, err := s.resolveSources(ctx, req.InputDir, req.Pattern, req.Sources)
	if err != nil {
		s.complete(StepDiscover, err)
		return nil, err
	}
	metrics.ObserveStep(StepDiscover, time.Since(stepStart))
	s.report(StepDiscover, fmt.Sprintf("Found %d report(s)", len(sources)), 10)

	stepStart = time.Now()
	read, err := s.reader.ReadAll(ctx, sources)
	if err != nil {
		s.complete(StepRead, err)
		return nil, err
	}
	metrics.ObserveStep(StepRead, time.Since(stepStart))
	metrics.ReportsRead.Set(float64(len(read.Tables)))
	skipped := append(invalid, read.Skipped...)
	metrics.SourcesSkipped.Set(float64(len(skipped)))
	metrics.RowsDropped.Set(float64(read.Dropped()))
	s.report(StepRead, fmt.Sprintf("Read %d of %d report(s)", len(read.Tables), len(sources)), 40)

	stepStart = time.Now()
	merged, err := s.merger.Merge(read.Tables)
	if err != nil {
		s.complete(StepMerge, err)
		return nil, err
	}
	metrics.ObserveStep(StepMerge, time.Since(stepStart))
	metrics.RowsMerged.Set(float64(merged.RowCount()))
	metrics.DuplicateKeys.Set(float64(len(merged.Duplicates)))
	s.report(StepMerge, fmt.Sprintf("Merged %d transaction(s)", merged.RowCount()), 60)

	if req.Options.IncludeVariance {
		stepStart = time.Now()
		if err := s.derive(ctx, merged, req.Options); err != nil {
			s.complete(StepDerive, err)
			return nil, err
		}
		metrics.ObserveStep(StepDerive, time.Since(stepStart))
		s.report(StepDerive, fmt.Sprintf("Derived %d variance column(s)", len(merged.VarianceColumns())), 75)
	}

	severity := s.severityCounts(merged)
	for sev, n := range severity {
		metrics.CellsBySeverity.WithLabelValues(string(sev)).Set(float64(n))
	}
	for trend, n := range trendCounts(merged) {
		metrics.CellsByTrend.WithLabelValues(string(trend)).Set(float64(n))
	}
	metrics.VarianceColumns.Set(float64(len(merged.VarianceColumns())))

	stepStart = time.Now()
	wbOpts := exporter.WorkbookOptionsFrom(req.Options, s.thresholds)
	err = s.fileMgr.WriteAtomic(req.OutputPath, func(w io.Writer) error {
		return s.workbook.Write(w, merged, wbOpts)
	})
	if err != nil {
		s.complete(StepWrite, err)
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to write %s", req.OutputPath), err)
	}
	metrics.ObserveStep(StepWrite, time.Since(stepStart))
	s.complete(StepWrite, nil)

	result = &RunResult{
		RunID:           runID,
		OutputPath:      req.OutputPath,
		Reports:         sourceNames(read.Sources),
		Rows:            merged.RowCount(),
		Columns:         len(merged.Columns),
		VarianceColumns: len(merged.VarianceColumns()),
		Dropped:         read.Dropped(),
		Duplicates:      len(merged.Duplicates),
		Skipped:         skipped,
		Severity:        severity,
		Duration:        time.Since(start),
	}
	result.DurationSeconds = result.Duration.Seconds()

	s.logger.InfoContext(ctx, "Consolidation completed",
		slog.String("output", result.OutputPath),
		slog.Int("reports", len(result.Reports)),
		slog.Int("rows", result.Rows),
		slog.Int("variance_columns", result.VarianceColumns),
		slog.Int("dropped_rows", result.Dropped),
		slog.Int("duplicate_keys", result.Duplicates),
		slog.Int("skipped_sources", len(result.Skipped)),
		slog.Duration("duration", result.Duration))
	return result, nil
}

// Filter writes, per readable report, the transactions in the WARN and
// SEVERE latency bands to a CSV file.
func (s *ConsolidationService) Filter(ctx context.Context, req FilterRequest) (*FilterResult, error) {
	ctx = infrastructure.EnsureTraceID(ctx)

	if err := s.validator.ValidateOutputFile(req.OutputPath, ".csv"); err != nil {
		return nil, err
	}

	sources, invalid, err := s.resolveSources(ctx, req.InputDir, req.Pattern, req.Sources)
	if err != nil {
		return nil, err
	}
	read, err := s.reader.ReadAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	result := &FilterResult{
		RunID:      infrastructure.GetTraceID(ctx),
		OutputPath: req.OutputPath,
		Reports:    len(read.Tables),
		Skipped:    append(invalid, read.Skipped...),
	}
	sections := make([]exporter.FilterSection, len(read.Tables))
	for i, t := range read.Tables {
		bands := s.thresholds.FilterBands(t)
		sections[i] = exporter.FilterSection{Name: read.Sources[i].Name, Bands: bands}
		result.Warn += len(bands.Warn)
		result.Severe += len(bands.Severe)
	}
	s.report(StepFilter, fmt.Sprintf("Filtered %d report(s)", len(sections)), 80)

	err = s.fileMgr.WriteAtomic(req.OutputPath, func(w io.Writer) error {
		return s.csv.WriteFilterReport(w, sections, s.thresholds, req.BOM)
	})
	if err != nil {
		s.complete(StepFilter, err)
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to write %s", req.OutputPath), err)
	}
	s.complete(StepFilter, nil)

	s.logger.InfoContext(ctx, "Filter completed",
		slog.String("output", req.OutputPath),
		slog.Int("reports", result.Reports),
		slog.Int("warn_rows", result.Warn),
		slog.Int("severe_rows", result.Severe))
	return result, nil
}

// resolveSources returns the sources to read. Explicit sources that are not
// readable report files come back as skipped rather than failing the run.
func (s *ConsolidationService) resolveSources(ctx context.Context, dir, pattern string, explicit []domain.Source) ([]domain.Source, []dataprocessing.SkippedSource, error) {
	if len(explicit) > 0 {
		sources := make([]domain.Source, 0, len(explicit))
		var skipped []dataprocessing.SkippedSource
		for _, src := range explicit {
			if err := s.validator.ValidateReportFile(src.Path); err != nil {
				s.logger.WarnContext(ctx, "Ignoring source",
					slog.String("path", src.Path),
					slog.String("error", err.Error()))
				skipped = append(skipped, dataprocessing.SkippedSource{Source: src, Err: err})
				continue
			}
			sources = append(sources, src)
		}
		if len(sources) == 0 {
			return nil, skipped, apperrors.NewEmptyInputError("none of the given sources is a readable report", nil)
		}
		return sources, skipped, nil
	}

	if err := s.validator.ValidateInputDirectory(dir); err != nil {
		return nil, nil, err
	}
	var (
		found []files.FileInfo
		err   error
	)
	if pattern != "" {
		found, err = s.discovery.FindFilesByPattern(dir, pattern)
	} else {
		found, err = s.discovery.FindReportFiles(dir)
	}
	if errors.Is(err, filepath.ErrBadPattern) {
		return nil, nil, apperrors.NewConfigError(fmt.Sprintf("invalid report pattern %q", pattern), err)
	}
	if err != nil {
		return nil, nil, apperrors.NewStorageError(fmt.Sprintf("failed to list %s", dir), err)
	}
	if len(found) == 0 {
		return nil, nil, apperrors.NewEmptyInputError(fmt.Sprintf("no report files in %s", dir), ErrNoReportsFound)
	}

	s.logger.InfoContext(ctx, "Reports discovered",
		slog.String("input_dir", dir),
		slog.String("pattern", pattern),
		slog.Int("count", len(found)))
	return files.Sources(found), nil, nil
}

func (s *ConsolidationService) derive(ctx context.Context, merged *domain.MergedTable, opts domain.PipelineOptions) error {
	pairs := opts.Pairs
	if len(pairs) == 0 {
		var err error
		pairs, err = dataprocessing.PairsForPreset(opts.PairPreset, merged.ReportLabels())
		if err != nil {
			return apperrors.NewConfigError("invalid pair preset", err)
		}
	}
	if len(pairs) == 0 {
		s.logger.DebugContext(ctx, "No variance pairs to derive")
		return nil
	}
	return dataprocessing.DeriveVariance(merged, pairs, opts.VarianceMode)
}

func (s *ConsolidationService) severityCounts(t *domain.MergedTable) map[domain.Severity]int {
	counts := make(map[domain.Severity]int)
	for _, c := range t.Columns {
		if c.Kind != domain.ColumnKindReport {
			continue
		}
		for _, v := range c.Values {
			counts[s.thresholds.Classify(v)]++
		}
	}
	return counts
}

func trendCounts(t *domain.MergedTable) map[domain.Trend]int {
	counts := make(map[domain.Trend]int)
	for _, c := range t.VarianceColumns() {
		for _, v := range c.Values {
			counts[dataprocessing.ClassifyTrend(v)]++
		}
	}
	return counts
}

func (s *ConsolidationService) report(step, message string, progress int) {
	if s.progress != nil {
		s.progress.SendProgress(step, message, progress)
	}
}

func (s *ConsolidationService) complete(step string, err error) {
	if s.progress == nil {
		return
	}
	if err != nil {
		s.progress.SendComplete(step, err.Error(), false)
		return
	}
	s.progress.SendComplete(step, "done", true)
}

func sourceNames(sources []domain.Source) []string {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name
	}
	return names
}
