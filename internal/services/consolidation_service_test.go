package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"perfmerge/internal/config"
	apperrors "perfmerge/internal/errors"
	"perfmerge/internal/exporter"
	"perfmerge/internal/infrastructure"
	"perfmerge/internal/shared/testutil"
	"perfmerge/pkg/contracts/domain"
)

func newTestService() *ConsolidationService {
	return NewConsolidationService(config.Default(), nil)
}

func TestConsolidate(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	out := filepath.Join(t.TempDir(), "out", "merged.xlsx")

	opts := domain.DefaultPipelineOptions()
	opts.PairPreset = domain.PairPresetLatest
	opts.ChartOutput = domain.ChartNone

	result, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		InputDir:   dir,
		OutputPath: out,
		Options:    opts,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, out, result.OutputPath)
	assert.Equal(t, []string{"run1.xlsx", "run2.xlsx"}, result.Reports)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 3, result.Columns)
	assert.Equal(t, 1, result.VarianceColumns)
	assert.Zero(t, result.Dropped)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, 1, result.Severity[domain.SeverityWarn])
	assert.Equal(t, 1, result.Severity[domain.SeveritySevere])
	assert.Equal(t, 2, result.Severity[domain.SeverityOK])

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exporter.SheetTable)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Transactions", "R1", "R2", "R2 Vs R1"}, rows[0])
	assert.Equal(t, "a", rows[1][0])
	assert.Equal(t, "b", rows[2][0])

	raw, err := f.GetCellValue(exporter.SheetTable, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	v, err := strconv.ParseFloat(raw, 64)
	require.NoError(t, err)
	assert.InDelta(t, 16.67, v, 0.01)
}

func TestConsolidate_NoVariance(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	out := filepath.Join(t.TempDir(), "merged.xlsx")

	opts := domain.DefaultPipelineOptions()
	opts.IncludeVariance = false
	opts.ChartOutput = domain.ChartNone

	result, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		InputDir:   dir,
		OutputPath: out,
		Options:    opts,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Columns)
	assert.Zero(t, result.VarianceColumns)
}

func TestConsolidate_NativeChartsOnGraphsSheet(t *testing.T) {
	out := filepath.Join(t.TempDir(), "merged.xlsx")

	_, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		InputDir:   testutil.ScenarioDir(t),
		OutputPath: out,
		Options:    domain.DefaultPipelineOptions(),
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{exporter.SheetTable, exporter.SheetGraphs}, f.GetSheetList())
}

func TestConsolidate_ExplicitSourcesAndPairs(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	out := filepath.Join(t.TempDir(), "merged.xlsx")

	opts := domain.DefaultPipelineOptions()
	opts.VarianceMode = domain.VarianceAbsolute
	opts.ChartOutput = domain.ChartNone
	opts.Pairs = []domain.VariancePair{
		{Numerator: "R2", Denominator: "R1", Label: "Delta"},
	}

	// run2 first makes it the base report, so "c" survives.
	result, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		Sources: []domain.Source{
			{Name: "run2.xlsx", Path: filepath.Join(dir, "run2.xlsx")},
			{Name: "run1.xlsx", Path: filepath.Join(dir, "run1.xlsx")},
			{Name: "notes.txt", Path: filepath.Join(dir, "notes.txt")},
		},
		OutputPath: out,
		Options:    opts,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"run2.xlsx", "run1.xlsx"}, result.Reports)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.VarianceColumns)
	require.Len(t, result.Skipped, 1, "an explicit source that is not a report is reported as skipped")
	assert.Equal(t, "notes.txt", result.Skipped[0].Source.Name)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetRows(exporter.SheetTable)
	require.NoError(t, err)
	assert.Equal(t, "Delta", header[0][3])
	// c is missing from the second report, so its variance is blank.
	assert.Len(t, header[3], 2)
}

func TestConsolidate_SkipsUnreadableSource(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "run3.xlsx"), []byte("not a workbook"), 0644))
	out := filepath.Join(t.TempDir(), "merged.xlsx")

	opts := domain.DefaultPipelineOptions()
	opts.ChartOutput = domain.ChartNone

	logger, logs := testutil.NewCaptureLogger(t)
	result, err := NewConsolidationService(config.Default(), logger).Consolidate(context.Background(), ConsolidateRequest{
		InputDir:   dir,
		OutputPath: out,
		Options:    opts,
	})
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)

	rec, ok := logs.Find(slog.LevelError, "Skipping unreadable report")
	require.True(t, ok)
	assert.Equal(t, "run3.xlsx", rec.Attrs["name"])
	assert.Equal(t, "consolidation", rec.Attrs["component"])
	assert.Equal(t, "run3.xlsx", result.Skipped[0].Source.Name)
	assert.Equal(t, []string{"run1.xlsx", "run2.xlsx"}, result.Reports)
}

func TestConsolidate_SkippedSourcesInMetricsAndJSON(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	tmp := t.TempDir()
	metricsPath := filepath.Join(tmp, "perfmerge.prom")
	opts := domain.DefaultPipelineOptions()
	opts.ChartOutput = domain.ChartNone

	result, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		Sources: []domain.Source{
			{Name: "run1.xlsx", Path: filepath.Join(dir, "run1.xlsx")},
			{Name: "missing.xlsx", Path: filepath.Join(dir, "missing.xlsx")},
			{Name: "run2.xlsx", Path: filepath.Join(dir, "run2.xlsx")},
		},
		OutputPath:  filepath.Join(tmp, "out.xlsx"),
		Options:     opts,
		MetricsFile: metricsPath,
	})
	require.NoError(t, err)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "missing.xlsx", result.Skipped[0].Source.Name)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "perfmerge_sources_skipped 1")

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &summary))
	assert.NotContains(t, summary, "duration")
	seconds, ok := summary["duration_seconds"].(float64)
	require.True(t, ok, "duration is encoded in seconds")
	assert.InDelta(t, result.Duration.Seconds(), seconds, 1e-9)
}

func TestConsolidate_Pattern(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	testutil.WriteReport(t, dir, "baseline.xlsx", testutil.Timings("a", 0.5))
	opts := domain.DefaultPipelineOptions()
	opts.ChartOutput = domain.ChartNone

	result, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		InputDir:   dir,
		Pattern:    "run*.xlsx",
		OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
		Options:    opts,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"run1.xlsx", "run2.xlsx"}, result.Reports)
}

func TestConsolidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) ConsolidateRequest
		errType apperrors.ErrorType
	}{
		{
			name: "empty directory",
			setup: func(t *testing.T) ConsolidateRequest {
				return ConsolidateRequest{
					InputDir:   t.TempDir(),
					OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
					Options:    domain.DefaultPipelineOptions(),
				}
			},
			errType: apperrors.ErrTypeEmptyInput,
		},
		{
			name: "bad options",
			setup: func(t *testing.T) ConsolidateRequest {
				opts := domain.DefaultPipelineOptions()
				opts.ChartOutput = "svg"
				return ConsolidateRequest{
					InputDir:   testutil.ScenarioDir(t),
					OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
					Options:    opts,
				}
			},
			errType: apperrors.ErrTypeConfig,
		},
		{
			name: "unknown pair column",
			setup: func(t *testing.T) ConsolidateRequest {
				opts := domain.DefaultPipelineOptions()
				opts.Pairs = []domain.VariancePair{{Numerator: "R9", Denominator: "R1", Label: "x"}}
				return ConsolidateRequest{
					InputDir:   testutil.ScenarioDir(t),
					OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
					Options:    opts,
				}
			},
			errType: apperrors.ErrTypeConfig,
		},
		{
			name: "pattern matches nothing",
			setup: func(t *testing.T) ConsolidateRequest {
				return ConsolidateRequest{
					InputDir:   testutil.ScenarioDir(t),
					Pattern:    "perf_*.xlsx",
					OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
					Options:    domain.DefaultPipelineOptions(),
				}
			},
			errType: apperrors.ErrTypeEmptyInput,
		},
		{
			name: "malformed pattern",
			setup: func(t *testing.T) ConsolidateRequest {
				return ConsolidateRequest{
					InputDir:   testutil.ScenarioDir(t),
					Pattern:    "[",
					OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
					Options:    domain.DefaultPipelineOptions(),
				}
			},
			errType: apperrors.ErrTypeConfig,
		},
		{
			name: "wrong output extension",
			setup: func(t *testing.T) ConsolidateRequest {
				return ConsolidateRequest{
					InputDir:   testutil.ScenarioDir(t),
					OutputPath: filepath.Join(t.TempDir(), "out.csv"),
					Options:    domain.DefaultPipelineOptions(),
				}
			},
			errType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.setup(t)
			result, err := newTestService().Consolidate(context.Background(), req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)

			_, statErr := os.Stat(req.OutputPath)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestConsolidate_RunIDFromContext(t *testing.T) {
	ctx := infrastructure.WithTraceID(context.Background(), "run-42")
	opts := domain.DefaultPipelineOptions()
	opts.ChartOutput = domain.ChartNone

	result, err := newTestService().Consolidate(ctx, ConsolidateRequest{
		InputDir:   testutil.ScenarioDir(t),
		OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
		Options:    opts,
	})
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunID)
}

func TestConsolidate_MetricsFile(t *testing.T) {
	tmp := t.TempDir()
	metricsPath := filepath.Join(tmp, "perfmerge.prom")
	opts := domain.DefaultPipelineOptions()
	opts.ChartOutput = domain.ChartNone

	_, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		InputDir:    testutil.ScenarioDir(t),
		OutputPath:  filepath.Join(tmp, "out.xlsx"),
		Options:     opts,
		MetricsFile: metricsPath,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "perfmerge_reports_read 2")
	assert.Contains(t, text, "perfmerge_rows_merged 2")
	assert.Contains(t, text, "perfmerge_last_run_success 1")
	assert.Contains(t, text, `perfmerge_report_cells{severity="SEVERE"} 1`)
}

func TestConsolidate_MetricsFileOnFailure(t *testing.T) {
	tmp := t.TempDir()
	metricsPath := filepath.Join(tmp, "perfmerge.prom")

	_, err := newTestService().Consolidate(context.Background(), ConsolidateRequest{
		InputDir:    t.TempDir(),
		OutputPath:  filepath.Join(tmp, "out.xlsx"),
		Options:     domain.DefaultPipelineOptions(),
		MetricsFile: metricsPath,
	})
	require.Error(t, err)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "perfmerge_last_run_success 0")
}

func TestConsolidate_Progress(t *testing.T) {
	progress := new(MockProgressReporter)
	progress.On("SendProgress", mock.AnythingOfType("string"), mock.AnythingOfType("string"), mock.AnythingOfType("int")).Return()
	progress.On("SendComplete", StepWrite, "done", true).Return().Once()

	svc := newTestService()
	svc.SetProgressReporter(progress)

	opts := domain.DefaultPipelineOptions()
	opts.ChartOutput = domain.ChartNone
	_, err := svc.Consolidate(context.Background(), ConsolidateRequest{
		InputDir:   testutil.ScenarioDir(t),
		OutputPath: filepath.Join(t.TempDir(), "out.xlsx"),
		Options:    opts,
	})
	require.NoError(t, err)

	progress.AssertExpectations(t)
	progress.AssertCalled(t, "SendProgress", StepDiscover, "Found 2 report(s)", 10)
	progress.AssertCalled(t, "SendProgress", StepDerive, "Derived 1 variance column(s)", 75)
}

func TestFilter(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	out := filepath.Join(t.TempDir(), "filtered.csv")

	result, err := newTestService().Filter(context.Background(), FilterRequest{
		InputDir:   dir,
		OutputPath: out,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Reports)
	assert.Equal(t, 1, result.Warn)
	assert.Equal(t, 2, result.Severe)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Equal(t, []string{
		"Report 1: Filtered Data for run1.xlsx",
		"Table: Transactions with 1.8 to <2 seconds",
		"b,1.9",
		"",
		"Table: Transactions with >=2 seconds",
		"",
		"Report 2: Filtered Data for run2.xlsx",
		"Table: Transactions with 1.8 to <2 seconds",
		"",
		"Table: Transactions with >=2 seconds",
		"b,2.1",
		"c,3",
	}, lines)
}

func TestFilter_BOMAndSkippedSources(t *testing.T) {
	dir := testutil.ScenarioDir(t)
	out := filepath.Join(t.TempDir(), "filtered.csv")

	result, err := newTestService().Filter(context.Background(), FilterRequest{
		Sources: []domain.Source{
			{Name: "run1.xlsx", Path: filepath.Join(dir, "run1.xlsx")},
			{Name: "gone.csv", Path: filepath.Join(dir, "gone.csv")},
		},
		OutputPath: out,
		BOM:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Reports)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "gone.csv", result.Skipped[0].Source.Name)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBFReport 1: Filtered Data for run1.xlsx\n"))
}

func TestFilter_RejectsNonCSVOutput(t *testing.T) {
	_, err := newTestService().Filter(context.Background(), FilterRequest{
		InputDir:   testutil.ScenarioDir(t),
		OutputPath: filepath.Join(t.TempDir(), "filtered.xlsx"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
}
