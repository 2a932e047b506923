package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"perfmerge/internal/dataprocessing"
	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

// Sheet names used by the two layouts.
const (
	SheetData   = "Data"
	SheetTable  = "Table"
	SheetGraphs = "Graphs"
)

// KeyHeader is the header of the transaction key column.
const KeyHeader = "Transactions"

const (
	nativeChartSpacing = 20
	imageChartSpacing  = 15
	keyColumnWidth     = 40
	valueColumnWidth   = 14
)

// WorkbookOptions controls presentation only; the table is written as is.
type WorkbookOptions struct {
	Layout     domain.SheetLayout
	Chart      domain.ChartOutput
	Arrows     bool
	Thresholds dataprocessing.Thresholds
}

// WorkbookOptionsFrom picks the presentation fields out of pipeline options.
func WorkbookOptionsFrom(o domain.PipelineOptions, th dataprocessing.Thresholds) WorkbookOptions {
	return WorkbookOptions{
		Layout:     o.SheetLayout,
		Chart:      o.ChartOutput,
		Arrows:     o.Arrows,
		Thresholds: th,
	}
}

// WorkbookWriter renders a merged table as a styled xlsx workbook.
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write renders t and streams the workbook to w.
func (ww *WorkbookWriter) Write(w io.Writer, t *domain.MergedTable, opts WorkbookOptions) error {
	f, err := ww.Build(t, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return apperrors.NewStorageError("failed to write workbook", err)
	}
	return nil
}

// Build renders t into a new in-memory workbook. The caller owns the file.
func (ww *WorkbookWriter) Build(t *domain.MergedTable, opts WorkbookOptions) (*excelize.File, error) {
	if t == nil {
		return nil, apperrors.NewAppValidationError("nil merged table")
	}
	opts = withDefaults(opts)

	f := excelize.NewFile()
	b := &bookBuilder{
		f:      f,
		styles: newStyleRegistry(f),
		table:  t,
		opts:   opts,
		logger: ww.logger,
	}
	if err := b.build(); err != nil {
		f.Close()
		return nil, apperrors.NewStorageError("failed to render workbook", err)
	}
	return f, nil
}

func withDefaults(o WorkbookOptions) WorkbookOptions {
	if o.Layout == "" {
		o.Layout = domain.LayoutMulti
	}
	if o.Chart == "" {
		o.Chart = domain.ChartNone
	}
	if o.Thresholds == (dataprocessing.Thresholds{}) {
		o.Thresholds = dataprocessing.DefaultThresholds
	}
	return o
}

// bookBuilder carries the state of one Build call.
type bookBuilder struct {
	f      *excelize.File
	styles *styleRegistry
	table  *domain.MergedTable
	opts   WorkbookOptions
	logger *slog.Logger
}

func (b *bookBuilder) build() error {
	tableSheet := SheetTable
	if b.opts.Layout == domain.LayoutSingle {
		tableSheet = SheetData
	}
	if err := b.f.SetSheetName("Sheet1", tableSheet); err != nil {
		return err
	}

	if err := b.writeTable(tableSheet); err != nil {
		return err
	}

	if b.opts.Chart == domain.ChartNone || len(b.table.VarianceColumns()) == 0 {
		return nil
	}

	chartSheet, startRow := tableSheet, b.table.RowCount()+3
	if b.opts.Layout != domain.LayoutSingle {
		if _, err := b.f.NewSheet(SheetGraphs); err != nil {
			return err
		}
		chartSheet, startRow = SheetGraphs, 1
	}
	return b.writeCharts(tableSheet, chartSheet, startRow)
}

func (b *bookBuilder) writeTable(sheet string) error {
	t := b.table

	header := make([]interface{}, 0, len(t.Columns)+1)
	header = append(header, KeyHeader)
	for _, c := range t.Columns {
		header = append(header, c.Label)
	}
	if err := b.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := b.style(sheet, "A1", lastCol+"1", classHeader); err != nil {
		return err
	}

	for r, key := range t.Order {
		row := r + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := b.f.SetCellStr(sheet, cell, key); err != nil {
			return err
		}
		if err := b.style(sheet, cell, cell, classPlain); err != nil {
			return err
		}

		for c, col := range t.Columns {
			cell, _ := excelize.CoordinatesToCellName(c+2, row)
			v := col.Values[r]
			if f, ok := v.Get(); ok {
				if err := b.f.SetCellFloat(sheet, cell, f, -1, 64); err != nil {
					return err
				}
			}
			if err := b.style(sheet, cell, cell, b.classOf(col, v)); err != nil {
				return err
			}
		}
	}

	if err := b.f.SetColWidth(sheet, "A", "A", keyColumnWidth); err != nil {
		return err
	}
	if len(header) > 1 {
		if err := b.f.SetColWidth(sheet, "B", lastCol, valueColumnWidth); err != nil {
			return err
		}
	}
	return nil
}

// classOf never grades an empty slot.
func (b *bookBuilder) classOf(col domain.Column, v domain.Value) cellClass {
	if v.IsEmpty() {
		return classPlain
	}
	if col.Kind == domain.ColumnKindVariance {
		return varianceClass(dataprocessing.ClassifyTrend(v), b.opts.Arrows)
	}
	return reportClass(b.opts.Thresholds.Classify(v))
}

func (b *bookBuilder) style(sheet, from, to string, class cellClass) error {
	id, err := b.styles.id(class)
	if err != nil {
		return err
	}
	return b.f.SetCellStyle(sheet, from, to, id)
}

func (b *bookBuilder) writeCharts(tableSheet, chartSheet string, startRow int) error {
	t := b.table
	if t.RowCount() == 0 {
		b.logger.Debug("No rows to chart")
		return nil
	}

	row := startRow
	for idx, col := range t.Columns {
		if col.Kind != domain.ColumnKindVariance {
			continue
		}
		anchor, _ := excelize.CoordinatesToCellName(1, row)

		var (
			drawn bool
			err   error
		)
		switch b.opts.Chart {
		case domain.ChartNative:
			err = b.addNativeChart(tableSheet, chartSheet, anchor, idx+2, col)
			drawn = err == nil
			row += nativeChartSpacing
		case domain.ChartEmbeddedImage:
			drawn, err = b.addImageChart(chartSheet, anchor, col)
			if drawn {
				row += imageChartSpacing
			}
		default:
			return fmt.Errorf("unknown chart output %q", b.opts.Chart)
		}
		if err != nil {
			return fmt.Errorf("chart for %q: %w", col.Label, err)
		}
		if drawn {
			b.logger.Debug("Chart added",
				slog.String("column", col.Label),
				slog.String("sheet", chartSheet),
				slog.String("anchor", anchor))
		}
	}
	return nil
}

// addNativeChart adds an Excel line chart that references the table cells,
// so the chart follows later edits to the table.
func (b *bookBuilder) addNativeChart(tableSheet, chartSheet, anchor string, colNum int, col domain.Column) error {
	colName, err := excelize.ColumnNumberToName(colNum)
	if err != nil {
		return err
	}
	last := b.table.RowCount() + 1

	return b.f.AddChart(chartSheet, anchor, &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$%s$1", tableSheet, colName),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", tableSheet, last),
			Values:     fmt.Sprintf("'%s'!$%s$2:$%s$%d", tableSheet, colName, colName, last),
			Marker:     excelize.ChartMarker{Symbol: "circle", Size: 5},
		}},
		Title:        []excelize.RichTextRun{{Text: chartTitle(col.Label)}},
		XAxis:        excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: KeyHeader}}},
		YAxis:        excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: axisTitle(col.Mode)}}},
		Legend:       excelize.ChartLegend{Position: "none"},
		ShowBlanksAs: "gap",
		Dimension:    excelize.ChartDimension{Width: 640, Height: 360},
	})
}

// addImageChart embeds a rendered PNG. Columns without a single value are
// skipped.
func (b *bookBuilder) addImageChart(sheet, anchor string, col domain.Column) (bool, error) {
	png, err := RenderVariancePNG(col)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrTypeEmptyInput) {
			b.logger.Debug("Skipping chart without values", slog.String("column", col.Label))
			return false, nil
		}
		return false, err
	}

	err = b.f.AddPictureFromBytes(sheet, anchor, &excelize.Picture{
		Extension: ".png",
		File:      png,
		Format: &excelize.GraphicOptions{
			AltText: chartTitle(col.Label),
			ScaleX:  0.5,
			ScaleY:  0.5,
		},
	})
	return err == nil, err
}
