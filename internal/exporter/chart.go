package exporter

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 6 * vg.Inch
	// maxTickLabels bounds the T1..Tn labels on the x axis.
	maxTickLabels = 30
)

var plotBlue = color.RGBA{B: 255, A: 255}

// variancePoints holds the present values of a column. X is the 1-based row
// number, so gaps stay visible on the axis.
type variancePoints []domain.Value

func (p variancePoints) XYs() plotter.XYs {
	xys := make(plotter.XYs, 0, len(p))
	for i, v := range p {
		if f, ok := v.Get(); ok {
			xys = append(xys, plotter.XY{X: float64(i + 1), Y: f})
		}
	}
	return xys
}

// transactionTicks labels row positions T1..Tn, thinning them out on long
// tables.
type transactionTicks struct{ n int }

func (tt transactionTicks) Ticks(min, max float64) []plot.Tick {
	step := 1
	if tt.n > maxTickLabels {
		step = (tt.n + maxTickLabels - 1) / maxTickLabels
	}
	ticks := make([]plot.Tick, 0, tt.n/step+1)
	for i := 1; i <= tt.n; i++ {
		t := plot.Tick{Value: float64(i)}
		if (i-1)%step == 0 {
			t.Label = fmt.Sprintf("T%d", i)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// NewVariancePlot builds the line plot of one variance column. Empty slots
// are left out. A column without any value is an EmptyInputError.
func NewVariancePlot(col domain.Column) (*plot.Plot, error) {
	xys := variancePoints(col.Values).XYs()
	if len(xys) == 0 {
		return nil, apperrors.NewEmptyInputError(fmt.Sprintf("column %q has no values to plot", col.Label), nil)
	}

	p := plot.New()
	p.Title.Text = chartTitle(col.Label)
	p.X.Label.Text = KeyHeader
	p.Y.Label.Text = axisTitle(col.Mode)
	p.X.Tick.Marker = transactionTicks{n: len(col.Values)}
	p.X.Min, p.X.Max = 0.5, float64(len(col.Values))+0.5
	p.Add(plotter.NewGrid())

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("failed to build line: %w", err)
	}
	line.LineStyle.Color = plotBlue
	points.GlyphStyle.Color = plotBlue
	p.Add(line, points)

	return p, nil
}

// RenderVariancePNG renders the variance plot of col as a PNG image.
func RenderVariancePNG(col domain.Column) ([]byte, error) {
	p, err := NewVariancePlot(col)
	if err != nil {
		return nil, err
	}

	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to render png: %w", err)
	}
	return buf.Bytes(), nil
}
