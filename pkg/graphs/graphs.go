// Package graphs renders report data as PNG bar charts.
package graphs

import (
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/grocerydesk/grocery-console/pkg/apperrors"
	"github.com/grocerydesk/grocery-console/pkg/reports"
)

const (
	minWidth   = 1000
	height     = 600
	barWidth   = 40
	barSpacing = 24
	// room for rotated tick labels and the axis titles
	bottomPadding = 110
	leftPadding   = 60
)

// Point is one bar.
type Point struct {
	Label string
	Value float64
}

// Series is the data for one chart together with its labels.
type Series struct {
	Mapping reports.GraphMapping
	Points  []Point
}

// FromCSV reads a previously generated report and picks out the mapped columns.
func FromCSV(csvPath string, t reports.ReportType) (*Series, error) {
	def, err := reports.Lookup(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidGraphType, string(t))
	}

	header, records, err := reports.ReadCSV(csvPath)
	if err != nil {
		return nil, err
	}

	xi, yi := indexOf(header, def.Graph.XColumn), indexOf(header, def.Graph.YColumn)
	if xi < 0 || yi < 0 {
		return nil, fmt.Errorf("%w: %s needs %s and %s", apperrors.ErrMissingColumns,
			csvPath, def.Graph.XColumn, def.Graph.YColumn)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s has no data rows", apperrors.ErrNoData, csvPath)
	}

	series := &Series{Mapping: def.Graph, Points: make([]Point, 0, len(records))}
	for i, rec := range records {
		if xi >= len(rec) || yi >= len(rec) {
			return nil, fmt.Errorf("row %d of %s is short", i+2, csvPath)
		}
		v, err := decimal.NewFromString(rec[yi])
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %s is not a number: %w", i+2, csvPath, def.Graph.YColumn, err)
		}
		series.Points = append(series.Points, Point{Label: rec[xi], Value: v.InexactFloat64()})
	}
	return series, nil
}

// FromResult picks out the mapped columns from a live query result.
func FromResult(result *reports.Result) (*Series, error) {
	def := result.Definition
	if len(result.Rows) == 0 {
		return nil, fmt.Errorf("%w: %s report returned no rows", apperrors.ErrNoData, def.Type)
	}

	// Values are indexed after the label column.
	yi := indexOf(def.Header(), def.Graph.YColumn) - 1
	if yi < 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrMissingColumns, def.Graph.YColumn)
	}

	series := &Series{Mapping: def.Graph, Points: make([]Point, 0, len(result.Rows))}
	for _, row := range result.Rows {
		series.Points = append(series.Points, Point{Label: row.Label, Value: row.Values[yi].InexactFloat64()})
	}
	return series, nil
}

// Render draws the series as a PNG bar chart: one bar per point, rotated
// x-tick labels, and both axis titles.
func Render(w io.Writer, s *Series) error {
	if len(s.Points) == 0 {
		return apperrors.ErrNoData
	}

	bars := make([]chart.Value, len(s.Points))
	maxValue := 0.0
	for i, p := range s.Points {
		bars[i] = chart.Value{Label: p.Label, Value: p.Value}
		maxValue = math.Max(maxValue, p.Value)
	}
	// go-chart refuses a zero-height range
	if maxValue <= 0 {
		maxValue = 1
	}

	width := len(bars)*(barWidth+barSpacing) + 2*leftPadding
	if width < minWidth {
		width = minWidth
	}

	graph := chart.BarChart{
		Title:  s.Mapping.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   leftPadding,
				Bottom: bottomPadding,
			},
		},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
		},
		Bars:     bars,
		Elements: []chart.Renderable{axisTitles(s.Mapping.XLabel, s.Mapping.YLabel)},
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderFile renders to path atomically.
func RenderFile(path string, s *Series) error {
	return reports.WriteAtomic(path, func(w io.Writer) error {
		return Render(w, s)
	})
}

// axisTitles draws the x title under the tick labels and the y title along
// the left edge.
func axisTitles(xLabel, yLabel string) chart.Renderable {
	return func(r chart.Renderer, canvasBox chart.Box, defaults chart.Style) {
		style := chart.Style{
			FontSize:  12,
			FontColor: chart.ColorBlack,
		}.InheritFrom(defaults)

		if xLabel != "" {
			style.WriteToRenderer(r)
			tb := r.MeasureText(xLabel)
			x := canvasBox.Left + (canvasBox.Width()-tb.Width())/2
			y := canvasBox.Bottom + bottomPadding - 10
			chart.Draw.Text(r, xLabel, x, y, style)
		}

		if yLabel != "" {
			ys := style
			ys.TextRotationDegrees = 270
			ys.WriteToRenderer(r)
			tb := r.MeasureText(yLabel)
			x := 16
			y := canvasBox.Top + (canvasBox.Height()+tb.Width())/2
			chart.Draw.Text(r, yLabel, x, y, ys)
		}
	}
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
