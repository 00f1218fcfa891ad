package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"bookshop-insights/models"
)

const (
	chartWidth  = 1024
	chartHeight = 640
)

// ErrNothingToDraw is returned for a spec without any data points.
var ErrNothingToDraw = errors.New("render: chart has no data points")

// PNG draws spec as a PNG image.
func PNG(spec *models.ChartSpec) ([]byte, error) {
	if spec == nil || len(spec.Series) == 0 || len(spec.Series[0].Points) == 0 {
		return nil, ErrNothingToDraw
	}

	var buf bytes.Buffer
	var err error
	switch spec.Kind {
	case models.ChartLine, models.ChartMultiLine:
		err = lineChart(spec).Render(chart.PNG, &buf)
	case models.ChartBar:
		err = barChart(spec).Render(chart.PNG, &buf)
	case models.ChartBarH:
		err = horizontalBarChart(spec).Render(chart.PNG, &buf)
	case models.ChartPie:
		pie, ok := pieChart(spec)
		if !ok {
			return nil, ErrNothingToDraw
		}
		err = pie.Render(chart.PNG, &buf)
	default:
		return nil, fmt.Errorf("render: unknown chart kind %q", spec.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s chart: %w", spec.Kind, err)
	}
	return buf.Bytes(), nil
}

func seriesStyle(i int) chart.Style {
	col := chart.GetDefaultColor(i)
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// lineChart plots every series against the category positions of the first
// one. Categories such as years are placed at 0..n-1 and labelled by ticks.
// go-chart takes the x range from the ticks, so a single category is drawn as
// a flat segment from 0 to 1 with its label centred between two blank ticks.
func lineChart(spec *models.ChartSpec) *chart.Chart {
	labels := spec.Series[0].Points
	single := len(labels) == 1

	var ticks []chart.Tick
	if single {
		ticks = []chart.Tick{{Value: 0}, {Value: 0.5, Label: labels[0].Label}, {Value: 1}}
	} else {
		ticks = make([]chart.Tick, len(labels))
		for i, p := range labels {
			ticks[i] = chart.Tick{Value: float64(i), Label: p.Label}
		}
	}

	series := make([]chart.Series, 0, len(spec.Series))
	for i, s := range spec.Series {
		xs := make([]float64, 0, len(s.Points)+1)
		ys := make([]float64, 0, len(s.Points)+1)
		for j, p := range s.Points {
			xs = append(xs, float64(j))
			ys = append(ys, p.Value)
		}
		if single && len(ys) == 1 {
			xs = append(xs, 1)
			ys = append(ys, ys[0])
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(i),
		})
	}

	ch := &chart.Chart{
		Title:      spec.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  spec.XLabel,
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: math.Max(float64(len(labels)-1), 1)},
		},
		YAxis: chart.YAxis{
			Name:           spec.YLabel,
			Range:          &chart.ContinuousRange{Min: 0, Max: maxValue(spec) * 1.1},
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		Series: series,
	}
	if spec.Kind == models.ChartMultiLine {
		ch.Elements = []chart.Renderable{chart.Legend(ch)}
	}
	return ch
}

func barChart(spec *models.ChartSpec) *chart.BarChart {
	points := spec.Series[0].Points
	bars := make([]chart.Value, len(points))
	for i, p := range points {
		bars[i] = chart.Value{Label: p.Label, Value: p.Value}
	}

	xAxis := chart.Style{}
	bottom := 20
	if spec.RotateLabels {
		xAxis.TextRotationDegrees = 90
		bottom = 160
	}

	width := barWidth(len(bars))
	spacing := width / 2
	yRange := &chart.ContinuousRange{Min: 0, Max: maxValue(spec) * 1.1}

	return &chart.BarChart{
		Title:      spec.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   width,
		BarSpacing: spacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Bottom: bottom}},
		XAxis:      xAxis,
		YAxis: chart.YAxis{
			Name:           spec.YLabel,
			Range:          yRange,
			GridMajorStyle: gridStyle,
			GridMinorStyle: gridStyle,
		},
		Bars:     bars,
		Elements: []chart.Renderable{barCounts(bars, width, spacing, yRange)},
	}
}

// gridStyle draws light dashed lines at the y ticks.
var gridStyle = chart.Style{
	StrokeColor:     drawing.ColorFromHex("D1D5DB"),
	StrokeWidth:     1,
	StrokeDashArray: []float64{4, 4},
}

// barCounts writes each bar's count above it. Bar positions follow go-chart's
// layout: bars start at the canvas left edge, each slot is width+spacing wide,
// and both shrink when the slots do not fit the canvas. yRange is the range
// the chart renders with; its domain has been set to the canvas height by the
// time elements run.
func barCounts(bars []chart.Value, width, spacing int, yRange *chart.ContinuousRange) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		n := len(bars)
		if n == 0 {
			return
		}
		w, sp := width, spacing
		if n*(w+sp) > canvas.Width() {
			if rest := canvas.Width() - n*w; rest > 0 {
				sp = int(math.Ceil(float64(rest) / float64(n)))
			} else {
				sp = 0
			}
			if n*(w+sp) > canvas.Width() {
				if rest := canvas.Width() - n*sp; rest > 0 {
					w = int(math.Ceil(float64(rest) / float64(n)))
				} else {
					w = 0
				}
			}
		}

		style := chart.Style{
			FontSize:  9,
			FontColor: drawing.ColorFromHex("374151"),
		}.InheritFrom(defaults)

		x := canvas.Left + sp>>1
		for _, b := range bars {
			label := fmt.Sprintf("%g", b.Value)
			box := chart.Draw.MeasureText(r, label, style)
			top := canvas.Bottom - yRange.Translate(b.Value)
			chart.Draw.Text(r, label, x+(w-box.Width())/2, top-4, style)
			x += w + sp
		}
	}
}

// horizontalBarChart draws one single-segment stacked bar per category, which
// is how go-chart lays bars out sideways.
func horizontalBarChart(spec *models.ChartSpec) *chart.StackedBarChart {
	points := spec.Series[0].Points
	bars := make([]chart.StackedBar, len(points))
	for i, p := range points {
		bars[i] = chart.StackedBar{
			Name: p.Label,
			Values: []chart.Value{{
				Label: p.Label,
				Value: p.Value,
				Style: chart.Style{FillColor: drawing.ColorFromHex("4F46E5"), StrokeColor: drawing.ColorFromHex("4F46E5")},
			}},
		}
	}

	return &chart.StackedBarChart{
		Title:        spec.Title,
		Width:        chartWidth,
		Height:       chartHeight,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 140}},
		IsHorizontal: true,
		Bars:         bars,
	}
}

// pieChart drops empty slices; go-chart cannot draw a zero-width wedge.
func pieChart(spec *models.ChartSpec) (*chart.PieChart, bool) {
	var total float64
	for _, p := range spec.Series[0].Points {
		total += p.Value
	}
	if total <= 0 {
		return nil, false
	}

	var values []chart.Value
	for _, p := range spec.Series[0].Points {
		if p.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", p.Label, p.Value/total*100),
			Value: p.Value,
		})
	}

	return &chart.PieChart{
		Title:  spec.Title,
		Width:  chartHeight,
		Height: chartHeight,
		Values: values,
	}, true
}

func maxValue(spec *models.ChartSpec) float64 {
	top := 1.0
	for _, s := range spec.Series {
		for _, p := range s.Points {
			if p.Value > top {
				top = p.Value
			}
		}
	}
	return top
}

func barWidth(n int) int {
	w := (chartWidth - 100) / (n + 1)
	switch {
	case w > 80:
		return 80
	case w < 8:
		return 8
	}
	return w
}
