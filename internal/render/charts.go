package render

import (
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/raceda/internal/analysis"
)

// Pie draws the share of each outcome value with percentage labels.
func Pie(w io.Writer, title string, counts []analysis.CategoryCount, size Size) error {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return Blank(w, title, size)
	}
	size = size.orDefault()
	values := make([]chart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count == 0 {
			continue
		}
		pct := float64(c.Count) * 100 / float64(total)
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", c.Value, pct),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: outcomeColor(c.Value, i)},
		})
	}
	pie := chart.PieChart{
		Title:  title,
		Width:  size.Width,
		Height: size.Height,
		Values: values,
	}
	return renderPNG(w, title, pie)
}

func outcomeColor(v string, i int) drawing.Color {
	switch v {
	case "1", "true":
		return colorWin
	case "0", "false":
		return colorLoss
	}
	return paletteColor(i)
}

// Histogram bins vals into equal-width buckets and draws one bar per bucket.
func Histogram(w io.Writer, title string, vals []float64, bins int, size Size) error {
	hist := analysis.Histogram(vals, bins)
	if len(hist) == 0 {
		return Blank(w, title, size)
	}
	size = size.orDefault()
	bars := make([]chart.Value, len(hist))
	maxCount := 0
	for i, b := range hist {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%.4g", b.Lo),
			Value: float64(b.Count),
			Style: chart.Style{FillColor: paletteColor(0), StrokeColor: paletteColor(0)},
		}
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	bw := barWidth(size.Width, len(bars))
	bc := chart.BarChart{
		Title:      title,
		Background: padding(),
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   bw,
		BarSpacing: max(bw/2, 2),
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: float64(maxCount) + 1}},
		Bars:       bars,
	}
	return renderPNG(w, title, bc)
}

func barWidth(width, n int) int {
	if n <= 0 {
		return 10
	}
	bw := (width - 120) / n * 2 / 3
	if bw < 4 {
		bw = 4
	}
	return bw
}

// StackedBar draws one bar per pivot row with one segment per column.
func StackedBar(w io.Writer, title string, p *analysis.Pivot, size Size) error {
	if p.Empty() || p.Total() == 0 {
		return Blank(w, title, size)
	}
	size = size.orDefault()
	bars := make([]chart.StackedBar, 0, len(p.Rows))
	for i, row := range p.Rows {
		bar := chart.StackedBar{Name: row}
		for j, col := range p.Cols {
			n := p.Cells[i][j]
			if n == 0 {
				continue
			}
			bar.Values = append(bar.Values, chart.Value{
				Label: fmt.Sprintf("%s: %d", col, n),
				Value: float64(n),
				Style: chart.Style{FillColor: paletteColor(j), StrokeColor: paletteColor(j)},
			})
		}
		if len(bar.Values) > 0 {
			bars = append(bars, bar)
		}
	}
	sb := chart.StackedBarChart{
		Title:      title,
		Background: padding(),
		Width:      size.Width,
		Height:     size.Height,
		BarSpacing: 40,
		Bars:       bars,
	}
	return renderPNG(w, title, sb)
}

// Line draws race counts over time.
func Line(w io.Writer, title string, counts []analysis.DateCount, size Size) error {
	if len(counts) == 0 {
		return Blank(w, title, size)
	}
	size = size.orDefault()
	xs := make([]time.Time, len(counts))
	ys := make([]float64, len(counts))
	maxY := 0.0
	for i, c := range counts {
		xs[i] = c.Date
		ys[i] = float64(c.Count)
		maxY = math.Max(maxY, ys[i])
	}
	// a single date has no x extent
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	ch := chart.Chart{
		Title:      title,
		Background: padding(),
		Width:      size.Width,
		Height:     size.Height,
		XAxis: chart.XAxis{
			Name:           "date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
		},
		YAxis: chart.YAxis{
			Name:  "races",
			Range: &chart.ContinuousRange{Min: 0, Max: maxY*1.1 + 1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "races",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: paletteColor(0), StrokeWidth: 2},
			},
		},
	}
	return renderPNG(w, title, ch)
}

// BoxPlot draws one box per outcome group: quartile box, median, 1.5 IQR
// whiskers and outlier dots.
func BoxPlot(w io.Writer, title string, groups []analysis.OutcomeValues, size Size) error {
	var boxes []analysis.Box
	var labels []string
	for _, g := range groups {
		if len(g.Values) == 0 {
			continue
		}
		boxes = append(boxes, analysis.BoxStats(g.Values))
		labels = append(labels, g.Outcome)
	}
	if len(boxes) == 0 {
		return Blank(w, title, size)
	}
	size = size.orDefault()

	lo, hi := math.Inf(1), math.Inf(-1)
	var series []chart.Series
	// go-chart derives the x range from the ticks, so the outer ticks pin it.
	ticks := []chart.Tick{{Value: 0.4}}
	for k, b := range boxes {
		x := float64(k + 1)
		col := outcomeColor(labels[k], k)
		line := chart.Style{StrokeColor: col, StrokeWidth: 2}
		series = append(series,
			chart.ContinuousSeries{
				XValues: []float64{x - 0.3, x + 0.3, x + 0.3, x - 0.3, x - 0.3},
				YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
				Style:   line,
			},
			chart.ContinuousSeries{
				XValues: []float64{x - 0.3, x + 0.3},
				YValues: []float64{b.Median, b.Median},
				Style:   chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 3},
			},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.Low, b.Q1}, Style: line},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.Q3, b.High}, Style: line},
			chart.ContinuousSeries{XValues: []float64{x - 0.15, x + 0.15}, YValues: []float64{b.Low, b.Low}, Style: line},
			chart.ContinuousSeries{XValues: []float64{x - 0.15, x + 0.15}, YValues: []float64{b.High, b.High}, Style: line},
		)
		if len(b.Outliers) > 0 {
			xs := make([]float64, len(b.Outliers))
			for i := range xs {
				xs[i] = x
			}
			series = append(series, chart.ContinuousSeries{
				XValues: xs,
				YValues: b.Outliers,
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent, DotWidth: 4, DotColor: col},
			})
		}
		lo = math.Min(lo, b.Low)
		hi = math.Max(hi, b.High)
		for _, v := range b.Outliers {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		ticks = append(ticks, chart.Tick{Value: x, Label: labels[k]})
	}
	ticks = append(ticks, chart.Tick{Value: float64(len(boxes)) + 0.6})
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	ch := chart.Chart{
		Title:      title,
		Background: padding(),
		Width:      size.Width,
		Height:     size.Height,
		XAxis: chart.XAxis{
			Name:  "outcome",
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  "weight",
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
		},
		Series: series,
	}
	return renderPNG(w, title, ch)
}
