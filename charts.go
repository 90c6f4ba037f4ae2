package okavango

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Chart colors, matching the dashboard's gain/loss palette.
var (
	colorGain = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	colorLoss = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	colorLow  = color.RGBA{R: 0xe6, G: 0x7e, B: 0x22, A: 0xff}
)

const (
	chartWidth  = 12 * vg.Inch
	chartHeight = 5 * vg.Inch
)

// barGroup is one colored series of a bar chart.
type barGroup struct {
	label string
	color color.RGBA
	ranks []Rank
}

// BarChart builds the per-dataset country breakdown chart. The layout
// depends on the dataset's chart variant: top gainers vs. losers, the ten
// highest values, or top five vs. bottom five.
func BarChart(t *GeoTable) (*plot.Plot, error) {
	col := t.ValueColumn()
	if col == "" {
		return nil, fmt.Errorf("chart %s: no metric column", t.Key)
	}

	var groups []barGroup
	switch t.Dataset.Chart {
	case ChartTopOnly:
		groups = []barGroup{
			{label: "Top 10", color: colorLoss, ranks: t.TopN(col, 10)},
		}
	case ChartTopBottom:
		groups = []barGroup{
			{label: "Top 5", color: colorGain, ranks: t.TopN(col, 5)},
			{label: "Bottom 5", color: colorLow, ranks: t.BottomN(col, 5)},
		}
	default:
		groups = []barGroup{
			{label: "Top 5 Gaining", color: colorGain, ranks: t.TopN(col, 5)},
			{label: "Top 5 Losing", color: colorLoss, ranks: t.BottomN(col, 5)},
		}
	}

	return renderBarGroups(t, groups)
}

func renderBarGroups(t *GeoTable, groups []barGroup) (*plot.Plot, error) {
	total := 0
	for _, g := range groups {
		total += len(g.ranks)
	}
	if total == 0 {
		return nil, fmt.Errorf("chart %s: no data", t.Key)
	}

	// Flatten the groups into one bar row per country, first group on top.
	// NominalY places index 0 at the bottom, so positions are assigned in
	// reverse.
	names := make([]string, total)
	offsets := make([]int, len(groups))
	pos := total - 1
	idx := 0
	for gi, g := range groups {
		offsets[gi] = idx
		for _, r := range g.ranks {
			names[pos-idx] = r.Name
			idx++
		}
	}

	p := plot.New()
	p.Title.Text = t.Label()
	p.X.Label.Text = t.Dataset.AxisLabel

	for gi, g := range groups {
		// Zero-filled outside the group's own rows so the overlaid series
		// occupy distinct positions on the shared nominal axis.
		values := make(plotter.Values, total)
		for i, r := range g.ranks {
			values[pos-(offsets[gi]+i)] = r.Value
		}
		bars, err := plotter.NewBarChart(values, vg.Points(14))
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", t.Key, err)
		}
		bars.Horizontal = true
		bars.Color = g.color
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
		if len(groups) > 1 {
			p.Legend.Add(g.label, bars)
		}
	}
	p.NominalY(names...)
	p.Legend.Top = true

	if t.Dataset.Chart == ChartGainersLosers {
		// Zero reference line between gainers and losers.
		zero, err := plotter.NewLine(plotter.XYs{
			{X: 0, Y: -0.5},
			{X: 0, Y: float64(total) - 0.5},
		})
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", t.Key, err)
		}
		zero.Color = color.Black
		zero.Width = vg.Points(0.8)
		p.Add(zero)
	}

	return p, nil
}

// SaveChart renders the dataset's bar chart to an image file; the format
// follows the file extension.
func SaveChart(t *GeoTable, path string) error {
	p, err := BarChart(t)
	if err != nil {
		return err
	}
	if err := p.Save(chartWidth, chartHeight, path); err != nil {
		return fmt.Errorf("chart %s: saving %s: %w", t.Key, path, err)
	}
	return nil
}

// WriteChartPNG renders the dataset's bar chart as PNG to w.
func WriteChartPNG(t *GeoTable, w io.Writer) error {
	p, err := BarChart(t)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(chartWidth, chartHeight, "png")
	if err != nil {
		return fmt.Errorf("chart %s: %w", t.Key, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart %s: %w", t.Key, err)
	}
	return nil
}
