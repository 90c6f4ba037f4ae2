package okavango

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	svg "github.com/ajstarks/svgo"
	"gonum.org/v1/plot/palette/brewer"
)

const (
	mapWidth  = 1000
	mapHeight = 500
	legendBar = 40 // extra canvas height for the legend strip

	// noDataFill marks countries the join left without a metric value.
	noDataFill = "#d3d3d3"

	paletteSteps = 9
)

// WriteChoropleth renders the joined table as a world choropleth SVG:
// every boundary polygon filled from the dataset's color palette by metric
// value, light grey where the join produced no data.
func WriteChoropleth(t *GeoTable, w io.Writer) error {
	col := t.ValueColumn()
	if col == "" {
		return fmt.Errorf("choropleth %s: no metric column", t.Key)
	}
	colors, err := brewerColors(t.Dataset)
	if err != nil {
		return fmt.Errorf("choropleth %s: %w", t.Key, err)
	}

	min, max, any := 0.0, 0.0, false
	for i := range t.Boundaries {
		v, ok := t.Float(i, col)
		if !ok {
			continue
		}
		if !any || v < min {
			min = v
		}
		if !any || v > max {
			max = v
		}
		any = true
	}
	if !any {
		return fmt.Errorf("choropleth %s: no data", t.Key)
	}

	canvas := svg.New(w)
	canvas.Start(mapWidth, mapHeight+legendBar)
	canvas.Rect(0, 0, mapWidth, mapHeight, "fill:#eef6fb")

	for i := range t.Boundaries {
		fill := noDataFill
		if v, ok := t.Float(i, col); ok {
			fill = hexColor(colors[paletteBin(v, min, max, len(colors))])
		}
		style := fmt.Sprintf("fill:%s;stroke:#000000;stroke-width:0.3", fill)
		for _, ring := range t.Boundaries[i].Rings {
			canvas.Path(ringPath(ring), style)
		}
	}

	drawLegend(canvas, t, colors, min, max)
	canvas.End()
	return nil
}

// brewerColors resolves the dataset's ColorBrewer palette, defaulting to a
// sequential green ramp for tables merged without a catalog entry.
func brewerColors(ds Dataset) ([]color.Color, error) {
	name := ds.Palette
	if name == "" {
		name = "Greens"
	}
	typ := brewer.TypeSequential
	if ds.Diverging {
		typ = brewer.TypeDiverging
	}
	pal, err := brewer.GetPalette(typ, name, paletteSteps)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", name, err)
	}
	return pal.Colors(), nil
}

// paletteBin maps a value linearly onto a palette index.
func paletteBin(v, min, max float64, n int) int {
	if max <= min {
		return n / 2
	}
	bin := int((v - min) / (max - min) * float64(n))
	if bin < 0 {
		bin = 0
	}
	if bin >= n {
		bin = n - 1
	}
	return bin
}

// ringPath converts a ring to an SVG path in equirectangular projection.
func ringPath(r Ring) string {
	var b strings.Builder
	for i, p := range r {
		x := (p.Lng + 180) / 360 * mapWidth
		y := (90 - p.Lat) / 180 * mapHeight
		if i == 0 {
			fmt.Fprintf(&b, "M%.2f,%.2f", x, y)
		} else {
			fmt.Fprintf(&b, "L%.2f,%.2f", x, y)
		}
	}
	b.WriteString("Z")
	return b.String()
}

func drawLegend(canvas *svg.SVG, t *GeoTable, colors []color.Color, min, max float64) {
	const swatch = 24
	y := mapHeight + 12
	x := mapWidth/2 - len(colors)*swatch/2

	canvas.Text(20, y+14, t.Dataset.AxisLabel, "font-family:sans-serif;font-size:12px")
	canvas.Text(x-8, y+14, fmt.Sprintf("%.4g", min), "font-family:sans-serif;font-size:11px;text-anchor:end")
	for i, c := range colors {
		canvas.Rect(x+i*swatch, y, swatch, 16, fmt.Sprintf("fill:%s;stroke:#666666;stroke-width:0.5", hexColor(c)))
	}
	canvas.Text(x+len(colors)*swatch+8, y+14, fmt.Sprintf("%.4g", max), "font-family:sans-serif;font-size:11px")
	canvas.Rect(x+len(colors)*swatch+60, y, 16, 16, "fill:"+noDataFill)
	canvas.Text(x+len(colors)*swatch+82, y+14, "No data", "font-family:sans-serif;font-size:11px")
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", uint8(r>>8), uint8(g>>8), uint8(b>>8))
}
