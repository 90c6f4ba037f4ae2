package okavango

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
)

// Dashboard serves the interactive data explorer over HTTP: a dataset
// selector page, the world choropleth, the per-dataset bar chart, the joined
// rows as JSON and a coordinate-to-country lookup. It holds one Atlas for
// its whole lifetime, so nothing re-downloads per request.
type Dashboard struct {
	atlas *Atlas
}

// NewDashboard returns the HTTP handler for an atlas.
func NewDashboard(a *Atlas) http.Handler {
	d := &Dashboard{atlas: a}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", d.index)
	mux.HandleFunc("GET /map", d.worldMap)
	mux.HandleFunc("GET /chart", d.chart)
	mux.HandleFunc("GET /table", d.tableJSON)
	mux.HandleFunc("GET /locate", d.locate)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return mux
}

// dataset resolves the requested table, defaulting to the first catalog key.
func (d *Dashboard) dataset(r *http.Request) (*GeoTable, error) {
	key := r.URL.Query().Get("dataset")
	if key == "" {
		keys := d.atlas.Keys()
		if len(keys) == 0 {
			return nil, fmt.Errorf("no datasets loaded")
		}
		key = keys[0]
	}
	t := d.atlas.Table(key)
	if t == nil {
		return nil, fmt.Errorf("unknown dataset %q", key)
	}
	return t, nil
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Project Okavango — Environmental Data Explorer</title>
<style>
body { font-family: sans-serif; margin: 2em; }
img, object { max-width: 100%; border: 1px solid #ccc; margin-top: 1em; }
</style></head>
<body>
<h1>🌍 Project Okavango — Environmental Data Explorer</h1>
<form method="get" action="/">
<label>Select a dataset to explore:
<select name="dataset" onchange="this.form.submit()">
{{range .Options}}<option value="{{.Key}}"{{if eq .Key $.Selected}} selected{{end}}>{{.Label}}</option>
{{end}}</select></label>
</form>
<h2>🗺️ World Map — {{.Title}}</h2>
<img src="/map?dataset={{.Selected}}" alt="world map">
<h2>📊 {{.Title}} — Country Breakdown</h2>
<img src="/chart?dataset={{.Selected}}" alt="country breakdown">
</body>
</html>
`))

func (d *Dashboard) index(w http.ResponseWriter, r *http.Request) {
	t, err := d.dataset(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	type option struct{ Key, Label string }
	var options []option
	for _, key := range d.atlas.Keys() {
		options = append(options, option{Key: key, Label: d.atlas.Table(key).Label()})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = indexTemplate.Execute(w, map[string]any{
		"Options":  options,
		"Selected": t.Key,
		"Title":    t.Label(),
	})
	if err != nil {
		slog.Error("rendering index", "error", err)
	}
}

func (d *Dashboard) worldMap(w http.ResponseWriter, r *http.Request) {
	t, err := d.dataset(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := WriteChoropleth(t, w); err != nil {
		slog.Error("rendering choropleth", "dataset", t.Key, "error", err)
	}
}

func (d *Dashboard) chart(w http.ResponseWriter, r *http.Request) {
	t, err := d.dataset(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := WriteChartPNG(t, w); err != nil {
		slog.Error("rendering chart", "dataset", t.Key, "error", err)
	}
}

// tableRow is one country of a joined table in the JSON representation.
// Unmatched countries carry a null value.
type tableRow struct {
	Name      string   `json:"name"`
	ISO3      string   `json:"iso3,omitempty"`
	Continent string   `json:"continent,omitempty"`
	Geohash   string   `json:"geohash,omitempty"`
	Value     *float64 `json:"value"`
}

func (d *Dashboard) tableJSON(w http.ResponseWriter, r *http.Request) {
	t, err := d.dataset(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	col := t.ValueColumn()
	rows := make([]tableRow, 0, t.Len())
	for i, b := range t.Boundaries {
		row := tableRow{Name: b.Name, ISO3: b.ISO3, Continent: b.Continent, Geohash: b.Geohash}
		if v, ok := t.Float(i, col); ok {
			row.Value = &v
		}
		rows = append(rows, row)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"dataset": t.Key,
		"label":   t.Label(),
		"column":  col,
		"rows":    rows,
	}); err != nil {
		slog.Error("encoding table", "dataset", t.Key, "error", err)
	}
}

func (d *Dashboard) locate(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		http.Error(w, "lat and lng are required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	b, ok := d.atlas.Locate(lat, lng)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"found": false})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"found":     true,
		"name":      b.Name,
		"iso3":      b.ISO3,
		"continent": b.Continent,
		"geohash":   b.Geohash,
	})
}
