package okavango

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
)

// Fixture boundary table: three synthetic countries with simple polygons.
// "Gammastan" is deliberately spelled "Gamma Stan" in the dataset fixtures so
// joins exercise the unmatched-country path.
type fixtureCountry struct {
	name      string
	iso3      string
	continent string
	popEst    float64
	ring      []shp.Point
}

var fixtureCountries = []fixtureCountry{
	{
		name: "Alphaland", iso3: "ALF", continent: "Testia", popEst: 1_000_000,
		ring: []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}},
	},
	{
		name: "Betaria", iso3: "BET", continent: "Testia", popEst: 2_000_000,
		ring: []shp.Point{{X: 20, Y: 0}, {X: 20, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 0}, {X: 20, Y: 0}},
	},
	{
		name: "Gammastan", iso3: "GAM", continent: "Testia", popEst: 500_000,
		ring: []shp.Point{{X: 40, Y: 0}, {X: 45, Y: 10}, {X: 50, Y: 0}, {X: 40, Y: 0}},
	},
}

// writeFixtureShapefile writes the fixture countries as a shapefile triple
// (.shp/.shx/.dbf) under dir and returns the .shp path.
func writeFixtureShapefile(dir string) (string, error) {
	path := filepath.Join(dir, "countries.shp")
	w, err := shp.Create(path, shp.POLYGON)
	if err != nil {
		return "", err
	}

	w.SetFields([]shp.Field{
		shp.StringField("NAME", 25),
		shp.StringField("ISO_A3", 7),
		shp.StringField("CONTINENT", 20),
		shp.FloatField("POP_EST", 16, 2),
	})

	for n, c := range fixtureCountries {
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{c.ring}))
		w.Write(&poly)
		// dBASE string fields are space-padded to the field width; go-shp's
		// writer leaves the remainder NUL-filled, so pad explicitly.
		w.WriteAttribute(n, 0, fmt.Sprintf("%-25s", c.name))
		w.WriteAttribute(n, 1, fmt.Sprintf("%-7s", c.iso3))
		w.WriteAttribute(n, 2, fmt.Sprintf("%-20s", c.continent))
		w.WriteAttribute(n, 3, fmt.Sprintf("%16.2f", c.popEst))
	}
	w.Close()
	return path, nil
}

// writeFixtureArchive zips a fixture shapefile into dir and returns the
// archive path.
func writeFixtureArchive(dir string) (string, error) {
	shpDir, err := os.MkdirTemp(dir, "shp")
	if err != nil {
		return "", err
	}
	shpPath, err := writeFixtureShapefile(shpDir)
	if err != nil {
		return "", err
	}

	archive := filepath.Join(dir, "boundaries.zip")
	out, err := os.Create(archive)
	if err != nil {
		return "", err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	base := strings.TrimSuffix(shpPath, ".shp")
	for _, ext := range []string{".shp", ".shx", ".dbf"} {
		in, err := os.Open(base + ext)
		if err != nil {
			return "", err
		}
		member, err := zw.Create(filepath.Base(base) + ext)
		if err == nil {
			_, err = io.Copy(member, in)
		}
		in.Close()
		if err != nil {
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return archive, out.Close()
}

// fixtureCSV builds a raw dataset table with the given metric column, two
// years for Alphaland (only 2020 must survive the merge) and a misspelled
// Gammastan that must not join.
func fixtureCSV(valueCol string) string {
	return fmt.Sprintf(`Entity,Code,Year,%s
Alphaland,ALF,2019,100
 Alphaland ,ALF,2020,125.5
Betaria,BET,2020,-50
Gamma Stan,GAM,2020,300
`, valueCol)
}

// rawValueColumns maps each catalog key to the pre-normalization metric
// column name its source serves.
var rawValueColumns = map[string]string{
	"annual_change_forest_area": "net_change_forest_area",
	"annual_deforestation":      "_1d_deforestation",
	"share_land_protected":      "er_lnd_ptld_zs",
	"share_land_degraded":       "_15_2_1__ag_lnd_frstchg",
	"forest_area_total":         "forest_share",
}

// writeFixtureFiles materializes the full path mapping the merger expects:
// one CSV per catalog dataset plus the boundary archive.
func writeFixtureFiles(dir string) (map[string]string, error) {
	paths := make(map[string]string, len(Datasets)+1)
	for _, ds := range Datasets {
		path := filepath.Join(dir, ds.Key+".csv")
		if err := os.WriteFile(path, []byte(fixtureCSV(rawValueColumns[ds.Key])), 0644); err != nil {
			return nil, err
		}
		paths[ds.Key] = path
	}
	archive, err := writeFixtureArchive(dir)
	if err != nil {
		return nil, err
	}
	paths[GeodataKey] = archive
	return paths, nil
}

// mergedFixture runs the full merge over fixture files in dir.
func mergedFixture(dir string) (map[string]*GeoTable, error) {
	paths, err := writeFixtureFiles(dir)
	if err != nil {
		return nil, err
	}
	return MergeDatasets(paths)
}

// newFixtureServer serves the fixture CSVs and boundary archive over HTTP
// and returns the server plus a catalog pointing at it.
func newFixtureServer(dir string) (*httptest.Server, []Dataset, string, error) {
	archive, err := writeFixtureArchive(dir)
	if err != nil {
		return nil, nil, "", err
	}

	mux := http.NewServeMux()
	for _, ds := range Datasets {
		body := fixtureCSV(rawValueColumns[ds.Key])
		mux.HandleFunc("/"+ds.Key+".csv", func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, body)
		})
	}
	mux.HandleFunc("/geodata.zip", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, archive)
	})

	srv := httptest.NewServer(mux)
	sets := make([]Dataset, len(Datasets))
	copy(sets, Datasets)
	for i := range sets {
		sets[i].URL = srv.URL + "/" + sets[i].Key + ".csv"
	}
	return srv, sets, srv.URL + "/geodata.zip", nil
}

// newFixtureAtlas builds an Atlas entirely from local fixtures.
func newFixtureAtlas(dir string) (*Atlas, func(), error) {
	srv, sets, geoURL, err := newFixtureServer(dir)
	if err != nil {
		return nil, nil, err
	}
	a, err := NewAtlas(WithDataDir(filepath.Join(dir, "downloads")), WithSources(sets, geoURL))
	if err != nil {
		srv.Close()
		return nil, nil, err
	}
	return a, srv.Close, nil
}
