package okavango

import (
	"fmt"
	"log"
	"math"
	"sort"

	"github.com/golang/geo/s2"
)

// Config contains configuration options for Atlas construction.
type Config struct {
	DataDir    string    // directory downloads land in (default: "./downloads")
	Sets       []Dataset // dataset catalog (default: Datasets)
	GeodataURL string    // boundary archive URL (default: GeodataURL)
}

// Option is a functional option for configuring an Atlas.
type Option func(*Config)

// WithDataDir sets the download directory.
func WithDataDir(dir string) Option {
	return func(c *Config) {
		c.DataDir = dir
	}
}

// WithSources replaces the dataset catalog and boundary archive URL, e.g.
// to fetch from a mirror.
func WithSources(sets []Dataset, geodataURL string) Option {
	return func(c *Config) {
		c.Sets = sets
		c.GeodataURL = geodataURL
	}
}

func defaultAtlasConfig() *Config {
	return &Config{
		DataDir:    "./downloads",
		Sets:       Datasets,
		GeodataURL: GeodataURL,
	}
}

// Atlas is the central data holder: construction downloads every dataset and
// joins each one with the world boundary table, then the five resulting
// map-ready tables hang off named fields. All tables are rebuilt from
// scratch on every construction; nothing persists between runs beyond the
// downloaded source files.
type Atlas struct {
	AnnualChangeForestArea *GeoTable
	AnnualDeforestation    *GeoTable
	ShareLandProtected     *GeoTable
	ShareLandDegraded      *GeoTable
	ForestAreaTotal        *GeoTable

	config     *Config
	files      map[string]string
	boundaries []Boundary
	merged     map[string]*GeoTable
}

// NewAtlas downloads all configured datasets and merges them with the world
// boundary table. Any download, load or parse error aborts construction.
func NewAtlas(opts ...Option) (*Atlas, error) {
	cfg := defaultAtlasConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	log.Println("downloading datasets...")
	files, err := downloadAll(cfg.DataDir, cfg.Sets, cfg.GeodataURL)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}

	log.Println("merging with world map...")
	boundaries, merged, err := mergeAll(files)
	if err != nil {
		return nil, fmt.Errorf("atlas: %w", err)
	}

	a := &Atlas{
		AnnualChangeForestArea: merged["annual_change_forest_area"],
		AnnualDeforestation:    merged["annual_deforestation"],
		ShareLandProtected:     merged["share_land_protected"],
		ShareLandDegraded:      merged["share_land_degraded"],
		ForestAreaTotal:        merged["forest_area_total"],

		config:     cfg,
		files:      files,
		boundaries: boundaries,
		merged:     merged,
	}
	log.Println("atlas is ready.")
	return a, nil
}

// Files returns the dataset-key to local-path mapping from the download step.
func (a *Atlas) Files() map[string]string { return a.files }

// Table returns the joined table for a dataset key, or nil.
func (a *Atlas) Table(key string) *GeoTable { return a.merged[key] }

// Tables returns every joined table keyed by dataset key.
func (a *Atlas) Tables() map[string]*GeoTable { return a.merged }

// Keys returns the dataset keys in stable order.
func (a *Atlas) Keys() []string {
	keys := make([]string, 0, len(a.merged))
	for k := range a.merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Maps returns every joined table keyed by its human-readable label, for
// populating the dashboard's dataset selector.
func (a *Atlas) Maps() map[string]*GeoTable {
	maps := make(map[string]*GeoTable, len(a.merged))
	for _, t := range a.merged {
		maps[t.Label()] = t
	}
	return maps
}

// Locate returns the boundary containing the coordinate, if any. Boundaries
// are checked with their polygon rings combined even-odd, so a point inside
// an enclave resolves to the enclave, not the surrounding country.
func (a *Atlas) Locate(lat, lng float64) (*Boundary, bool) {
	// Reject invalid float values before they reach s2.
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return nil, false
	}
	ll := s2.LatLngFromDegrees(lat, lng)
	p := s2.PointFromLatLng(ll)
	for i := range a.boundaries {
		if a.boundaries[i].contains(p, ll) {
			return &a.boundaries[i], true
		}
	}
	return nil, false
}
