package okavango

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
	shp "github.com/jonas-p/go-shp"
)

// Point is a geographic coordinate in degrees.
type Point struct {
	Lng float64
	Lat float64
}

// Ring is a closed polygon ring in geographic coordinates.
type Ring []Point

// Boundary is one country from the boundary table: its cartographic
// attributes plus polygon geometry. Immutable after load.
type Boundary struct {
	Name       string
	ISO3       string
	Continent  string
	Population float64
	Rings      []Ring
	Centroid   s2.LatLng
	Geohash    string

	loops []*s2.Loop
	bound s2.Rect
}

// geohashPrecision is the character length of the centroid geohash carried on
// each boundary. Six characters resolve to roughly city-block scale, ample
// for country-level deep links.
const geohashPrecision = 6

// LoadBoundaries extracts the boundary archive next to itself and reads the
// shapefile inside into one Boundary per country. The shapefile must carry a
// NAME attribute; ISO_A3, CONTINENT and POP_EST are picked up when present.
func LoadBoundaries(archivePath string) ([]Boundary, error) {
	shpPath, err := extractArchive(archivePath)
	if err != nil {
		return nil, fmt.Errorf("extracting boundary archive: %w", err)
	}

	r, err := shp.Open(shpPath)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile %s: %w", shpPath, err)
	}
	defer r.Close()

	nameIdx, isoIdx, contIdx, popIdx := -1, -1, -1, -1
	for i, f := range r.Fields() {
		switch strings.ToUpper(f.String()) {
		case "NAME":
			nameIdx = i
		case "ISO_A3":
			isoIdx = i
		case "CONTINENT":
			contIdx = i
		case "POP_EST":
			popIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("shapefile %s: missing NAME attribute", shpPath)
	}

	var boundaries []Boundary
	for r.Next() {
		n, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}

		b := Boundary{
			Name:  strings.TrimSpace(r.ReadAttribute(n, nameIdx)),
			Rings: polygonRings(poly),
		}
		if b.Name == "" || len(b.Rings) == 0 {
			continue
		}
		if isoIdx >= 0 {
			b.ISO3 = strings.TrimSpace(r.ReadAttribute(n, isoIdx))
		}
		if contIdx >= 0 {
			b.Continent = strings.TrimSpace(r.ReadAttribute(n, contIdx))
		}
		if popIdx >= 0 {
			b.Population, _ = strconv.ParseFloat(strings.TrimSpace(r.ReadAttribute(n, popIdx)), 64)
		}

		b.Centroid = representativePoint(b.Rings)
		b.Geohash = geohash.EncodeWithPrecision(b.Centroid.Lat.Degrees(), b.Centroid.Lng.Degrees(), geohashPrecision)
		b.loops, b.bound = buildLoops(b.Rings)

		boundaries = append(boundaries, b)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("reading shapefile %s: %w", shpPath, err)
	}
	if len(boundaries) == 0 {
		return nil, fmt.Errorf("shapefile %s: no polygon records", shpPath)
	}
	return boundaries, nil
}

// extractArchive unzips a boundary archive into a sibling directory and
// returns the path of the .shp member.
func extractArchive(archivePath string) (string, error) {
	rz, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("opening zip file: %w", err)
	}
	defer rz.Close()

	destDir := strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("creating extraction directory: %w", err)
	}

	shpPath := ""
	for _, f := range rz.File {
		name := filepath.Base(f.Name)
		// Flatten and reject path traversal; archive members are a flat
		// set of shapefile sidecars.
		if name == "." || name == ".." || f.FileInfo().IsDir() {
			continue
		}
		dest := filepath.Join(destDir, name)
		if err := extractMember(f, dest); err != nil {
			return "", err
		}
		if strings.EqualFold(filepath.Ext(name), ".shp") {
			shpPath = dest
		}
	}
	if shpPath == "" {
		return "", fmt.Errorf("archive %s: no .shp member", archivePath)
	}
	return shpPath, nil
}

func extractMember(f *zip.File, dest string) error {
	in, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening archive member %s: %w", f.Name, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("writing file %s: %w", dest, err)
	}
	return out.Close()
}

// polygonRings converts a shapefile polygon's part-indexed point list into
// individual rings.
func polygonRings(poly *shp.Polygon) []Ring {
	rings := make([]Ring, 0, len(poly.Parts))
	for p, start := range poly.Parts {
		end := int32(len(poly.Points))
		if p+1 < len(poly.Parts) {
			end = poly.Parts[p+1]
		}
		if end-start < 3 {
			continue
		}
		ring := make(Ring, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, Point{Lng: pt.X, Lat: pt.Y})
		}
		rings = append(rings, ring)
	}
	return rings
}

// representativePoint returns the planar centroid of the largest ring,
// falling back to a vertex average for degenerate geometry.
func representativePoint(rings []Ring) s2.LatLng {
	best := rings[0]
	bestArea := ringArea(best)
	for _, r := range rings[1:] {
		if a := ringArea(r); a > bestArea {
			best, bestArea = r, a
		}
	}

	if bestArea == 0 {
		var sx, sy float64
		for _, p := range best {
			sx += p.Lng
			sy += p.Lat
		}
		n := float64(len(best))
		return s2.LatLngFromDegrees(sy/n, sx/n)
	}

	// Shoelace centroid. The signed area cancels out of the division, so
	// ring orientation does not matter here.
	var a, cx, cy float64
	for i := 0; i < len(best); i++ {
		j := (i + 1) % len(best)
		cross := best[i].Lng*best[j].Lat - best[j].Lng*best[i].Lat
		a += cross
		cx += (best[i].Lng + best[j].Lng) * cross
		cy += (best[i].Lat + best[j].Lat) * cross
	}
	return s2.LatLngFromDegrees(cy/(3*a), cx/(3*a))
}

// ringArea returns the absolute planar area of a ring in square degrees.
func ringArea(r Ring) float64 {
	var a float64
	for i := 0; i < len(r); i++ {
		j := (i + 1) % len(r)
		a += r[i].Lng*r[j].Lat - r[j].Lng*r[i].Lat
	}
	return math.Abs(a / 2)
}

// buildLoops converts rings into normalized s2 loops plus a combined lat/lng
// bound used as a cheap pre-filter for containment queries.
func buildLoops(rings []Ring) ([]*s2.Loop, s2.Rect) {
	loops := make([]*s2.Loop, 0, len(rings))
	bound := s2.EmptyRect()
	for _, ring := range rings {
		pts := ring
		// Shapefile rings repeat the first vertex; s2 loops must not.
		if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 3 {
			continue
		}
		s2pts := make([]s2.Point, 0, len(pts))
		for _, p := range pts {
			s2pts = append(s2pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lng)))
		}
		loop := s2.LoopFromPoints(s2pts)
		loop.Normalize()
		loops = append(loops, loop)
		bound = bound.Union(loop.RectBound())
	}
	return loops, bound
}

// contains reports whether the point lies inside the boundary. Rings are
// combined even-odd, so interior holes (e.g. an enclave country) are excluded.
func (b *Boundary) contains(p s2.Point, ll s2.LatLng) bool {
	if !b.bound.ContainsLatLng(ll) {
		return false
	}
	inside := 0
	for _, loop := range b.loops {
		if loop.ContainsPoint(p) {
			inside++
		}
	}
	return inside%2 == 1
}
