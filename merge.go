package okavango

import (
	"fmt"
	"sort"
	"strings"
)

// CountryKey is the common column every dataset's country identifier is
// renamed to before joining. It matches the boundary table's name attribute.
const CountryKey = "NAME"

// GeometryColumn is the column name under which joined tables expose their
// boundary geometry.
const GeometryColumn = "geometry"

// defaults used when a table is merged without a catalog entry.
const (
	defaultCountryCol = "Entity"
	defaultYearCol    = "Year"
)

// MergeDatasets loads the boundary table once from the GeodataKey path, then
// left-joins every other table in the path mapping onto it by normalized
// country name. The result maps each dataset key to its joined table. Any
// load or parse error aborts the merge; there is no partial result.
func MergeDatasets(paths map[string]string) (map[string]*GeoTable, error) {
	_, merged, err := mergeAll(paths)
	return merged, err
}

func mergeAll(paths map[string]string) ([]Boundary, map[string]*GeoTable, error) {
	geoPath, ok := paths[GeodataKey]
	if !ok {
		return nil, nil, fmt.Errorf("merge: missing %q entry in path mapping", GeodataKey)
	}
	boundaries, err := LoadBoundaries(geoPath)
	if err != nil {
		return nil, nil, fmt.Errorf("merge: %w", err)
	}

	merged := make(map[string]*GeoTable, len(paths)-1)
	for key, path := range paths {
		if key == GeodataKey {
			continue
		}
		tbl, err := LoadTable(path)
		if err != nil {
			return nil, nil, fmt.Errorf("merge %s: %w", key, err)
		}
		ds, _ := DatasetByKey(key)
		prepareTable(tbl, ds)
		merged[key] = join(key, ds, boundaries, tbl)
	}
	return boundaries, merged, nil
}

// prepareTable normalizes a raw dataset table in place: consistent header
// casing, the country column renamed to CountryKey, only the most recent
// year kept, and country values trimmed.
func prepareTable(t *Table, ds Dataset) {
	t.NormalizeColumns()

	countryCol := ds.CountryCol
	if countryCol == "" {
		countryCol = defaultCountryCol
	}
	t.Rename(titleCase(strings.TrimSpace(countryCol)), CountryKey)

	yearCol := ds.YearCol
	if yearCol == "" {
		yearCol = defaultYearCol
	}
	t.RestrictToLatestYear(titleCase(strings.TrimSpace(yearCol)))

	t.TrimColumn(CountryKey)
}

// join left-joins a prepared dataset table onto the boundary table by exact
// country-name equality. Every boundary row survives; boundaries without a
// matching dataset row get a nil metric row. When a name occurs more than
// once in the dataset the first occurrence wins, preserving the one-row-per
// -boundary invariant.
func join(key string, ds Dataset, boundaries []Boundary, t *Table) *GeoTable {
	nameIdx := t.ColumnIndex(CountryKey)

	byName := make(map[string]int, len(t.Rows))
	if nameIdx >= 0 {
		for i, row := range t.Rows {
			if nameIdx >= len(row) {
				continue
			}
			if _, seen := byName[row[nameIdx]]; !seen {
				byName[row[nameIdx]] = i
			}
		}
	}

	// Metric columns carried into the joined table: everything except the
	// join key, which the boundary side already provides.
	cols := make([]string, 0, len(t.Columns))
	colIdx := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if i == nameIdx {
			continue
		}
		cols = append(cols, c)
		colIdx = append(colIdx, i)
	}

	rows := make([][]string, len(boundaries))
	for i, b := range boundaries {
		src, ok := byName[b.Name]
		if !ok {
			continue // unmatched: geometry kept, metrics null
		}
		row := make([]string, len(cols))
		for j, ci := range colIdx {
			if ci < len(t.Rows[src]) {
				row[j] = t.Rows[src][ci]
			}
		}
		rows[i] = row
	}

	sourceNames := make([]string, 0, len(byName))
	for name := range byName {
		sourceNames = append(sourceNames, name)
	}
	sort.Strings(sourceNames)

	return &GeoTable{
		Key:         key,
		Dataset:     ds,
		Columns:     cols,
		Boundaries:  boundaries,
		rows:        rows,
		sourceNames: sourceNames,
	}
}
