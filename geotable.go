package okavango

import (
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// GeoTable is a boundary table left-joined with one statistical dataset.
// Rows are index-aligned with Boundaries; a nil metric row means the country
// had no match in the dataset.
type GeoTable struct {
	Key        string
	Dataset    Dataset
	Columns    []string // dataset columns carried over, join key excluded
	Boundaries []Boundary

	rows        [][]string
	sourceNames []string // distinct country names seen in the dataset, sorted
}

// Len returns the number of rows, which always equals the boundary count.
func (t *GeoTable) Len() int { return len(t.Boundaries) }

// Label returns the dataset's human-readable name, falling back to the key.
func (t *GeoTable) Label() string {
	if t.Dataset.Label != "" {
		return t.Dataset.Label
	}
	return t.Key
}

// ColumnNames lists every column of the joined table: the country name and
// geometry from the boundary side, then the dataset's metric columns.
func (t *GeoTable) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+2)
	names = append(names, CountryKey, GeometryColumn)
	return append(names, t.Columns...)
}

// Matched reports whether row i had a dataset match.
func (t *GeoTable) Matched(i int) bool {
	return i >= 0 && i < len(t.rows) && t.rows[i] != nil
}

// Value returns the cell at (row, column). CountryKey resolves to the
// boundary name; unmatched rows and empty cells return false.
func (t *GeoTable) Value(i int, col string) (string, bool) {
	if i < 0 || i >= len(t.Boundaries) {
		return "", false
	}
	if col == CountryKey {
		return t.Boundaries[i].Name, true
	}
	if t.rows[i] == nil {
		return "", false
	}
	for j, c := range t.Columns {
		if c == col && j < len(t.rows[i]) {
			if v := t.rows[i][j]; v != "" {
				return v, true
			}
			return "", false
		}
	}
	return "", false
}

// Float returns the cell at (row, column) parsed as a number.
func (t *GeoTable) Float(i int, col string) (float64, bool) {
	v, ok := t.Value(i, col)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NonNull counts the rows holding a parseable value in the column.
func (t *GeoTable) NonNull(col string) int {
	n := 0
	for i := range t.Boundaries {
		if _, ok := t.Float(i, col); ok {
			n++
		}
	}
	return n
}

// ValueColumn returns the metric column charts and maps should plot: the
// catalog's configured column, or the first column with numeric data when
// the table was merged without a catalog entry.
func (t *GeoTable) ValueColumn() string {
	if t.Dataset.ValueCol != "" {
		return t.Dataset.ValueCol
	}
	for _, c := range t.Columns {
		if t.NonNull(c) > 0 {
			return c
		}
	}
	return ""
}

// Rank pairs a country name with its metric value for chart selection.
type Rank struct {
	Name  string
	Value float64
}

// ranked returns all non-null (name, value) pairs sorted by value descending.
// Ties are broken by name so repeated merges chart identically.
func (t *GeoTable) ranked(col string) []Rank {
	var ranks []Rank
	for i, b := range t.Boundaries {
		if v, ok := t.Float(i, col); ok {
			ranks = append(ranks, Rank{Name: b.Name, Value: v})
		}
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Value != ranks[j].Value {
			return ranks[i].Value > ranks[j].Value
		}
		return ranks[i].Name < ranks[j].Name
	})
	return ranks
}

// TopN returns the n largest values in the column, largest first.
func (t *GeoTable) TopN(col string, n int) []Rank {
	ranks := t.ranked(col)
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// BottomN returns the n smallest values in the column, smallest first.
func (t *GeoTable) BottomN(col string, n int) []Rank {
	ranks := t.ranked(col)
	if len(ranks) > n {
		ranks = ranks[len(ranks)-n:]
	}
	// reverse to smallest-first
	for i, j := 0, len(ranks)-1; i < j; i, j = i+1, j-1 {
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	return ranks
}

// Unmatched is a boundary country the join left without data, with the
// closest dataset name as a reconciliation hint.
type Unmatched struct {
	Name       string
	Suggestion string
	Distance   int
}

// maxSuggestionDistance caps how far a dataset name may be from a boundary
// name before it stops being a useful hint.
const maxSuggestionDistance = 5

// UnmatchedNames reports the boundary names that found no dataset row,
// each with the nearest dataset name by edit distance. This is a diagnostic
// only: the join itself never falls back to fuzzy matching, so alternate
// spellings surface here instead of silently disappearing.
func (t *GeoTable) UnmatchedNames() []Unmatched {
	var out []Unmatched
	for i, b := range t.Boundaries {
		if t.Matched(i) {
			continue
		}
		u := Unmatched{Name: b.Name, Distance: -1}
		for _, cand := range t.sourceNames {
			d := levenshtein.ComputeDistance(strings.ToLower(b.Name), strings.ToLower(cand))
			if u.Distance < 0 || d < u.Distance {
				u.Suggestion, u.Distance = cand, d
			}
		}
		if u.Distance < 0 || u.Distance > maxSuggestionDistance {
			u.Suggestion, u.Distance = "", -1
		}
		out = append(out, u)
	}
	return out
}
