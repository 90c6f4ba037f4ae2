package okavango

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// Table is a small in-memory tabular dataset loaded from CSV.
// Cells are kept as strings; numeric values are parsed on demand.
type Table struct {
	Columns []string
	Rows    [][]string
}

// LoadTable reads a CSV file into a Table. The first record is the header.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing table %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parsing table %s: no header row", path)
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// ColumnIndex returns the position of a column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Rename renames a column in place. It reports whether the column existed.
func (t *Table) Rename(from, to string) bool {
	i := t.ColumnIndex(from)
	if i < 0 {
		return false
	}
	t.Columns[i] = to
	return true
}

// NormalizeColumns trims whitespace from every column name and title-cases it,
// so headers from differently-shaped sources end up in one consistent casing
// ("net_change_forest_area" becomes "Net_Change_Forest_Area").
func (t *Table) NormalizeColumns() {
	for i, c := range t.Columns {
		t.Columns[i] = titleCase(strings.TrimSpace(c))
	}
}

// TrimColumn trims whitespace from every value of a column. Missing columns
// are a no-op.
func (t *Table) TrimColumn(name string) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return
	}
	for _, row := range t.Rows {
		if i < len(row) {
			row[i] = strings.TrimSpace(row[i])
		}
	}
}

// RestrictToLatestYear keeps only the rows whose year column holds the most
// recent year present in the table. Rows with an unparseable year are
// dropped alongside older years. Missing year columns are a no-op.
func (t *Table) RestrictToLatestYear(yearCol string) {
	i := t.ColumnIndex(yearCol)
	if i < 0 {
		return
	}

	latest, found := 0, false
	for _, row := range t.Rows {
		if i >= len(row) {
			continue
		}
		y, err := strconv.Atoi(strings.TrimSpace(row[i]))
		if err != nil {
			continue
		}
		if !found || y > latest {
			latest, found = y, true
		}
	}
	if !found {
		return
	}

	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if i < len(row) {
			if y, err := strconv.Atoi(strings.TrimSpace(row[i])); err == nil && y == latest {
				kept = append(kept, row)
			}
		}
	}
	t.Rows = kept
}

// Value returns the cell at (row, column name). The second return is false
// for out-of-range rows, unknown columns, ragged rows and empty cells.
func (t *Table) Value(row int, name string) (string, bool) {
	i := t.ColumnIndex(name)
	if i < 0 || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return "", false
	}
	v := t.Rows[row][i]
	if v == "" {
		return "", false
	}
	return v, true
}

// titleCase upper-cases every letter that starts an alphabetic run and
// lower-cases the rest, leaving digits and punctuation untouched. This
// matches the header casing the rest of the catalog expects, e.g.
// "_1d_deforestation" -> "_1D_Deforestation".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
