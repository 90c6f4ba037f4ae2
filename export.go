package okavango

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
)

// ExportWorkbook writes every joined table into one XLSX workbook, one sheet
// per dataset with the boundary attributes followed by the metric columns.
// Unmatched countries appear with empty metric cells.
func ExportWorkbook(tables map[string]*GeoTable, path string) error {
	if len(tables) == 0 {
		return fmt.Errorf("export: no tables")
	}

	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	f := excelize.NewFile()
	for i, key := range keys {
		sheet := sheetName(key)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			f.NewSheet(sheet)
		}
		if err := writeSheet(f, sheet, tables[key]); err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: saving %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *GeoTable) error {
	headers := append([]string{CountryKey, "ISO_A3", "CONTINENT"}, t.Columns...)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for i, b := range t.Boundaries {
		row := i + 2
		values := []any{b.Name, b.ISO3, b.Continent}
		for _, col := range t.Columns {
			if v, ok := t.Float(i, col); ok {
				values = append(values, v)
			} else if s, ok := t.Value(i, col); ok {
				values = append(values, s)
			} else {
				values = append(values, "")
			}
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetName trims a dataset key to Excel's 31-character sheet name limit.
func sheetName(key string) string {
	if len(key) > 31 {
		return key[:31]
	}
	return key
}
