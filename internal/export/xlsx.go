// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/peakcube/internal/series"
)

const (
	defaultSheet   = "Sheet1"
	maxSheetName   = 31
	invalidInSheet = `:\/?*[]`
)

// WriteXLSX writes s to a workbook at path with one sheet per item.
func WriteXLSX(path string, s *series.Series) error {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Res#", "ATOM", "1-letter", "3-letter", "Peak Status"}
	for _, c := range columns {
		header = append(header, string(c))
	}
	header = append(header, "Details")

	names := sheetNames(s.Items)
	for i, t := range s.Tables {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("renaming sheet to %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return fmt.Errorf("writing header of sheet %s: %w", name, err)
		}
		for j, r := range t.Rows {
			row := []interface{}{r.ResNo, r.Atom, r.OneLetter, r.ThreeLetter, string(r.Status)}
			for _, c := range columns {
				if v := r.Value(c); v.Valid {
					row = append(row, v.Float64)
				} else {
					row = append(row, nil)
				}
			}
			row = append(row, r.Details)

			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return fmt.Errorf("writing sheet %s: %w", name, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// sheetNames maps items to sheet names that are valid and unique within one
// workbook. Sheet names compare case-insensitively, so clashes after
// truncation get a "~2", "~3", ... suffix.
func sheetNames(items []string) []string {
	names := make([]string, len(items))
	used := make(map[string]bool, len(items))
	for i, item := range items {
		base := sheetName(item)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			suffix := fmt.Sprintf("~%d", n)
			name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names[i] = name
	}
	return names
}

func sheetName(item string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidInSheet, r) {
			return '_'
		}
		return r
	}, item)
	name = truncateRunes(name, maxSheetName)
	if name == "" {
		name = "item"
	}
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
