// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package peaklist parses CCPN-style delimited peak lists into PeakTables.
// Only the raw assignment and measurement columns are filled; residue
// identity columns are derived later by the cube.
package peaklist

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/csimplestring/go-csv/detector"
	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/peakcube/pkg/types"
)

// Column headers of a CCPN peak list.
const (
	hdrPositionF1  = "Position F1"
	hdrPositionF2  = "Position F2"
	hdrAssignF1    = "Assign F1"
	hdrAssignF2    = "Assign F2"
	hdrHeight      = "Height"
	hdrVolume      = "Volume"
	hdrLineWidthF1 = "Line Width F1 (Hz)"
	hdrLineWidthF2 = "Line Width F2 (Hz)"
	hdrMerit       = "Merit"
	hdrDetails     = "Details"
)

var requiredColumns = []string{
	hdrPositionF1, hdrPositionF2, hdrAssignF1, hdrAssignF2,
	hdrHeight, hdrVolume, hdrLineWidthF1, hdrLineWidthF2,
	hdrMerit, hdrDetails,
}

// ParseError reports a peak list that could not be normalized. Lines holds
// the 1-based line numbers of offending rows, if any.
type ParseError struct {
	Path   string
	Lines  []int
	Reason string
}

func (e *ParseError) Error() string {
	if len(e.Lines) == 0 {
		return fmt.Sprintf("parsing %s: %s", e.Path, e.Reason)
	}
	lines := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = strconv.Itoa(l)
	}
	return fmt.Sprintf("parsing %s: %s (lines %s)", e.Path, e.Reason, strings.Join(lines, ", "))
}

// Parser reads CCPN peak lists from disk.
type Parser struct{}

// Parse reads the file at path. The table name is the file name without
// its extension.
func (Parser) Parse(path string) (*types.PeakTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading peak list: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	t, err := ParseBytes(name, data)
	if err != nil {
		if perr, ok := err.(*ParseError); ok {
			perr.Path = path
		}
		return nil, err
	}
	return t, nil
}

// ParseBytes parses a peak list held in memory. A file with neither header
// nor rows yields a table with Header false.
func ParseBytes(name string, data []byte) (*types.PeakTable, error) {
	table := &types.PeakTable{Name: name}
	if len(bytes.TrimSpace(data)) == 0 {
		return table, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = determineDelimiter(data)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, &ParseError{Path: name, Lines: []int{1}, Reason: err.Error()}
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	var absent []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		return nil, &ParseError{Path: name, Lines: []int{1}, Reason: "missing columns: " + strings.Join(absent, ", ")}
	}
	table.Header = true

	var bad []int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var cerr *csv.ParseError
			if errors.As(err, &cerr) {
				bad = append(bad, cerr.Line)
				continue
			}
			return nil, &ParseError{Path: name, Reason: err.Error()}
		}
		line, _ := r.FieldPos(0)
		row, ok := parseRecord(rec, cols)
		if !ok {
			bad = append(bad, line)
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	if len(bad) > 0 {
		return nil, &ParseError{Path: name, Lines: bad, Reason: "malformed rows"}
	}
	return table, nil
}

func parseRecord(rec []string, cols map[string]int) (types.PeakRow, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	ok := true
	num := func(name string) null.Float {
		s := field(name)
		if s == "" || strings.EqualFold(s, "none") || strings.EqualFold(s, "nan") {
			return null.Float{}
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			ok = false
			return null.Float{}
		}
		return null.FloatFrom(f)
	}

	row := types.PeakRow{
		AssignF1:    field(hdrAssignF1),
		AssignF2:    field(hdrAssignF2),
		Status:      types.StatusMeasured,
		PositionF1:  num(hdrPositionF1),
		PositionF2:  num(hdrPositionF2),
		Height:      num(hdrHeight),
		Volume:      num(hdrVolume),
		LineWidthF1: num(hdrLineWidthF1),
		LineWidthF2: num(hdrLineWidthF2),
		Merit:       num(hdrMerit),
		Details:     field(hdrDetails),
	}
	return row, ok
}

// determineDelimiter returns the most likely field separator, falling back
// to a comma.
func determineDelimiter(data []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(data), '"')
	if len(delimiters) > 0 && delimiters[0] != "" {
		return rune(delimiters[0][0])
	}
	return ','
}
