// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package peaklist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/peakcube/pkg/types"
)

const header = "Number,#,Position F1,Position F2,Assign F1,Assign F2,Height,Volume,Line Width F1 (Hz),Line Width F2 (Hz),Merit,Details,Fit Method,Vol. Method\n"

func TestParseBytes(t *testing.T) {
	data := header +
		"1,1,8.123,120.5,1MetH,1MetN,15000,20000,20.1,30.2,1.0,None,parabolic,box sum\n" +
		"2,2,7.9,118.1,2LysH,2LysN,,NaN,21,31,0.9,weak,parabolic,box sum\n"

	table, err := ParseBytes("l1", []byte(data))
	require.NoError(t, err)

	assert.True(t, table.Header)
	assert.Equal(t, "l1", table.Name)
	require.Len(t, table.Rows, 2)

	first := table.Rows[0]
	assert.Equal(t, "1MetH", first.AssignF1)
	assert.Equal(t, "1MetN", first.AssignF2)
	assert.Equal(t, types.StatusMeasured, first.Status)
	assert.InDelta(t, 8.123, first.PositionF1.Float64, 1e-9)
	assert.InDelta(t, 120.5, first.PositionF2.Float64, 1e-9)
	assert.Equal(t, "None", first.Details)

	second := table.Rows[1]
	assert.False(t, second.Height.Valid)
	assert.False(t, second.Volume.Valid)
	assert.Equal(t, "weak", second.Details)
}

func TestParseBytesHeaderOnly(t *testing.T) {
	table, err := ParseBytes("l3", []byte(header))
	require.NoError(t, err)
	assert.True(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestParseBytesEmptyFile(t *testing.T) {
	table, err := ParseBytes("l3", []byte("  \n"))
	require.NoError(t, err)
	assert.False(t, table.Header)
	assert.Empty(t, table.Rows)
}

func TestParseBytesMissingColumns(t *testing.T) {
	_, err := ParseBytes("bad", []byte("Assign F1,Height\n1MetH,10\n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Reason, "Position F1")
	assert.Equal(t, []int{1}, perr.Lines)
}

func TestParseBytesReportsBadLines(t *testing.T) {
	data := header +
		"1,1,8.1,120,1MetH,1MetN,1,1,1,1,1,None,p,b\n" +
		"2,2,abc,120,2LysH,2LysN,1,1,1,1,1,None,p,b\n" +
		"3,3,8.3,120,3AlaH,3AlaN,1,1,1,1,xyz,None,p,b\n"

	_, err := ParseBytes("l1", []byte(data))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []int{3, 4}, perr.Lines)
	assert.Contains(t, err.Error(), "lines 3, 4")
}

func TestParserParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "l2.csv")
	data := "Position F1\tPosition F2\tAssign F1\tAssign F2\tHeight\tVolume\tLine Width F1 (Hz)\tLine Width F2 (Hz)\tMerit\tDetails\n" +
		"8.1\t120\t1MetH\t1MetN\t10\t20\t1\t2\t1\tNone\n" +
		"8.2\t121\t2LysH\t2LysN\t11\t21\t1\t2\t1\tNone\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	table, err := Parser{}.Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "l2", table.Name)
	require.Len(t, table.Rows, 2)
	assert.InDelta(t, 121.0, table.Rows[1].PositionF2.Float64, 1e-9)
}

func TestParserParseMissingFile(t *testing.T) {
	_, err := Parser{}.Parse(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading peak list")
}
