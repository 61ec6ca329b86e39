// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/peakcube/internal/coords"
	"github.com/pdiddy/peakcube/internal/peaklist"
	"github.com/pdiddy/peakcube/pkg/types"
)

// --- test helpers ---

const peakHeader = "Number,#,Position F1,Position F2,Assign F1,Assign F2,Height,Volume,Line Width F1 (Hz),Line Width F2 (Hz),Merit,Details\n"

var residueCycle = []string{"Met", "Lys", "Ala", "Gly", "Val", "Leu", "Ser", "Thr", "Asp", "Glu"}

var (
	zLabels = []string{"dia", "para"}
	yLabels = []string{"278", "298"}
	xLabels = []string{"l1", "l2", "l3"}
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shiftF1(res, zi, yi, xi int) float64 {
	return 7.0 + float64(res)*0.02 + float64(zi*100+yi*10+xi)*0.001
}

func shiftF2(res, zi, yi, xi int) float64 {
	return 110.0 + float64(res)*0.1 + float64(zi*100+yi*10+xi)*0.005
}

func peakLine(res, zi, yi, xi int) string {
	three := residueCycle[(res-1)%len(residueCycle)]
	return fmt.Sprintf("%d,%d,%.4f,%.4f,%d%sH,%d%sN,%d,%d,20,30,1.0,None\n",
		res, res, shiftF1(res, zi, yi, xi), shiftF2(res, zi, yi, xi),
		res, three, res, three, 1000+res, 2000+res)
}

// writeDataset writes z/y/x.csv peak lists of n residues each. skip lists
// residues left out of a given z/y/x condition.
func writeDataset(t *testing.T, n int, skip map[string][]int) string {
	t.Helper()
	root := t.TempDir()
	for zi, z := range zLabels {
		for yi, y := range yLabels {
			dir := filepath.Join(root, z, y)
			require.NoError(t, os.MkdirAll(dir, 0o755))
			for xi, x := range xLabels {
				omit := map[int]bool{}
				for _, r := range skip[condition(z, y, x)] {
					omit[r] = true
				}
				var sb strings.Builder
				sb.WriteString(peakHeader)
				for res := 1; res <= n; res++ {
					if !omit[res] {
						sb.WriteString(peakLine(res, zi, yi, xi))
					}
				}
				require.NoError(t, os.WriteFile(filepath.Join(dir, x+".csv"), []byte(sb.String()), 0o644))
			}
		}
	}
	return root
}

func loadCube(t *testing.T, root string) *Cube {
	t.Helper()
	files, err := Discover(root)
	require.NoError(t, err)
	c := New(peaklist.Parser{}, 2, quietLogger())
	require.NoError(t, c.Load(context.Background(), types.Backbone, root, files))
	require.NoError(t, c.SplitIdentity())
	return c
}

func findRow(t *testing.T, table *types.PeakTable, resNo string) types.PeakRow {
	t.Helper()
	for _, r := range table.Rows {
		if r.ResNo == resNo {
			return r
		}
	}
	t.Fatalf("residue %s not in table %s", resNo, table.Name)
	return types.PeakRow{}
}

type countingParser struct {
	calls atomic.Int32
	inner Parser
}

func (p *countingParser) Parse(path string) (*types.PeakTable, error) {
	p.calls.Add(1)
	return p.inner.Parse(path)
}

// --- load ---

func TestDiscoverAndLoad(t *testing.T) {
	root := writeDataset(t, 5, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".DS_Store"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dia", "notes.txt"), []byte("x"), 0o644))

	files, err := Discover(root)
	require.NoError(t, err)
	assert.Len(t, files, 12)
	assert.Equal(t, filepath.Join("dia", "278", "l1.csv"), files[0])

	c := loadCube(t, root)
	assert.Equal(t, zLabels, c.Space.ZZ)
	assert.Equal(t, yLabels, c.Space.YY)
	assert.Equal(t, xLabels, c.Space.XX)
	assert.Equal(t, "l1", c.Space.XRef)

	table := c.Table(types.Backbone, "para", "298", "l3")
	require.NotNil(t, table)
	assert.Equal(t, "l3", table.Name)
	assert.Equal(t, 5, table.Len())
	assert.False(t, c.Has(types.Sidechain))
}

func TestDiscoverSkipsNonPeakLists(t *testing.T) {
	root := writeDataset(t, 3, nil)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dia", "278", "README.md"), []byte("# notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "dia", "278", "l1.xlsx"), []byte("x"), 0o644))

	files, err := Discover(root)
	require.NoError(t, err)
	assert.Len(t, files, 12)
	assert.NotContains(t, files, filepath.Join("dia", "278", "README.md"))

	c := New(peaklist.Parser{}, 2, quietLogger())
	require.NoError(t, c.Load(context.Background(), types.Backbone, root, files))
}

func TestDiscoverAcceptsPeakListExtensions(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"l1.csv", "l2.TSV", "l3.txt"} {
		dir := filepath.Join(root, "dia", "278")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(peakHeader), 0o644))
	}

	files, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("dia", "278", "l1.csv"),
		filepath.Join("dia", "278", "l2.TSV"),
		filepath.Join("dia", "278", "l3.txt"),
	}, files)
}

func TestLoadIncoherentAxisBeforeParsing(t *testing.T) {
	root := writeDataset(t, 3, nil)
	require.NoError(t, os.Remove(filepath.Join(root, "para", "298", "l2.csv")))
	files, err := Discover(root)
	require.NoError(t, err)

	parser := &countingParser{inner: peaklist.Parser{}}
	c := New(parser, 1, quietLogger())
	err = c.Load(context.Background(), types.Backbone, root, files)

	var incoherent *coords.IncoherentAxisError
	require.ErrorAs(t, err, &incoherent)
	assert.Equal(t, types.AxisX, incoherent.Axis)
	assert.Equal(t, int32(0), parser.calls.Load())
}

func TestLoadEmptyTable(t *testing.T) {
	root := writeDataset(t, 3, nil)
	path := filepath.Join(root, "dia", "278", "l2.csv")

	require.NoError(t, os.WriteFile(path, []byte(peakHeader), 0o644))
	files, _ := Discover(root)
	c := New(peaklist.Parser{}, 4, quietLogger())
	require.NoError(t, c.Load(context.Background(), types.Backbone, root, files), "header-only tables are legal")

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	err := c.Load(context.Background(), types.Backbone, root, files)
	var empty *EmptyTableError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, path, empty.Path)
}

func TestLoadRejectsBadLayout(t *testing.T) {
	c := New(peaklist.Parser{}, 1, quietLogger())
	err := c.Load(context.Background(), types.Backbone, t.TempDir(), []string{"dia/l1.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "z/y/x")

	err = c.Load(context.Background(), types.Backbone, t.TempDir(), []string{"a/b/l1.csv", "a/b/l1.tsv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share condition")
}

// --- identity ---

func TestSplitIdentity(t *testing.T) {
	root := writeDataset(t, 1, nil)
	table := peakHeader +
		"1,1,8.3,121,12LysH,12LysN,1,1,1,1,1,None\n" +
		"2,2,8.1,120,3AsnH,3AsnN,1,1,1,1,1,None\n" +
		"3,3,7.5,112,3AsnHd21b,3AsnNd2,1,1,1,1,1,None\n" +
		"4,4,6.9,112,3AsnHd21a,3AsnNd2,1,1,1,1,1,None\n" +
		"5,5,9.9,130,?,?,1,1,1,1,1,None\n" +
		"6,6,10.1,129,30TrpHe1,30TrpNe1,1,1,1,1,1,None\n"
	for _, z := range zLabels {
		for _, y := range yLabels {
			for _, x := range xLabels {
				require.NoError(t, os.WriteFile(filepath.Join(root, z, y, x+".csv"), []byte(table), 0o644))
			}
		}
	}

	c := loadCube(t, root)

	bb := c.Table(types.Backbone, "dia", "278", "l1")
	require.Equal(t, 2, bb.Len())
	assert.Equal(t, []string{"3", "12"}, bb.Keys(types.Backbone), "sorted numerically, not lexically")
	assert.Equal(t, "Asn", bb.Rows[0].ThreeLetter)
	assert.Equal(t, "N", bb.Rows[0].OneLetter)
	assert.Equal(t, "K", bb.Rows[1].OneLetter)
	assert.Equal(t, types.StatusMeasured, bb.Rows[1].Status)

	require.True(t, c.Has(types.Sidechain))
	sc := c.Table(types.Sidechain, "para", "298", "l3")
	assert.Equal(t, []string{"3a", "3b"}, sc.Keys(types.Sidechain))
	assert.Equal(t, 6.9, sc.Rows[0].PositionF1.Float64)
}

// --- missing / unassigned ---

func TestFindMissingScenario(t *testing.T) {
	root := writeDataset(t, 50, map[string][]int{"dia/278/l3": {37}})
	c := loadCube(t, root)

	require.Equal(t, 49, c.Table(types.Backbone, "dia", "278", "l3").Len())
	require.NoError(t, c.FindMissing(types.Backbone, types.MissingFill))

	l1 := c.Table(types.Backbone, "dia", "278", "l1")
	l3 := c.Table(types.Backbone, "dia", "278", "l3")
	assert.Equal(t, l1.Len(), l3.Len())

	synth := findRow(t, l3, "37")
	assert.Equal(t, types.StatusMissing, synth.Status)
	assert.False(t, synth.PositionF1.Valid)
	assert.False(t, synth.PositionF2.Valid)
	assert.False(t, synth.Height.Valid)
	assert.False(t, synth.Volume.Valid)
	assert.False(t, synth.LineWidthF1.Valid)
	assert.False(t, synth.LineWidthF2.Valid)
	assert.Equal(t, l1.Rows[36].ThreeLetter, synth.ThreeLetter)

	assert.Equal(t, types.StatusMeasured, findRow(t, l1, "37").Status)
}

func TestFindUnassigned(t *testing.T) {
	root := writeDataset(t, 10, map[string][]int{
		"dia/278/l1": {4},
		"dia/278/l2": {4},
		"dia/278/l3": {4, 7},
	})
	c := loadCube(t, root)
	require.NoError(t, c.FindMissing(types.Backbone, types.MissingFill))

	seq := &types.PeakTable{Name: "seq", Header: true}
	for res := 1; res <= 12; res++ {
		three := "Gly"
		if res <= 10 {
			three = residueCycle[(res-1)%len(residueCycle)]
		}
		seq.Rows = append(seq.Rows, types.PeakRow{
			ResNo: fmt.Sprint(res), ThreeLetter: three, OneLetter: types.OneLetter(three),
		})
	}
	require.NoError(t, c.FindUnassigned(seq, types.UnassignedFill))

	l3 := c.Table(types.Backbone, "dia", "278", "l3")
	require.Equal(t, 12, l3.Len())
	assert.Equal(t, types.StatusUnassigned, findRow(t, l3, "4").Status, "never observed in any X table")
	assert.Equal(t, types.StatusMissing, findRow(t, l3, "7").Status, "lost along the titration")
	assert.Equal(t, types.StatusUnassigned, findRow(t, l3, "11").Status)
	assert.Equal(t, types.StatusMeasured, findRow(t, l3, "1").Status)

	assert.Equal(t, types.StatusMeasured, findRow(t, c.Table(types.Backbone, "para", "278", "l3"), "4").Status)
}

func TestFindMissingNeverProducesUnassigned(t *testing.T) {
	root := writeDataset(t, 10, map[string][]int{"para/298/l2": {2, 3}})
	c := loadCube(t, root)
	require.NoError(t, c.FindMissing(types.Backbone, types.MissingFill))

	_ = c.each(func(z, y, x string) error {
		for _, r := range c.Table(types.Backbone, z, y, x).Rows {
			assert.NotEqual(t, types.StatusUnassigned, r.Status)
		}
		return nil
	})
}

func TestFindUnassignedRequiresBackbone(t *testing.T) {
	c := New(peaklist.Parser{}, 1, quietLogger())
	err := c.FindUnassigned(&types.PeakTable{}, types.UnassignedFill)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestFindMissingDuplicateKeys(t *testing.T) {
	root := writeDataset(t, 3, nil)
	dup := peakHeader + peakLine(1, 0, 0, 1) + peakLine(1, 0, 0, 1) + peakLine(2, 0, 0, 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dia", "278", "l2.csv"), []byte(dup), 0o644))
	c := loadCube(t, root)

	err := c.FindMissing(types.Backbone, types.MissingFill)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dia/278/l2")
	assert.Contains(t, err.Error(), "duplicate residue key")
}

// --- cross-reference expansion ---

func TestExpandAxis(t *testing.T) {
	root := writeDataset(t, 8, map[string][]int{
		"dia/298/l1":  {5},
		"para/278/l1": {6},
	})

	t.Run("y propagates the y reference", func(t *testing.T) {
		c := loadCube(t, root)
		require.NoError(t, c.ExpandAxis(types.AxisY, types.Backbone, types.MissingFill))

		xref := c.Table(types.Backbone, "dia", "298", "l1")
		assert.Equal(t, 8, xref.Len())
		assert.Equal(t, types.StatusMissing, findRow(t, xref, "5").Status)
		assert.Equal(t, 7, c.Table(types.Backbone, "para", "278", "l1").Len(), "the y reference itself is untouched")
	})

	t.Run("z propagates the z reference", func(t *testing.T) {
		c := loadCube(t, root)
		require.NoError(t, c.ExpandAxis(types.AxisZ, types.Backbone, types.MissingFill))

		xref := c.Table(types.Backbone, "para", "278", "l1")
		assert.Equal(t, 8, xref.Len())
		assert.Equal(t, types.StatusMissing, findRow(t, xref, "6").Status)
	})

	t.Run("x is rejected", func(t *testing.T) {
		c := loadCube(t, root)
		err := c.ExpandAxis(types.AxisX, types.Backbone, types.MissingFill)
		assert.ErrorIs(t, err, ErrInvalidAxis)
	})

	t.Run("sidechains not loaded", func(t *testing.T) {
		c := loadCube(t, root)
		err := c.ExpandAxis(types.AxisY, types.Sidechain, types.MissingFill)
		assert.ErrorIs(t, err, ErrNotLoaded)
	})
}

// --- shift correction ---

func TestCorrectShifts(t *testing.T) {
	root := writeDataset(t, 20, nil)
	c := loadCube(t, root)

	orig := c.Table(types.Backbone, "para", "298", "l3").Clone()
	require.NoError(t, c.CorrectShifts("12"))

	ref := c.Table(types.Backbone, "dia", "278", "l1")
	for _, r := range ref.Rows {
		assert.Equal(t, 0.0, r.CorrectionF1.Float64)
		assert.Equal(t, 0.0, r.CorrectionF2.Float64)
		assert.True(t, r.CorrectionF1.Valid)
	}
	assert.Equal(t, 0.0, c.Corrections()["para"]["298"]["l1"].F1, "each (z, y) group has its own X reference")

	got := c.Table(types.Backbone, "para", "298", "l3")
	wantDelta := shiftF1(12, 1, 1, 2) - shiftF1(12, 1, 1, 0)
	for i, r := range got.Rows {
		assert.InDelta(t, orig.Rows[i].PositionF1.Float64-wantDelta, r.PositionF1.Float64, 1e-9)
		assert.InDelta(t, wantDelta, r.CorrectionF1.Float64, 1e-9)
	}
	assert.InDelta(t, shiftF1(12, 1, 1, 0), findRow(t, got, "12").PositionF1.Float64, 1e-9)
	assert.InDelta(t, shiftF2(12, 1, 1, 0), findRow(t, got, "12").PositionF2.Float64, 1e-9)
}

func TestCorrectShiftsPropagatesToSidechains(t *testing.T) {
	root := writeDataset(t, 3, nil)
	for zi, z := range zLabels {
		for yi, y := range yLabels {
			for xi, x := range xLabels {
				data := peakHeader + peakLine(1, zi, yi, xi) + peakLine(2, zi, yi, xi) +
					"9,9,7.5,112,2LysHz1a,2LysNz,1,1,1,1,1,None\n"
				require.NoError(t, os.WriteFile(filepath.Join(root, z, y, x+".csv"), []byte(data), 0o644))
			}
		}
	}
	c := loadCube(t, root)
	require.NoError(t, c.CorrectShifts("1"))

	delta := shiftF1(1, 0, 1, 2) - shiftF1(1, 0, 1, 0)
	sc := c.Table(types.Sidechain, "dia", "298", "l3")
	require.Equal(t, 1, sc.Len())
	assert.InDelta(t, 7.5-delta, sc.Rows[0].PositionF1.Float64, 1e-9)
	assert.InDelta(t, delta, sc.Rows[0].CorrectionF1.Float64, 1e-9)
}

func TestSidechainExpandAndFindMissing(t *testing.T) {
	root := writeDataset(t, 2, nil)
	omit := map[string]string{"dia/298/l1": "b", "dia/278/l2": "a"}
	for zi, z := range zLabels {
		for yi, y := range yLabels {
			for xi, x := range xLabels {
				var sb strings.Builder
				sb.WriteString(peakHeader + peakLine(1, zi, yi, xi) + peakLine(2, zi, yi, xi))
				for i, atom := range []string{"a", "b"} {
					if omit[condition(z, y, x)] == atom {
						continue
					}
					fmt.Fprintf(&sb, "%d,%d,%.3f,112.5,12AsnHd2%d%s,12AsnNd2,500,600,20,30,1.0,None\n",
						20+i, 20+i, 7.4+float64(i)*0.6, i+1, atom)
				}
				require.NoError(t, os.WriteFile(filepath.Join(root, z, y, x+".csv"), []byte(sb.String()), 0o644))
			}
		}
	}
	c := loadCube(t, root)
	require.True(t, c.Has(types.Sidechain))

	require.NoError(t, c.ExpandAxis(types.AxisY, types.Sidechain, types.MissingFill))
	xref := c.Table(types.Sidechain, "dia", "298", "l1")
	assert.Equal(t, []string{"12a", "12b"}, xref.Keys(types.Sidechain))
	assert.Equal(t, types.StatusMissing, xref.Rows[1].Status)
	assert.Equal(t, "b", xref.Rows[1].Atom)
	assert.Equal(t, "Asn", xref.Rows[1].ThreeLetter)
	assert.False(t, xref.Rows[1].PositionF1.Valid)

	require.NoError(t, c.FindMissing(types.Sidechain, types.MissingFill))
	lost := c.Table(types.Sidechain, "dia", "278", "l2")
	assert.Equal(t, []string{"12a", "12b"}, lost.Keys(types.Sidechain))
	assert.Equal(t, types.StatusMissing, lost.Rows[0].Status)
	assert.Equal(t, types.StatusMeasured, lost.Rows[1].Status)
	assert.InDelta(t, 8.0, lost.Rows[1].PositionF1.Float64, 1e-9)

	assert.Equal(t, 2, c.Table(types.Backbone, "dia", "278", "l2").Len(), "backbone tables are untouched")

	dense, err := c.InitDenseView(types.Sidechain)
	require.NoError(t, err)
	assert.Equal(t, types.Sidechain, dense.Kind)
	assert.Equal(t, []string{"12a", "12b"}, dense.At(0, 1, 2).Keys(types.Sidechain))
}

func TestCorrectShiftsReferenceNotFound(t *testing.T) {
	root := writeDataset(t, 5, map[string][]int{"para/278/l2": {3}})
	c := loadCube(t, root)

	orig := c.Table(types.Backbone, "dia", "278", "l2").Clone()
	err := c.CorrectShifts("3")

	var notFound *ReferenceResidueNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "para/278/l2", notFound.Condition)
	assert.Equal(t, orig, c.Table(types.Backbone, "dia", "278", "l2"), "no table is corrected on failure")

	assert.Error(t, c.CorrectShifts("99"))
}

// --- dense view ---

func TestInitDenseViewRowCounts(t *testing.T) {
	root := writeDataset(t, 50, map[string][]int{"dia/278/l3": {37}})
	c := loadCube(t, root)

	_, err := c.InitDenseView(types.Backbone)
	var inconsistent *InconsistentSeriesLengthError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, "dia/278", inconsistent.Condition)
	assert.Equal(t, "l3", inconsistent.Table)
	assert.Equal(t, 50, inconsistent.Want)
	assert.Equal(t, 49, inconsistent.Got)

	require.NoError(t, c.FindMissing(types.Backbone, types.MissingFill))
	d, err := c.InitDenseView(types.Backbone)
	require.NoError(t, err)

	for zi := range zLabels {
		for yi := range yLabels {
			ref := d.At(zi, yi, 0)
			for xi := range xLabels {
				assert.Equal(t, ref.Len(), d.At(zi, yi, xi).Len())
				assert.Equal(t, ref.Keys(types.Backbone), d.At(zi, yi, xi).Keys(types.Backbone))
			}
		}
	}
}

func TestInitDenseViewKeyMismatch(t *testing.T) {
	root := writeDataset(t, 4, nil)
	c := loadCube(t, root)
	c.Table(types.Backbone, "para", "298", "l2").Rows[1].ResNo = "99"

	_, err := c.InitDenseView(types.Backbone)
	var inconsistent *InconsistentSeriesLengthError
	require.ErrorAs(t, err, &inconsistent)
	assert.True(t, inconsistent.Keys)
}

func TestDensePencil(t *testing.T) {
	root := writeDataset(t, 2, nil)
	c := loadCube(t, root)
	d, err := c.InitDenseView(types.Backbone)
	require.NoError(t, err)

	tests := []struct {
		axis       types.Axis
		prev, next int
		prevLabel  string
		nextLabel  string
		first      *types.PeakTable
	}{
		{types.AxisX, 1, 0, "para", "278", c.Table(types.Backbone, "para", "278", "l1")},
		{types.AxisY, 2, 1, "l3", "para", c.Table(types.Backbone, "para", "278", "l3")},
		{types.AxisZ, 1, 1, "298", "l2", c.Table(types.Backbone, "dia", "298", "l2")},
	}
	for _, tt := range tests {
		t.Run(tt.axis.String(), func(t *testing.T) {
			p := d.Pencil(tt.axis, tt.prev, tt.next)
			assert.Equal(t, tt.prevLabel, p.PrevLabel)
			assert.Equal(t, tt.nextLabel, p.NextLabel)
			assert.Equal(t, c.Space.Labels(tt.axis), p.Labels)
			require.Len(t, p.Tables, len(p.Labels))
			assert.Same(t, tt.first, p.Tables[0])
		})
	}
}
