// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"slices"

	"github.com/pdiddy/peakcube/internal/coords"
	"github.com/pdiddy/peakcube/pkg/types"
)

// Dense is the array view of one resonance kind, addressed by integer
// indexes into the coordinate space labels.
type Dense struct {
	Kind  types.ResonanceKind
	Space coords.Space

	cells [][][]*types.PeakTable // [z][y][x]
}

// Pencil is the fixed-size run of tables along one axis with the other two
// axes held at fixed labels.
type Pencil struct {
	Axis      types.Axis
	PrevLabel string
	NextLabel string
	Labels    []string
	Tables    []*types.PeakTable
}

// InitDenseView checks that every X table of each (z, y) group has the same
// row count and residue key sequence as its X-reference table, then builds
// the dense view of kind.
func (c *Cube) InitDenseView(kind types.ResonanceKind) (*Dense, error) {
	h, err := c.hierarchy(kind)
	if err != nil {
		return nil, err
	}

	s := c.Space
	cells := make([][][]*types.PeakTable, len(s.ZZ))
	for zi, z := range s.ZZ {
		cells[zi] = make([][]*types.PeakTable, len(s.YY))
		for yi, y := range s.YY {
			cells[zi][yi] = make([]*types.PeakTable, len(s.XX))

			ref := h.get(z, y, s.XRef)
			refKeys := ref.Keys(kind)
			for xi, x := range s.XX {
				t := h.get(z, y, x)
				if t.Len() != ref.Len() {
					return nil, &InconsistentSeriesLengthError{
						Condition: condition(z, y), Table: x, Want: ref.Len(), Got: t.Len(),
					}
				}
				if !slices.Equal(t.Keys(kind), refKeys) {
					return nil, &InconsistentSeriesLengthError{
						Condition: condition(z, y), Table: x, Want: ref.Len(), Got: t.Len(), Keys: true,
					}
				}
				cells[zi][yi][xi] = t
			}
		}
	}

	c.log.Info("initialized dense view", "kind", kind.String())
	return &Dense{Kind: kind, Space: s, cells: cells}, nil
}

// At returns the table at integer coordinates (z, y, x).
func (d *Dense) At(z, y, x int) *types.PeakTable {
	return d.cells[z][y][x]
}

// Pencil returns the tables along axis with axis.Prev() fixed at index prev
// and axis.Next() fixed at index next.
func (d *Dense) Pencil(axis types.Axis, prev, next int) Pencil {
	labels := d.Space.Labels(axis)
	p := Pencil{
		Axis:      axis,
		PrevLabel: d.Space.Labels(axis.Prev())[prev],
		NextLabel: d.Space.Labels(axis.Next())[next],
		Labels:    labels,
		Tables:    make([]*types.PeakTable, len(labels)),
	}

	var idx [3]int
	idx[axis.Prev()] = prev
	idx[axis.Next()] = next
	for i := range labels {
		idx[axis] = i
		p.Tables[i] = d.cells[idx[types.AxisZ]][idx[types.AxisY]][idx[types.AxisX]]
	}
	return p
}
