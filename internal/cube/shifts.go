// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/peakcube/pkg/types"
)

// CorrectShifts re-references the chemical shifts of every backbone table
// against refResidue. For each (z, y, x) the offset is the position of
// refResidue in that table minus its position in the X-reference table of
// the same (z, y); it is subtracted from every row and recorded in the
// correction columns. Sidechain tables receive the same offsets.
func (c *Cube) CorrectShifts(refResidue string) error {
	h, err := c.hierarchy(types.Backbone)
	if err != nil {
		return err
	}

	corrections := make(map[string]map[string]map[string]Correction)
	for _, z := range c.Space.ZZ {
		corrections[z] = make(map[string]map[string]Correction)
		for _, y := range c.Space.YY {
			corrections[z][y] = make(map[string]Correction)

			ref, err := anchor(h.get(z, y, c.Space.XRef), refResidue, condition(z, y, c.Space.XRef))
			if err != nil {
				return err
			}
			for _, x := range c.Space.XX {
				here, err := anchor(h.get(z, y, x), refResidue, condition(z, y, x))
				if err != nil {
					return err
				}
				corrections[z][y][x] = Correction{
					F1: here.PositionF1.Float64 - ref.PositionF1.Float64,
					F2: here.PositionF2.Float64 - ref.PositionF2.Float64,
				}
			}
		}
	}

	for _, kind := range types.ResonanceKinds {
		kh := c.tables[kind]
		if kh == nil {
			continue
		}
		_ = c.each(func(z, y, x string) error {
			applyCorrection(kh.get(z, y, x), corrections[z][y][x])
			return nil
		})
	}

	c.corrections = corrections
	c.log.Info("corrected chemical shifts", "ref_residue", refResidue)
	return nil
}

func anchor(t *types.PeakTable, residue, cond string) (types.PeakRow, error) {
	for _, r := range t.Rows {
		if r.ResNo == residue && r.PositionF1.Valid && r.PositionF2.Valid {
			return r, nil
		}
	}
	return types.PeakRow{}, &ReferenceResidueNotFoundError{Residue: residue, Condition: cond}
}

func applyCorrection(t *types.PeakTable, corr Correction) {
	for i := range t.Rows {
		r := &t.Rows[i]
		if r.PositionF1.Valid {
			r.PositionF1 = null.FloatFrom(r.PositionF1.Float64 - corr.F1)
		}
		if r.PositionF2.Valid {
			r.PositionF2 = null.FloatFrom(r.PositionF2.Float64 - corr.F2)
		}
		r.CorrectionF1 = null.FloatFrom(corr.F1)
		r.CorrectionF2 = null.FloatFrom(corr.F2)
	}
}
