// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package series

import (
	"math"

	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/peakcube/pkg/types"
)

// DefaultCSPAlpha scales the heteronuclear (F2) dimension in CSP.
const DefaultCSPAlpha = 0.14

// Values returns col for every item and residue, indexed [item][row].
func (s *Series) Values(col types.Column) [][]null.Float {
	out := make([][]null.Float, len(s.Tables))
	for i, t := range s.Tables {
		out[i] = make([]null.Float, len(t.Rows))
		for j, r := range t.Rows {
			out[i][j] = r.Value(col)
		}
	}
	return out
}

// Delta returns col minus its value in the reference item. Cells where
// either value is null stay null.
func (s *Series) Delta(col types.Column) [][]null.Float {
	return s.combine(col, func(v, ref float64) (float64, bool) {
		return v - ref, true
	})
}

// Ratio returns col divided by its value in the reference item. Cells with
// a null or zero reference stay null.
func (s *Series) Ratio(col types.Column) [][]null.Float {
	return s.combine(col, func(v, ref float64) (float64, bool) {
		if ref == 0 {
			return 0, false
		}
		return v / ref, true
	})
}

// CSP returns the combined chemical shift perturbation of every residue
// against the reference item: sqrt(0.5 * (dF1^2 + (alpha * dF2)^2)).
func (s *Series) CSP(alpha float64) [][]null.Float {
	if alpha <= 0 {
		alpha = DefaultCSPAlpha
	}
	d1 := s.Delta(types.ColPositionF1)
	d2 := s.Delta(types.ColPositionF2)

	out := make([][]null.Float, len(d1))
	for i := range d1 {
		out[i] = make([]null.Float, len(d1[i]))
		for j := range d1[i] {
			if !d1[i][j].Valid || !d2[i][j].Valid {
				continue
			}
			f1, f2 := d1[i][j].Float64, alpha*d2[i][j].Float64
			out[i][j] = null.FloatFrom(math.Sqrt(0.5 * (f1*f1 + f2*f2)))
		}
	}
	return out
}

func (s *Series) combine(col types.Column, op func(v, ref float64) (float64, bool)) [][]null.Float {
	values := s.Values(col)
	out := make([][]null.Float, len(values))
	if len(values) == 0 {
		return out
	}
	ref := values[0]
	for i, row := range values {
		out[i] = make([]null.Float, len(row))
		for j, v := range row {
			if !v.Valid || !ref[j].Valid {
				continue
			}
			if f, ok := op(v.Float64, ref[j].Float64); ok {
				out[i][j] = null.FloatFrom(f)
			}
		}
	}
	return out
}
