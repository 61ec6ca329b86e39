// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package series

import (
	"log/slog"

	"github.com/pdiddy/peakcube/internal/cube"
	"github.com/pdiddy/peakcube/pkg/types"
)

// Dict maps the fixed label on axis.Prev() and the fixed label on
// axis.Next() to the series along axis.
type Dict map[string]map[string]*Series

// Get returns the series at (prev, next), or nil.
func (d Dict) Get(prev, next string) *Series {
	return d[prev][next]
}

// Count returns the number of series in d.
func (d Dict) Count() int {
	n := 0
	for _, inner := range d {
		n += len(inner)
	}
	return n
}

func (d Dict) set(prev, next string, s *Series) {
	if d[prev] == nil {
		d[prev] = make(map[string]*Series)
	}
	d[prev][next] = s
}

// BuildOverAxis slices dense along axis, producing one series per pair of
// labels on the other two axes. An axis with a single point yields an empty
// Dict and a warning, not an error.
func BuildOverAxis(dense *cube.Dense, axis types.Axis, logger *slog.Logger) (Dict, error) {
	if logger == nil {
		logger = slog.Default()
	}
	out := make(Dict)
	space := dense.Space
	if !space.Has(axis) {
		logger.Warn("nothing to analyze along axis", "axis", axis.String(), "kind", dense.Kind.String())
		return out, nil
	}

	for pi := range space.Labels(axis.Prev()) {
		for ni := range space.Labels(axis.Next()) {
			p := dense.Pencil(axis, pi, ni)
			s, err := New(axis, dense.Kind, p.PrevLabel, p.NextLabel, p.Labels, p.Tables)
			if err != nil {
				return nil, err
			}
			out.set(p.PrevLabel, p.NextLabel, s)
		}
	}

	logger.Info("built series", "axis", axis.String(), "kind", dense.Kind.String(), "count", out.Count())
	return out, nil
}
