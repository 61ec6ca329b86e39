// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package series

import (
	"fmt"
	"log/slog"

	"github.com/pdiddy/peakcube/internal/coords"
	"github.com/pdiddy/peakcube/pkg/types"
)

// Comparator re-slices the series built along its self axis along each of
// the two other axes. GenNextDim and GenPrevDim are independent and
// idempotent; neither modifies the series it was built from.
type Comparator struct {
	Self   types.Axis
	Space  coords.Space
	Series Dict

	// NextDim maps a label on Self.Prev() and a label on Self to the series
	// along Self.Next().
	NextDim          map[string]map[string]*Series
	HasPointsNextDim bool

	// PrevDim maps a label on Self.Next() and a label on Self to the series
	// along Self.Prev().
	PrevDim          map[string]map[string]*Series
	HasPointsPrevDim bool

	log *slog.Logger
}

// NewComparator returns a comparator over series built along self.
func NewComparator(self types.Axis, space coords.Space, series Dict, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Comparator{Self: self, Space: space, Series: series, log: logger}
}

// GenNextDim builds the comparisons along Self.Next(). It is a no-op when
// that axis has a single point or no series were built along Self.
func (c *Comparator) GenNextDim() error {
	if c.HasPointsNextDim {
		return nil
	}
	along := c.Self.Next()
	if !c.ready(along) {
		return nil
	}

	out := make(map[string]map[string]*Series)
	for _, p := range c.Space.Labels(c.Self.Prev()) {
		out[p] = make(map[string]*Series)
		for si, sl := range c.Space.Labels(c.Self) {
			items := c.Space.Labels(along)
			tables := make([]*types.PeakTable, len(items))
			for i, n := range items {
				src := c.Series.Get(p, n)
				if src == nil {
					return fmt.Errorf("comparing along %s: no series at (%s, %s)", along, p, n)
				}
				tables[i] = src.Tables[si]
			}
			s, err := New(along, c.kind(), sl, p, items, tables)
			if err != nil {
				return err
			}
			out[p][sl] = s
		}
	}

	c.NextDim = out
	c.HasPointsNextDim = true
	return nil
}

// GenPrevDim builds the comparisons along Self.Prev(). It is a no-op when
// that axis has a single point or no series were built along Self.
func (c *Comparator) GenPrevDim() error {
	if c.HasPointsPrevDim {
		return nil
	}
	along := c.Self.Prev()
	if !c.ready(along) {
		return nil
	}

	out := make(map[string]map[string]*Series)
	for _, n := range c.Space.Labels(c.Self.Next()) {
		out[n] = make(map[string]*Series)
		for si, sl := range c.Space.Labels(c.Self) {
			items := c.Space.Labels(along)
			tables := make([]*types.PeakTable, len(items))
			for i, p := range items {
				src := c.Series.Get(p, n)
				if src == nil {
					return fmt.Errorf("comparing along %s: no series at (%s, %s)", along, p, n)
				}
				tables[i] = src.Tables[si]
			}
			s, err := New(along, c.kind(), n, sl, items, tables)
			if err != nil {
				return err
			}
			out[n][sl] = s
		}
	}

	c.PrevDim = out
	c.HasPointsPrevDim = true
	return nil
}

func (c *Comparator) ready(along types.Axis) bool {
	if c.Series.Count() == 0 {
		c.log.Info("no series to compare", "self", c.Self.String())
		return false
	}
	if !c.Space.Has(along) {
		c.log.Info("single point, no comparison", "self", c.Self.String(), "along", along.String())
		return false
	}
	return true
}

func (c *Comparator) kind() types.ResonanceKind {
	for _, inner := range c.Series {
		for _, s := range inner {
			return s.Kind
		}
	}
	return types.Backbone
}
