// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package series slices an aligned cube into one-dimensional series along
// an axis and re-slices built series into cross-axis comparisons.
package series

import (
	"fmt"
	"slices"

	"github.com/pdiddy/peakcube/pkg/types"
)

// SeriesLengthMismatchError reports a series whose tables disagree in row
// count or residue keys once null-key rows are dropped.
type SeriesLengthMismatchError struct {
	Axis      types.Axis
	PrevLabel string
	NextLabel string
	Item      string
	Want      int
	Got       int
}

func (e *SeriesLengthMismatchError) Error() string {
	return fmt.Sprintf("series along %s at (%s, %s): item %s has %d rows, want %d with matching residue keys",
		e.Axis, e.PrevLabel, e.NextLabel, e.Item, e.Got, e.Want)
}

// Series is an ordered run of peak tables along one axis, all sharing one
// residue key index. Tables[0] is the reference item.
type Series struct {
	Axis      types.Axis          `json:"axis" yaml:"axis"`
	Kind      types.ResonanceKind `json:"kind" yaml:"kind"`
	PrevLabel string              `json:"prev_dim" yaml:"prev_dim"`
	NextLabel string              `json:"next_dim" yaml:"next_dim"`
	Items     []string            `json:"items" yaml:"items"`
	Tables    []*types.PeakTable  `json:"-" yaml:"-"`
}

// New builds a series from tables ordered like items. Every table is copied
// without its null-key rows; the inputs are never modified.
func New(axis types.Axis, kind types.ResonanceKind, prevLabel, nextLabel string, items []string, tables []*types.PeakTable) (*Series, error) {
	s := &Series{
		Axis:      axis,
		Kind:      kind,
		PrevLabel: prevLabel,
		NextLabel: nextLabel,
		Items:     slices.Clone(items),
		Tables:    make([]*types.PeakTable, len(tables)),
	}

	var refKeys []string
	for i, t := range tables {
		c := &types.PeakTable{Name: t.Name, Header: t.Header, Rows: make([]types.PeakRow, 0, len(t.Rows))}
		for _, r := range t.Rows {
			if types.ResidueKey(r, kind) != "" {
				c.Rows = append(c.Rows, r)
			}
		}
		keys := c.Keys(kind)
		if i == 0 {
			refKeys = keys
		} else if !slices.Equal(keys, refKeys) {
			return nil, &SeriesLengthMismatchError{
				Axis: axis, PrevLabel: prevLabel, NextLabel: nextLabel,
				Item: items[i], Want: len(refKeys), Got: len(keys),
			}
		}
		s.Tables[i] = c
	}
	return s, nil
}

// Ref returns the reference table, the baseline of delta and ratio
// calculations.
func (s *Series) Ref() *types.PeakTable {
	return s.Tables[0]
}

// Len returns the number of items.
func (s *Series) Len() int {
	return len(s.Tables)
}

// Keys returns the residue key index shared by every table.
func (s *Series) Keys() []string {
	if len(s.Tables) == 0 {
		return nil
	}
	return s.Ref().Keys(s.Kind)
}

// Name identifies the series by kind, axis and fixed labels.
func (s *Series) Name() string {
	return fmt.Sprintf("%s_%s_%s_%s", s.Kind, s.Axis, s.PrevLabel, s.NextLabel)
}
