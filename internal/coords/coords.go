// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package coords derives the ordered label sets of the X, Y and Z axes from
// an ingested z/y/x hierarchy and picks each axis' reference label.
package coords

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/pdiddy/peakcube/pkg/types"
)

// ErrNoConditions is returned when the hierarchy holds no tables.
var ErrNoConditions = errors.New("no conditions found")

// IncoherentAxisError reports a branch whose label set differs from the rest.
// Later alignment steps assume every parent carries the same child labels.
type IncoherentAxisError struct {
	Axis   types.Axis
	Parent string
	Want   []string
	Got    []string
}

func (e *IncoherentAxisError) Error() string {
	return fmt.Sprintf("incoherent %s axis under %s: want labels [%s], got [%s]",
		e.Axis, e.Parent, strings.Join(e.Want, " "), strings.Join(e.Got, " "))
}

// Space is the coordinate space of a cube.
type Space struct {
	XX, YY, ZZ       []string
	XRef, YRef, ZRef string
	HasXX, HasYY     bool
	HasZZ            bool
}

// Derive computes the sorted, deduplicated label set at each nesting depth of
// tree (z → y → x labels). The reference label of each axis is its
// lexicographically first label.
func Derive(tree map[string]map[string][]string) (Space, error) {
	if len(tree) == 0 {
		return Space{}, ErrNoConditions
	}

	zz := sortedKeys(tree)
	var yy, xx []string

	for _, z := range zz {
		ys := sortedKeys(tree[z])
		if len(ys) == 0 {
			return Space{}, fmt.Errorf("z label %s: %w", z, ErrNoConditions)
		}
		if yy == nil {
			yy = ys
		} else if !slices.Equal(yy, ys) {
			return Space{}, &IncoherentAxisError{Axis: types.AxisY, Parent: z, Want: yy, Got: ys}
		}

		for _, y := range ys {
			xs := dedupSorted(tree[z][y])
			if len(xs) == 0 {
				return Space{}, fmt.Errorf("%s/%s: %w", z, y, ErrNoConditions)
			}
			if xx == nil {
				xx = xs
			} else if !slices.Equal(xx, xs) {
				return Space{}, &IncoherentAxisError{Axis: types.AxisX, Parent: z + "/" + y, Want: xx, Got: xs}
			}
		}
	}

	return Space{
		XX: xx, YY: yy, ZZ: zz,
		XRef: xx[0], YRef: yy[0], ZRef: zz[0],
		HasXX: len(xx) > 1, HasYY: len(yy) > 1, HasZZ: len(zz) > 1,
	}, nil
}

// Labels returns the ordered labels of axis a.
func (s Space) Labels(a types.Axis) []string {
	switch a {
	case types.AxisX:
		return s.XX
	case types.AxisY:
		return s.YY
	case types.AxisZ:
		return s.ZZ
	}
	return nil
}

// Ref returns the reference label of axis a.
func (s Space) Ref(a types.Axis) string {
	switch a {
	case types.AxisX:
		return s.XRef
	case types.AxisY:
		return s.YRef
	case types.AxisZ:
		return s.ZRef
	}
	return ""
}

// Has reports whether axis a carries more than one data point.
func (s Space) Has(a types.Axis) bool {
	switch a {
	case types.AxisX:
		return s.HasXX
	case types.AxisY:
		return s.HasYY
	case types.AxisZ:
		return s.HasZZ
	}
	return false
}

// Index returns the position of label on axis a, or -1.
func (s Space) Index(a types.Axis, label string) int {
	return slices.Index(s.Labels(a), label)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupSorted(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return slices.Compact(out)
}
