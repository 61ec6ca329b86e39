// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"fmt"

	"github.com/pdiddy/peakcube/internal/align"
	"github.com/pdiddy/peakcube/pkg/types"
)

// ExpandAxis propagates the residues of the reference point of axis (Y or Z)
// into the X-reference table of every other point of that axis, so missing
// residues are later searched against a maximal reference. An axis with a
// single label is left untouched.
func (c *Cube) ExpandAxis(axis types.Axis, kind types.ResonanceKind, fill types.FillPolicy) error {
	if axis != types.AxisY && axis != types.AxisZ {
		return fmt.Errorf("expanding references along %s: %w", axis, ErrInvalidAxis)
	}
	h, err := c.hierarchy(kind)
	if err != nil {
		return err
	}
	if !c.Space.Has(axis) {
		c.log.Info("axis has a single point, nothing to expand", "axis", axis.String(), "kind", kind.String())
		return nil
	}

	xref := c.Space.XRef
	for _, z := range c.Space.ZZ {
		for _, y := range c.Space.YY {
			refZ, refY := z, y
			if axis == types.AxisY {
				refY = c.Space.YRef
			} else {
				refZ = c.Space.ZRef
			}
			if refZ == z && refY == y {
				continue
			}
			if err := c.expandInto(h, kind, h.get(refZ, refY, xref), z, y, xref, fill); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindMissing reindexes every table onto the X-reference table of its (z, y)
// group. Residues lost along the titration are synthesized with fill.
func (c *Cube) FindMissing(kind types.ResonanceKind, fill types.FillPolicy) error {
	h, err := c.hierarchy(kind)
	if err != nil {
		return err
	}
	for _, z := range c.Space.ZZ {
		for _, y := range c.Space.YY {
			ref := h.get(z, y, c.Space.XRef)
			for _, x := range c.Space.XX {
				if err := c.expandInto(h, kind, ref, z, y, x, fill); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// FindUnassigned reindexes every backbone table onto an external reference
// sequence table. Residues never observed are synthesized with fill.
func (c *Cube) FindUnassigned(seq *types.PeakTable, fill types.FillPolicy) error {
	h, err := c.hierarchy(types.Backbone)
	if err != nil {
		return err
	}
	return c.each(func(z, y, x string) error {
		return c.expandInto(h, types.Backbone, seq, z, y, x, fill)
	})
}

func (c *Cube) expandInto(h Hierarchy, kind types.ResonanceKind, ref *types.PeakTable, z, y, x string, fill types.FillPolicy) error {
	cond := condition(z, y, x)
	out, lengths, err := align.Expand(ref, h.get(z, y, x), kind, fill)
	if err != nil {
		return fmt.Errorf("expanding %s %s: %w", kind, cond, err)
	}
	h.set(z, y, x, out)
	c.log.Debug("expanded table",
		"kind", kind.String(), "condition", cond, "fill", string(fill.Status),
		"target_initial", lengths.TargetInitial,
		"reference", lengths.Reference,
		"target_final", lengths.TargetFinal)
	return nil
}
