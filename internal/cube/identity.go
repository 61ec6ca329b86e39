// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/peakcube/pkg/types"
)

// assignRe splits an assignment such as "12LysH" or "45AsnHd21a" into
// residue number, 3-letter code and atom name.
var assignRe = regexp.MustCompile(`^(\d+)([A-Za-z]{3})(\S*)$`)

const backboneAtom = "H"

// SplitIdentity derives the residue columns of every backbone table from its
// Assign F1 column, drops unassigned raw peaks, moves sidechain rows (atom
// names ending in a or b) into the sidechain hierarchy, and sorts every table
// by numeric residue number.
func (c *Cube) SplitIdentity() error {
	h, err := c.hierarchy(types.Backbone)
	if err != nil {
		return err
	}

	side := make(Hierarchy)
	var dropped, sidechains int

	err = c.each(func(z, y, x string) error {
		t := h.get(z, y, x)
		bb := &types.PeakTable{Name: t.Name, Header: t.Header}
		sc := &types.PeakTable{Name: t.Name, Header: true}

		for _, r := range t.Rows {
			m := assignRe.FindStringSubmatch(strings.TrimSpace(r.AssignF1))
			if m == nil {
				dropped++
				continue
			}
			r.ResNo = m[1]
			r.ThreeLetter = strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:])
			r.OneLetter = types.OneLetter(m[2])
			if r.Status == "" {
				r.Status = types.StatusMeasured
			}

			atom := m[3]
			switch {
			case atom == "" || atom == backboneAtom:
				r.Atom = ""
				bb.Rows = append(bb.Rows, r)
			case strings.HasSuffix(atom, "a") || strings.HasSuffix(atom, "b"):
				r.Atom = atom[len(atom)-1:]
				sc.Rows = append(sc.Rows, r)
				sidechains++
			default:
				dropped++
			}
		}

		sortByResidue(bb)
		sortByResidue(sc)
		h.set(z, y, x, bb)
		side.set(z, y, x, sc)
		return nil
	})
	if err != nil {
		return err
	}

	if sidechains > 0 {
		c.tables[types.Sidechain] = side
	}
	if dropped > 0 {
		c.log.Warn("dropped peaks without a residue assignment", "count", dropped)
	}
	c.log.Info("split identity columns", "sidechain_peaks", sidechains)
	return nil
}

// sortByResidue orders rows by numeric residue number, then atom. Residue
// numbers stay strings; they are only cast for comparison.
func sortByResidue(t *types.PeakTable) {
	slices.SortStableFunc(t.Rows, func(a, b types.PeakRow) int {
		na, _ := strconv.Atoi(a.ResNo)
		nb, _ := strconv.Atoi(b.ResNo)
		if n := cmp.Compare(na, nb); n != 0 {
			return n
		}
		return cmp.Compare(a.Atom, b.Atom)
	})
}
