// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package align reindexes peak tables onto a reference residue index.
package align

import (
	"fmt"

	"github.com/pdiddy/peakcube/pkg/types"
)

// ReindexError reports a residue key sequence that cannot be applied.
type ReindexError struct {
	Table  string
	Key    string
	Reason string
}

func (e *ReindexError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("reindexing %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("reindexing %s: %s (residue key %q)", e.Table, e.Reason, e.Key)
}

// Lengths records row counts around an expansion for audit logging.
type Lengths struct {
	TargetInitial int
	Reference     int
	TargetFinal   int
}

// Expand reindexes target onto the residue keys of ref. The result has ref's
// row order. Rows of ref absent from target are synthesized with fill; rows
// of target absent from ref are dropped. Identity columns always come from
// ref, measurement columns from target. Neither input is modified.
func Expand(ref, target *types.PeakTable, kind types.ResonanceKind, fill types.FillPolicy) (*types.PeakTable, Lengths, error) {
	lengths := Lengths{TargetInitial: target.Len(), Reference: ref.Len()}

	byKey := make(map[string]int, len(target.Rows))
	for i, r := range target.Rows {
		key := types.ResidueKey(r, kind)
		if key == "" {
			continue
		}
		if _, dup := byKey[key]; dup {
			return nil, lengths, &ReindexError{Table: target.Name, Key: key, Reason: "duplicate residue key in target"}
		}
		byKey[key] = i
	}

	seen := make(map[string]bool, len(ref.Rows))
	out := &types.PeakTable{
		Name:   target.Name,
		Header: target.Header || ref.Header,
		Rows:   make([]types.PeakRow, 0, len(ref.Rows)),
	}

	for _, refRow := range ref.Rows {
		key := types.ResidueKey(refRow, kind)
		if key == "" {
			return nil, lengths, &ReindexError{Table: ref.Name, Reason: "empty residue key in reference"}
		}
		if seen[key] {
			return nil, lengths, &ReindexError{Table: ref.Name, Key: key, Reason: "duplicate residue key in reference"}
		}
		seen[key] = true

		if i, ok := byKey[key]; ok {
			out.Rows = append(out.Rows, target.Rows[i].WithIdentity(refRow))
			continue
		}
		out.Rows = append(out.Rows, fill.Row(refRow))
	}

	lengths.TargetFinal = len(out.Rows)
	return out, lengths, nil
}
