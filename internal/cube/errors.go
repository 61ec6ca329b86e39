// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAxis is returned when an operation does not apply to an axis.
	ErrInvalidAxis = errors.New("invalid axis")

	// ErrNotLoaded is returned when a resonance kind has no tables.
	ErrNotLoaded = errors.New("resonance kind not loaded")
)

// EmptyTableError reports a source file that parsed to zero rows without
// declaring an explicit header.
type EmptyTableError struct {
	Path string
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("peak list %s is empty and has no header", e.Path)
}

// ReferenceResidueNotFoundError reports a shift-correction anchor that is
// absent from a table, or present without a position.
type ReferenceResidueNotFoundError struct {
	Residue   string
	Condition string
}

func (e *ReferenceResidueNotFoundError) Error() string {
	return fmt.Sprintf("reference residue %s not found in %s", e.Residue, e.Condition)
}

// InconsistentSeriesLengthError reports X tables of one (Z, Y) group that
// disagree in row count or residue key sequence after alignment.
type InconsistentSeriesLengthError struct {
	Condition string
	Table     string
	Want      int
	Got       int
	Keys      bool
}

func (e *InconsistentSeriesLengthError) Error() string {
	if e.Keys {
		return fmt.Sprintf("inconsistent residue keys in %s: table %s differs from the reference", e.Condition, e.Table)
	}
	return fmt.Sprintf("inconsistent series length in %s: table %s has %d rows, want %d", e.Condition, e.Table, e.Got, e.Want)
}

func condition(labels ...string) string {
	return strings.Join(labels, "/")
}
