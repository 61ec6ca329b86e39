// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"gopkg.in/guregu/null.v3"
)

// PeakStatus describes why a row's measurement columns may be null.
type PeakStatus string

const (
	StatusMeasured   PeakStatus = "measured"
	StatusMissing    PeakStatus = "missing"
	StatusUnassigned PeakStatus = "unassigned"
)

// Column names a numeric measurement column of a PeakRow.
type Column string

const (
	ColPositionF1   Column = "Position F1"
	ColPositionF2   Column = "Position F2"
	ColHeight       Column = "Height"
	ColVolume       Column = "Volume"
	ColLineWidthF1  Column = "Line Width F1 (Hz)"
	ColLineWidthF2  Column = "Line Width F2 (Hz)"
	ColMerit        Column = "Merit"
	ColCorrectionF1 Column = "Position F1 correction"
	ColCorrectionF2 Column = "Position F2 correction"
)

// PeakRow is one peak of a PeakTable. ResNo, Atom, OneLetter, ThreeLetter,
// AssignF1, AssignF2 and Status are identity columns; the rest are
// measurements owned by the experiment the row came from.
type PeakRow struct {
	ResNo       string     `json:"res_no" yaml:"res_no" csv:"Res#"`
	Atom        string     `json:"atom,omitempty" yaml:"atom,omitempty" csv:"ATOM"`
	OneLetter   string     `json:"one_letter" yaml:"one_letter" csv:"1-letter"`
	ThreeLetter string     `json:"three_letter" yaml:"three_letter" csv:"3-letter"`
	AssignF1    string     `json:"assign_f1" yaml:"assign_f1" csv:"Assign F1"`
	AssignF2    string     `json:"assign_f2" yaml:"assign_f2" csv:"Assign F2"`
	Status      PeakStatus `json:"status" yaml:"status" csv:"Peak Status"`

	PositionF1   null.Float `json:"position_f1" yaml:"position_f1" csv:"Position F1"`
	PositionF2   null.Float `json:"position_f2" yaml:"position_f2" csv:"Position F2"`
	Height       null.Float `json:"height" yaml:"height" csv:"Height"`
	Volume       null.Float `json:"volume" yaml:"volume" csv:"Volume"`
	LineWidthF1  null.Float `json:"line_width_f1" yaml:"line_width_f1" csv:"Line Width F1 (Hz)"`
	LineWidthF2  null.Float `json:"line_width_f2" yaml:"line_width_f2" csv:"Line Width F2 (Hz)"`
	Merit        null.Float `json:"merit" yaml:"merit" csv:"Merit"`
	Details      string     `json:"details" yaml:"details" csv:"Details"`
	CorrectionF1 null.Float `json:"correction_f1" yaml:"correction_f1" csv:"Position F1 correction"`
	CorrectionF2 null.Float `json:"correction_f2" yaml:"correction_f2" csv:"Position F2 correction"`
}

// Value returns the measurement stored in col. Unknown columns are null.
func (r PeakRow) Value(col Column) null.Float {
	switch col {
	case ColPositionF1:
		return r.PositionF1
	case ColPositionF2:
		return r.PositionF2
	case ColHeight:
		return r.Height
	case ColVolume:
		return r.Volume
	case ColLineWidthF1:
		return r.LineWidthF1
	case ColLineWidthF2:
		return r.LineWidthF2
	case ColMerit:
		return r.Merit
	case ColCorrectionF1:
		return r.CorrectionF1
	case ColCorrectionF2:
		return r.CorrectionF2
	}
	return null.Float{}
}

// WithIdentity returns r with its identity columns replaced by those of src.
func (r PeakRow) WithIdentity(src PeakRow) PeakRow {
	r.ResNo = src.ResNo
	r.Atom = src.Atom
	r.OneLetter = src.OneLetter
	r.ThreeLetter = src.ThreeLetter
	r.AssignF1 = src.AssignF1
	r.AssignF2 = src.AssignF2
	return r
}

// ResidueKey returns the row identity used to align tables of the given kind.
// Sidechain rows append the ATOM discriminator so 12a and 12b stay distinct.
func ResidueKey(r PeakRow, kind ResonanceKind) string {
	if kind == Sidechain {
		return r.ResNo + r.Atom
	}
	return r.ResNo
}

// PeakTable is a normalized table of peaks for one (x, y, z) condition.
type PeakTable struct {
	// Name is the X label (file name without extension) or a descriptive name.
	Name string `json:"name" yaml:"name"`

	// Header records that the source declared its columns. A table with a
	// header and no rows is a legal empty table.
	Header bool `json:"header" yaml:"header"`

	Rows []PeakRow `json:"rows" yaml:"rows"`
}

// Len returns the number of rows.
func (t *PeakTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Keys returns the residue key of every row in order.
func (t *PeakTable) Keys(kind ResonanceKind) []string {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = ResidueKey(r, kind)
	}
	return keys
}

// Clone returns a copy of t that shares no rows with it.
func (t *PeakTable) Clone() *PeakTable {
	c := &PeakTable{Name: t.Name, Header: t.Header}
	c.Rows = make([]PeakRow, len(t.Rows))
	copy(c.Rows, t.Rows)
	return c
}

// FillPolicy holds the values written into rows synthesized during expansion.
// Measurement columns of synthesized rows stay null.
type FillPolicy struct {
	Status  PeakStatus `json:"status" yaml:"status" mapstructure:"status"`
	Merit   float64    `json:"merit" yaml:"merit" mapstructure:"merit"`
	Details string     `json:"details" yaml:"details" mapstructure:"details"`
}

// MissingFill tags residues whose peak disappeared along the titration.
var MissingFill = FillPolicy{Status: StatusMissing, Merit: 0, Details: "None"}

// UnassignedFill tags residues never observed in a condition.
var UnassignedFill = FillPolicy{Status: StatusUnassigned, Merit: 0, Details: "None"}

// Row synthesizes a placeholder row carrying ref's identity.
func (f FillPolicy) Row(ref PeakRow) PeakRow {
	var r PeakRow
	r = r.WithIdentity(ref)
	r.Status = f.Status
	r.Merit = null.FloatFrom(f.Merit)
	r.Details = f.Details
	return r
}
