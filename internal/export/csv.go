// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/peakcube/internal/series"
	"github.com/pdiddy/peakcube/pkg/types"
)

// csvRow is one residue of one series item in delimited export.
type csvRow struct {
	Series       string `csv:"Series"`
	Item         string `csv:"Item"`
	ResNo        string `csv:"Res#"`
	Atom         string `csv:"ATOM"`
	OneLetter    string `csv:"1-letter"`
	ThreeLetter  string `csv:"3-letter"`
	Status       string `csv:"Peak Status"`
	AssignF1     string `csv:"Assign F1"`
	AssignF2     string `csv:"Assign F2"`
	PositionF1   string `csv:"Position F1"`
	PositionF2   string `csv:"Position F2"`
	Height       string `csv:"Height"`
	Volume       string `csv:"Volume"`
	LineWidthF1  string `csv:"Line Width F1 (Hz)"`
	LineWidthF2  string `csv:"Line Width F2 (Hz)"`
	Merit        string `csv:"Merit"`
	Details      string `csv:"Details"`
	CorrectionF1 string `csv:"Position F1 correction"`
	CorrectionF2 string `csv:"Position F2 correction"`
	CSP          string `csv:"CSP"`
}

// WriteCSV writes every item of s to w, one row per item and residue.
// Null measurements are written as empty fields.
func WriteCSV(w io.Writer, s *series.Series, cspAlpha float64) error {
	csp := s.CSP(cspAlpha)
	rows := make([]*csvRow, 0, s.Len()*len(s.Keys()))
	for i, t := range s.Tables {
		for j, r := range t.Rows {
			rows = append(rows, &csvRow{
				Series:       s.Name(),
				Item:         s.Items[i],
				ResNo:        r.ResNo,
				Atom:         r.Atom,
				OneLetter:    r.OneLetter,
				ThreeLetter:  r.ThreeLetter,
				Status:       string(r.Status),
				AssignF1:     r.AssignF1,
				AssignF2:     r.AssignF2,
				PositionF1:   formatFloat(r.PositionF1),
				PositionF2:   formatFloat(r.PositionF2),
				Height:       formatFloat(r.Height),
				Volume:       formatFloat(r.Volume),
				LineWidthF1:  formatFloat(r.LineWidthF1),
				LineWidthF2:  formatFloat(r.LineWidthF2),
				Merit:        formatFloat(r.Merit),
				Details:      r.Details,
				CorrectionF1: formatFloat(r.CorrectionF1),
				CorrectionF2: formatFloat(r.CorrectionF2),
				CSP:          formatFloat(csp[i][j]),
			})
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing series %s as CSV: %w", s.Name(), err)
	}
	return nil
}

func formatFloat(f null.Float) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Float64, 'f', -1, 64)
}

// columns lists the measurement columns written to spreadsheets.
var columns = []types.Column{
	types.ColPositionF1, types.ColPositionF2, types.ColHeight, types.ColVolume,
	types.ColLineWidthF1, types.ColLineWidthF2, types.ColMerit,
	types.ColCorrectionF1, types.ColCorrectionF2,
}
