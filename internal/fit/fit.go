// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fit characterizes the per-residue evolution of a series with a
// pluggable fitting strategy.
package fit

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/guregu/null.v3"

	"github.com/pdiddy/peakcube/internal/series"
)

// ErrTooFewPoints is returned when a fit has fewer valid points than the
// strategy needs.
var ErrTooFewPoints = errors.New("too few points to fit")

const curveSamples = 50

// Result is the outcome of fitting one residue.
type Result struct {
	// Report is a human-readable summary of the fit.
	Report string

	// Row holds the fitted parameters for a results table.
	Row map[string]float64

	// CurveX and CurveY sample the fitted curve for plotting.
	CurveX []float64
	CurveY []float64
}

// Strategy fits y against x.
type Strategy interface {
	Name() string
	Fit(x, y []float64) (Result, error)
}

// Linear fits y = alpha + beta*x by least squares.
type Linear struct{}

// Name returns "linear".
func (Linear) Name() string { return "linear" }

// Fit fits a straight line through at least two points.
func (Linear) Fit(x, y []float64) (Result, error) {
	if len(x) != len(y) {
		return Result{}, fmt.Errorf("fitting %d x values against %d y values", len(x), len(y))
	}
	if len(x) < 2 {
		return Result{}, ErrTooFewPoints
	}

	alpha, beta := stat.LinearRegression(x, y, nil, false)
	r2 := stat.RSquared(x, y, nil, alpha, beta)

	curveX := make([]float64, curveSamples)
	floats.Span(curveX, floats.Min(x), floats.Max(x))
	curveY := make([]float64, curveSamples)
	for i, v := range curveX {
		curveY[i] = alpha + beta*v
	}

	return Result{
		Report: fmt.Sprintf("linear fit: y = %.6g + %.6g*x (R^2 = %.4f, n = %d)", alpha, beta, r2, len(x)),
		Row:    map[string]float64{"intercept": alpha, "slope": beta, "r2": r2},
		CurveX: curveX,
		CurveY: curveY,
	}, nil
}

// ResidueFit is the fit of one residue of a series.
type ResidueFit struct {
	Residue string
	Result  Result
}

// SeriesSummary holds the fits of a series and counts of skipped residues.
type SeriesSummary struct {
	Fits    []ResidueFit
	Skipped int
}

// Report joins the per-residue reports, one per line.
func (s SeriesSummary) Report() string {
	var sb strings.Builder
	for _, f := range s.Fits {
		fmt.Fprintf(&sb, "%s: %s\n", f.Residue, f.Result.Report)
	}
	return sb.String()
}

// Series fits every residue of s. values holds one column per item, as
// returned by series.Series.Delta or CSP; xs are the numeric condition
// values of the items. Residues the strategy cannot fit are skipped.
func Series(s *series.Series, xs []float64, values [][]null.Float, strategy Strategy) (SeriesSummary, error) {
	if len(xs) != s.Len() {
		return SeriesSummary{}, fmt.Errorf("series %s has %d items, got %d condition values", s.Name(), s.Len(), len(xs))
	}

	var summary SeriesSummary
	for j, key := range s.Keys() {
		var x, y []float64
		for i := range values {
			if v := values[i][j]; v.Valid {
				x = append(x, xs[i])
				y = append(y, v.Float64)
			}
		}
		res, err := strategy.Fit(x, y)
		if err != nil {
			summary.Skipped++
			continue
		}
		summary.Fits = append(summary.Fits, ResidueFit{Residue: key, Result: res})
	}
	return summary, nil
}
