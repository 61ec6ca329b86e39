package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdiddy/peakcube/internal/cube"
	"github.com/pdiddy/peakcube/internal/export"
	"github.com/pdiddy/peakcube/internal/fit"
	"github.com/pdiddy/peakcube/internal/peaklist"
	"github.com/pdiddy/peakcube/internal/refseq"
	"github.com/pdiddy/peakcube/internal/series"
	"github.com/pdiddy/peakcube/pkg/types"
)

const fitsDir = "fits"

// runSummary counts what one pipeline run produced.
type runSummary struct {
	Tables      int
	Series      int
	Comparisons int
	Fits        int
	Export      export.Summary
}

// runPipeline executes ingestion, alignment, series extraction and export
// for cfg. Progress lines go to w; diagnostics go to logger.
func runPipeline(ctx context.Context, cfg types.RunConfig, logger *slog.Logger, w io.Writer) (runSummary, error) {
	var summary runSummary
	root := cfg.Cube.SpectraDir

	files, err := cube.Discover(root)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		return summary, fmt.Errorf("no peak lists found under %s (expected <z>/<y>/<x>.csv)", root)
	}

	c := cube.New(peaklist.Parser{}, cfg.Cube.Workers, logger)
	if err := c.Load(ctx, types.Backbone, root, files); err != nil {
		return summary, err
	}
	summary.Tables = len(files)
	fmt.Fprintf(w, "Loaded %d peak lists (%d x %d x %d)\n", len(files),
		len(c.Space.ZZ), len(c.Space.YY), len(c.Space.XX))

	if err := c.SplitIdentity(); err != nil {
		return summary, fmt.Errorf("splitting identity columns: %w", err)
	}

	if cfg.Cube.CorrectShifts {
		if err := c.CorrectShifts(cfg.Cube.RefResidue); err != nil {
			return summary, fmt.Errorf("correcting shifts: %w", err)
		}
		fmt.Fprintf(w, "Corrected chemical shifts against residue %s\n", cfg.Cube.RefResidue)
	}

	for _, kind := range types.ResonanceKinds {
		if !c.Has(kind) {
			continue
		}
		if err := expandAxes(c, cfg.Cube, kind); err != nil {
			return summary, err
		}
		if err := c.FindMissing(kind, cfg.Cube.Missing); err != nil {
			return summary, fmt.Errorf("finding missing %s residues: %w", kind, err)
		}
	}

	if cfg.Cube.FastaFile != "" {
		seq, err := refseq.Load(cfg.Cube.FastaFile, cfg.Cube.FastaStart)
		if err != nil {
			return summary, err
		}
		if err := c.FindUnassigned(seq, cfg.Cube.Unassigned); err != nil {
			return summary, fmt.Errorf("finding unassigned residues: %w", err)
		}
		fmt.Fprintf(w, "Aligned against reference sequence of %d residues\n", seq.Len())
	}

	exporter, err := export.NewExporter(ctx, cfg.Export, cfg.Series.CSPAlpha, root, logger)
	if err != nil {
		return summary, err
	}
	defer exporter.Close()

	var corrections map[string]map[string]map[string]cube.Correction
	if cfg.Cube.CorrectShifts {
		corrections = c.Corrections()
	}
	manifest := export.NewManifest(c.Space, corrections)

	for _, kind := range types.ResonanceKinds {
		if !c.Has(kind) {
			continue
		}
		dense, err := c.InitDenseView(kind)
		if err != nil {
			return summary, fmt.Errorf("building %s dense view: %w", kind, err)
		}

		for _, axis := range types.Axes {
			if !cfg.Series.Axes.Active(axis) {
				continue
			}
			n, err := buildAxis(ctx, dense, axis, cfg, exporter, manifest, logger, &summary)
			if err != nil {
				return summary, err
			}
			fmt.Fprintf(w, "Built %d %s series along %s\n", n, kind, axis)
		}
	}

	if err := exporter.WriteManifest(manifest); err != nil {
		return summary, err
	}
	summary.Export = exporter.Summary()
	return summary, nil
}

func expandAxes(c *cube.Cube, cfg types.CubeConfig, kind types.ResonanceKind) error {
	expand := map[types.Axis]bool{types.AxisY: cfg.ExpandY, types.AxisZ: cfg.ExpandZ}
	for _, axis := range []types.Axis{types.AxisY, types.AxisZ} {
		if !expand[axis] {
			continue
		}
		if err := c.ExpandAxis(axis, kind, cfg.Missing); err != nil {
			return fmt.Errorf("expanding %s along %s: %w", kind, axis, err)
		}
	}
	return nil
}

// buildAxis builds and exports the series along axis and their cross-axis
// comparisons. It returns the number of series built.
func buildAxis(ctx context.Context, dense *cube.Dense, axis types.Axis, cfg types.RunConfig,
	exporter *export.Exporter, manifest *export.Manifest, logger *slog.Logger, summary *runSummary) (int, error) {
	dict, err := series.BuildOverAxis(dense, axis, logger)
	if err != nil {
		return 0, fmt.Errorf("building %s series along %s: %w", dense.Kind, axis, err)
	}
	summary.Series += dict.Count()
	manifest.AddDict(export.OriginSeries, dict)
	if err := exporter.ExportDict(ctx, export.OriginSeries, dict); err != nil {
		return 0, err
	}

	if xs := cfg.Series.Values(axis); len(xs) > 0 {
		n, err := fitDict(dict, xs, cfg, logger)
		if err != nil {
			return 0, err
		}
		summary.Fits += n
	}

	cmp := series.NewComparator(axis, dense.Space, dict, logger)
	if err := cmp.GenNextDim(); err != nil {
		return 0, fmt.Errorf("comparing %s series along %s: %w", dense.Kind, axis.Next(), err)
	}
	if err := cmp.GenPrevDim(); err != nil {
		return 0, fmt.Errorf("comparing %s series along %s: %w", dense.Kind, axis.Prev(), err)
	}
	manifest.AddComparison(cmp)

	next, prev := series.Dict(cmp.NextDim), series.Dict(cmp.PrevDim)
	summary.Comparisons += next.Count() + prev.Count()
	if err := exporter.ExportDict(ctx, export.ComparisonOrigin(axis, "next_dim"), next); err != nil {
		return 0, err
	}
	if err := exporter.ExportDict(ctx, export.ComparisonOrigin(axis, "prev_dim"), prev); err != nil {
		return 0, err
	}
	return dict.Count(), nil
}

// fitDict fits the CSP of every residue in every series of dict against
// the condition values xs and writes one report per series.
func fitDict(dict series.Dict, xs []float64, cfg types.RunConfig, logger *slog.Logger) (int, error) {
	dir := filepath.Join(cfg.Export.OutputDir, fitsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating %s: %w", dir, err)
	}

	strategy := fit.Linear{}
	total := 0
	for _, inner := range dict {
		for _, s := range inner {
			res, err := fit.Series(s, xs, s.CSP(cfg.Series.CSPAlpha), strategy)
			if err != nil {
				return total, fmt.Errorf("fitting %s: %w", s.Name(), err)
			}
			if res.Skipped > 0 {
				logger.Warn("residues skipped by fit", "series", s.Name(), "strategy", strategy.Name(), "skipped", res.Skipped)
			}
			path := filepath.Join(dir, s.Name()+".txt")
			if err := os.WriteFile(path, []byte(res.Report()), 0o644); err != nil {
				return total, fmt.Errorf("writing fit report %s: %w", path, err)
			}
			total += len(res.Fits)
		}
	}
	return total, nil
}
