// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes built series to delimited files, workbooks, a
// SQLite store and a YAML run manifest.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/pdiddy/peakcube/internal/series"
	"github.com/pdiddy/peakcube/pkg/types"
)

// OriginSeries marks series built directly over an axis.
const OriginSeries = "series"

const manifestFile = "manifest.yaml"

// Summary counts what an Exporter wrote.
type Summary struct {
	Series int
	Files  int
	Stored int
}

// Exporter writes series to every configured format under the output
// directory.
type Exporter struct {
	cfg      types.ExportConfig
	cspAlpha float64
	store    *Store
	runID    string
	log      *slog.Logger
	summary  Summary
}

// NewExporter prepares the output directory and, when the sqlite format is
// enabled, opens the store and records a new run.
func NewExporter(ctx context.Context, cfg types.ExportConfig, cspAlpha float64, spectraDir string, logger *slog.Logger) (*Exporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, f := range cfg.Formats {
		switch f {
		case types.FormatCSV, types.FormatXLSX, types.FormatSQLite, types.FormatManifest:
		default:
			return nil, fmt.Errorf("unknown export format %q", f)
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	e := &Exporter{cfg: cfg, cspAlpha: cspAlpha, log: logger}
	if e.Enabled(types.FormatSQLite) {
		store, err := NewStore(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		runID, err := store.NewRun(ctx, spectraDir)
		if err != nil {
			store.Close()
			return nil, err
		}
		e.store, e.runID = store, runID
		logger.Info("recording run", "run_id", runID)
	}
	return e, nil
}

// Enabled reports whether f is one of the configured formats.
func (e *Exporter) Enabled(f types.ExportFormat) bool {
	return slices.Contains(e.cfg.Formats, f)
}

// RunID returns the store run id, or "" when the sqlite format is off.
func (e *Exporter) RunID() string {
	return e.runID
}

// Summary returns the counts accumulated so far.
func (e *Exporter) Summary() Summary {
	return e.summary
}

// ExportDict writes every series of d, in label order, under origin.
func (e *Exporter) ExportDict(ctx context.Context, origin string, d series.Dict) error {
	for _, s := range dictSeries(d) {
		if err := e.Export(ctx, origin, s); err != nil {
			return err
		}
	}
	return nil
}

// Export writes s to the file formats under output_dir/origin/ and to the
// store.
func (e *Exporter) Export(ctx context.Context, origin string, s *series.Series) error {
	dir := filepath.Join(e.cfg.OutputDir, origin)
	if e.Enabled(types.FormatCSV) || e.Enabled(types.FormatXLSX) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	if e.Enabled(types.FormatCSV) {
		path := filepath.Join(dir, s.Name()+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		err = WriteCSV(f, s, e.cspAlpha)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		e.summary.Files++
	}

	if e.Enabled(types.FormatXLSX) {
		if err := WriteXLSX(filepath.Join(dir, s.Name()+".xlsx"), s); err != nil {
			return err
		}
		e.summary.Files++
	}

	if e.store != nil {
		if err := e.store.SaveSeries(ctx, e.runID, origin, s); err != nil {
			return err
		}
		e.summary.Stored++
	}

	e.summary.Series++
	e.log.Debug("exported series", "origin", origin, "series", s.Name(), "items", s.Len())
	return nil
}

// WriteManifest writes m to output_dir/manifest.yaml when the manifest
// format is enabled.
func (e *Exporter) WriteManifest(m *Manifest) error {
	if !e.Enabled(types.FormatManifest) {
		return nil
	}
	if err := WriteManifest(filepath.Join(e.cfg.OutputDir, manifestFile), m); err != nil {
		return err
	}
	e.summary.Files++
	return nil
}

// Close releases the store, if open.
func (e *Exporter) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}
