// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cube holds the nested z → y → x collection of peak tables of an
// experiment, aligns their residue indexes, and exposes the dense view that
// series are sliced from.
//
// The operations form a strict pipeline: Load, SplitIdentity, optionally
// CorrectShifts, ExpandAxis, FindMissing, FindUnassigned, then InitDenseView.
package cube

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/peakcube/internal/coords"
	"github.com/pdiddy/peakcube/pkg/types"
)

const defaultWorkers = 4

// PeakListExts lists the file extensions Discover accepts as peak lists.
var PeakListExts = []string{".csv", ".tsv", ".txt"}

// Parser converts one peak-list file into a PeakTable.
type Parser interface {
	Parse(path string) (*types.PeakTable, error)
}

// Hierarchy maps z → y → x labels to tables.
type Hierarchy map[string]map[string]map[string]*types.PeakTable

// Correction is the chemical shift offset subtracted from one table.
type Correction struct {
	F1 float64 `json:"f1" yaml:"f1"`
	F2 float64 `json:"f2" yaml:"f2"`
}

// Cube is the complete collection of peak tables of one experiment.
type Cube struct {
	Space coords.Space

	parser      Parser
	workers     int
	log         *slog.Logger
	tables      map[types.ResonanceKind]Hierarchy
	corrections map[string]map[string]map[string]Correction
}

// New returns an empty cube. A nil logger uses slog.Default.
func New(parser Parser, workers int, logger *slog.Logger) *Cube {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cube{
		parser:  parser,
		workers: workers,
		log:     logger,
		tables:  make(map[types.ResonanceKind]Hierarchy),
	}
}

// Discover lists the peak-list files under root laid out as z/y/x.<ext>,
// relative to root and sorted. Hidden files and directories are skipped, as
// are files whose extension is not in PeakListExts.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !slices.Contains(PeakListExts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if len(strings.Split(filepath.ToSlash(rel), "/")) == 3 {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering peak lists in %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

type leaf struct {
	z, y, x string
	path    string
}

// Load groups files (relative to root, laid out as z/y/x.<ext>) into the
// hierarchy of kind, derives the coordinate space and parses every file.
// Axis coherence is checked before any file is read.
func (c *Cube) Load(ctx context.Context, kind types.ResonanceKind, root string, files []string) error {
	leaves := make([]leaf, 0, len(files))
	tree := make(map[string]map[string][]string)
	seen := make(map[string]string, len(files))

	for _, f := range files {
		parts := strings.Split(filepath.ToSlash(f), "/")
		if len(parts) != 3 {
			return fmt.Errorf("peak list %s: want z/y/x layout", f)
		}
		z, y := parts[0], parts[1]
		x := strings.TrimSuffix(parts[2], filepath.Ext(parts[2]))

		id := condition(z, y, x)
		if prev, dup := seen[id]; dup {
			return fmt.Errorf("peak lists %s and %s share condition %s", prev, f, id)
		}
		seen[id] = f

		if tree[z] == nil {
			tree[z] = make(map[string][]string)
		}
		tree[z][y] = append(tree[z][y], x)
		leaves = append(leaves, leaf{z: z, y: y, x: x, path: filepath.Join(root, f)})
	}

	space, err := coords.Derive(tree)
	if err != nil {
		return fmt.Errorf("deriving coordinates: %w", err)
	}

	results := make([]*types.PeakTable, len(leaves))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, lf := range leaves {
		i, lf := i, lf
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, err := c.parser.Parse(lf.path)
			if err != nil {
				return err
			}
			if len(t.Rows) == 0 && !t.Header {
				return &EmptyTableError{Path: lf.path}
			}
			t.Name = lf.x
			results[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("loading %s peak lists: %w", kind, err)
	}

	h := make(Hierarchy)
	for i, lf := range leaves {
		h.set(lf.z, lf.y, lf.x, results[i])
	}

	c.Space = space
	c.tables[kind] = h
	c.log.Info("loaded peak lists",
		"kind", kind.String(), "tables", len(leaves),
		"z", len(space.ZZ), "y", len(space.YY), "x", len(space.XX))
	return nil
}

// Table returns the table of kind at (z, y, x), or nil.
func (c *Cube) Table(kind types.ResonanceKind, z, y, x string) *types.PeakTable {
	return c.tables[kind].get(z, y, x)
}

// Has reports whether tables of kind exist.
func (c *Cube) Has(kind types.ResonanceKind) bool {
	return c.tables[kind] != nil
}

// Corrections returns the shift corrections applied per z → y → x, or nil
// when CorrectShifts has not run.
func (c *Cube) Corrections() map[string]map[string]map[string]Correction {
	return c.corrections
}

// each calls fn for every (z, y, x) in sorted label order.
func (c *Cube) each(fn func(z, y, x string) error) error {
	for _, z := range c.Space.ZZ {
		for _, y := range c.Space.YY {
			for _, x := range c.Space.XX {
				if err := fn(z, y, x); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Cube) hierarchy(kind types.ResonanceKind) (Hierarchy, error) {
	h := c.tables[kind]
	if h == nil {
		return nil, fmt.Errorf("%s: %w", kind, ErrNotLoaded)
	}
	return h, nil
}

func (h Hierarchy) get(z, y, x string) *types.PeakTable {
	return h[z][y][x]
}

func (h Hierarchy) set(z, y, x string, t *types.PeakTable) {
	if h[z] == nil {
		h[z] = make(map[string]map[string]*types.PeakTable)
	}
	if h[z][y] == nil {
		h[z][y] = make(map[string]*types.PeakTable)
	}
	h[z][y][x] = t
}
