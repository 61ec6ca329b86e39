// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/peakcube/internal/coords"
	"github.com/pdiddy/peakcube/internal/cube"
	"github.com/pdiddy/peakcube/internal/series"
	"github.com/pdiddy/peakcube/pkg/types"
)

// Manifest describes one run: its coordinate space, the shift corrections
// applied, and every series built.
type Manifest struct {
	Axes        []AxisEntry       `yaml:"axes"`
	Corrections []CorrectionEntry `yaml:"corrections,omitempty"`
	Series      []SeriesEntry     `yaml:"series"`
}

// AxisEntry is the label set of one axis.
type AxisEntry struct {
	Axis      string   `yaml:"axis"`
	Labels    []string `yaml:"labels"`
	Reference string   `yaml:"reference"`
	HasPoints bool     `yaml:"has_points"`
}

// CorrectionEntry is the shift offset subtracted from one table.
type CorrectionEntry struct {
	Z  string  `yaml:"z"`
	Y  string  `yaml:"y"`
	X  string  `yaml:"x"`
	F1 float64 `yaml:"f1"`
	F2 float64 `yaml:"f2"`
}

// SeriesEntry summarizes one series.
type SeriesEntry struct {
	Name     string   `yaml:"name"`
	Origin   string   `yaml:"origin"`
	Kind     string   `yaml:"kind"`
	Axis     string   `yaml:"axis"`
	PrevDim  string   `yaml:"prev_dim"`
	NextDim  string   `yaml:"next_dim"`
	Items    []string `yaml:"items"`
	Residues int      `yaml:"residues"`
}

// NewManifest records space and the corrections of a cube (nil when shift
// correction did not run).
func NewManifest(space coords.Space, corrections map[string]map[string]map[string]cube.Correction) *Manifest {
	m := &Manifest{}
	for _, a := range types.Axes {
		m.Axes = append(m.Axes, AxisEntry{
			Axis:      a.String(),
			Labels:    space.Labels(a),
			Reference: space.Ref(a),
			HasPoints: space.Has(a),
		})
	}
	for _, z := range sortedKeys(corrections) {
		for _, y := range sortedKeys(corrections[z]) {
			for _, x := range sortedKeys(corrections[z][y]) {
				c := corrections[z][y][x]
				m.Corrections = append(m.Corrections, CorrectionEntry{Z: z, Y: y, X: x, F1: c.F1, F2: c.F2})
			}
		}
	}
	return m
}

// AddDict records every series of d under origin, in label order.
func (m *Manifest) AddDict(origin string, d series.Dict) {
	for _, s := range dictSeries(d) {
		m.Series = append(m.Series, SeriesEntry{
			Name:     s.Name(),
			Origin:   origin,
			Kind:     s.Kind.String(),
			Axis:     s.Axis.String(),
			PrevDim:  s.PrevLabel,
			NextDim:  s.NextLabel,
			Items:    s.Items,
			Residues: len(s.Keys()),
		})
	}
}

// AddComparison records the next and previous dimension comparisons of c.
func (m *Manifest) AddComparison(c *series.Comparator) {
	m.AddDict(ComparisonOrigin(c.Self, "next_dim"), series.Dict(c.NextDim))
	m.AddDict(ComparisonOrigin(c.Self, "prev_dim"), series.Dict(c.PrevDim))
}

// WriteManifest writes m as YAML to path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}

// ComparisonOrigin names the comparisons of series built along self.
func ComparisonOrigin(self types.Axis, dim string) string {
	return self.String() + "_" + dim
}

func dictSeries(d series.Dict) []*series.Series {
	var out []*series.Series
	for _, p := range sortedKeys(d) {
		for _, n := range sortedKeys(d[p]) {
			if s := d[p][n]; s != nil {
				out = append(out, s)
			}
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
