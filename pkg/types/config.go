// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// AxesConfig activates series extraction per axis.
type AxesConfig struct {
	X bool `json:"x" yaml:"x" mapstructure:"x"`
	Y bool `json:"y" yaml:"y" mapstructure:"y"`
	Z bool `json:"z" yaml:"z" mapstructure:"z"`
}

// Active reports whether series along a were requested.
func (c AxesConfig) Active(a Axis) bool {
	switch a {
	case AxisX:
		return c.X
	case AxisY:
		return c.Y
	case AxisZ:
		return c.Z
	}
	return false
}

// CubeConfig holds settings for ingestion and alignment.
type CubeConfig struct {
	// SpectraDir contains the peak lists as z/y/x.<ext>.
	SpectraDir string `json:"spectra_dir" yaml:"spectra_dir" mapstructure:"spectra_dir"`

	// Workers bounds parallel parsing during ingestion (default 4).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// CorrectShifts enables chemical shift correction against RefResidue.
	CorrectShifts bool `json:"correct_shifts" yaml:"correct_shifts" mapstructure:"correct_shifts"`

	// RefResidue is the residue number used as the shift-correction anchor.
	RefResidue string `json:"ref_residue" yaml:"ref_residue" mapstructure:"ref_residue"`

	// ExpandY and ExpandZ propagate the residues of the axis reference point
	// to every other point of that axis.
	ExpandY bool `json:"expand_y" yaml:"expand_y" mapstructure:"expand_y"`
	ExpandZ bool `json:"expand_z" yaml:"expand_z" mapstructure:"expand_z"`

	// FastaFile is an optional reference sequence; FastaStart is the residue
	// number of its first letter.
	FastaFile  string `json:"fasta_file,omitempty" yaml:"fasta_file,omitempty" mapstructure:"fasta_file"`
	FastaStart int    `json:"fasta_start" yaml:"fasta_start" mapstructure:"fasta_start"`

	// Missing and Unassigned override the default fill policies.
	Missing    FillPolicy `json:"missing" yaml:"missing" mapstructure:"missing"`
	Unassigned FillPolicy `json:"unassigned" yaml:"unassigned" mapstructure:"unassigned"`
}

// SeriesConfig holds settings for series extraction and calculations.
type SeriesConfig struct {
	Axes AxesConfig `json:"axes" yaml:"axes" mapstructure:"axes"`

	// CSPAlpha weights the F2 (heteronuclear) dimension in CSP (default 0.14).
	CSPAlpha float64 `json:"csp_alpha" yaml:"csp_alpha" mapstructure:"csp_alpha"`

	// XValues, YValues and ZValues are the numeric condition values used by
	// the fitting strategy, in sorted label order.
	XValues []float64 `json:"x_values,omitempty" yaml:"x_values,omitempty" mapstructure:"x_values"`
	YValues []float64 `json:"y_values,omitempty" yaml:"y_values,omitempty" mapstructure:"y_values"`
	ZValues []float64 `json:"z_values,omitempty" yaml:"z_values,omitempty" mapstructure:"z_values"`
}

// Values returns the numeric condition values configured for a.
func (c SeriesConfig) Values(a Axis) []float64 {
	switch a {
	case AxisX:
		return c.XValues
	case AxisY:
		return c.YValues
	case AxisZ:
		return c.ZValues
	}
	return nil
}

// ExportFormat selects a series export target.
type ExportFormat string

const (
	FormatCSV      ExportFormat = "csv"
	FormatXLSX     ExportFormat = "xlsx"
	FormatSQLite   ExportFormat = "sqlite"
	FormatManifest ExportFormat = "manifest"
)

// ExportConfig holds settings for writing series to disk.
type ExportConfig struct {
	OutputDir string         `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
	Formats   []ExportFormat `json:"formats" yaml:"formats" mapstructure:"formats"`
}

// LoggingConfig holds log handler settings.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"log_level"`
	Format string `json:"format" yaml:"format" mapstructure:"log_format"`
}

// RunConfig groups all stage configurations for one analysis run.
type RunConfig struct {
	Cube    CubeConfig    `json:"cube" yaml:"cube" mapstructure:",squash"`
	Series  SeriesConfig  `json:"series" yaml:"series" mapstructure:",squash"`
	Export  ExportConfig  `json:"export" yaml:"export" mapstructure:",squash"`
	Logging LoggingConfig `json:"logging" yaml:"logging" mapstructure:",squash"`
}

// DefaultRunConfig returns the settings used when no config file is present.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Cube: CubeConfig{
			SpectraDir: "spectra",
			Workers:    4,
			RefResidue: "1",
			FastaStart: 1,
			Missing:    MissingFill,
			Unassigned: UnassignedFill,
		},
		Series: SeriesConfig{
			Axes:     AxesConfig{X: true, Y: true, Z: true},
			CSPAlpha: 0.14,
		},
		Export: ExportConfig{
			OutputDir: "output",
			Formats:   []ExportFormat{FormatCSV, FormatManifest},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
