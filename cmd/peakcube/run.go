package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/peakcube/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run [spectra-dir]",
	Short: "Align peak lists and export series along each axis",
	Long: `Run loads every peak list under the spectra directory (laid out as
<z>/<y>/<x>.csv), splits backbone and sidechain resonances, optionally
corrects chemical shifts, fills missing residues, and builds series and
cross-axis comparisons along the requested axes. Results are written to the
output directory in the configured formats.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	d := types.DefaultRunConfig()
	f := runCmd.Flags()
	f.Int("workers", d.Cube.Workers, "number of peak lists parsed in parallel")
	f.Bool("correct-shifts", d.Cube.CorrectShifts, "correct chemical shifts against the reference residue")
	f.String("ref-residue", d.Cube.RefResidue, "residue number anchoring shift correction")
	f.Bool("expand-y", d.Cube.ExpandY, "propagate residues of the Y reference to every Y point")
	f.Bool("expand-z", d.Cube.ExpandZ, "propagate residues of the Z reference to every Z point")
	f.String("fasta", d.Cube.FastaFile, "reference sequence used to tag unassigned residues")
	f.Int("fasta-start", d.Cube.FastaStart, "residue number of the first sequence letter")
	f.Float64("csp-alpha", d.Series.CSPAlpha, "weight of the F2 dimension in CSP")
	f.String("output-dir", d.Export.OutputDir, "directory for exported series")
	f.StringSlice("formats", formatNames(d.Export.Formats), "export formats: csv, xlsx, sqlite, manifest")
	f.StringSlice("axes", nil, "axes to build series along (default: x,y,z)")

	bind := map[string]string{
		"workers":        "workers",
		"correct_shifts": "correct-shifts",
		"ref_residue":    "ref-residue",
		"expand_y":       "expand-y",
		"expand_z":       "expand-z",
		"fasta_file":     "fasta",
		"fasta_start":    "fasta-start",
		"csp_alpha":      "csp-alpha",
		"output_dir":     "output-dir",
		"formats":        "formats",
	}
	for key, flag := range bind {
		viper.BindPFlag(key, f.Lookup(flag))
	}

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Cube.SpectraDir = args[0]
	}
	if cmd.Flags().Changed("axes") {
		names, _ := cmd.Flags().GetStringSlice("axes")
		axes, err := parseAxes(names)
		if err != nil {
			return err
		}
		cfg.Series.Axes = axes
	}

	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	summary, err := runPipeline(cmd.Context(), cfg, logger, os.Stdout)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Run complete: %d tables, %d series, %d comparisons, %d residue fits, %d files written\n",
		summary.Tables, summary.Series, summary.Comparisons, summary.Fits, summary.Export.Files)
	return nil
}

func parseAxes(names []string) (types.AxesConfig, error) {
	var axes types.AxesConfig
	for _, n := range names {
		a, err := types.ParseAxis(strings.TrimSpace(n))
		if err != nil {
			return axes, err
		}
		switch a {
		case types.AxisX:
			axes.X = true
		case types.AxisY:
			axes.Y = true
		case types.AxisZ:
			axes.Z = true
		}
	}
	return axes, nil
}

func formatNames(formats []types.ExportFormat) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
