package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/peakcube/internal/coords"
	"github.com/pdiddy/peakcube/internal/cube"
	"github.com/pdiddy/peakcube/internal/peaklist"
	"github.com/pdiddy/peakcube/pkg/types"
)

var coordsCmd = &cobra.Command{
	Use:   "coords [spectra-dir]",
	Short: "Print the coordinate space of a spectra directory",
	Long: `Coords loads the peak lists under the spectra directory and prints the
label set of each axis with its reference label. It fails when the directory
is not a complete z/y/x grid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCoords,
}

func init() {
	rootCmd.AddCommand(coordsCmd)
}

func runCoords(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Cube.SpectraDir = args[0]
	}
	logger, err := newLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return err
	}

	files, err := cube.Discover(cfg.Cube.SpectraDir)
	if err != nil {
		return err
	}
	c := cube.New(peaklist.Parser{}, cfg.Cube.Workers, logger)
	if err := c.Load(cmd.Context(), types.Backbone, cfg.Cube.SpectraDir, files); err != nil {
		return err
	}
	printSpace(os.Stdout, c.Space)
	return nil
}

func printSpace(w io.Writer, s coords.Space) {
	for _, a := range types.Axes {
		points := "single point"
		if s.Has(a) {
			points = fmt.Sprintf("%d points", len(s.Labels(a)))
		}
		fmt.Fprintf(w, "%s: %s (reference %s, %s)\n", a, strings.Join(s.Labels(a), " "), s.Ref(a), points)
	}
}
