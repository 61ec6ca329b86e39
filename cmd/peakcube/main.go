// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the peakcube CLI.
// peakcube loads a directory of NMR peak lists laid out as z/y/x, aligns
// their residue indexes and writes the series extracted along each axis.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/peakcube/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the peakcube CLI.
var rootCmd = &cobra.Command{
	Use:   "peakcube",
	Short: "Align NMR peak lists and extract titration series",
	Long: `peakcube reads CCPN peak lists organized as <z>/<y>/<x>.csv, one file per
experimental condition. It aligns every table on a shared residue index,
optionally corrects chemical shifts against a reference residue, and slices
the aligned cube into series along the X, Y and Z axes.

Series are written as CSV, XLSX or into a SQLite database, together with a
YAML manifest of the run.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := types.DefaultRunConfig()
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./peakcube.yaml or ~/.config/peakcube/peakcube.yaml)")
	rootCmd.PersistentFlags().String("log-level", defaults.Logging.Level, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", defaults.Logging.Format, "log format: text or json")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("peakcube")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "peakcube"))
		}
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureEnv maps every config key to a PEAKCUBE_ variable; nested keys
// such as axes.x read PEAKCUBE_AXES_X.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("PEAKCUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// loadConfig merges the config file, environment and bound flags over
// DefaultRunConfig.
func loadConfig(v *viper.Viper) (types.RunConfig, error) {
	cfg := types.DefaultRunConfig()
	setDefaults(v, cfg)
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every key of cfg with v. AutomaticEnv only consults
// the environment for keys v already knows.
func setDefaults(v *viper.Viper, cfg types.RunConfig) {
	defaults := map[string]any{
		"spectra_dir":        cfg.Cube.SpectraDir,
		"workers":            cfg.Cube.Workers,
		"correct_shifts":     cfg.Cube.CorrectShifts,
		"ref_residue":        cfg.Cube.RefResidue,
		"expand_y":           cfg.Cube.ExpandY,
		"expand_z":           cfg.Cube.ExpandZ,
		"fasta_file":         cfg.Cube.FastaFile,
		"fasta_start":        cfg.Cube.FastaStart,
		"missing.status":     string(cfg.Cube.Missing.Status),
		"missing.merit":      cfg.Cube.Missing.Merit,
		"missing.details":    cfg.Cube.Missing.Details,
		"unassigned.status":  string(cfg.Cube.Unassigned.Status),
		"unassigned.merit":   cfg.Cube.Unassigned.Merit,
		"unassigned.details": cfg.Cube.Unassigned.Details,
		"axes.x":             cfg.Series.Axes.X,
		"axes.y":             cfg.Series.Axes.Y,
		"axes.z":             cfg.Series.Axes.Z,
		"csp_alpha":          cfg.Series.CSPAlpha,
		"output_dir":         cfg.Export.OutputDir,
		"formats":            formatNames(cfg.Export.Formats),
		"log_level":          cfg.Logging.Level,
		"log_format":         cfg.Logging.Format,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	// Condition values have no default; bind them so the environment is read.
	for _, key := range []string{"x_values", "y_values", "z_values"} {
		v.BindEnv(key)
	}
}

// newLogger builds a slog logger writing to w in the configured format.
func newLogger(cfg types.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
}

// parseLogLevel converts a level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
