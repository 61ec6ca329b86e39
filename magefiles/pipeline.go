//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Run builds the CLI and runs it over spectra/ with the project config.
func Run() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "run", "spectra")
}

// Coords builds the CLI and prints the coordinate space of spectra/.
func Coords() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "coords", "spectra")
}
