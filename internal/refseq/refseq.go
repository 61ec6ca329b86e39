// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refseq builds reference tables from a protein sequence so residues
// never observed in any peak list can be reported as unassigned.
package refseq

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/peakcube/pkg/types"
)

// ErrEmptySequence is returned when a sequence holds no residues.
var ErrEmptySequence = errors.New("empty reference sequence")

// FromSequence returns a backbone-shaped reference table with one row per
// letter of seq, numbered from start. Unknown letters are an error.
func FromSequence(start int, seq string) (*types.PeakTable, error) {
	seq = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, seq)
	if seq == "" {
		return nil, ErrEmptySequence
	}

	table := &types.PeakTable{Name: "reference sequence", Header: true, Rows: make([]types.PeakRow, 0, len(seq))}
	for i, r := range seq {
		one := string(r)
		three := types.ThreeLetter(one)
		if three == "" {
			return nil, fmt.Errorf("unknown residue %q at position %d", one, i+1)
		}
		resNo := strconv.Itoa(start + i)
		table.Rows = append(table.Rows, types.PeakRow{
			ResNo:       resNo,
			OneLetter:   one,
			ThreeLetter: three,
			AssignF1:    resNo + three + "H",
			AssignF2:    resNo + three + "N",
		})
	}
	return table, nil
}

// ReadFASTA returns the concatenated sequence of the first record in a FASTA
// file. Header and comment lines are skipped.
func ReadFASTA(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening FASTA file: %w", err)
	}
	defer f.Close()

	var (
		sb      strings.Builder
		headers int
	)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "", strings.HasPrefix(line, ";"):
			continue
		case strings.HasPrefix(line, ">"):
			headers++
			if headers > 1 {
				return sb.String(), nil
			}
			continue
		}
		sb.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading FASTA file: %w", err)
	}
	if sb.Len() == 0 {
		return "", ErrEmptySequence
	}
	return sb.String(), nil
}

// Load reads a FASTA file and builds its reference table.
func Load(path string, start int) (*types.PeakTable, error) {
	seq, err := ReadFASTA(path)
	if err != nil {
		return nil, err
	}
	return FromSequence(start, seq)
}
