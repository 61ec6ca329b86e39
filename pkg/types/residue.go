// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

var threeToOne = map[string]string{
	"ALA": "A", "ARG": "R", "ASN": "N", "ASP": "D", "CYS": "C",
	"GLN": "Q", "GLU": "E", "GLY": "G", "HIS": "H", "ILE": "I",
	"LEU": "L", "LYS": "K", "MET": "M", "PHE": "F", "PRO": "P",
	"SER": "S", "THR": "T", "TRP": "W", "TYR": "Y", "VAL": "V",
}

var oneToThree = func() map[string]string {
	m := make(map[string]string, len(threeToOne))
	for three, one := range threeToOne {
		m[one] = three[:1] + strings.ToLower(three[1:])
	}
	return m
}()

// OneLetter returns the 1-letter code for a 3-letter residue code, or "X".
func OneLetter(three string) string {
	if one, ok := threeToOne[strings.ToUpper(three)]; ok {
		return one
	}
	return "X"
}

// ThreeLetter returns the capitalized 3-letter code (e.g. "Lys") for a
// 1-letter code, or "" when the code is unknown.
func ThreeLetter(one string) string {
	return oneToThree[strings.ToUpper(one)]
}
