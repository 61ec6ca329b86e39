// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Axis identifies one of the three experimental conditions.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every axis in nesting order, innermost first.
var Axes = []Axis{AxisX, AxisY, AxisZ}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Next returns the axis after a in the cycle x → y → z → x.
func (a Axis) Next() Axis {
	return (a + 1) % 3
}

// Prev returns the axis before a in the cycle x → y → z → x.
func (a Axis) Prev() Axis {
	return (a + 2) % 3
}

// ParseAxis converts "x", "y" or "z" into an Axis.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "x", "X":
		return AxisX, nil
	case "y", "Y":
		return AxisY, nil
	case "z", "Z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis %q: use x, y, or z", s)
}

// ResonanceKind separates backbone amide peaks from sidechain peaks.
type ResonanceKind int

const (
	Backbone ResonanceKind = iota
	Sidechain
)

// ResonanceKinds lists both kinds in processing order.
var ResonanceKinds = []ResonanceKind{Backbone, Sidechain}

func (k ResonanceKind) String() string {
	if k == Sidechain {
		return "sidechains"
	}
	return "backbone"
}
