// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package coords

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/peakcube/pkg/types"
)

func TestDerive(t *testing.T) {
	tree := map[string]map[string][]string{
		"para": {"298": {"l2", "l1", "l3"}, "278": {"l3", "l1", "l2"}},
		"dia":  {"278": {"l1", "l2", "l3"}, "298": {"l1", "l3", "l2"}},
	}

	s, err := Derive(tree)
	require.NoError(t, err)

	assert.Equal(t, []string{"l1", "l2", "l3"}, s.XX)
	assert.Equal(t, []string{"278", "298"}, s.YY)
	assert.Equal(t, []string{"dia", "para"}, s.ZZ)
	assert.Equal(t, "l1", s.XRef)
	assert.Equal(t, "278", s.YRef)
	assert.Equal(t, "dia", s.ZRef)
	assert.True(t, s.HasXX)
	assert.True(t, s.HasYY)
	assert.True(t, s.HasZZ)
}

func TestDeriveReferenceIsLexicographicallyFirst(t *testing.T) {
	tree := map[string]map[string][]string{
		"z": {"y": {"10", "9", "100"}},
	}

	s, err := Derive(tree)
	require.NoError(t, err)
	assert.Equal(t, "10", s.XRef, "labels compare as strings, not numbers")
	assert.Equal(t, []string{"10", "100", "9"}, s.XX)
}

func TestDeriveSingleLabelAxes(t *testing.T) {
	s, err := Derive(map[string]map[string][]string{
		"z": {"y": {"a", "b", "a"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, s.XX)
	assert.True(t, s.Has(types.AxisX))
	assert.False(t, s.Has(types.AxisY))
	assert.False(t, s.Has(types.AxisZ))
	assert.Equal(t, 1, s.Index(types.AxisX, "b"))
	assert.Equal(t, -1, s.Index(types.AxisX, "c"))
}

func TestDeriveIncoherent(t *testing.T) {
	tests := []struct {
		name string
		tree map[string]map[string][]string
		axis types.Axis
	}{
		{
			name: "y label missing under one z",
			tree: map[string]map[string][]string{
				"dia":  {"278": {"l1"}, "298": {"l1"}},
				"para": {"278": {"l1"}},
			},
			axis: types.AxisY,
		},
		{
			name: "x label set differs",
			tree: map[string]map[string][]string{
				"dia": {"278": {"l1", "l2"}, "298": {"l1", "l3"}},
			},
			axis: types.AxisX,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(tt.tree)
			var incoherent *IncoherentAxisError
			require.ErrorAs(t, err, &incoherent)
			assert.Equal(t, tt.axis, incoherent.Axis)
		})
	}
}

func TestDeriveEmpty(t *testing.T) {
	_, err := Derive(nil)
	assert.True(t, errors.Is(err, ErrNoConditions))

	_, err = Derive(map[string]map[string][]string{"z": {"y": nil}})
	assert.ErrorIs(t, err, ErrNoConditions)
}
