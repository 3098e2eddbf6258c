package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVaryFlagsParsesMultipleDimensions(t *testing.T) {
	dims, err := parseVaryFlags([]string{"vial.av=3,4", "n_vial=100,200,300"})
	require.NoError(t, err)
	require.Len(t, dims, 2)
	assert.Equal(t, "vial.av", dims[0].Path)
	assert.Len(t, dims[0].Values, 2)
	assert.Equal(t, "n_vial", dims[1].Path)
	assert.Len(t, dims[1].Values, 3)
}

func TestParseVaryFlagsTrimsWhitespaceInValues(t *testing.T) {
	dims, err := parseVaryFlags([]string{"vial.av= 3 , 4 "})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, dims[0].Values)
}

func TestParseVaryFlagsRejectsMissingEquals(t *testing.T) {
	_, err := parseVaryFlags([]string{"vial.av"})
	assert.Error(t, err)
}

func TestParseVaryFlagsRejectsNonNumericValue(t *testing.T) {
	_, err := parseVaryFlags([]string{"vial.av=abc"})
	assert.Error(t, err)
}

func TestParseVaryFlagsEmptyInputYieldsNoDimensions(t *testing.T) {
	dims, err := parseVaryFlags(nil)
	require.NoError(t, err)
	assert.Len(t, dims, 0)
}
