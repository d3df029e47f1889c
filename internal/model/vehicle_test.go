package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "MH12AB1234", NormalizePlate("mh 12 ab 1234"))
	assert.Equal(t, "KA05X9876", NormalizePlate(" ka05 x 9876 "))
}

func TestValidPlate(t *testing.T) {
	valid := []string{"MH12AB1234", "ka 05 x 9876", "DL1CAB4321"}
	for _, plate := range valid {
		assert.True(t, ValidPlate(plate), plate)
	}

	invalid := []string{"", "1234", "MHAB1234", "MH12AB123", "MH12AB12345"}
	for _, plate := range invalid {
		assert.False(t, ValidPlate(plate), plate)
	}
}

func TestCapacityRangeFor(t *testing.T) {
	r, ok := CapacityRangeFor(VehicleTypeVan)
	require.True(t, ok)
	assert.Equal(t, 2.0, r.Min)
	assert.Equal(t, 8.0, r.Max)

	_, ok = CapacityRangeFor(VehicleType("hovercraft"))
	assert.False(t, ok)
}

func TestOverrideCapacityRange(t *testing.T) {
	original, ok := CapacityRangeFor(VehicleTypeTipper)
	require.True(t, ok)
	defer OverrideCapacityRange(VehicleTypeTipper, original)

	OverrideCapacityRange(VehicleTypeTipper, CapacityRange{Min: 1, Max: 100})
	r, ok := CapacityRangeFor(VehicleTypeTipper)
	require.True(t, ok)
	assert.Equal(t, 100.0, r.Max)
}

func TestParseVehicleType(t *testing.T) {
	got, ok := ParseVehicleType(" Compactor ")
	require.True(t, ok)
	assert.Equal(t, VehicleTypeCompactor, got)

	_, ok = ParseVehicleType("boat")
	assert.False(t, ok)
}
