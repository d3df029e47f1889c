package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapacityOverride(t *testing.T) {
	vehicleType, min, max, err := ParseCapacityOverride(" Truck :2:60")
	require.NoError(t, err)
	assert.Equal(t, "truck", vehicleType)
	assert.Equal(t, 2.0, min)
	assert.Equal(t, 60.0, max)
}

func TestParseCapacityOverrideRejectsBadEntries(t *testing.T) {
	for _, entry := range []string{"truck", "truck:2", "truck:a:b", "truck:0:10", "truck:10:2"} {
		_, _, _, err := ParseCapacityOverride(entry)
		assert.Error(t, err, entry)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/fleet_test")
	t.Setenv("JWT_ACCESS_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 7090, cfg.HTTP.Port)
	assert.Equal(t, "24h", cfg.Auth.AccessTTL)
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}
