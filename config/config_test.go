package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("DB_PATH", "")
	t.Setenv("CURVE_SAMPLES", "")
	t.Setenv("SIMPLIFY_EPSILON", "")
	t.Setenv("PROXIMITY_EPSILON", "")
	t.Setenv("SNAP_RADIUS", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "token", cfg.TelegramToken)
	require.Equal(t, "oring.db", cfg.DBPath)
	require.Equal(t, 1000, cfg.CurveSamples)
	require.Equal(t, 1.0, cfg.SimplifyEpsilon)
	require.Equal(t, 3.0, cfg.ProximityEpsilon)
	require.Equal(t, 5.0, cfg.SnapRadius)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CURVE_SAMPLES", "500")
	t.Setenv("SIMPLIFY_EPSILON", "2.5")
	t.Setenv("RDMS_NUMBER", "1234")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 500, cfg.CurveSamples)
	require.Equal(t, 2.5, cfg.SimplifyEpsilon)
	require.Equal(t, "1234", cfg.RDMSProjectNumber)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CURVE_SAMPLES", "many")
	_, err := Load()
	require.ErrorContains(t, err, "CURVE_SAMPLES")

	t.Setenv("CURVE_SAMPLES", "")
	t.Setenv("SNAP_RADIUS", "-1")
	_, err = Load()
	require.ErrorContains(t, err, "SNAP_RADIUS")
}
