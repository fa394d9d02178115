package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "floodrisk.db", cfg.DBPath)
	assert.True(t, cfg.SynthesizeOccurrences)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.False(t, cfg.ForwardFill)
	assert.False(t, cfg.Interpolate)

	riskCfg := cfg.RiskConfig()
	require.NoError(t, riskCfg.Validate())
	assert.Equal(t, 50.0, riskCfg.Rainfall.Intense)
	assert.Equal(t, 1.2, riskCfg.Tide.High)
	assert.Equal(t, 0.35, riskCfg.Weights.Rainfall)
	assert.Equal(t, 200.0, riskCfg.MaxRainfallMM)
	assert.Equal(t, 3.0, riskCfg.MaxTideM)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("SEED", "7")
	t.Setenv("RAIN_INTENSE_MM", "60")
	t.Setenv("FORWARD_FILL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(7), cfg.Seed)
	assert.Equal(t, 60.0, cfg.RiskConfig().Rainfall.Intense)
	assert.True(t, cfg.ForwardFill)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("bad log format", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "xml")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_FORMAT")
	})

	t.Run("non-positive shutdown timeout", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT", "0s")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("inconsistent risk bands", func(t *testing.T) {
		t.Setenv("RAIN_STRONG_MM", "80")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("unparsable env value", func(t *testing.T) {
		t.Setenv("SEED", "not-a-number")
		_, err := Load()
		require.Error(t, err)
	})
}
