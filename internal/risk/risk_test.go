package risk

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

func testDay(rain, tide, vuln float64, occ int) domain.NeighborhoodDay {
	return domain.NeighborhoodDay{
		NeighborhoodID: "Pina",
		Date:           time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
		RainfallMM:     rain,
		TideM:          tide,
		Vulnerability:  vuln,
		Occurrences:    occ,
	}
}

func TestScore(t *testing.T) {
	scorer, err := NewScorer(DefaultConfig())
	require.NoError(t, err)

	t.Run("extreme conditions classify high", func(t *testing.T) {
		score, err := scorer.Score(testDay(78, 1.35, 0.87, 3))
		require.NoError(t, err)
		assert.Equal(t, "high", scorer.Band(score))
		assert.LessOrEqual(t, score, 1.0)
	})

	t.Run("calm conditions classify low", func(t *testing.T) {
		score, err := scorer.Score(testDay(0, 0.5, 0.2, 0))
		require.NoError(t, err)
		assert.Equal(t, "low", scorer.Band(score))
		assert.InDelta(t, 0.25*(0.5/1.2)+0.30*0.2, score, 1e-9)
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		day := testDay(32.5, 0.95, 0.68, 1)
		first, err := scorer.Score(day)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := scorer.Score(day)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("interaction applies only when both hazards elevated", func(t *testing.T) {
		base, err := scorer.Score(testDay(30, 0.79, 0.5, 0))
		require.NoError(t, err)
		combined, err := scorer.Score(testDay(30, 0.80, 0.5, 0))
		require.NoError(t, err)

		// The tide step is 0.01m of the additive term plus the whole
		// interaction term switching on.
		nr := 30.0 / 50.0
		nt := 0.80 / 1.2
		expected := base + 0.25*(0.01/1.2) + 0.15*nr*nt
		assert.InDelta(t, expected, combined, 1e-9)
	})

	t.Run("score clamps to 1", func(t *testing.T) {
		score, err := scorer.Score(testDay(500, 4.0, 1.0, 20))
		require.NoError(t, err)
		assert.Equal(t, 1.0, score)
	})

	t.Run("occurrences capped at the configured cap", func(t *testing.T) {
		atCap, err := scorer.Score(testDay(5, 0.5, 0.3, 5))
		require.NoError(t, err)
		overCap, err := scorer.Score(testDay(5, 0.5, 0.3, 12))
		require.NoError(t, err)
		assert.Equal(t, atCap, overCap)
	})

	t.Run("validation failures", func(t *testing.T) {
		cases := []struct {
			name string
			day  domain.NeighborhoodDay
		}{
			{"negative rainfall", testDay(-1, 0.5, 0.5, 0)},
			{"negative tide", testDay(5, -0.1, 0.5, 0)},
			{"vulnerability above 1", testDay(5, 0.5, 1.2, 0)},
			{"negative occurrences", testDay(5, 0.5, 0.5, -1)},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := scorer.Score(tc.day)
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
			})
		}
	})
}

func TestRainfallBand(t *testing.T) {
	scorer, err := NewScorer(DefaultConfig())
	require.NoError(t, err)

	cases := []struct {
		mm   float64
		want string
	}{
		{0, "light"},
		{9.9, "light"},
		{10.0, "moderate"},
		{24.9, "moderate"},
		{25.0, "strong"},
		{49.9, "strong"},
		{50.0, "intense"},
		{120, "intense"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scorer.RainfallBand(tc.mm), "%.1fmm", tc.mm)
	}
}

func TestTideBand(t *testing.T) {
	scorer, err := NewScorer(DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, "normal", scorer.TideBand(0.79))
	assert.Equal(t, "elevated", scorer.TideBand(0.8))
	assert.Equal(t, "elevated", scorer.TideBand(1.19))
	assert.Equal(t, "high", scorer.TideBand(1.2))
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"rainfall bands out of order", func(c *Config) { c.Rainfall.Strong = 60 }},
		{"tide bands out of order", func(c *Config) { c.Tide.Elevated = 1.5 }},
		{"score high above 1", func(c *Config) { c.Score.High = 1.5 }},
		{"negative weight", func(c *Config) { c.Weights.Tide = -0.1 }},
		{"zero occurrence cap", func(c *Config) { c.OccurrenceCap = 0 }},
		{"rainfall cap below intense band", func(c *Config) { c.MaxRainfallMM = 40 }},
		{"tide cap below high band", func(c *Config) { c.MaxTideM = 1.0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrConfig))

			_, err = NewScorer(cfg)
			require.Error(t, err)
		})
	}
}
