// Package risk computes the composite flood-risk score for a neighborhood
// day. Scoring is a pure function of the row and the configuration: no
// randomness, no clock, no I/O.
package risk

import (
	"math"

	"github.com/recifesafe/floodrisk-etl/internal/domain"
)

// RainfallBands are the lower boundaries of the moderate, strong, and
// intense precipitation bands, in millimeters. Bands are half-open [lo, hi):
// below Moderate is "light", exactly Intense is "intense".
type RainfallBands struct {
	Moderate float64 // default 10
	Strong   float64 // default 25
	Intense  float64 // default 50
}

// TideBands are the lower boundaries of the elevated and high tide bands, in
// meters.
type TideBands struct {
	Elevated float64 // default 0.8
	High     float64 // default 1.2
}

// Weights blend the normalized inputs into the composite score. Interaction
// applies only when rainfall is at or above the strong band while the tide
// is at or above the elevated band: combined conditions multiply risk
// beyond the additive effect.
type Weights struct {
	Rainfall      float64
	Tide          float64
	Vulnerability float64
	Occurrences   float64
	Interaction   float64
}

// ScoreBands classify the final score: below Moderate is "low", below High
// is "moderate", otherwise "high".
type ScoreBands struct {
	Moderate float64 // default 0.5
	High     float64 // default 0.7
}

// Config holds every threshold and weight the scorer uses. It is plain
// configuration: load once, pass by value, never mutate.
type Config struct {
	Rainfall RainfallBands
	Tide     TideBands
	Score    ScoreBands
	Weights  Weights

	// OccurrenceCap normalizes the occurrence count; counts at or above the
	// cap contribute the full occurrence weight.
	OccurrenceCap int

	// Input caps bound physically implausible measurements before
	// normalization. Values above the cap are treated as the cap.
	MaxRainfallMM float64 // default 200
	MaxTideM      float64 // default 3
}

// DefaultConfig returns the operational thresholds the dataset was
// calibrated with.
func DefaultConfig() Config {
	return Config{
		Rainfall: RainfallBands{Moderate: 10, Strong: 25, Intense: 50},
		Tide:     TideBands{Elevated: 0.8, High: 1.2},
		Score:    ScoreBands{Moderate: 0.5, High: 0.7},
		Weights: Weights{
			Rainfall:      0.35,
			Tide:          0.25,
			Vulnerability: 0.30,
			Occurrences:   0.10,
			Interaction:   0.15,
		},
		OccurrenceCap: 5,
		MaxRainfallMM: 200,
		MaxTideM:      3,
	}
}

// Validate checks internal consistency of the configuration.
func (c Config) Validate() error {
	if !(c.Rainfall.Moderate < c.Rainfall.Strong && c.Rainfall.Strong < c.Rainfall.Intense) {
		return domain.ConfigErrorf("rainfall bands must be strictly ascending: %v", c.Rainfall)
	}
	if c.Rainfall.Moderate < 0 {
		return domain.ConfigErrorf("rainfall bands must be non-negative")
	}
	if !(c.Tide.Elevated < c.Tide.High) {
		return domain.ConfigErrorf("tide bands must be strictly ascending: %v", c.Tide)
	}
	if !(0 < c.Score.Moderate && c.Score.Moderate < c.Score.High && c.Score.High <= 1) {
		return domain.ConfigErrorf("score bands must satisfy 0 < moderate < high <= 1: %v", c.Score)
	}
	for _, w := range []float64{c.Weights.Rainfall, c.Weights.Tide, c.Weights.Vulnerability, c.Weights.Occurrences, c.Weights.Interaction} {
		if w < 0 {
			return domain.ConfigErrorf("weights must be non-negative: %+v", c.Weights)
		}
	}
	if c.OccurrenceCap <= 0 {
		return domain.ConfigErrorf("occurrence cap must be positive, got %d", c.OccurrenceCap)
	}
	if c.MaxRainfallMM < c.Rainfall.Intense {
		return domain.ConfigErrorf("rainfall cap %.1fmm below the intense band %.1fmm", c.MaxRainfallMM, c.Rainfall.Intense)
	}
	if c.MaxTideM < c.Tide.High {
		return domain.ConfigErrorf("tide cap %.2fm below the high band %.2fm", c.MaxTideM, c.Tide.High)
	}
	return nil
}

// Scorer scores neighborhood days against one immutable configuration.
type Scorer struct {
	cfg Config
}

// NewScorer validates the configuration and returns a Scorer.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score computes the composite risk score in [0, 1]. Negative rainfall or
// tide fails with a validation error rather than clamping: negative values
// mean the upstream normalizer misbehaved, and clamping would hide that.
func (s *Scorer) Score(day domain.NeighborhoodDay) (float64, error) {
	if day.RainfallMM < 0 {
		return 0, domain.ValidationErrorf("%s %s: negative rainfall %.2fmm",
			day.NeighborhoodID, day.Date.Format("2006-01-02"), day.RainfallMM)
	}
	if day.TideM < 0 {
		return 0, domain.ValidationErrorf("%s %s: negative tide %.3fm",
			day.NeighborhoodID, day.Date.Format("2006-01-02"), day.TideM)
	}
	if day.Vulnerability < 0 || day.Vulnerability > 1 {
		return 0, domain.ValidationErrorf("%s %s: vulnerability %.3f outside [0,1]",
			day.NeighborhoodID, day.Date.Format("2006-01-02"), day.Vulnerability)
	}
	if day.Occurrences < 0 {
		return 0, domain.ValidationErrorf("%s %s: negative occurrence count %d",
			day.NeighborhoodID, day.Date.Format("2006-01-02"), day.Occurrences)
	}

	cfg := s.cfg
	rain := math.Min(day.RainfallMM, cfg.MaxRainfallMM)
	tide := math.Min(day.TideM, cfg.MaxTideM)
	nr := clamp01(rain / cfg.Rainfall.Intense)
	nt := clamp01(tide / cfg.Tide.High)
	nocc := clamp01(float64(day.Occurrences) / float64(cfg.OccurrenceCap))

	score := cfg.Weights.Rainfall*nr +
		cfg.Weights.Tide*nt +
		cfg.Weights.Vulnerability*day.Vulnerability +
		cfg.Weights.Occurrences*nocc

	if day.RainfallMM >= cfg.Rainfall.Strong && day.TideM >= cfg.Tide.Elevated {
		score += cfg.Weights.Interaction * nr * nt
	}

	return clamp01(score), nil
}

// Band classifies a score into "low", "moderate", or "high".
func (s *Scorer) Band(score float64) string {
	switch {
	case score < s.cfg.Score.Moderate:
		return "low"
	case score < s.cfg.Score.High:
		return "moderate"
	default:
		return "high"
	}
}

// RainfallBand classifies a precipitation amount into its documented band.
// Boundaries are half-open: exactly 50.0mm is "intense".
func (s *Scorer) RainfallBand(mm float64) string {
	switch {
	case mm < s.cfg.Rainfall.Moderate:
		return "light"
	case mm < s.cfg.Rainfall.Strong:
		return "moderate"
	case mm < s.cfg.Rainfall.Intense:
		return "strong"
	default:
		return "intense"
	}
}

// TideBand classifies a tide height into "normal", "elevated", or "high".
func (s *Scorer) TideBand(m float64) string {
	switch {
	case m < s.cfg.Tide.Elevated:
		return "normal"
	case m < s.cfg.Tide.High:
		return "elevated"
	default:
		return "high"
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
