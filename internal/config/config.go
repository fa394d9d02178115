// Package config loads service settings from environment variables, with
// an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/recifesafe/floodrisk-etl/internal/risk"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR"         envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL"         envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"        envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"  envDefault:"10s"`

	DBPath string `env:"DB_PATH" envDefault:"floodrisk.db"`

	// Reference data overrides. When empty, the built-in Recife tables
	// are used.
	NeighborhoodsPath string `env:"NEIGHBORHOODS_CSV"`
	StationsPath      string `env:"STATIONS_CSV"`

	// Gap handling for the aggregation step.
	ForwardFill bool `env:"FORWARD_FILL" envDefault:"false"`
	Interpolate bool `env:"INTERPOLATE"  envDefault:"false"`

	// Occurrence synthesis when no occurrence file is provided.
	SynthesizeOccurrences bool  `env:"SYNTHESIZE_OCCURRENCES" envDefault:"true"`
	Seed                  int64 `env:"SEED"                   envDefault:"42"`

	// Risk scoring thresholds and weights.
	RainModerateMM float64 `env:"RAIN_MODERATE_MM" envDefault:"10"`
	RainStrongMM   float64 `env:"RAIN_STRONG_MM"   envDefault:"25"`
	RainIntenseMM  float64 `env:"RAIN_INTENSE_MM"  envDefault:"50"`
	TideElevatedM  float64 `env:"TIDE_ELEVATED_M"  envDefault:"0.8"`
	TideHighM      float64 `env:"TIDE_HIGH_M"      envDefault:"1.2"`
	ScoreModerate  float64 `env:"SCORE_MODERATE"   envDefault:"0.5"`
	ScoreHigh      float64 `env:"SCORE_HIGH"       envDefault:"0.7"`
	RainCapMM      float64 `env:"RAIN_CAP_MM"      envDefault:"200"`
	TideCapM       float64 `env:"TIDE_CAP_M"       envDefault:"3"`

	WeightRainfall      float64 `env:"WEIGHT_RAINFALL"      envDefault:"0.35"`
	WeightTide          float64 `env:"WEIGHT_TIDE"          envDefault:"0.25"`
	WeightVulnerability float64 `env:"WEIGHT_VULNERABILITY" envDefault:"0.30"`
	WeightOccurrences   float64 `env:"WEIGHT_OCCURRENCES"   envDefault:"0.10"`
	WeightInteraction   float64 `env:"WEIGHT_INTERACTION"   envDefault:"0.15"`
}

// Load reads configuration from the environment, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.DBPath == "" {
		return nil, errors.New("DB_PATH is required")
	}

	riskCfg := cfg.RiskConfig()
	if err := riskCfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// RiskConfig maps the threshold and weight settings onto a scorer config.
func (c *Config) RiskConfig() risk.Config {
	return risk.Config{
		Rainfall: risk.RainfallBands{
			Moderate: c.RainModerateMM,
			Strong:   c.RainStrongMM,
			Intense:  c.RainIntenseMM,
		},
		Tide: risk.TideBands{
			Elevated: c.TideElevatedM,
			High:     c.TideHighM,
		},
		Score: risk.ScoreBands{
			Moderate: c.ScoreModerate,
			High:     c.ScoreHigh,
		},
		Weights: risk.Weights{
			Rainfall:      c.WeightRainfall,
			Tide:          c.WeightTide,
			Vulnerability: c.WeightVulnerability,
			Occurrences:   c.WeightOccurrences,
			Interaction:   c.WeightInteraction,
		},
		OccurrenceCap: 5,
		MaxRainfallMM: c.RainCapMM,
		MaxTideM:      c.TideCapM,
	}
}
