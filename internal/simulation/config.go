package simulation

import (
	"fmt"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ForecastConfig tunes one forecast run. Zero fields take their defaults.
type ForecastConfig struct {
	Iterations       int                  `json:"iterations" yaml:"iterations" default:"10000" validate:"gt=0"`
	BootstrapSamples int                  `json:"bootstrap_samples" yaml:"bootstrap_samples" default:"1000" validate:"gt=0"`
	PriorStrength    float64              `json:"prior_strength" yaml:"prior_strength" default:"2" validate:"gt=0"`
	MinSampleSize    int                  `json:"min_sample_size" yaml:"min_sample_size" default:"5" validate:"gt=0"`
	Seed             string               `json:"seed" yaml:"seed" default:"oracle" validate:"required"`
	HistogramBins    int                  `json:"histogram_bins" yaml:"histogram_bins" default:"20" validate:"gt=0"`
	Confidence       ConfidenceThresholds `json:"confidence" yaml:"confidence"`
}

// DefaultForecastConfig returns a config with every default applied.
func DefaultForecastConfig() ForecastConfig {
	var cfg ForecastConfig
	_ = defaults.Set(&cfg)
	return cfg
}

// Normalize fills zero fields with defaults and validates the result.
func (c ForecastConfig) Normalize() (ForecastConfig, error) {
	if err := defaults.Set(&c); err != nil {
		return c, fmt.Errorf("apply forecast defaults: %w", err)
	}
	if err := validate.Struct(c); err != nil {
		return c, fmt.Errorf("invalid forecast config: %w", err)
	}
	return c, nil
}

// Merge returns c with every non-zero field of override applied. Confidence
// thresholds apply when non-nil, so an explicit 0 overrides.
func (c ForecastConfig) Merge(override ForecastConfig) ForecastConfig {
	if override.Iterations != 0 {
		c.Iterations = override.Iterations
	}
	if override.BootstrapSamples != 0 {
		c.BootstrapSamples = override.BootstrapSamples
	}
	if override.PriorStrength != 0 {
		c.PriorStrength = override.PriorStrength
	}
	if override.MinSampleSize != 0 {
		c.MinSampleSize = override.MinSampleSize
	}
	if override.Seed != "" {
		c.Seed = override.Seed
	}
	if override.HistogramBins != 0 {
		c.HistogramBins = override.HistogramBins
	}

	c.Confidence = c.Confidence.merge(override.Confidence)
	return c
}
