package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if JETCORR_CONFIG is set
//  3. env (prefix JETCORR_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("JETCORR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: JETCORR_MIXING_DEPTH -> mixing_depth (flat keys,
	// underscores preserved to match the koanf tags on the struct).
	envProvider := env.Provider("JETCORR_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "jetcorr_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every mapping and structural invariant the analysis
// depends on. A failing validation is the only fatal condition in the
// domain; everything downstream assumes a valid Config.
func (c *Config) Validate() error {
	if _, err := c.Estimator(); err != nil {
		return err
	}
	if _, err := c.Split(); err != nil {
		return err
	}
	if _, err := c.Mixing(); err != nil {
		return err
	}
	if _, err := c.EventBits(); err != nil {
		return err
	}
	if _, err := c.TrackBits(); err != nil {
		return err
	}
	if c.MixingDepth < 1 {
		return fmt.Errorf("%w: mixing_depth must be positive", ErrInvalidConfig)
	}
	if err := monotonic("zvtx_bins", c.ZVtxBins); err != nil {
		return err
	}
	if err := monotonic("multiplicity_bins", c.MultiplicityBins); err != nil {
		return err
	}
	if c.EtaGapLow >= c.EtaGapHigh {
		return fmt.Errorf("%w: eta_gap_low must be below eta_gap_high", ErrInvalidConfig)
	}
	if c.JetEtaMin >= c.JetEtaMax || c.TrackEtaMin >= c.TrackEtaMax {
		return fmt.Errorf("%w: eta windows must be non-empty", ErrInvalidConfig)
	}
	if c.CentralityMin >= c.CentralityMax {
		return fmt.Errorf("%w: centrality window must be non-empty", ErrInvalidConfig)
	}
	if c.OccupancyMin >= c.OccupancyMax {
		return fmt.Errorf("%w: occupancy window must be non-empty", ErrInvalidConfig)
	}
	if c.SelectedRadius <= 0 {
		return fmt.Errorf("%w: selected_radius must be positive", ErrInvalidConfig)
	}
	return nil
}

func monotonic(fieldName string, edges []float64) error {
	if len(edges) < 2 {
		return fmt.Errorf("%w: %s needs at least two edges", ErrInvalidConfig, fieldName)
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return fmt.Errorf("%w: %s must be strictly increasing", ErrInvalidConfig, fieldName)
		}
	}
	return nil
}
