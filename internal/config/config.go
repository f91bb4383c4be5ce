// Package config defines the analysis configuration and its loading hooks.
//
// Conventions:
// - Flat koanf-tagged fields; New() supplies defaults, Load layers file/env.
// - External errors must be wrapped via this package's sentinel errors.
package config

import (
	"github.com/hepkit/jetcorr/internal/domain/acceptance"
	"github.com/hepkit/jetcorr/internal/domain/correlation"
	"github.com/hepkit/jetcorr/internal/domain/model"
)

// Config carries every externally supplied cut and knob of the analysis.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr exposes /metrics when non-empty, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr"`

	// ReportPath receives the HTML report; empty disables it.
	ReportPath string `koanf:"report_path"`

	// Events and Seed size and seed the synthetic sample.
	Events int   `koanf:"events"`
	Seed   int64 `koanf:"seed"`

	// SelectedRadius picks the jet resolution parameter, e.g. 0.4.
	SelectedRadius float64 `koanf:"selected_radius"`

	// Jet and track eta windows.
	JetEtaMin   float64 `koanf:"jet_eta_min"`
	JetEtaMax   float64 `koanf:"jet_eta_max"`
	TrackEtaMin float64 `koanf:"track_eta_min"`
	TrackEtaMax float64 `koanf:"track_eta_max"`

	// Jet admissibility cuts. The sentinel defaults leave them disabled.
	AreaFractionMin           float64 `koanf:"area_fraction_min"`
	LeadConstituentPtMin      float64 `koanf:"lead_constituent_pt_min"`
	LeadConstituentPtMax      float64 `koanf:"lead_constituent_pt_max"`
	CheckLeadConstituentTruth bool    `koanf:"check_lead_constituent_truth"`

	// Dijet corrected-pT floors.
	LeadingJetPtMin    float64 `koanf:"leading_jet_pt_min"`
	SubleadingJetPtMin float64 `koanf:"subleading_jet_pt_min"`

	// Simulation outlier filter.
	PtHatExponent    float64 `koanf:"pt_hat_exponent"`
	PtHatMaxDetector float64 `koanf:"pt_hat_max_detector"`
	PtHatMaxParticle float64 `koanf:"pt_hat_max_particle"`
	PtHatAbsoluteMin float64 `koanf:"pt_hat_absolute_min"`

	// Physical-cut region thresholds.
	EtaGapLow      float64 `koanf:"eta_gap_low"`
	EtaGapHigh     float64 `koanf:"eta_gap_high"`
	CorrTrackPtMax float64 `koanf:"corr_track_pt_max"`

	// Event goodness cuts.
	VertexZCut          float64 `koanf:"vertex_z_cut"`
	CentralityMin       float64 `koanf:"centrality_min"`
	CentralityMax       float64 `koanf:"centrality_max"`
	CentralityEstimator string  `koanf:"centrality_estimator"`
	OccupancyMin        float64 `koanf:"occupancy_min"`
	OccupancyMax        float64 `koanf:"occupancy_max"`
	EventSelection      string  `koanf:"event_selection"`
	TrackSelection      string  `koanf:"track_selection"`
	SkipMBGap           bool    `koanf:"skip_mb_gap"`
	SplitMode           string  `koanf:"split_mode"`

	// Event mixing.
	MixingDepth      int       `koanf:"mixing_depth"`
	ZVtxBins         []float64 `koanf:"zvtx_bins"`
	MultiplicityBins []float64 `koanf:"multiplicity_bins"`
	MixPolicy        string    `koanf:"mix_policy"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		MetricsAddr:          "",
		ReportPath:           "jetcorr_report.html",
		Events:               1000,
		Seed:                 1,
		SelectedRadius:       0.4,
		JetEtaMin:            -0.7,
		JetEtaMax:            0.7,
		TrackEtaMin:          -0.9,
		TrackEtaMax:          0.9,
		AreaFractionMin:      -99,
		LeadConstituentPtMin: -99,
		LeadConstituentPtMax: 9999,
		LeadingJetPtMin:      20,
		SubleadingJetPtMin:   10,
		PtHatExponent:        6,
		PtHatMaxDetector:     999,
		PtHatMaxParticle:     999,
		PtHatAbsoluteMin:     -99,
		EtaGapLow:            0.5,
		EtaGapHigh:           1.0,
		CorrTrackPtMax:       2.0,
		VertexZCut:           10,
		CentralityMin:        0,
		CentralityMax:        100,
		CentralityEstimator:  "ft0c",
		OccupancyMin:         0,
		OccupancyMax:         999999,
		EventSelection:       "sel8",
		TrackSelection:       "globalTracks",
		SkipMBGap:            false,
		SplitMode:            "reject",
		MixingDepth:          5,
		ZVtxBins:             []float64{-10, -2.5, 2.5, 10},
		MultiplicityBins:     []float64{0, 15, 25, 35, 50},
		MixPolicy:            "abort",
	}
}

// Estimator maps the configured centrality estimator name.
func (c *Config) Estimator() (model.CentralityEstimator, error) {
	switch c.CentralityEstimator {
	case "ft0c":
		return model.CentralityFT0C, nil
	case "ft0a":
		return model.CentralityFT0A, nil
	case "ft0m":
		return model.CentralityFT0M, nil
	default:
		return 0, wrapInvalid("centrality_estimator", c.CentralityEstimator)
	}
}

// Split maps the configured split-collision handling mode.
func (c *Config) Split() (acceptance.SplitMode, error) {
	switch c.SplitMode {
	case "reject":
		return acceptance.RejectSplitCollisions, nil
	case "accept_any":
		return acceptance.AcceptSplitCheckAny, nil
	case "accept_first":
		return acceptance.AcceptSplitCheckFirst, nil
	default:
		return 0, wrapInvalid("split_mode", c.SplitMode)
	}
}

// Mixing maps the configured failing-pair policy.
func (c *Config) Mixing() (correlation.MixPolicy, error) {
	switch c.MixPolicy {
	case "abort":
		return correlation.MixAbort, nil
	case "skip":
		return correlation.MixSkip, nil
	default:
		return 0, wrapInvalid("mix_policy", c.MixPolicy)
	}
}

// EventBits maps the configured event-selection name.
func (c *Config) EventBits() (model.EventBits, error) {
	bits, err := acceptance.EventBitsFromName(c.EventSelection)
	if err != nil {
		return 0, wrapInvalid("event_selection", c.EventSelection)
	}
	return bits, nil
}

// TrackBits maps the configured track-selection name.
func (c *Config) TrackBits() (model.TrackBits, error) {
	bits, err := acceptance.TrackBitsFromName(c.TrackSelection)
	if err != nil {
		return 0, wrapInvalid("track_selection", c.TrackSelection)
	}
	return bits, nil
}
