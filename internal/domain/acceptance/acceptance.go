// Package acceptance implements the per-jet, per-track and per-event
// admissibility predicates. Every rejection is a silent boolean; the only
// errors are unknown selection names, surfaced once at configuration time.
package acceptance

import (
	"fmt"
	"math"

	"github.com/hepkit/jetcorr/internal/domain/model"
)

// Sentinel values marking a cut as disabled. A configured value above
// (below, for the max) the sentinel activates the cut; the defaults keep it
// off. These mirror the conventions of the upstream configuration surface.
const (
	AreaFractionDisabled     = -98.0
	ConstituentPtMinDisabled = -98.0
	ConstituentPtMaxDisabled = 9998.0
)

// JetSelector applies the jet admissibility cuts.
type JetSelector struct {
	areaFractionMin      float64
	leadConstituentPtMin float64
	leadConstituentPtMax float64
	checkLeadPtForTruth  bool

	jetEtaMin, jetEtaMax     float64
	trackEtaMin, trackEtaMax float64
}

// Option applies a configuration option to the JetSelector.
type Option func(*JetSelector)

// WithAreaFraction sets the minimum jet area as a fraction of pi*R^2.
func WithAreaFraction(min float64) Option {
	return func(s *JetSelector) { s.areaFractionMin = min }
}

// WithLeadConstituentPtWindow sets the leading-constituent pT window.
func WithLeadConstituentPtWindow(min, max float64) Option {
	return func(s *JetSelector) {
		s.leadConstituentPtMin = min
		s.leadConstituentPtMax = max
	}
}

// WithLeadConstituentCheckForTruth enables the leading-constituent cut on
// truth-level jets, which are exempt by default.
func WithLeadConstituentCheckForTruth(on bool) Option {
	return func(s *JetSelector) { s.checkLeadPtForTruth = on }
}

// WithJetEtaWindow sets the configured jet pseudorapidity window.
func WithJetEtaWindow(min, max float64) Option {
	return func(s *JetSelector) {
		s.jetEtaMin = min
		s.jetEtaMax = max
	}
}

// WithTrackEtaWindow sets the track acceptance used to tighten the jet
// eta window by the jet radius.
func WithTrackEtaWindow(min, max float64) Option {
	return func(s *JetSelector) {
		s.trackEtaMin = min
		s.trackEtaMax = max
	}
}

// NewJetSelector creates a selector with all cuts disabled and the standard
// mid-rapidity windows.
func NewJetSelector(opts ...Option) *JetSelector {
	s := &JetSelector{
		areaFractionMin:      -99.0,
		leadConstituentPtMin: -99.0,
		leadConstituentPtMax: 9999.0,
		jetEtaMin:            -0.7,
		jetEtaMax:            0.7,
		trackEtaMin:          -0.9,
		trackEtaMax:          0.9,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Accepted reports whether the jet passes the area-fraction cut and the
// leading-constituent pT window. Truth-level jets skip the constituent check
// unless explicitly enabled.
func (s *JetSelector) Accepted(jet model.Jet, constituents []model.Constituent, truthLevel bool) bool {
	if s.areaFractionMin > AreaFractionDisabled {
		r := float64(jet.R) / 100.0
		if jet.Area < s.areaFractionMin*math.Pi*r*r {
			return false
		}
	}

	checkMin := s.leadConstituentPtMin > ConstituentPtMinDisabled
	checkMax := s.leadConstituentPtMax < ConstituentPtMaxDisabled
	check := checkMin || checkMax
	if truthLevel && !s.checkLeadPtForTruth {
		check = false
	}
	if !check {
		return true
	}

	okMin := !checkMin
	okMax := true
	for _, c := range constituents {
		pt := c.Pt()
		if checkMin && pt >= s.leadConstituentPtMin {
			okMin = true
		}
		if checkMax && pt > s.leadConstituentPtMax {
			okMax = false
		}
	}
	return okMin && okMax
}

// InEtaAcceptance reports whether the jet axis sits inside the configured
// jet eta window, tightened so the full jet area stays within the track
// acceptance.
func (s *JetSelector) InEtaAcceptance(jet model.Jet) bool {
	r := float64(jet.R) / 100.0
	low := math.Max(s.jetEtaMin, s.trackEtaMin+r)
	high := math.Min(s.jetEtaMax, s.trackEtaMax-r)
	return jet.Eta >= low && jet.Eta <= high
}

// SelectTrack reports whether a constituent passes the detector track
// selection. Truth particles carry no selection class and pass trivially.
func SelectTrack(c model.Constituent, required model.TrackBits) bool {
	cl, ok := c.(model.Classified)
	if !ok {
		return true
	}
	return cl.SelectionBits()&required != 0
}

// EventBitsFromName maps a declarative event-selection name to its bit set.
// Called once at startup; an unknown name is a configuration error.
func EventBitsFromName(name string) (model.EventBits, error) {
	switch name {
	case "sel8":
		return model.BitSel8, nil
	case "sel8Full":
		return model.BitSel8 | model.BitSel8Full, nil
	case "selTVX":
		return model.BitSelTVX, nil
	case "selMC":
		return model.BitSelMC, nil
	case "none":
		return 0, nil
	}
	return 0, fmt.Errorf("unknown event selection %q", name)
}

// TrackBitsFromName maps a declarative track-selection name to its class bits.
func TrackBitsFromName(name string) (model.TrackBits, error) {
	switch name {
	case "globalTracks":
		return model.BitGlobalTracks, nil
	case "qualityTracks":
		return model.BitQualityTracks, nil
	case "hybridTracks":
		return model.BitHybridTracks, nil
	case "none":
		return ^model.TrackBits(0), nil
	}
	return 0, fmt.Errorf("unknown track selection %q", name)
}
