// Package model contains the domain entities passed between analysis layers.
//
// All entities are read-only once constructed by the ingestion layer; the
// analysis code never mutates them.
package model

import "math"

// CentralityEstimator selects which of the interchangeable centrality
// estimates an Event exposes through Centrality.
type CentralityEstimator int

const (
	CentralityFT0C CentralityEstimator = iota
	CentralityFT0A
	CentralityFT0M
)

// Valid reports whether the estimator index is one of the known estimators.
func (c CentralityEstimator) Valid() bool {
	return c >= CentralityFT0C && c <= CentralityFT0M
}

// EventBits is a set of event-selection flags assigned by the ingestion layer.
type EventBits uint32

// Event selection flags.
const (
	BitSel8 EventBits = 1 << iota
	BitSel8Full
	BitSelTVX
	BitSelMC
)

// Has reports whether all flags in want are set.
func (b EventBits) Has(want EventBits) bool { return b&want == want }

// TrackBits is a set of track-selection classes assigned by the ingestion layer.
type TrackBits uint32

// Track selection classes.
const (
	BitGlobalTracks TrackBits = 1 << iota
	BitQualityTracks
	BitHybridTracks
)

// Event is one collision (reconstructed or simulated) with its per-event
// background density and bookkeeping values.
type Event struct {
	ID       string
	PosZ     float64 // z-vertex position, cm
	CentFT0C float64
	CentFT0A float64
	CentFT0M float64
	Mult     float64 // multiplicity estimate used for pool binning
	Occupancy float64
	Rho      float64 // background energy density for area subtraction
	Weight   float64 // generator weight; 1 for data
	Bits     EventBits
	MBGap    bool // true when the event comes from a min-bias gap trigger
}

// Centrality returns the estimate chosen by est.
func (e Event) Centrality(est CentralityEstimator) float64 {
	switch est {
	case CentralityFT0A:
		return e.CentFT0A
	case CentralityFT0M:
		return e.CentFT0M
	default:
		return e.CentFT0C
	}
}

// Jet is a reconstructed or truth-level jet. R is the resolution parameter
// encoded as radius*100, the exact-match key for radius selection.
type Jet struct {
	Pt           float64
	Eta          float64
	Phi          float64
	Area         float64
	R            int
	Constituents []int // indices into the event's track or particle list
	Weight       float64
}

// CorrectedPt returns the background-subtracted transverse momentum,
// the ordering key for leading/subleading selection.
func (j Jet) CorrectedPt(rho float64) float64 {
	return j.Pt - rho*j.Area
}

// MatchesRadius reports whether the jet was clustered with the selected
// resolution parameter (given as a plain radius, e.g. 0.4).
func (j Jet) MatchesRadius(selected float64) bool {
	return j.R == int(math.Round(selected*100))
}

// Constituent is the capability surface shared by detector tracks and truth
// particles. Correlation and acceptance logic is written against it.
type Constituent interface {
	Pt() float64
	Eta() float64
	Phi() float64
}

// Classified is implemented by constituents carrying a detector selection
// class. Truth particles do not implement it and pass selection trivially.
type Classified interface {
	SelectionBits() TrackBits
}

// DetectorTrack is a reconstructed charged track.
type DetectorTrack struct {
	pt, eta, phi float64
	bits         TrackBits
}

// NewDetectorTrack constructs a detector track.
func NewDetectorTrack(pt, eta, phi float64, bits TrackBits) DetectorTrack {
	return DetectorTrack{pt: pt, eta: eta, phi: phi, bits: bits}
}

func (t DetectorTrack) Pt() float64              { return t.pt }
func (t DetectorTrack) Eta() float64             { return t.eta }
func (t DetectorTrack) Phi() float64             { return t.phi }
func (t DetectorTrack) SelectionBits() TrackBits { return t.bits }

// TruthParticle is a generator-level charged particle.
type TruthParticle struct {
	pt, eta, phi float64
}

// NewTruthParticle constructs a truth particle.
func NewTruthParticle(pt, eta, phi float64) TruthParticle {
	return TruthParticle{pt: pt, eta: eta, phi: phi}
}

func (p TruthParticle) Pt() float64  { return p.pt }
func (p TruthParticle) Eta() float64 { return p.eta }
func (p TruthParticle) Phi() float64 { return p.phi }

// Constituents adapts a concrete slice to the capability interface.
func Constituents[T Constituent](in []T) []Constituent {
	out := make([]Constituent, len(in))
	for i, c := range in {
		out[i] = c
	}
	return out
}

// CorrelationTuple is the unit of output for the leading-jet-hadron mode.
// DEtaRaw is relative to the unflipped leading-jet eta; DEtaSigned carries
// the flip sign; DEtaJets is the flipped dijet eta difference. PoolBin is
// set only on mixed-event tuples.
type CorrelationTuple struct {
	TriggerPt    float64
	SubleadingPt float64
	PartnerPt    float64
	DEtaRaw      float64
	DEtaJets     float64
	DEtaSigned   float64
	DPhi         float64
	PoolBin      float64
}

// Values flattens the tuple in fill order, without the pool bin.
func (t CorrelationTuple) Values() []float64 {
	return []float64{t.TriggerPt, t.SubleadingPt, t.PartnerPt, t.DEtaRaw, t.DEtaJets, t.DEtaSigned, t.DPhi}
}

// MixedValues flattens the tuple with the pool bin as the trailing value.
func (t CorrelationTuple) MixedValues() []float64 {
	return append(t.Values(), t.PoolBin)
}

// InclusiveTuple is the unit of output for the inclusive jet-hadron mode,
// computed relative to each accepted jet rather than a leading pair.
type InclusiveTuple struct {
	TriggerPt float64
	PartnerPt float64
	DEta      float64
	DPhi      float64
	DR        float64
}

// Values flattens the tuple in fill order.
func (t InclusiveTuple) Values() []float64 {
	return []float64{t.TriggerPt, t.PartnerPt, t.DEta, t.DPhi, t.DR}
}
