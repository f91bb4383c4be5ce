// Package correlation accumulates jet-hadron angular correlations in the
// inclusive and leading-dijet modes, same-event and mixed-event, emitting
// tuples and monitoring fills to an injected sink.
package correlation

import (
	"math"

	"github.com/hepkit/jetcorr/internal/adapters/sink"
	"github.com/hepkit/jetcorr/internal/domain/acceptance"
	"github.com/hepkit/jetcorr/internal/domain/kinematics"
	"github.com/hepkit/jetcorr/internal/domain/leading"
	"github.com/hepkit/jetcorr/internal/domain/model"
	"github.com/hepkit/jetcorr/pkg/metrics"
)

// MixPolicy decides what happens to the remaining partner events when a
// mixed pair fails a gate.
type MixPolicy int

const (
	// MixAbort stops mixing for the whole processing step on the first
	// failing pair.
	MixAbort MixPolicy = iota
	// MixSkip drops only the failing pair and continues with the rest.
	MixSkip
)

// Valid reports whether the policy is one of the known strategies.
func (p MixPolicy) Valid() bool { return p == MixAbort || p == MixSkip }

// Partner is one buffered event offered for mixing against a trigger event.
type Partner struct {
	Event   model.Event
	Tracks  []model.Constituent
	PoolBin int
}

// Accumulator runs the correlation fills for one configured analysis.
type Accumulator struct {
	sink sink.Sink
	jets *acceptance.JetSelector

	selectedRadius float64
	trackBits      model.TrackBits

	leadingJetPtMin    float64
	subleadingJetPtMin float64

	ptHatExponent    float64
	ptHatMaxDetector float64
	ptHatMaxParticle float64
	ptHatAbsoluteMin float64

	etaGapLow      float64
	etaGapHigh     float64
	corrTrackPtMax float64

	policy MixPolicy
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithSelectedRadius sets the resolution parameter the spectra fills key on.
func WithSelectedRadius(r float64) Option {
	return func(a *Accumulator) { a.selectedRadius = r }
}

// WithTrackSelection sets the selection classes a track must carry.
func WithTrackSelection(bits model.TrackBits) Option {
	return func(a *Accumulator) { a.trackBits = bits }
}

// WithDijetPtThresholds sets the corrected-pT floors for the leading and
// subleading jet. The subleading floor doubles as the inclusive-mode
// trigger floor.
func WithDijetPtThresholds(leadMin, subMin float64) Option {
	return func(a *Accumulator) {
		a.leadingJetPtMin = leadMin
		a.subleadingJetPtMin = subMin
	}
}

// WithPtHat configures the simulation outlier filter. maxDetector applies
// to detector-level jets, maxParticle to truth-level jets.
func WithPtHat(exponent, maxDetector, maxParticle, absoluteMin float64) Option {
	return func(a *Accumulator) {
		a.ptHatExponent = exponent
		a.ptHatMaxDetector = maxDetector
		a.ptHatMaxParticle = maxParticle
		a.ptHatAbsoluteMin = absoluteMin
	}
}

// WithEtaGaps sets the |deta_jets| thresholds bounding the physical-cut
// regions.
func WithEtaGaps(low, high float64) Option {
	return func(a *Accumulator) {
		a.etaGapLow = low
		a.etaGapHigh = high
	}
}

// WithCorrTrackPtMax sets the low-pt track ceiling for the physical-cut
// region fills.
func WithCorrTrackPtMax(max float64) Option {
	return func(a *Accumulator) { a.corrTrackPtMax = max }
}

// WithMixPolicy selects the failing-pair strategy for mixed-event paths.
func WithMixPolicy(p MixPolicy) Option {
	return func(a *Accumulator) { a.policy = p }
}

// NewAccumulator builds an accumulator writing to s, judging jets with js.
func NewAccumulator(s sink.Sink, js *acceptance.JetSelector, opts ...Option) *Accumulator {
	a := &Accumulator{
		sink:               s,
		jets:               js,
		selectedRadius:     0.4,
		trackBits:          model.BitGlobalTracks,
		leadingJetPtMin:    20,
		subleadingJetPtMin: 10,
		ptHatExponent:      6,
		ptHatMaxDetector:   999,
		ptHatMaxParticle:   999,
		ptHatAbsoluteMin:   -99,
		etaGapLow:          0.5,
		etaGapHigh:         1.0,
		corrTrackPtMax:     2.0,
		policy:             MixAbort,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// name appends the truth-level suffix when applicable.
func name(base string, truthLevel bool) string {
	if truthLevel {
		return base + "_truth"
	}
	return base
}

func pathName(truthLevel bool) string {
	if truthLevel {
		return "truth"
	}
	return "detector"
}

// ptHatOK applies the simulation outlier filter: with the event weight w,
// pTHat = 10 / w^(1/exponent); a jet fails when its raw pt exceeds
// maxLevel*pTHat or pTHat falls below the absolute floor. Unit weights make
// the filter inert for data.
func (a *Accumulator) ptHatOK(jetPt, weight float64, truthLevel bool) bool {
	ptHat := 10.0 / math.Pow(weight, 1.0/a.ptHatExponent)
	max := a.ptHatMaxDetector
	if truthLevel {
		max = a.ptHatMaxParticle
	}
	if jetPt > max*ptHat || ptHat < a.ptHatAbsoluteMin {
		metrics.RecordPtHatRejection(pathName(truthLevel))
		return false
	}
	return true
}

// selectPartner applies the track selection; truth particles pass trivially.
func (a *Accumulator) selectPartner(c model.Constituent) bool {
	return acceptance.SelectTrack(c, a.trackBits)
}

// jetConstituents resolves the jet's constituent indices against the event's
// track or particle list, skipping out-of-range references.
func jetConstituents(jet model.Jet, all []model.Constituent) []model.Constituent {
	out := make([]model.Constituent, 0, len(jet.Constituents))
	for _, i := range jet.Constituents {
		if i >= 0 && i < len(all) {
			out = append(out, all[i])
		}
	}
	return out
}

// QC fills the per-track monitoring distributions.
func (a *Accumulator) QC(tracks []model.Constituent, truthLevel bool, weight float64) {
	for _, t := range tracks {
		if !a.selectPartner(t) {
			continue
		}
		a.sink.Fill(name("track_pt", truthLevel), weight, t.Pt())
		a.sink.Fill(name("track_eta_phi", truthLevel), weight, t.Eta(), t.Phi())
	}
}

// EventQC fills the per-event monitoring distributions.
func (a *Accumulator) EventQC(ev model.Event, est model.CentralityEstimator, truthLevel bool, weight float64) {
	a.sink.Fill(name("event_posz", truthLevel), weight, ev.PosZ)
	a.sink.Fill(name("event_mult", truthLevel), weight, ev.Mult)
	a.sink.Fill(name("event_centrality", truthLevel), weight, ev.Centrality(est))
	a.sink.Fill(name("event_centrality_occupancy", truthLevel), weight, ev.Centrality(est), ev.Occupancy)
}

// Spectra fills the raw jet distributions for jets clustered with the
// selected radius, and the jet-pt vs constituent-pt map for all radii.
// Jets outside the acceptance chain never reach any fill.
func (a *Accumulator) Spectra(jet model.Jet, tracks []model.Constituent, truthLevel bool, weight float64) {
	if !a.jetQualifies(jet, tracks, truthLevel, weight) {
		return
	}
	consts := jetConstituents(jet, tracks)
	if jet.MatchesRadius(a.selectedRadius) {
		a.sink.Fill(name("jet_pt", truthLevel), weight, jet.Pt)
		a.sink.Fill(name("jet_eta", truthLevel), weight, jet.Eta)
		a.sink.Fill(name("jet_phi", truthLevel), weight, jet.Phi)
		a.sink.Fill(name("jet_area", truthLevel), weight, jet.Area)
		a.sink.Fill(name("jet_nconstituents", truthLevel), weight, float64(len(consts)))
	}
	for _, c := range consts {
		a.sink.Fill(name("jet_pt_constituent_pt", truthLevel), weight, jet.Pt, c.Pt())
	}
}

// SpectraAreaSub fills the rho-area-subtracted jet distributions. The
// angular fills are guarded on a positive corrected pT so background-only
// candidates do not pollute them.
func (a *Accumulator) SpectraAreaSub(jet model.Jet, tracks []model.Constituent, rho float64, truthLevel bool, weight float64) {
	if !a.jetQualifies(jet, tracks, truthLevel, weight) {
		return
	}
	if !jet.MatchesRadius(a.selectedRadius) {
		return
	}
	corrPt := jet.CorrectedPt(rho)
	a.sink.Fill(name("jet_corrpt_areasub", truthLevel), weight, corrPt)
	if corrPt > 0 {
		a.sink.Fill(name("jet_eta_areasub", truthLevel), weight, jet.Eta)
		a.sink.Fill(name("jet_phi_areasub", truthLevel), weight, jet.Phi)
		a.sink.Fill(name("jet_area_areasub", truthLevel), weight, jet.Area)
		a.sink.Fill(name("jet_nconstituents_areasub", truthLevel), weight, float64(len(jet.Constituents)))
	}
}

// jetQualifies is the shared acceptance chain for the correlation loops.
func (a *Accumulator) jetQualifies(jet model.Jet, all []model.Constituent, truthLevel bool, weight float64) bool {
	if !a.jets.InEtaAcceptance(jet) {
		return false
	}
	if !a.jets.Accepted(jet, jetConstituents(jet, all), truthLevel) {
		return false
	}
	return a.ptHatOK(jet.Pt, weight, truthLevel)
}

// Inclusive runs the same-event inclusive jet-hadron mode: every qualifying
// jet above the trigger floor is correlated with every selected track.
func (a *Accumulator) Inclusive(ev model.Event, jets []model.Jet, tracks []model.Constituent, truthLevel bool, weight float64) {
	path := "same_inclusive_" + pathName(truthLevel)
	for _, jet := range jets {
		if !a.jetQualifies(jet, tracks, truthLevel, weight) {
			continue
		}
		metrics.RecordJetStage(path, "accepted")
		corrPt := jet.CorrectedPt(ev.Rho)
		if corrPt < a.subleadingJetPtMin {
			continue
		}
		metrics.RecordJetStage(path, "trigger")
		a.fillInclusive(name("jeth_corr_inclusive", truthLevel), path, jet, corrPt, tracks, weight)
	}
}

// MixedInclusive pairs each qualifying trigger jet with the tracks of the
// buffered partner events.
func (a *Accumulator) MixedInclusive(ev model.Event, jets []model.Jet, tracks []model.Constituent, partners []Partner, truthLevel bool, weight float64) {
	path := "mixed_inclusive_" + pathName(truthLevel)
	for _, p := range partners {
		metrics.RecordMixedEvent()
		for _, jet := range jets {
			if !a.jetQualifies(jet, tracks, truthLevel, weight) {
				continue
			}
			metrics.RecordJetStage(path, "accepted")
			corrPt := jet.CorrectedPt(ev.Rho)
			if corrPt < a.subleadingJetPtMin {
				continue
			}
			metrics.RecordJetStage(path, "trigger")
			a.fillInclusive(name("mixjeth_corr_inclusive", truthLevel), path, jet, corrPt, p.Tracks, weight)
		}
	}
}

func (a *Accumulator) fillInclusive(fill, path string, jet model.Jet, corrPt float64, partners []model.Constituent, weight float64) {
	for _, t := range partners {
		metrics.RecordPairStage(path, "considered")
		if !a.selectPartner(t) {
			continue
		}
		metrics.RecordPairStage(path, "selected")
		deta := t.Eta() - jet.Eta
		dphi := kinematics.WrapAngle(t.Phi()-jet.Phi, -math.Pi/2)
		tuple := model.InclusiveTuple{
			TriggerPt: corrPt,
			PartnerPt: t.Pt(),
			DEta:      deta,
			DPhi:      dphi,
			DR:        kinematics.DeltaR(deta, dphi),
		}
		a.sink.Fill(fill, weight, tuple.Values()...)
		metrics.RecordTuple(path)
	}
}

// dijet is the gated leading/subleading selection shared by the same-event
// and mixed-event leading modes. ok is false when any gate fails; the raw
// dphi monitoring fill happens before the wrap.
type dijet struct {
	pair         leading.Pair
	dphiJets     float64
	flip         float64
	etaLeadRaw   float64
	etaSubRaw    float64
	detaNoFlip   float64
	detaJets     float64
	passedPtCuts bool
}

func (a *Accumulator) selectDijet(ev model.Event, jets []model.Jet, tracks []model.Constituent, truthLevel bool, weight float64, prefix string) (dijet, bool) {
	// The inclusive corrected-pT spectrum is a same-event monitor; the mixed
	// path re-selects the same dijet once per partner and must not re-fill it.
	var inclusive func(float64)
	if prefix == "" {
		inclusive = func(corrPt float64) {
			a.sink.Fill(name("inclusivejet_corrpt", truthLevel), weight, corrPt)
		}
	}
	pair, ok := leading.Reduce(jets, ev.Rho,
		func(j model.Jet) bool { return a.jetQualifies(j, tracks, truthLevel, weight) },
		inclusive)
	if !ok {
		return dijet{}, false
	}
	dphiJets := pair.Leading.Phi - pair.Subleading.Phi
	if math.Abs(dphiJets) < math.Pi/2 {
		return dijet{}, false
	}
	a.sink.Fill(name(prefix+"dijet_dphi_raw", truthLevel), weight, dphiJets)
	dphiJets = kinematics.WrapAngle(dphiJets, 0)

	d := dijet{
		pair:       pair,
		dphiJets:   dphiJets,
		flip:       kinematics.EtaFlip(pair.Leading.Eta, pair.Subleading.Eta),
		etaLeadRaw: pair.Leading.Eta,
		etaSubRaw:  pair.Subleading.Eta,
	}
	d.detaNoFlip = d.etaLeadRaw - d.etaSubRaw
	d.detaJets = d.flip * d.detaNoFlip
	d.passedPtCuts = pair.LeadingCorrPt > a.leadingJetPtMin && pair.SubleadingCorrPt > a.subleadingJetPtMin
	return d, true
}

// Leading runs the same-event leading-dijet mode.
func (a *Accumulator) Leading(ev model.Event, jets []model.Jet, tracks []model.Constituent, truthLevel bool, weight float64) {
	path := "same_leading_" + pathName(truthLevel)
	d, ok := a.selectDijet(ev, jets, tracks, truthLevel, weight, "")
	if !ok {
		return
	}
	metrics.RecordDijetStage(path, "selected")

	a.sink.Fill(name("leadjet_pt", truthLevel), weight, d.pair.Leading.Pt)
	a.sink.Fill(name("subleadjet_pt", truthLevel), weight, d.pair.Subleading.Pt)
	a.sink.Fill(name("leadjet_corrpt", truthLevel), weight, d.pair.LeadingCorrPt)
	a.sink.Fill(name("subleadjet_corrpt", truthLevel), weight, d.pair.SubleadingCorrPt)

	if !d.passedPtCuts {
		return
	}
	metrics.RecordDijetStage(path, "pt_cut")

	a.sink.Fill(name("leadjet_eta", truthLevel), weight, d.etaLeadRaw)
	a.sink.Fill(name("subleadjet_eta", truthLevel), weight, d.etaSubRaw)
	a.sink.Fill(name("leadjet_phi", truthLevel), weight, d.pair.Leading.Phi)
	a.sink.Fill(name("subleadjet_phi", truthLevel), weight, d.pair.Subleading.Phi)
	a.sink.Fill(name("dijet_detanoflip_dphi", truthLevel), weight, d.detaNoFlip, d.dphiJets)
	a.sink.Fill(name("dijet_deta_dphi", truthLevel), weight, d.detaJets, d.dphiJets)
	a.sink.Fill(name("dijet_asymmetry", truthLevel), weight, d.pair.SubleadingCorrPt, d.pair.SubleadingCorrPt/d.pair.LeadingCorrPt)

	for _, t := range tracks {
		metrics.RecordPairStage(path, "considered")
		if !a.selectPartner(t) {
			continue
		}
		metrics.RecordPairStage(path, "selected")
		a.fillLeadingTrack(path, d, t, -1, false, truthLevel, weight)
	}
}

// MixedLeading runs the mixed-event leading-dijet mode: the trigger event's
// dijet is correlated with the tracks of each buffered partner. good
// validates a partner event; a failing partner or a failing dijet gate
// either aborts the remaining partners or skips to the next one, depending
// on the configured policy.
func (a *Accumulator) MixedLeading(ev model.Event, jets []model.Jet, tracks []model.Constituent, partners []Partner, good func(model.Event) bool, truthLevel bool, weight float64) {
	path := "mixed_leading_" + pathName(truthLevel)
	for _, p := range partners {
		metrics.RecordMixedEvent()
		if good != nil && !good(p.Event) {
			if a.policy == MixAbort {
				metrics.RecordMixingAbort()
				return
			}
			continue
		}
		d, ok := a.selectDijet(ev, jets, tracks, truthLevel, weight, "mix")
		if !ok {
			if a.policy == MixAbort {
				metrics.RecordMixingAbort()
				return
			}
			continue
		}
		metrics.RecordDijetStage(path, "selected")

		a.sink.Fill(name("mixleadjet_corrpt", truthLevel), weight, d.pair.LeadingCorrPt)
		a.sink.Fill(name("mixsubleadjet_corrpt", truthLevel), weight, d.pair.SubleadingCorrPt)

		if !d.passedPtCuts {
			continue
		}
		metrics.RecordDijetStage(path, "pt_cut")

		a.sink.Fill(name("mixleadjet_eta", truthLevel), weight, d.etaLeadRaw)
		a.sink.Fill(name("mixsubleadjet_eta", truthLevel), weight, d.etaSubRaw)
		a.sink.Fill(name("mixdijet_detanoflip_dphi", truthLevel), weight, d.detaNoFlip, d.dphiJets)
		a.sink.Fill(name("mixdijet_deta_dphi", truthLevel), weight, d.detaJets, d.dphiJets)
		a.sink.Fill(name("mixdijet_asymmetry", truthLevel), weight, d.pair.SubleadingCorrPt, d.pair.SubleadingCorrPt/d.pair.LeadingCorrPt)

		for _, t := range p.Tracks {
			metrics.RecordPairStage(path, "considered")
			if !a.selectPartner(t) {
				continue
			}
			metrics.RecordPairStage(path, "selected")
			a.fillLeadingTrack(path, d, t, float64(p.PoolBin), true, truthLevel, weight)
		}
	}
}

// fillLeadingTrack emits the per-track fills of the leading mode. The
// flipped deta is always relative to the raw leading-jet eta, in both the
// same-event and mixed-event paths.
func (a *Accumulator) fillLeadingTrack(path string, d dijet, t model.Constituent, poolBin float64, mixed, truthLevel bool, weight float64) {
	prefix := ""
	if mixed {
		prefix = "mix"
	}
	detaTot := t.Eta() - d.etaLeadRaw
	deta := d.flip * (t.Eta() - d.etaLeadRaw)
	dphi := kinematics.WrapAngle(t.Phi()-d.pair.Leading.Phi, -math.Pi/2)

	a.sink.Fill(name(prefix+"jeth_detatot", truthLevel), weight, detaTot)
	a.sink.Fill(name(prefix+"jeth_deta", truthLevel), weight, deta)
	a.sink.Fill(name(prefix+"jeth_dphi", truthLevel), weight, dphi)
	a.sink.Fill(name(prefix+"jeth_detatot_dphi", truthLevel), weight, detaTot, dphi)
	a.sink.Fill(name(prefix+"jeth_deta_dphi", truthLevel), weight, deta, dphi)

	tuple := model.CorrelationTuple{
		TriggerPt:    d.pair.LeadingCorrPt,
		SubleadingPt: d.pair.SubleadingCorrPt,
		PartnerPt:    t.Pt(),
		DEtaRaw:      detaTot,
		DEtaJets:     d.detaJets,
		DEtaSigned:   deta,
		DPhi:         dphi,
		PoolBin:      poolBin,
	}
	if mixed {
		a.sink.Fill(name("mixjeth_corr", truthLevel), weight, tuple.MixedValues()...)
	} else {
		a.sink.Fill(name("jeth_corr", truthLevel), weight, tuple.Values()...)
	}
	metrics.RecordTuple(path)

	if mixed || t.Pt() >= a.corrTrackPtMax {
		return
	}
	gap := math.Abs(d.detaJets)
	switch {
	case gap >= a.etaGapHigh:
		a.sink.Fill(name("jeth_etagap_wide_deta_dphi", truthLevel), weight, deta, dphi)
	case gap >= a.etaGapLow:
		a.sink.Fill(name("jeth_etagap_mid_deta_dphi", truthLevel), weight, deta, dphi)
	default:
		a.sink.Fill(name("jeth_etagap_narrow_deta_dphi", truthLevel), weight, deta, dphi)
	}
	if d.etaLeadRaw > d.etaSubRaw && d.etaSubRaw >= 0 {
		if gap >= a.etaGapLow {
			a.sink.Fill(name("jeth_forward_wide_deta_dphi", truthLevel), weight, deta, dphi)
		} else {
			a.sink.Fill(name("jeth_forward_narrow_deta_dphi", truthLevel), weight, deta, dphi)
		}
	}
}
