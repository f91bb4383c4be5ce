package acceptance

import (
	"math"

	"github.com/hepkit/jetcorr/internal/domain/model"
)

// Rejection names the gate that dropped an event. Empty means accepted.
type Rejection string

const (
	RejectNone       Rejection = ""
	RejectSelection  Rejection = "selection_bits"
	RejectMBGap      Rejection = "mb_gap"
	RejectVertex     Rejection = "vertex"
	RejectCentrality Rejection = "centrality"
	RejectOccupancy  Rejection = "occupancy"
	RejectNoReco     Rejection = "no_reco"
	RejectSplit      Rejection = "split"
)

// SplitMode controls how truth events mapping to several reconstructed
// collisions are handled.
type SplitMode int

const (
	// RejectSplitCollisions drops truth events with more than one
	// reconstructed collision.
	RejectSplitCollisions SplitMode = iota
	// AcceptSplitCheckAny accepts split truth events when any associated
	// reconstructed collision passes the goodness checks.
	AcceptSplitCheckAny
	// AcceptSplitCheckFirst accepts split truth events but judges goodness
	// only on the first associated reconstructed collision.
	AcceptSplitCheckFirst
)

// Valid reports whether the mode is one of the three handling modes.
func (m SplitMode) Valid() bool {
	return m >= RejectSplitCollisions && m <= AcceptSplitCheckFirst
}

// EventSelector applies the per-event goodness predicate shared by the
// same-event and mixed-event paths.
type EventSelector struct {
	vertexZCut               float64
	centralityMin            float64
	centralityMax            float64
	estimator                model.CentralityEstimator
	occupancyMin             float64
	occupancyMax             float64
	requiredBits             model.EventBits
	skipMBGap                bool
}

// EventOption applies a configuration option to the EventSelector.
type EventOption func(*EventSelector)

// WithVertexZCut sets the accepted |z-vertex| range.
func WithVertexZCut(cut float64) EventOption {
	return func(s *EventSelector) { s.vertexZCut = cut }
}

// WithCentralityWindow sets the centrality window and estimator.
func WithCentralityWindow(min, max float64, est model.CentralityEstimator) EventOption {
	return func(s *EventSelector) {
		s.centralityMin = min
		s.centralityMax = max
		s.estimator = est
	}
}

// WithOccupancyWindow sets the accepted track-occupancy window.
func WithOccupancyWindow(min, max float64) EventOption {
	return func(s *EventSelector) {
		s.occupancyMin = min
		s.occupancyMax = max
	}
}

// WithRequiredBits sets the event-selection bits an event must carry.
func WithRequiredBits(bits model.EventBits) EventOption {
	return func(s *EventSelector) { s.requiredBits = bits }
}

// WithSkipMBGap rejects events derived from min-bias gap triggers.
func WithSkipMBGap(on bool) EventOption {
	return func(s *EventSelector) { s.skipMBGap = on }
}

// NewEventSelector creates a selector with wide-open windows.
func NewEventSelector(opts ...EventOption) *EventSelector {
	s := &EventSelector{
		vertexZCut:    10.0,
		centralityMin: -999.0,
		centralityMax: 999.0,
		estimator:     model.CentralityFT0C,
		occupancyMin:  -999999,
		occupancyMax:  999999,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Check runs the goodness gates in order and returns the first failing one.
func (s *EventSelector) Check(ev model.Event) Rejection {
	if !ev.Bits.Has(s.requiredBits) {
		return RejectSelection
	}
	if s.skipMBGap && ev.MBGap {
		return RejectMBGap
	}
	if math.Abs(ev.PosZ) > s.vertexZCut {
		return RejectVertex
	}
	cent := ev.Centrality(s.estimator)
	if cent < s.centralityMin || cent >= s.centralityMax {
		return RejectCentrality
	}
	if ev.Occupancy < s.occupancyMin || ev.Occupancy > s.occupancyMax {
		return RejectOccupancy
	}
	return RejectNone
}

// Good is the boolean form of Check.
func (s *EventSelector) Good(ev model.Event) bool {
	return s.Check(ev) == RejectNone
}

// CheckTruth validates a truth event through its associated reconstructed
// collisions. The truth event itself is only subject to the vertex cut; the
// selection bits, centrality and occupancy gates are judged on the
// reconstructed side according to the split-collision mode.
func (s *EventSelector) CheckTruth(truth model.Event, reco []model.Event, mode SplitMode) Rejection {
	if math.Abs(truth.PosZ) > s.vertexZCut {
		return RejectVertex
	}
	if len(reco) < 1 {
		return RejectNoReco
	}
	if mode == RejectSplitCollisions && len(reco) > 1 {
		return RejectSplit
	}
	judged := reco
	if mode == AcceptSplitCheckFirst {
		judged = reco[:1]
	}

	hasSelected := false
	centralityGood := false
	occupancyGood := false
	for _, ev := range judged {
		if ev.Bits.Has(s.requiredBits) && !(s.skipMBGap && ev.MBGap) {
			hasSelected = true
		}
		cent := ev.Centrality(s.estimator)
		if cent > s.centralityMin && cent < s.centralityMax {
			centralityGood = true
		}
		if ev.Occupancy > s.occupancyMin && ev.Occupancy < s.occupancyMax {
			occupancyGood = true
		}
	}
	if !hasSelected {
		return RejectSelection
	}
	if !centralityGood {
		return RejectCentrality
	}
	if !occupancyGood {
		return RejectOccupancy
	}
	return RejectNone
}
