// Package leading reduces a jet collection to its leading and subleading
// members by background-corrected pT.
package leading

import "github.com/hepkit/jetcorr/internal/domain/model"

// Pair holds the two highest corrected-pT jets of an event.
type Pair struct {
	Leading          model.Jet
	Subleading       model.Jet
	LeadingCorrPt    float64
	SubleadingCorrPt float64
}

// running is the fold state: two optional slots with their ordering keys,
// initialised to none/-1.
type running struct {
	lead, sub     *model.Jet
	leadPt, subPt float64
}

// step folds one candidate into the running state. Strictly-greater
// comparisons only, so ties keep the first-seen jet in front.
func step(r running, jet model.Jet, corrPt float64) running {
	switch {
	case corrPt > r.leadPt:
		r.sub, r.subPt = r.lead, r.leadPt
		j := jet
		r.lead, r.leadPt = &j, corrPt
	case corrPt > r.subPt:
		j := jet
		r.sub, r.subPt = &j, corrPt
	}
	return r
}

// Reduce runs a single pass over jets, computing corrected pT with the
// event's rho and keeping the two largest among those passing accept.
// Before the leading/subleading gate, each accepted jet's corrected pT is
// handed to inclusive, so callers can capture the inclusive spectrum as a
// side output. Returns false when fewer than two jets qualify.
func Reduce(jets []model.Jet, rho float64, accept func(model.Jet) bool, inclusive func(corrPt float64)) (Pair, bool) {
	r := running{leadPt: -1.0, subPt: -1.0}
	for _, jet := range jets {
		if accept != nil && !accept(jet) {
			continue
		}
		corrPt := jet.CorrectedPt(rho)
		if inclusive != nil {
			inclusive(corrPt)
		}
		r = step(r, jet, corrPt)
	}
	if r.lead == nil || r.sub == nil {
		return Pair{}, false
	}
	return Pair{
		Leading:          *r.lead,
		Subleading:       *r.sub,
		LeadingCorrPt:    r.leadPt,
		SubleadingCorrPt: r.subPt,
	}, true
}
