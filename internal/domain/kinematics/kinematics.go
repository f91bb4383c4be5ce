// Package kinematics holds the pure angular math used by the correlation
// observables.
package kinematics

import "math"

const twoPi = 2 * math.Pi

// WrapAngle maps delta into [lowerBound, lowerBound+2pi). The default lower
// bound for jet-hadron azimuth differences is -pi/2 so near-side and
// away-side peaks sit centered in the distribution.
func WrapAngle(delta, lowerBound float64) float64 {
	d := math.Mod(delta-lowerBound, twoPi)
	if d < 0 {
		d += twoPi
	}
	return d + lowerBound
}

// DeltaR returns the angular distance for an eta difference and an already
// wrapped phi difference.
func DeltaR(deta, dphi float64) float64 {
	return math.Hypot(deta, dphi)
}

// EtaFlip returns the sign that symmetrizes the forward/backward detector
// halves: +1 when the leading jet sits at larger eta than the subleading one,
// -1 otherwise. The sign is applied to every eta difference taken relative to
// the leading jet. This is a physics convention, not tie-breaking logic.
func EtaFlip(etaLeading, etaSubleading float64) float64 {
	if etaLeading > etaSubleading {
		return 1.0
	}
	return -1.0
}
