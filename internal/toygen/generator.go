// Package toygen produces synthetic event samples for exercising the
// analysis pipeline end to end without real detector input.
package toygen

import (
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/hepkit/jetcorr/internal/app"
	"github.com/hepkit/jetcorr/internal/domain/model"
)

// Generation ranges.
const (
	posZSigma       = 4.0
	posZLimit       = 10.0
	multMax         = 50.0
	centralityMax   = 100.0
	occupancyMax    = 2000.0
	rhoMax          = 2.0
	defaultRadius   = 40
	jetPtMin        = 5.0
	jetPtScale      = 15.0
	jetEtaLimit     = 0.5
	jetAreaMean     = 0.5
	jetAreaSpread   = 0.1
	trackPtMin      = 0.15
	trackPtScale    = 1.2
	trackEtaLimit   = 0.9
	maxJetsPerEvent = 4
	minTracks       = 5
	maxTracks       = 30
)

// Generator produces deterministic samples for a fixed seed.
type Generator struct {
	rng    *rand.Rand
	events int
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random source for reproducible samples.
func WithSeed(seed int64) Option {
	return func(g *Generator) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithEvents sets the sample size.
func WithEvents(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.events = n
		}
	}
}

// NewGenerator builds a generator with a seeded source and 1000 events.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng:    rand.New(rand.NewSource(1)),
		events: 1000,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Sample generates a detector-level sample.
func (g *Generator) Sample() []app.Step {
	steps := make([]app.Step, g.events)
	for i := range steps {
		steps[i] = g.step()
	}
	return steps
}

// TruthSample generates a particle-level sample where every truth event maps
// to exactly one reconstructed event.
func (g *Generator) TruthSample() []app.TruthStep {
	steps := make([]app.TruthStep, g.events)
	for i := range steps {
		det := g.step()
		truth := det.Event
		truth.ID = uuid.NewString()
		truth.Bits |= model.BitSelMC

		particles := make([]model.Constituent, len(det.Tracks))
		for j, t := range det.Tracks {
			particles[j] = model.NewTruthParticle(t.Pt(), t.Eta(), t.Phi())
		}
		steps[i] = app.TruthStep{
			Truth:     truth,
			Reco:      []model.Event{det.Event},
			Jets:      det.Jets,
			Particles: particles,
		}
	}
	return steps
}

func (g *Generator) step() app.Step {
	cent := g.rng.Float64() * centralityMax
	ev := model.Event{
		ID:        uuid.NewString(),
		PosZ:      clamp(g.rng.NormFloat64()*posZSigma, -posZLimit, posZLimit),
		CentFT0C:  cent,
		CentFT0A:  cent,
		CentFT0M:  cent,
		Mult:      g.rng.Float64() * multMax,
		Occupancy: g.rng.Float64() * occupancyMax,
		Rho:       g.rng.Float64() * rhoMax,
		Weight:    1,
		Bits:      model.BitSel8 | model.BitSelTVX,
	}

	nTracks := minTracks + g.rng.Intn(maxTracks-minTracks+1)
	tracks := make([]model.Constituent, nTracks)
	for i := range tracks {
		tracks[i] = model.NewDetectorTrack(
			trackPtMin+g.rng.ExpFloat64()*trackPtScale,
			(g.rng.Float64()*2-1)*trackEtaLimit,
			g.rng.Float64()*2*math.Pi,
			model.BitGlobalTracks|model.BitQualityTracks,
		)
	}

	nJets := g.rng.Intn(maxJetsPerEvent + 1)
	jets := make([]model.Jet, nJets)
	for i := range jets {
		jets[i] = model.Jet{
			Pt:           jetPtMin + g.rng.ExpFloat64()*jetPtScale,
			Eta:          (g.rng.Float64()*2 - 1) * jetEtaLimit,
			Phi:          g.rng.Float64() * 2 * math.Pi,
			Area:         jetAreaMean + (g.rng.Float64()*2-1)*jetAreaSpread,
			R:            defaultRadius,
			Constituents: g.constituentIndices(nTracks),
			Weight:       1,
		}
	}

	return app.Step{Event: ev, Jets: jets, Tracks: tracks}
}

func (g *Generator) constituentIndices(nTracks int) []int {
	n := 1 + g.rng.Intn(4)
	if n > nTracks {
		n = nTracks
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = g.rng.Intn(nTracks)
	}
	return idx
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
