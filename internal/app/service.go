// Package app wires the selection, mixing and correlation layers into a
// processing-step pipeline over ingested events.
package app

import (
	"context"

	"github.com/hepkit/jetcorr/internal/domain/acceptance"
	"github.com/hepkit/jetcorr/internal/domain/correlation"
	"github.com/hepkit/jetcorr/internal/domain/mixing"
	"github.com/hepkit/jetcorr/internal/domain/model"
	"github.com/hepkit/jetcorr/pkg/logger"
	"github.com/hepkit/jetcorr/pkg/metrics"
)

// Step is one detector-level processing step: an event with its jets and
// the event's charged-track list the jet constituent indices point into.
type Step struct {
	Event  model.Event
	Jets   []model.Jet
	Tracks []model.Constituent
}

// TruthStep is one particle-level processing step: a generated event, the
// reconstructed events it maps to, and its jets and particles.
type TruthStep struct {
	Truth     model.Event
	Reco      []model.Event
	Jets      []model.Jet
	Particles []model.Constituent
}

// Service runs the analysis over processing steps, carrying the event pools
// across steps.
type Service struct {
	log    logger.Logger
	events *acceptance.EventSelector
	acc    *correlation.Accumulator

	pool      *mixing.Pool
	truthPool *mixing.Pool

	est       model.CentralityEstimator
	splitMode acceptance.SplitMode

	inclusiveMode bool
	leadingMode   bool
}

// Option configures a Service.
type Option func(*Service)

// WithEventSelector sets the per-event goodness predicate.
func WithEventSelector(sel *acceptance.EventSelector) Option {
	return func(s *Service) { s.events = sel }
}

// WithPools sets the detector-level and truth-level mixing pools.
func WithPools(detector, truth *mixing.Pool) Option {
	return func(s *Service) {
		s.pool = detector
		s.truthPool = truth
	}
}

// WithCentralityEstimator selects the estimator for event monitoring fills.
func WithCentralityEstimator(est model.CentralityEstimator) Option {
	return func(s *Service) { s.est = est }
}

// WithSplitMode sets the truth-event split-collision handling.
func WithSplitMode(mode acceptance.SplitMode) Option {
	return func(s *Service) { s.splitMode = mode }
}

// WithModes enables the inclusive and leading correlation modes.
func WithModes(inclusive, leading bool) Option {
	return func(s *Service) {
		s.inclusiveMode = inclusive
		s.leadingMode = leading
	}
}

// NewService builds a Service around an accumulator. Both correlation modes
// are on by default, with fresh default pools and a permissive selector.
func NewService(acc *correlation.Accumulator, opts ...Option) *Service {
	s := &Service{
		log:           logger.Named("app"),
		events:        acceptance.NewEventSelector(),
		acc:           acc,
		pool:          mixing.NewPool(),
		truthPool:     mixing.NewPool(),
		est:           model.CentralityFT0C,
		splitMode:     acceptance.RejectSplitCollisions,
		inclusiveMode: true,
		leadingMode:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func eventWeight(ev model.Event) float64 {
	if ev.Weight == 0 {
		return 1
	}
	return ev.Weight
}

// ProcessStep runs one detector-level step: validation, monitoring and
// spectra fills, both correlation modes same-event and mixed, then buffers
// the event for future mixing.
func (s *Service) ProcessStep(ctx context.Context, step Step) {
	const path = "detector"
	metrics.RecordEventStage(path, "seen")

	if rej := s.events.Check(step.Event); rej != acceptance.RejectNone {
		metrics.RecordEventStage(path, string(rej))
		s.log.Debug(ctx, "event rejected",
			logger.String("event", step.Event.ID),
			logger.String("gate", string(rej)))
		return
	}
	metrics.RecordEventStage(path, "selected")

	w := eventWeight(step.Event)
	s.acc.EventQC(step.Event, s.est, false, w)
	s.acc.QC(step.Tracks, false, w)
	for _, jet := range step.Jets {
		s.acc.Spectra(jet, step.Tracks, false, w)
		s.acc.SpectraAreaSub(jet, step.Tracks, step.Event.Rho, false, w)
	}

	partners := s.partners(s.pool, step.Event)
	if s.inclusiveMode {
		s.acc.Inclusive(step.Event, step.Jets, step.Tracks, false, w)
		s.acc.MixedInclusive(step.Event, step.Jets, step.Tracks, partners, false, w)
	}
	if s.leadingMode {
		s.acc.Leading(step.Event, step.Jets, step.Tracks, false, w)
		s.acc.MixedLeading(step.Event, step.Jets, step.Tracks, partners, s.events.Good, false, w)
	}

	s.pool.Push(mixing.Snapshot{Event: step.Event, Jets: step.Jets, Partners: step.Tracks})
}

// ProcessTruthStep runs one particle-level step through the truth event
// validation and the same correlation pipeline at truth level.
func (s *Service) ProcessTruthStep(ctx context.Context, step TruthStep) {
	const path = "truth"
	metrics.RecordEventStage(path, "seen")

	if rej := s.events.CheckTruth(step.Truth, step.Reco, s.splitMode); rej != acceptance.RejectNone {
		metrics.RecordEventStage(path, string(rej))
		s.log.Debug(ctx, "truth event rejected",
			logger.String("event", step.Truth.ID),
			logger.String("gate", string(rej)))
		return
	}
	metrics.RecordEventStage(path, "selected")

	w := eventWeight(step.Truth)
	s.acc.EventQC(step.Truth, s.est, true, w)
	s.acc.QC(step.Particles, true, w)
	for _, jet := range step.Jets {
		s.acc.Spectra(jet, step.Particles, true, w)
		s.acc.SpectraAreaSub(jet, step.Particles, step.Truth.Rho, true, w)
	}

	partners := s.partners(s.truthPool, step.Truth)
	if s.inclusiveMode {
		s.acc.Inclusive(step.Truth, step.Jets, step.Particles, true, w)
		s.acc.MixedInclusive(step.Truth, step.Jets, step.Particles, partners, true, w)
	}
	if s.leadingMode {
		s.acc.Leading(step.Truth, step.Jets, step.Particles, true, w)
		s.acc.MixedLeading(step.Truth, step.Jets, step.Particles, partners, nil, true, w)
	}

	s.truthPool.Push(mixing.Snapshot{Event: step.Truth, Jets: step.Jets, Partners: step.Particles})
}

// Run processes a detector-level sample in order.
func (s *Service) Run(ctx context.Context, steps []Step) {
	s.log.Info(ctx, "processing sample", logger.Int("steps", len(steps)))
	for _, step := range steps {
		s.ProcessStep(ctx, step)
	}
	s.log.Info(ctx, "sample done", logger.Int("pool", s.pool.Len()))
}

// RunTruth processes a particle-level sample in order.
func (s *Service) RunTruth(ctx context.Context, steps []TruthStep) {
	s.log.Info(ctx, "processing truth sample", logger.Int("steps", len(steps)))
	for _, step := range steps {
		s.ProcessTruthStep(ctx, step)
	}
}

// Reset clears the carried mixing state between independent runs.
func (s *Service) Reset() {
	s.pool.Reset()
	s.truthPool.Reset()
}

func (s *Service) partners(pool *mixing.Pool, ev model.Event) []correlation.Partner {
	snaps, key, ok := pool.Partners(ev)
	if !ok {
		return nil
	}
	out := make([]correlation.Partner, len(snaps))
	for i, snap := range snaps {
		out[i] = correlation.Partner{
			Event:   snap.Event,
			Tracks:  snap.Partners,
			PoolBin: pool.BinIndex(key),
		}
	}
	return out
}
