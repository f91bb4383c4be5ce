package app_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hepkit/jetcorr/internal/adapters/sink"
	"github.com/hepkit/jetcorr/internal/app"
	"github.com/hepkit/jetcorr/internal/domain/acceptance"
	"github.com/hepkit/jetcorr/internal/domain/correlation"
	"github.com/hepkit/jetcorr/internal/domain/mixing"
	"github.com/hepkit/jetcorr/internal/domain/model"
	"github.com/hepkit/jetcorr/internal/toygen"
	"github.com/hepkit/jetcorr/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func newService(mem *sink.Memory, opts ...app.Option) *app.Service {
	acc := correlation.NewAccumulator(mem, acceptance.NewJetSelector(),
		correlation.WithDijetPtThresholds(10, 5))
	return app.NewService(acc, opts...)
}

func TestProcessStep(t *testing.T) {
	Convey("Given a service with loose dijet thresholds", t, func() {
		ctx := context.Background()
		mem := sink.NewMemory()
		svc := newService(mem)

		goodEvent := model.Event{ID: "a", PosZ: 1, Mult: 20, Rho: 1, Weight: 1}
		jets := []model.Jet{
			{Pt: 25, Eta: 0.2, Phi: 0, Area: 0.3, R: 40},
			{Pt: 15, Eta: -0.1, Phi: 3.0, Area: 0.3, R: 40},
		}
		tracks := []model.Constituent{
			model.NewDetectorTrack(1.5, 0.3, 1.0, model.BitGlobalTracks),
		}

		Convey("A good step fills monitoring, spectra and correlations", func() {
			svc.ProcessStep(ctx, app.Step{Event: goodEvent, Jets: jets, Tracks: tracks})

			So(len(mem.Series("event_posz")), ShouldEqual, 1)
			So(len(mem.Series("track_pt")), ShouldEqual, 1)
			So(len(mem.Series("jet_pt")), ShouldEqual, 2)
			So(len(mem.Series("jeth_corr")), ShouldEqual, 1)
			So(len(mem.Series("jeth_corr_inclusive")), ShouldEqual, 2)
		})

		Convey("An out-of-acceptance jet stays out of the spectra", func() {
			far := []model.Jet{{Pt: 25, Eta: 2.5, Phi: 0, Area: 0.3, R: 40}}
			svc.ProcessStep(ctx, app.Step{Event: goodEvent, Jets: far, Tracks: tracks})

			So(mem.Series("jet_pt"), ShouldBeEmpty)
			So(mem.Series("jet_corrpt_areasub"), ShouldBeEmpty)
			So(len(mem.Series("event_posz")), ShouldEqual, 1)
		})

		Convey("A rejected event leaves no fills at all", func() {
			bad := goodEvent
			bad.PosZ = 25
			svc.ProcessStep(ctx, app.Step{Event: bad, Jets: jets, Tracks: tracks})

			So(mem.Series("event_posz"), ShouldBeEmpty)
			So(mem.Series("jeth_corr"), ShouldBeEmpty)
		})

		Convey("Mixing only starts once a partner is buffered", func() {
			svc.ProcessStep(ctx, app.Step{Event: goodEvent, Jets: jets, Tracks: tracks})
			So(mem.Series("mixjeth_corr"), ShouldBeEmpty)

			second := goodEvent
			second.ID = "b"
			svc.ProcessStep(ctx, app.Step{Event: second, Jets: jets, Tracks: tracks})
			So(len(mem.Series("mixjeth_corr")), ShouldEqual, 1)

			row := mem.Series("mixjeth_corr")[0]
			So(len(row), ShouldEqual, 9)

			Convey("And Reset clears the carried pool state", func() {
				svc.Reset()
				third := goodEvent
				third.ID = "c"
				svc.ProcessStep(ctx, app.Step{Event: third, Jets: jets, Tracks: tracks})
				So(len(mem.Series("mixjeth_corr")), ShouldEqual, 1)
			})
		})

		Convey("Disabled modes stay silent", func() {
			quiet := newService(mem, app.WithModes(false, true))
			quiet.ProcessStep(ctx, app.Step{Event: goodEvent, Jets: jets, Tracks: tracks})

			So(mem.Series("jeth_corr_inclusive"), ShouldBeEmpty)
			So(len(mem.Series("jeth_corr")), ShouldEqual, 1)
		})
	})
}

func TestProcessTruthStep(t *testing.T) {
	Convey("Given a truth step mapped to one selected reconstructed event", t, func() {
		ctx := context.Background()
		mem := sink.NewMemory()
		svc := newService(mem)

		truth := model.Event{ID: "t", PosZ: 1, Mult: 20, Rho: 1, Weight: 1, Bits: model.BitSelMC}
		reco := []model.Event{{ID: "r", PosZ: 1.2, Mult: 21}}
		jets := []model.Jet{
			{Pt: 25, Eta: 0.2, Phi: 0, Area: 0.3, R: 40},
			{Pt: 15, Eta: -0.1, Phi: 3.0, Area: 0.3, R: 40},
		}
		particles := []model.Constituent{model.NewTruthParticle(1.5, 0.3, 1.0)}

		Convey("Fills land under the truth names", func() {
			svc.ProcessTruthStep(ctx, app.TruthStep{Truth: truth, Reco: reco, Jets: jets, Particles: particles})

			So(len(mem.Series("jeth_corr_truth")), ShouldEqual, 1)
			So(mem.Series("jeth_corr"), ShouldBeEmpty)
		})

		Convey("A truth event with no reconstruction is dropped", func() {
			svc.ProcessTruthStep(ctx, app.TruthStep{Truth: truth, Jets: jets, Particles: particles})
			So(mem.Series("jeth_corr_truth"), ShouldBeEmpty)
		})

		Convey("Split collisions are rejected under the default mode", func() {
			split := append(reco, model.Event{ID: "r2", PosZ: 1.3})
			svc.ProcessTruthStep(ctx, app.TruthStep{Truth: truth, Reco: split, Jets: jets, Particles: particles})
			So(mem.Series("jeth_corr_truth"), ShouldBeEmpty)

			Convey("But accepted when any-mode is configured", func() {
				anyMode := newService(mem, app.WithSplitMode(acceptance.AcceptSplitCheckAny))
				anyMode.ProcessTruthStep(ctx, app.TruthStep{Truth: truth, Reco: split, Jets: jets, Particles: particles})
				So(len(mem.Series("jeth_corr_truth")), ShouldEqual, 1)
			})
		})
	})
}

func TestServiceOverSyntheticSample(t *testing.T) {
	Convey("Given a seeded synthetic sample", t, func() {
		ctx := context.Background()
		mem := sink.NewMemory()
		svc := newService(mem, app.WithPools(
			mixing.NewPool(mixing.WithDepth(3)),
			mixing.NewPool(mixing.WithDepth(3)),
		))

		gen := toygen.NewGenerator(toygen.WithSeed(7), toygen.WithEvents(200))

		Convey("A full run produces spectra and correlation output", func() {
			svc.Run(ctx, gen.Sample())

			So(len(mem.Series("jet_pt")), ShouldBeGreaterThan, 0)
			So(len(mem.Series("inclusivejet_corrpt")), ShouldBeGreaterThan, 0)
			So(len(mem.Series("track_pt")), ShouldBeGreaterThan, 0)
		})

		Convey("A truth run produces truth-level output", func() {
			svc.RunTruth(ctx, gen.TruthSample())
			So(len(mem.Series("track_pt_truth")), ShouldBeGreaterThan, 0)
		})
	})
}
