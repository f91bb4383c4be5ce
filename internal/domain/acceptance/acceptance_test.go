package acceptance_test

import (
	"testing"

	"github.com/hepkit/jetcorr/internal/domain/acceptance"
	"github.com/hepkit/jetcorr/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestJetSelectorAreaCut(t *testing.T) {
	Convey("Given a jet with area 0.05 and radius 0.4", t, func() {
		jet := model.Jet{Pt: 30, Area: 0.05, R: 40}

		Convey("With areaFractionMin 0.6 the jet is rejected", func() {
			// 0.6 * pi * 0.4^2 ~ 0.301 > 0.05
			s := acceptance.NewJetSelector(acceptance.WithAreaFraction(0.6))
			So(s.Accepted(jet, nil, false), ShouldBeFalse)
		})

		Convey("With the area cut left at its sentinel the jet passes", func() {
			s := acceptance.NewJetSelector()
			So(s.Accepted(jet, nil, false), ShouldBeTrue)
		})
	})
}

func TestJetSelectorLeadConstituent(t *testing.T) {
	tracks := model.Constituents([]model.DetectorTrack{
		model.NewDetectorTrack(0.5, 0, 0, model.BitGlobalTracks),
		model.NewDetectorTrack(4.0, 0.1, 1, model.BitGlobalTracks),
	})
	jet := model.Jet{Pt: 20, Area: 0.5, R: 40}

	Convey("Given a constituent pT minimum of 3", t, func() {
		s := acceptance.NewJetSelector(
			acceptance.WithLeadConstituentPtWindow(3.0, acceptance.ConstituentPtMaxDisabled+1),
		)

		Convey("A jet with one constituent above the minimum passes", func() {
			So(s.Accepted(jet, tracks, false), ShouldBeTrue)
		})

		Convey("A jet with only soft constituents fails", func() {
			soft := model.Constituents([]model.DetectorTrack{
				model.NewDetectorTrack(0.5, 0, 0, model.BitGlobalTracks),
			})
			So(s.Accepted(jet, soft, false), ShouldBeFalse)
		})

		Convey("Truth-level jets are exempt by default", func() {
			So(s.Accepted(jet, nil, true), ShouldBeTrue)
		})

		Convey("Truth-level jets are checked when explicitly enabled", func() {
			strict := acceptance.NewJetSelector(
				acceptance.WithLeadConstituentPtWindow(3.0, acceptance.ConstituentPtMaxDisabled+1),
				acceptance.WithLeadConstituentCheckForTruth(true),
			)
			So(strict.Accepted(jet, nil, true), ShouldBeFalse)
		})
	})

	Convey("Given a constituent pT maximum of 3", t, func() {
		s := acceptance.NewJetSelector(
			acceptance.WithLeadConstituentPtWindow(acceptance.ConstituentPtMinDisabled-1, 3.0),
		)

		Convey("A jet containing a harder constituent fails", func() {
			So(s.Accepted(jet, tracks, false), ShouldBeFalse)
		})

		Convey("A jet with only soft constituents passes", func() {
			soft := model.Constituents([]model.DetectorTrack{
				model.NewDetectorTrack(0.5, 0, 0, model.BitGlobalTracks),
			})
			So(s.Accepted(jet, soft, false), ShouldBeTrue)
		})
	})
}

func TestJetSelectorEtaAcceptance(t *testing.T) {
	Convey("Given track acceptance [-0.9, 0.9] and jet window [-0.7, 0.7]", t, func() {
		s := acceptance.NewJetSelector(
			acceptance.WithJetEtaWindow(-0.7, 0.7),
			acceptance.WithTrackEtaWindow(-0.9, 0.9),
		)

		Convey("An R=0.4 jet must sit within [-0.5, 0.5]", func() {
			So(s.InEtaAcceptance(model.Jet{Eta: 0.0, R: 40}), ShouldBeTrue)
			So(s.InEtaAcceptance(model.Jet{Eta: 0.49, R: 40}), ShouldBeTrue)
			So(s.InEtaAcceptance(model.Jet{Eta: 0.51, R: 40}), ShouldBeFalse)
			So(s.InEtaAcceptance(model.Jet{Eta: -0.6, R: 40}), ShouldBeFalse)
		})

		Convey("A smaller radius loosens the tightening", func() {
			So(s.InEtaAcceptance(model.Jet{Eta: 0.65, R: 20}), ShouldBeTrue)
			So(s.InEtaAcceptance(model.Jet{Eta: 0.75, R: 20}), ShouldBeFalse)
		})
	})
}

func TestSelectTrack(t *testing.T) {
	Convey("Track selection checks class membership, particles pass", t, func() {
		global := model.NewDetectorTrack(1, 0, 0, model.BitGlobalTracks)
		quality := model.NewDetectorTrack(1, 0, 0, model.BitQualityTracks)
		part := model.NewTruthParticle(1, 0, 0)

		So(acceptance.SelectTrack(global, model.BitGlobalTracks), ShouldBeTrue)
		So(acceptance.SelectTrack(quality, model.BitGlobalTracks), ShouldBeFalse)
		So(acceptance.SelectTrack(part, model.BitGlobalTracks), ShouldBeTrue)
	})
}

func TestSelectionNames(t *testing.T) {
	Convey("Event selection names map to bit sets once at startup", t, func() {
		bits, err := acceptance.EventBitsFromName("sel8")
		So(err, ShouldBeNil)
		So(bits, ShouldEqual, model.BitSel8)

		none, err := acceptance.EventBitsFromName("none")
		So(err, ShouldBeNil)
		So(none, ShouldEqual, model.EventBits(0))

		_, err = acceptance.EventBitsFromName("sel7")
		So(err, ShouldNotBeNil)
	})

	Convey("Track selection names map to class bits", t, func() {
		bits, err := acceptance.TrackBitsFromName("globalTracks")
		So(err, ShouldBeNil)
		So(bits, ShouldEqual, model.BitGlobalTracks)

		_, err = acceptance.TrackBitsFromName("looseTracks")
		So(err, ShouldNotBeNil)
	})
}

func TestEventSelector(t *testing.T) {
	good := model.Event{PosZ: 1.0, CentFT0C: 30, Occupancy: 100, Bits: model.BitSel8}

	Convey("Given a selector with the standard gates", t, func() {
		s := acceptance.NewEventSelector(
			acceptance.WithVertexZCut(10),
			acceptance.WithCentralityWindow(0, 90, model.CentralityFT0C),
			acceptance.WithOccupancyWindow(0, 2000),
			acceptance.WithRequiredBits(model.BitSel8),
			acceptance.WithSkipMBGap(true),
		)

		Convey("A good event passes every gate", func() {
			So(s.Check(good), ShouldEqual, acceptance.RejectNone)
			So(s.Good(good), ShouldBeTrue)
		})

		Convey("Each gate names its rejection", func() {
			bad := good
			bad.Bits = 0
			So(s.Check(bad), ShouldEqual, acceptance.RejectSelection)

			bad = good
			bad.MBGap = true
			So(s.Check(bad), ShouldEqual, acceptance.RejectMBGap)

			bad = good
			bad.PosZ = -12
			So(s.Check(bad), ShouldEqual, acceptance.RejectVertex)

			bad = good
			bad.CentFT0C = 95
			So(s.Check(bad), ShouldEqual, acceptance.RejectCentrality)

			bad = good
			bad.Occupancy = 5000
			So(s.Check(bad), ShouldEqual, acceptance.RejectOccupancy)
		})
	})
}

func TestCheckTruth(t *testing.T) {
	truth := model.Event{PosZ: 2.0}
	reco := model.Event{PosZ: 2.1, CentFT0C: 30, Occupancy: 100, Bits: model.BitSel8}

	Convey("Given a selector and a truth event with reconstructed partners", t, func() {
		s := acceptance.NewEventSelector(
			acceptance.WithVertexZCut(10),
			acceptance.WithCentralityWindow(0, 90, model.CentralityFT0C),
			acceptance.WithOccupancyWindow(0, 2000),
			acceptance.WithRequiredBits(model.BitSel8),
		)

		Convey("One good reconstructed collision is enough", func() {
			So(s.CheckTruth(truth, []model.Event{reco}, acceptance.RejectSplitCollisions), ShouldEqual, acceptance.RejectNone)
		})

		Convey("No reconstructed collision rejects the truth event", func() {
			So(s.CheckTruth(truth, nil, acceptance.RejectSplitCollisions), ShouldEqual, acceptance.RejectNoReco)
		})

		Convey("Split handling follows the mode", func() {
			both := []model.Event{reco, reco}
			So(s.CheckTruth(truth, both, acceptance.RejectSplitCollisions), ShouldEqual, acceptance.RejectSplit)
			So(s.CheckTruth(truth, both, acceptance.AcceptSplitCheckAny), ShouldEqual, acceptance.RejectNone)
		})

		Convey("First-only mode ignores later reconstructed collisions", func() {
			badFirst := reco
			badFirst.Bits = 0
			split := []model.Event{badFirst, reco}
			So(s.CheckTruth(truth, split, acceptance.AcceptSplitCheckFirst), ShouldEqual, acceptance.RejectSelection)
			So(s.CheckTruth(truth, split, acceptance.AcceptSplitCheckAny), ShouldEqual, acceptance.RejectNone)
		})

		Convey("The truth vertex cut applies before anything else", func() {
			far := model.Event{PosZ: 30}
			So(s.CheckTruth(far, []model.Event{reco}, acceptance.AcceptSplitCheckAny), ShouldEqual, acceptance.RejectVertex)
		})
	})
}
