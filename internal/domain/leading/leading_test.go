package leading

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hepkit/jetcorr/internal/domain/model"
)

func TestReduce(t *testing.T) {
	Convey("Given a collection of jets", t, func() {
		jets := []model.Jet{
			{Pt: 5, Eta: 0.1, R: 40},
			{Pt: 30, Eta: -0.2, R: 40},
			{Pt: 12, Eta: 0.3, R: 40},
			{Pt: 30.0001, Eta: 0.4, R: 40},
		}

		Convey("The two largest corrected pTs win, ties keep the first seen", func() {
			pair, ok := Reduce(jets, 0, nil, nil)
			So(ok, ShouldBeTrue)
			So(pair.LeadingCorrPt, ShouldEqual, 30.0001)
			So(pair.Leading.Eta, ShouldEqual, 0.4)
			So(pair.SubleadingCorrPt, ShouldEqual, 30)
			So(pair.Subleading.Eta, ShouldEqual, -0.2)
		})

		Convey("Background subtraction orders by corrected pT", func() {
			sub := []model.Jet{
				{Pt: 25, Area: 0.3},
				{Pt: 15, Area: 0.3},
			}
			pair, ok := Reduce(sub, 2.0, nil, nil)
			So(ok, ShouldBeTrue)
			So(pair.LeadingCorrPt, ShouldAlmostEqual, 24.4, 1e-12)
			So(pair.SubleadingCorrPt, ShouldAlmostEqual, 14.4, 1e-12)
		})

		Convey("Fewer than two accepted jets yields no pair", func() {
			_, ok := Reduce(nil, 0, nil, nil)
			So(ok, ShouldBeFalse)

			_, ok = Reduce(jets[:1], 0, nil, nil)
			So(ok, ShouldBeFalse)
		})

		Convey("The accept filter narrows the candidates", func() {
			pair, ok := Reduce(jets, 0, func(j model.Jet) bool { return j.Pt < 30 }, nil)
			So(ok, ShouldBeTrue)
			So(pair.LeadingCorrPt, ShouldEqual, 12)
			So(pair.SubleadingCorrPt, ShouldEqual, 5)

			_, ok = Reduce(jets, 0, func(j model.Jet) bool { return j.Pt < 6 }, nil)
			So(ok, ShouldBeFalse)
		})

		Convey("Every accepted jet reaches the inclusive side output", func() {
			var seen []float64
			_, ok := Reduce(jets, 0, nil, func(corrPt float64) { seen = append(seen, corrPt) })
			So(ok, ShouldBeTrue)
			So(seen, ShouldResemble, []float64{5, 30, 12, 30.0001})

			seen = nil
			_, ok = Reduce(jets[:1], 0, nil, func(corrPt float64) { seen = append(seen, corrPt) })
			So(ok, ShouldBeFalse)
			So(seen, ShouldResemble, []float64{5})
		})
	})
}
