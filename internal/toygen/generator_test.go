package toygen

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		gen := NewGenerator(WithSeed(42), WithEvents(50))

		Convey("Samples are reproducible for the same seed", func() {
			a := NewGenerator(WithSeed(42), WithEvents(50)).Sample()
			b := NewGenerator(WithSeed(42), WithEvents(50)).Sample()

			So(len(a), ShouldEqual, 50)
			So(a[0].Event.PosZ, ShouldEqual, b[0].Event.PosZ)
			So(len(a[10].Tracks), ShouldEqual, len(b[10].Tracks))
		})

		Convey("Events stay inside the generation ranges", func() {
			for _, step := range gen.Sample() {
				So(step.Event.PosZ, ShouldBeBetweenOrEqual, -posZLimit, posZLimit)
				So(step.Event.Mult, ShouldBeBetweenOrEqual, 0, multMax)
				So(len(step.Tracks), ShouldBeBetweenOrEqual, minTracks, maxTracks)
				for _, jet := range step.Jets {
					So(jet.R, ShouldEqual, defaultRadius)
					for _, idx := range jet.Constituents {
						So(idx, ShouldBeBetween, -1, len(step.Tracks))
					}
				}
			}
		})

		Convey("Truth samples mirror one reconstructed event per truth event", func() {
			for _, step := range NewGenerator(WithSeed(3), WithEvents(20)).TruthSample() {
				So(len(step.Reco), ShouldEqual, 1)
				So(step.Truth.ID, ShouldNotEqual, step.Reco[0].ID)
				So(len(step.Particles), ShouldBeGreaterThanOrEqualTo, minTracks)
			}
		})
	})
}
