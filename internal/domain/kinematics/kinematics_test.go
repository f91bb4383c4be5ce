package kinematics_test

import (
	"math"
	"testing"

	"github.com/hepkit/jetcorr/internal/domain/kinematics"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrapAngle(t *testing.T) {
	Convey("Given a range of raw angle differences", t, func() {
		inputs := []float64{-13.2, -2 * math.Pi, -math.Pi, -0.1, 0, 0.1, math.Pi, 2 * math.Pi, 9.7, 42.0}
		bounds := []float64{-math.Pi / 2, 0, -math.Pi}

		Convey("The wrapped value lies in [lb, lb+2pi) and is congruent mod 2pi", func() {
			for _, lb := range bounds {
				for _, x := range inputs {
					v := kinematics.WrapAngle(x, lb)
					So(v, ShouldBeGreaterThanOrEqualTo, lb)
					So(v, ShouldBeLessThan, lb+2*math.Pi)
					// congruence: (v - x) must be an integer multiple of 2pi
					k := (v - x) / (2 * math.Pi)
					So(k, ShouldAlmostEqual, math.Round(k), 1e-9)
				}
			}
		})

		Convey("Values already in range are unchanged", func() {
			So(kinematics.WrapAngle(0.3, -math.Pi/2), ShouldAlmostEqual, 0.3, 1e-12)
			So(kinematics.WrapAngle(1.0, 0), ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("A difference just below the bound wraps up by 2pi", func() {
			v := kinematics.WrapAngle(-math.Pi/2-0.1, -math.Pi/2)
			So(v, ShouldAlmostEqual, -math.Pi/2-0.1+2*math.Pi, 1e-12)
		})
	})
}

func TestDeltaR(t *testing.T) {
	Convey("DeltaR is the euclidean distance in (eta, phi)", t, func() {
		So(kinematics.DeltaR(0, 0), ShouldEqual, 0)
		So(kinematics.DeltaR(3, 4), ShouldAlmostEqual, 5, 1e-12)
		So(kinematics.DeltaR(-0.3, 0.4), ShouldAlmostEqual, 0.5, 1e-12)
	})
}

func TestEtaFlip(t *testing.T) {
	Convey("Given distinct leading and subleading etas", t, func() {
		Convey("The sign follows the eta ordering", func() {
			So(kinematics.EtaFlip(0.5, -0.5), ShouldEqual, 1.0)
			So(kinematics.EtaFlip(-0.5, 0.5), ShouldEqual, -1.0)
		})

		Convey("EtaFlip is antisymmetric for unequal arguments", func() {
			pairs := [][2]float64{{0.1, 0.2}, {-0.7, 0.7}, {0.69, 0.68}, {-1, -2}}
			for _, p := range pairs {
				So(kinematics.EtaFlip(p[0], p[1]), ShouldEqual, -kinematics.EtaFlip(p[1], p[0]))
			}
		})
	})
}
