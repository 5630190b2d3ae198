package qsim

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type fixedSource float64

func (f fixedSource) Float64() float64 { return float64(f) }

func TestSampleIndex(t *testing.T) {
	Convey("Given a distribution", t, func() {
		probs := []float64{0.25, 0, 0.5, 0.25}

		Convey("The draw should land in its cumulative interval", func() {
			So(SampleIndex(probs, 0), ShouldEqual, 0)
			So(SampleIndex(probs, 0.2499), ShouldEqual, 0)
			So(SampleIndex(probs, 0.25), ShouldEqual, 2)
			So(SampleIndex(probs, 0.7499), ShouldEqual, 2)
			So(SampleIndex(probs, 0.75), ShouldEqual, 3)
		})

		Convey("A residue past the total should pick the last non-zero outcome", func() {
			So(SampleIndex([]float64{0.3, 0.3, 0}, 0.9999), ShouldEqual, 1)
		})

		Convey("An empty distribution should yield no outcome", func() {
			So(SampleIndex([]float64{0, 0}, 0.5), ShouldEqual, -1)
		})
	})
}

func TestMeasure(t *testing.T) {
	Convey("Given a qubit rotated so that |β|² is 0.3", t, func() {
		theta := 2 * math.Asin(math.Sqrt(0.3))
		s, _ := NewStateVector(1, nil)
		So(s.ApplyGate(RY(theta), 0), ShouldBeNil)

		Convey("Peeking many times should reproduce the distribution", func() {
			src := NewSource(7, 0)
			ones := 0
			for i := 0; i < 10000; i++ {
				outcome, err := s.Peek(src, 0)
				So(err, ShouldBeNil)
				ones += int(outcome)
			}
			So(float64(ones)/10000, ShouldAlmostEqual, 0.3, 0.02)
		})

		Convey("A fixed draw should select the matching outcome", func() {
			outcome, err := s.Measure(fixedSource(0.5), 0)
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, 0)
		})

		Convey("Measuring twice should repeat the first outcome", func() {
			src := NewSource(3, 9)
			first, err := s.Measure(src, 0)
			So(err, ShouldBeNil)

			for i := 0; i < 20; i++ {
				again, err := s.Measure(src, 0)
				So(err, ShouldBeNil)
				So(again, ShouldEqual, first)
			}
			So(s.Norm(), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Measuring nothing should be rejected", func() {
			_, err := s.Measure(fixedSource(0.5))
			So(errors.Is(err, ErrArityMismatch), ShouldBeTrue)
		})
	})

	Convey("Given a Bell pair", t, func() {
		s := bellState()

		Convey("A joint measurement should only see correlated outcomes", func() {
			outcome, err := s.Measure(fixedSource(0.9), 0, 1)
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, 3)

			probs, _ := s.Probabilities(0)
			So(probs[1], ShouldAlmostEqual, 1, 1e-12)
		})
	})

	Convey("Given an outcome whose probability is below the tolerance", t, func() {
		s, _ := NewStateVector(1, nil)
		So(s.ApplyGate(RY(5e-5), 0), ShouldBeNil)

		probs, _ := s.Probabilities(0)
		So(probs[1], ShouldBeGreaterThan, 0)
		So(probs[1], ShouldBeLessThanOrEqualTo, s.config.Tolerance)

		Convey("A draw at the very top of the range should still collapse cleanly", func() {
			outcome, err := s.Measure(fixedSource(0.99999999995), 0)
			So(err, ShouldBeNil)
			So(outcome, ShouldEqual, 0)
			So(s.Norm(), ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Peek should never report it", func() {
			src := NewSource(12, 0)
			for i := 0; i < 1000; i++ {
				outcome, err := s.Peek(src, 0)
				So(err, ShouldBeNil)
				So(outcome, ShouldEqual, 0)
			}
		})
	})
}

func TestNewSource(t *testing.T) {
	Convey("Given two sources", t, func() {
		Convey("The same seed and stream should repeat", func() {
			a, b := NewSource(1, 2), NewSource(1, 2)
			for i := 0; i < 10; i++ {
				So(a.Float64(), ShouldEqual, b.Float64())
			}
		})

		Convey("Different streams should diverge", func() {
			a, b := NewSource(1, 2), NewSource(1, 3)
			So(a.Float64(), ShouldNotEqual, b.Float64())
		})
	})
}

func TestRotateInto(t *testing.T) {
	Convey("Given |+⟩", t, func() {
		s, _ := NewStateVector(1, nil)
		So(s.ApplyGate(H(), 0), ShouldBeNil)

		Convey("The X basis rotation should map it onto |0⟩", func() {
			So(s.rotateInto(BasisX, 0), ShouldBeNil)
			probs, _ := s.Probabilities(0)
			So(probs[0], ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("The Z basis should leave it alone", func() {
			before := s.Amplitudes()
			So(s.rotateInto(BasisZ, 0), ShouldBeNil)
			So(s.Amplitudes(), ShouldResemble, before)
		})
	})

	Convey("Given |+i⟩", t, func() {
		s, _ := NewStateVector(1, nil)
		So(s.ApplyGate(H(), 0), ShouldBeNil)
		So(s.ApplyGate(S(), 0), ShouldBeNil)

		Convey("The Y basis rotation should map it onto |0⟩", func() {
			So(s.rotateInto(BasisY, 0), ShouldBeNil)
			probs, _ := s.Probabilities(0)
			So(probs[0], ShouldAlmostEqual, 1, 1e-12)
		})
	})

	Convey("Basis names should be single letters", t, func() {
		So(BasisX.String(), ShouldEqual, "X")
		So(BasisY.String(), ShouldEqual, "Y")
		So(BasisZ.String(), ShouldEqual, "Z")
	})
}
