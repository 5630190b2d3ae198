package qsim

import (
	"errors"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewStateVector(t *testing.T) {
	Convey("Given a register size", t, func() {
		Convey("When it is valid", func() {
			s, err := NewStateVector(3, nil)

			Convey("Then the register should start in |000⟩", func() {
				So(err, ShouldBeNil)
				So(s.NumQubits(), ShouldEqual, 3)
				So(s.Len(), ShouldEqual, 8)

				a, err := s.Amplitude(0)
				So(err, ShouldBeNil)
				So(a, ShouldEqual, complex(1, 0))
				So(s.Norm(), ShouldEqual, 1.0)
			})
		})

		Convey("When it is zero", func() {
			_, err := NewStateVector(0, nil)
			So(errors.Is(err, ErrInvalidSize), ShouldBeTrue)
		})

		Convey("When it exceeds the configured ceiling", func() {
			config := NewConfig()
			config.MaxQubits = 4

			_, err := NewStateVector(5, config)
			So(errors.Is(err, ErrInvalidSize), ShouldBeTrue)
		})
	})
}

func TestAmplitude(t *testing.T) {
	Convey("Given a two qubit register", t, func() {
		s, _ := NewStateVector(2, nil)

		Convey("Reading past the last basis state should fail", func() {
			_, err := s.Amplitude(4)
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)

			_, err = s.Amplitude(-1)
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)
		})

		Convey("Amplitudes should return a copy", func() {
			amps := s.Amplitudes()
			amps[0] = 0
			a, _ := s.Amplitude(0)
			So(a, ShouldEqual, complex(1, 0))
		})
	})
}

func TestProbabilities(t *testing.T) {
	Convey("Given |10⟩, qubit 1 set", t, func() {
		s, _ := NewStateVector(2, nil)
		So(s.ApplyGate(X(), 1), ShouldBeNil)

		Convey("The marginal of qubit 1 should be certain", func() {
			probs, err := s.Probabilities(1)
			So(err, ShouldBeNil)
			So(probs, ShouldResemble, []float64{0, 1})
		})

		Convey("Outcome bit t should follow the t-th listed qubit", func() {
			probs, _ := s.Probabilities(0, 1)
			So(probs, ShouldResemble, []float64{0, 0, 1, 0})

			probs, _ = s.Probabilities(1, 0)
			So(probs, ShouldResemble, []float64{0, 1, 0, 0})
		})

		Convey("Invalid qubit lists should be rejected", func() {
			_, err := s.Probabilities(2)
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)

			_, err = s.Probabilities(1, 1)
			So(errors.Is(err, ErrInvalidTarget), ShouldBeTrue)
		})
	})

	Convey("Given a uniform superposition", t, func() {
		s, _ := NewStateVector(3, nil)
		for q := 0; q < 3; q++ {
			So(s.ApplyGate(H(), q), ShouldBeNil)
		}

		Convey("Every marginal should be uniform and sum to one", func() {
			probs, _ := s.Probabilities(2, 0)
			var total float64
			for _, p := range probs {
				So(p, ShouldAlmostEqual, 0.25, 1e-12)
				total += p
			}
			So(total, ShouldAlmostEqual, 1, 1e-12)
		})
	})
}

func TestCollapse(t *testing.T) {
	Convey("Given a Bell pair", t, func() {
		s := bellState()

		Convey("Collapsing qubit 0 onto 1 should leave |11⟩", func() {
			So(s.Collapse(1, 0), ShouldBeNil)

			a, _ := s.Amplitude(3)
			So(real(a), ShouldAlmostEqual, 1, 1e-12)
			So(s.Norm(), ShouldAlmostEqual, 1, 1e-12)

			probs, _ := s.Probabilities(1)
			So(probs[1], ShouldAlmostEqual, 1, 1e-12)
		})

		Convey("Collapsing onto an outcome that does not fit should fail", func() {
			err := s.Collapse(2, 0)
			So(errors.Is(err, ErrIndexOutOfRange), ShouldBeTrue)
		})
	})

	Convey("Given |1⟩", t, func() {
		s, _ := NewStateVector(1, nil)
		So(s.ApplyGate(X(), 0), ShouldBeNil)
		before := s.Amplitudes()

		Convey("Collapsing onto 0 should fail without touching the state", func() {
			err := s.Collapse(0, 0)
			So(errors.Is(err, ErrZeroProbabilityOutcome), ShouldBeTrue)
			So(s.Amplitudes(), ShouldResemble, before)
		})
	})
}

func TestNormalization(t *testing.T) {
	Convey("Given a state scaled by a non-unitary matrix", t, func() {
		s, _ := NewStateVector(1, nil)
		m, _ := NewMatrix([][]complex128{{2, 0}, {0, 1}})
		So(s.Apply(m, 0), ShouldBeNil)

		Convey("The drift should be reported", func() {
			So(s.Norm(), ShouldAlmostEqual, 4, 1e-12)
			So(errors.Is(s.CheckNormalization(), ErrNormalizationDrift), ShouldBeTrue)
		})

		Convey("Renormalize should restore a unit norm", func() {
			s.Renormalize()
			So(s.CheckNormalization(), ShouldBeNil)
		})
	})

	Convey("Given a long chain of rotations", t, func() {
		s, _ := NewStateVector(4, nil)
		for i := 0; i < 500; i++ {
			So(s.ApplyGate(RY(0.37*float64(i)), i%4), ShouldBeNil)
			So(s.ApplyGate(CX(), i%4, (i+1)%4), ShouldBeNil)
			So(s.ApplyGate(RZ(1.1), (i+2)%4), ShouldBeNil)
		}

		Convey("The norm should stay within tolerance", func() {
			So(math.Abs(s.Norm()-1), ShouldBeLessThan, 1e-9)
		})
	})
}

func TestResetAndClone(t *testing.T) {
	Convey("Given an entangled register", t, func() {
		s := bellState()
		clone := s.Clone()

		Convey("Reset should return it to |00⟩ and leave the clone alone", func() {
			s.Reset()

			a, _ := s.Amplitude(0)
			So(a, ShouldEqual, complex(1, 0))
			So(s.Norm(), ShouldEqual, 1.0)

			b, _ := clone.Amplitude(3)
			So(real(b), ShouldAlmostEqual, 1/math.Sqrt2, 1e-12)
			t.Log(spew.Sdump(clone.Amplitudes()))
		})
	})
}

func bellState() *StateVector {
	s, _ := NewStateVector(2, nil)
	_ = s.ApplyGate(H(), 0)
	_ = s.ApplyGate(CX(), 0, 1)
	return s
}
