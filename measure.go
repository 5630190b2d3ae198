package qsim

import (
	"fmt"
	"math/rand/v2"
)

// Source yields uniform draws in [0, 1). A Source belongs to exactly one
// run; *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns an independent PCG stream. Repeated execution derives
// one stream per shot from (seed, shot) so outcomes do not depend on which
// worker ran the shot.
func NewSource(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

/*
SampleIndex selects the outcome whose cumulative probability interval
contains r, scanning outcomes in ascending order. When rounding leaves r past
the final cumulative sum, the last outcome with non-zero probability is
chosen so a zero-probability outcome is never returned.
*/
func SampleIndex(probs []float64, r float64) int {
	var cumulative float64
	last := -1
	for i, p := range probs {
		if p <= 0 {
			continue
		}
		last = i
		cumulative += p
		if r < cumulative {
			return i
		}
	}
	return last
}

// Measure draws one outcome for the given qubits from src, collapses the
// state onto it and returns it. Outcome bits follow Probabilities.
func (s *StateVector) Measure(src Source, qubits ...int) (uint64, error) {
	outcome, err := s.Peek(src, qubits...)
	if err != nil {
		return 0, err
	}
	if err := s.Collapse(outcome, qubits...); err != nil {
		return 0, err
	}
	return outcome, nil
}

// Peek draws an outcome without collapsing the state. This has no physical
// counterpart and exists for inspection.
//
// Outcomes at or below the configured tolerance are never drawn, the same
// threshold Collapse refuses, and the draw is spread over the rest.
func (s *StateVector) Peek(src Source, qubits ...int) (uint64, error) {
	if len(qubits) == 0 {
		return 0, fmt.Errorf("%w: nothing to measure", ErrArityMismatch)
	}

	probs, err := s.Probabilities(qubits...)
	if err != nil {
		return 0, err
	}

	var total float64
	for i, p := range probs {
		if p <= s.config.Tolerance {
			probs[i] = 0
			continue
		}
		total += p
	}

	idx := SampleIndex(probs, src.Float64()*total)
	if idx < 0 {
		return 0, fmt.Errorf("%w: empty distribution", ErrZeroProbabilityOutcome)
	}
	return uint64(idx), nil
}

// Basis selects the axis a measurement is taken along.
type Basis uint8

const (
	BasisZ Basis = iota
	BasisX
	BasisY
)

func (b Basis) String() string {
	switch b {
	case BasisX:
		return "X"
	case BasisY:
		return "Y"
	default:
		return "Z"
	}
}

// rotateInto applies the change of basis that turns an X or Y measurement
// into a Z measurement. The state stays rotated afterwards.
func (s *StateVector) rotateInto(b Basis, qubit int) error {
	switch b {
	case BasisX:
		return s.ApplyGate(H(), qubit)
	case BasisY:
		if err := s.ApplyGate(Sdg(), qubit); err != nil {
			return err
		}
		return s.ApplyGate(H(), qubit)
	}
	return nil
}
