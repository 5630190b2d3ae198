package qsim

import (
	"fmt"
	"math"
)

/*
StateVector owns the 2^N complex amplitudes of an N qubit register.

Qubit q is bit q of the basis index, so qubit 0 is the least significant
bit. The vector is exclusively owned by one execution run and is mutated in
place; it is never shared between goroutines except through the gate
applicator's disjoint group partition.
*/
type StateVector struct {
	amplitudes []complex128
	numQubits  int
	config     *Config
}

// NewStateVector allocates a register in |0…0⟩.
func NewStateVector(numQubits int, config *Config) (*StateVector, error) {
	config = configOrDefault(config)

	limit := min(config.MaxQubits, MaxAddressableQubits)
	if numQubits < 1 || numQubits > limit {
		return nil, fmt.Errorf("%w: %d qubits, want 1..%d", ErrInvalidSize, numQubits, limit)
	}

	amplitudes := make([]complex128, 1<<numQubits)
	amplitudes[0] = 1

	return &StateVector{
		amplitudes: amplitudes,
		numQubits:  numQubits,
		config:     config,
	}, nil
}

func (s *StateVector) NumQubits() int { return s.numQubits }

// Len is the number of amplitudes, 2^NumQubits.
func (s *StateVector) Len() int { return len(s.amplitudes) }

// Amplitude returns the amplitude of one basis state.
func (s *StateVector) Amplitude(index int) (complex128, error) {
	if index < 0 || index >= len(s.amplitudes) {
		return 0, fmt.Errorf("%w: basis index %d, register has %d", ErrIndexOutOfRange, index, len(s.amplitudes))
	}
	return s.amplitudes[index], nil
}

// Amplitudes returns a copy of the full vector.
func (s *StateVector) Amplitudes() []complex128 {
	return append([]complex128(nil), s.amplitudes...)
}

// Norm is the sum of squared magnitudes; 1 for a valid state.
func (s *StateVector) Norm() float64 {
	var total float64
	for _, a := range s.amplitudes {
		total += abs2(a)
	}
	return total
}

// CheckNormalization reports ErrNormalizationDrift when the norm is further
// than the configured tolerance from 1.
func (s *StateVector) CheckNormalization() error {
	norm := s.Norm()
	if math.Abs(norm-1) > s.config.Tolerance {
		return fmt.Errorf("%w: norm %.15f", ErrNormalizationDrift, norm)
	}
	return nil
}

// Renormalize rescales the vector to unit norm.
func (s *StateVector) Renormalize() {
	norm := s.Norm()
	if norm == 0 {
		return
	}
	scale(s.amplitudes, complex(1/math.Sqrt(norm), 0))
}

// Reset returns the register to |0…0⟩.
func (s *StateVector) Reset() {
	clear(s.amplitudes)
	s.amplitudes[0] = 1
}

func (s *StateVector) Clone() *StateVector {
	return &StateVector{
		amplitudes: s.Amplitudes(),
		numQubits:  s.numQubits,
		config:     s.config,
	}
}

/*
Probabilities returns the marginal distribution of the given qubits.

Entry o of the result is the probability that qubit qubits[t] reads bit t of
o, for every t. The result has 2^len(qubits) entries and is computed in a
single pass over the amplitudes.
*/
func (s *StateVector) Probabilities(qubits ...int) ([]float64, error) {
	if err := s.validateTargets(qubits); err != nil {
		return nil, err
	}

	probs := make([]float64, 1<<len(qubits))
	for i, a := range s.amplitudes {
		p := abs2(a)
		if p == 0 {
			continue
		}
		probs[s.outcomeOf(i, qubits)] += p
	}
	return probs, nil
}

/*
Collapse projects the state onto outcome for the given qubits and rescales
the survivors to unit norm. Outcome bits follow the same layout as
Probabilities. ErrZeroProbabilityOutcome is returned, and the state left
untouched, when the outcome probability is within tolerance of zero.
*/
func (s *StateVector) Collapse(outcome uint64, qubits ...int) error {
	if err := s.validateTargets(qubits); err != nil {
		return err
	}
	if outcome >= 1<<len(qubits) {
		return fmt.Errorf("%w: outcome %d for %d qubits", ErrIndexOutOfRange, outcome, len(qubits))
	}

	mask, want := s.outcomeMask(outcome, qubits)

	var kept float64
	for i, a := range s.amplitudes {
		if i&mask == want {
			kept += abs2(a)
		}
	}
	if kept <= s.config.Tolerance {
		return fmt.Errorf("%w: outcome %d has probability %g", ErrZeroProbabilityOutcome, outcome, kept)
	}

	factor := complex(1/math.Sqrt(kept), 0)
	for i := range s.amplitudes {
		if i&mask == want {
			s.amplitudes[i] *= factor
		} else {
			s.amplitudes[i] = 0
		}
	}
	return nil
}

// outcomeOf extracts the bits of basis index i at the given qubits.
func (s *StateVector) outcomeOf(i int, qubits []int) int {
	var o int
	for t, q := range qubits {
		o |= (i >> q & 1) << t
	}
	return o
}

// outcomeMask returns the basis index mask covering qubits and the masked
// value that matches outcome.
func (s *StateVector) outcomeMask(outcome uint64, qubits []int) (int, int) {
	var mask, want int
	for t, q := range qubits {
		mask |= 1 << q
		if outcome>>t&1 == 1 {
			want |= 1 << q
		}
	}
	return mask, want
}

// validateTargets checks range and distinctness of a qubit list.
func (s *StateVector) validateTargets(qubits []int) error {
	return validateQubits(qubits, s.numQubits)
}

func validateQubits(qubits []int, numQubits int) error {
	var seen uint64
	for _, q := range qubits {
		if q < 0 || q >= numQubits {
			return fmt.Errorf("%w: qubit %d, register has %d", ErrIndexOutOfRange, q, numQubits)
		}
		if seen&(1<<q) != 0 {
			return fmt.Errorf("%w: qubit %d listed twice", ErrInvalidTarget, q)
		}
		seen |= 1 << q
	}
	return nil
}

func abs2(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}

func scale(v []complex128, f complex128) {
	for i := range v {
		v[i] *= f
	}
}
