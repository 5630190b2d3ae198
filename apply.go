package qsim

import (
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// ApplyGate applies g to the given lines, controls first. Nothing is mutated
// when validation fails.
func (s *StateVector) ApplyGate(g Gate, qubits ...int) error {
	if err := s.checkApplication(g.Arity(), qubits); err != nil {
		return fmt.Errorf("%s: %w", g.Name(), err)
	}
	s.apply(g.controls, g.base, qubits)
	return nil
}

// Apply applies an arbitrary matrix to the given lines. The first line is
// the most significant bit of the matrix index. The matrix is not checked
// for unitarity; wrap it with Custom for that.
func (s *StateVector) Apply(m Matrix, qubits ...int) error {
	if err := s.checkApplication(m.Arity(), qubits); err != nil {
		return err
	}
	s.apply(0, m, qubits)
	return nil
}

func (s *StateVector) checkApplication(arity int, qubits []int) error {
	if arity == 0 || arity != len(qubits) {
		return fmt.Errorf("%w: arity %d, %d targets", ErrArityMismatch, arity, len(qubits))
	}
	return s.validateTargets(qubits)
}

/*
apply runs the group partition over the amplitudes.

The register splits into 2^(N-c-k) groups of basis indices that share all
bits outside the c control and k target lines and have every control bit
set. Within a group the 2^k amplitudes sit at base|offsets[j], where bit
k-1-t of j selects target line t. Each group is gathered, multiplied by m
and scattered back; groups never overlap, so disjoint group ranges can run
on separate goroutines without coordination.
*/
func (s *StateVector) apply(controls int, m Matrix, qubits []int) {
	if m.IsIdentity() {
		return
	}

	targets := qubits[controls:]
	k := len(targets)

	var ctrlMask int
	for _, q := range qubits[:controls] {
		ctrlMask |= 1 << q
	}

	offsets := make([]int, 1<<k)
	for j := range offsets {
		for t, q := range targets {
			if j>>(k-1-t)&1 == 1 {
				offsets[j] |= 1 << q
			}
		}
	}

	fixed := slices.Clone(qubits)
	slices.Sort(fixed)

	groups := 1 << (s.numQubits - len(qubits))
	kernel := s.kernelFor(m, offsets)

	run := func(lo, hi int) {
		scratch := make([]complex128, len(offsets))
		for r := lo; r < hi; r++ {
			kernel(expandIndex(r, fixed)|ctrlMask, scratch)
		}
	}

	workers := s.config.GateWorkers
	if workers <= 1 || s.numQubits < s.config.ParallelQubits || groups < workers {
		run(0, groups)
		return
	}

	var g errgroup.Group
	chunk := (groups + workers - 1) / workers
	for lo := 0; lo < groups; lo += chunk {
		hi := min(lo+chunk, groups)
		g.Go(func() error {
			run(lo, hi)
			return nil
		})
	}
	// run cannot fail; Wait is only the join.
	_ = g.Wait()
}

// kernelFor picks the update for one group given its base index.
func (s *StateVector) kernelFor(m Matrix, offsets []int) func(base int, scratch []complex128) {
	amps := s.amplitudes
	dim := m.dim

	if m.IsDiagonal() {
		diag := make([]complex128, dim)
		for j := range diag {
			diag[j] = m.data[j*dim+j]
		}
		return func(base int, _ []complex128) {
			for j, d := range diag {
				if d != 1 {
					amps[base|offsets[j]] *= d
				}
			}
		}
	}

	if dim == 2 {
		m00, m01, m10, m11 := m.data[0], m.data[1], m.data[2], m.data[3]
		bit := offsets[1]
		return func(base int, _ []complex128) {
			a0, a1 := amps[base], amps[base|bit]
			amps[base] = m00*a0 + m01*a1
			amps[base|bit] = m10*a0 + m11*a1
		}
	}

	return func(base int, scratch []complex128) {
		for j, off := range offsets {
			scratch[j] = amps[base|off]
		}
		for i, off := range offsets {
			row := m.data[i*dim : (i+1)*dim]
			var acc complex128
			for j, a := range scratch {
				acc += row[j] * a
			}
			amps[base|off] = acc
		}
	}
}

// expandIndex spreads the bits of r over the basis index positions not in
// fixed, leaving the fixed positions zero. fixed must be sorted ascending.
func expandIndex(r int, fixed []int) int {
	for _, p := range fixed {
		low := r & (1<<p - 1)
		r = (r>>p)<<(p+1) | low
	}
	return r
}
