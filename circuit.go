package qsim

import (
	"fmt"
	"iter"
	"slices"

	"github.com/theapemachine/errnie"
)

// StepKind identifies what a circuit step does.
type StepKind uint8

const (
	StepGate StepKind = iota
	StepMeasure
	StepReset
	StepResetAll
	StepBarrier
	StepPeek
)

func (k StepKind) String() string {
	switch k {
	case StepGate:
		return "gate"
	case StepMeasure:
		return "measure"
	case StepReset:
		return "reset"
	case StepResetAll:
		return "reset-all"
	case StepBarrier:
		return "barrier"
	case StepPeek:
		return "peek"
	}
	return fmt.Sprintf("StepKind(%d)", k)
}

// Condition gates a step on the classical register: the step runs only when
// the listed slots, first slot least significant, form Value.
type Condition struct {
	Slots []int
	Value uint64
}

// Step is one operation of a circuit.
type Step struct {
	Kind   StepKind
	Gate   Gate
	Qubits []int

	// Slots receive measurement results, one per qubit. A nil Slots on a
	// measurement only collapses the state.
	Slots []int
	Basis Basis

	Condition *Condition
}

/*
Circuit is an ordered list of steps over a fixed number of qubits and
classical slots.

Every step is validated when it is added, so a malformed circuit fails at
build time and an error leaves the circuit unchanged. A Circuit carries no
runtime state; once built it can be executed any number of times, from any
number of goroutines, as long as nobody keeps adding steps.
*/
type Circuit struct {
	numQubits int
	numSlots  int
	steps     []Step
}

func NewCircuit(numQubits, numSlots int) (*Circuit, error) {
	errnie.Info("NewCircuit - qubits %v, slots %v", numQubits, numSlots)

	if numQubits < 1 || numQubits > MaxAddressableQubits {
		return nil, fmt.Errorf("%w: %d qubits", ErrInvalidSize, numQubits)
	}
	if numSlots < 0 {
		return nil, fmt.Errorf("%w: %d classical slots", ErrInvalidSize, numSlots)
	}

	return &Circuit{numQubits: numQubits, numSlots: numSlots}, nil
}

func (c *Circuit) NumQubits() int { return c.numQubits }

func (c *Circuit) NumSlots() int { return c.numSlots }

func (c *Circuit) Len() int { return len(c.steps) }

// Steps iterates the steps in order. Yielded steps share no memory with the
// circuit.
func (c *Circuit) Steps() iter.Seq2[int, Step] {
	return func(yield func(int, Step) bool) {
		for i, step := range c.steps {
			if !yield(i, copyStep(step)) {
				return
			}
		}
	}
}

// AddGate appends g acting on qubits, controls first.
func (c *Circuit) AddGate(g Gate, qubits ...int) error {
	return c.addGate(nil, g, qubits)
}

// AddConditionalGate appends g, applied only when cond holds at that point
// of the run.
func (c *Circuit) AddConditionalGate(cond Condition, g Gate, qubits ...int) error {
	if err := c.validateSlots(cond.Slots); err != nil {
		return err
	}
	if len(cond.Slots) < 64 && cond.Value >= 1<<len(cond.Slots) {
		return fmt.Errorf("%w: condition value %d does not fit %d slots", ErrInvalidSlot, cond.Value, len(cond.Slots))
	}
	cond.Slots = slices.Clone(cond.Slots)
	return c.addGate(&cond, g, qubits)
}

func (c *Circuit) addGate(cond *Condition, g Gate, qubits []int) error {
	if g.Arity() == 0 || g.Arity() != len(qubits) {
		return fmt.Errorf("%s: %w: arity %d, %d targets", g.Name(), ErrArityMismatch, g.Arity(), len(qubits))
	}
	if err := validateQubits(qubits, c.numQubits); err != nil {
		return fmt.Errorf("%s: %w", g.Name(), err)
	}

	c.steps = append(c.steps, Step{
		Kind:      StepGate,
		Gate:      g,
		Qubits:    slices.Clone(qubits),
		Condition: cond,
	})
	return nil
}

// Measure measures qubit in the Z basis into slot.
func (c *Circuit) Measure(qubit, slot int) error {
	return c.MeasureBasis(qubit, slot, BasisZ)
}

// MeasureBasis measures qubit along basis into slot. X and Y measurements
// rotate the qubit first and leave it rotated.
func (c *Circuit) MeasureBasis(qubit, slot int, basis Basis) error {
	return c.addMeasure(StepMeasure, []int{qubit}, []int{slot}, basis)
}

// MeasureInto jointly measures qubits, writing qubit i to slots[i]. With nil
// slots the measurement only collapses the state.
func (c *Circuit) MeasureInto(qubits, slots []int) error {
	return c.addMeasure(StepMeasure, qubits, slots, BasisZ)
}

// MeasureAll measures every qubit, qubit i into slots[i].
func (c *Circuit) MeasureAll(slots ...int) error {
	return c.addMeasure(StepMeasure, c.allQubits(), slots, BasisZ)
}

// MeasureAllBasis measures every qubit along basis, qubit i into slots[i].
func (c *Circuit) MeasureAllBasis(basis Basis, slots ...int) error {
	return c.addMeasure(StepMeasure, c.allQubits(), slots, basis)
}

// PeekAll samples every qubit into slots without collapsing the state.
func (c *Circuit) PeekAll(slots ...int) error {
	return c.addMeasure(StepPeek, c.allQubits(), slots, BasisZ)
}

func (c *Circuit) addMeasure(kind StepKind, qubits, slots []int, basis Basis) error {
	if len(qubits) == 0 {
		return fmt.Errorf("%w: measurement without qubits", ErrArityMismatch)
	}
	if err := validateQubits(qubits, c.numQubits); err != nil {
		return err
	}
	if slots != nil && len(slots) != len(qubits) {
		return fmt.Errorf("%w: %d qubits into %d slots", ErrArityMismatch, len(qubits), len(slots))
	}
	if err := c.validateSlots(slots); err != nil {
		return err
	}

	c.steps = append(c.steps, Step{
		Kind:   kind,
		Qubits: slices.Clone(qubits),
		Slots:  slices.Clone(slots),
		Basis:  basis,
	})
	return nil
}

// Reset returns qubit to |0⟩ by measuring it and flipping a 1.
func (c *Circuit) Reset(qubit int) error {
	if err := validateQubits([]int{qubit}, c.numQubits); err != nil {
		return err
	}
	c.steps = append(c.steps, Step{Kind: StepReset, Qubits: []int{qubit}})
	return nil
}

// ResetAll returns the whole register to |0…0⟩. The classical register is
// left alone.
func (c *Circuit) ResetAll() {
	c.steps = append(c.steps, Step{Kind: StepResetAll})
}

// Barrier marks qubits as a boundary no optimisation may move gates across.
// It does nothing during simulation.
func (c *Circuit) Barrier(qubits ...int) error {
	if err := validateQubits(qubits, c.numQubits); err != nil {
		return err
	}
	c.steps = append(c.steps, Step{Kind: StepBarrier, Qubits: slices.Clone(qubits)})
	return nil
}

func (c *Circuit) H(q int) error { return c.AddGate(H(), q) }
func (c *Circuit) X(q int) error { return c.AddGate(X(), q) }
func (c *Circuit) Y(q int) error { return c.AddGate(Y(), q) }
func (c *Circuit) Z(q int) error { return c.AddGate(Z(), q) }
func (c *Circuit) S(q int) error { return c.AddGate(S(), q) }
func (c *Circuit) T(q int) error { return c.AddGate(T(), q) }

func (c *Circuit) RX(theta float64, q int) error  { return c.AddGate(RX(theta), q) }
func (c *Circuit) RY(theta float64, q int) error  { return c.AddGate(RY(theta), q) }
func (c *Circuit) RZ(lambda float64, q int) error { return c.AddGate(RZ(lambda), q) }
func (c *Circuit) U1(lambda float64, q int) error { return c.AddGate(U1(lambda), q) }

func (c *Circuit) U2(phi, lambda float64, q int) error { return c.AddGate(U2(phi, lambda), q) }

func (c *Circuit) U3(theta, phi, lambda float64, q int) error {
	return c.AddGate(U3(theta, phi, lambda), q)
}

func (c *Circuit) CX(control, target int) error { return c.AddGate(CX(), control, target) }
func (c *Circuit) CZ(control, target int) error { return c.AddGate(CZ(), control, target) }
func (c *Circuit) Swap(a, b int) error          { return c.AddGate(Swap(), a, b) }

func (c *Circuit) CCX(c0, c1, target int) error { return c.AddGate(CCX(), c0, c1, target) }

func (c *Circuit) validateSlots(slots []int) error {
	for _, slot := range slots {
		if slot < 0 || slot >= c.numSlots {
			return fmt.Errorf("%w: slot %d, circuit has %d", ErrInvalidSlot, slot, c.numSlots)
		}
	}
	return nil
}

func (c *Circuit) allQubits() []int {
	qubits := make([]int, c.numQubits)
	for i := range qubits {
		qubits[i] = i
	}
	return qubits
}

func copyStep(s Step) Step {
	s.Qubits = slices.Clone(s.Qubits)
	s.Slots = slices.Clone(s.Slots)
	if s.Condition != nil {
		cond := *s.Condition
		cond.Slots = slices.Clone(cond.Slots)
		s.Condition = &cond
	}
	return s
}
