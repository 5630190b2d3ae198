package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/theapemachine/qsim"
)

type builder func(qubits int, theta float64) (*qsim.Circuit, error)

var builders = map[string]builder{
	"bell":     bell,
	"ghz":      ghz,
	"teleport": teleport,
	"grover":   grover,
}

func circuitNames() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func build(name string, qubits int, theta float64) (*qsim.Circuit, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown circuit %q, want one of %v", name, circuitNames())
	}
	return b(qubits, theta)
}

func bell(_ int, _ float64) (*qsim.Circuit, error) {
	return ghz(2, 0)
}

// ghz entangles all qubits into (|0…0⟩ + |1…1⟩)/√2.
func ghz(qubits int, _ float64) (*qsim.Circuit, error) {
	c, err := qsim.NewCircuit(qubits, qubits)
	if err != nil {
		return nil, err
	}

	errs := []error{c.H(0)}
	for q := 1; q < qubits; q++ {
		errs = append(errs, c.CX(q-1, q))
	}
	slots := make([]int, qubits)
	for i := range slots {
		slots[i] = i
	}
	errs = append(errs, c.MeasureAll(slots...))

	return c, errors.Join(errs...)
}

// teleport moves RY(theta)|0⟩ from qubit 0 to qubit 2 and measures it into
// slot 2, so slot 2 reads 1 with probability sin²(theta/2).
func teleport(_ int, theta float64) (*qsim.Circuit, error) {
	c, err := qsim.NewCircuit(3, 3)
	if err != nil {
		return nil, err
	}

	return c, errors.Join(
		c.RY(theta, 0),
		c.H(1),
		c.CX(1, 2),
		c.CX(0, 1),
		c.H(0),
		c.Measure(0, 0),
		c.Measure(1, 1),
		c.AddConditionalGate(qsim.Condition{Slots: []int{1}, Value: 1}, qsim.X(), 2),
		c.AddConditionalGate(qsim.Condition{Slots: []int{0}, Value: 1}, qsim.Z(), 2),
		c.Measure(2, 2),
	)
}

// grover runs one iteration of a two qubit search marking |11⟩, which finds
// it with certainty.
func grover(_ int, _ float64) (*qsim.Circuit, error) {
	c, err := qsim.NewCircuit(2, 2)
	if err != nil {
		return nil, err
	}

	return c, errors.Join(
		c.H(0), c.H(1),
		c.CZ(0, 1),
		c.H(0), c.H(1),
		c.X(0), c.X(1),
		c.CZ(0, 1),
		c.X(0), c.X(1),
		c.H(0), c.H(1),
		c.MeasureAll(0, 1),
	)
}
