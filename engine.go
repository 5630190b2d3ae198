package qsim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/errnie"
)

// RunStats counts what a single execution did.
type RunStats struct {
	GatesApplied int
	GatesSkipped int
	Measurements int
}

// Result is the outcome of one execution run: the final state and the
// fully populated classical register.
type Result struct {
	State    *StateVector
	Register *Register
	Stats    RunStats
}

// Engine replays circuits against fresh registers.
type Engine struct {
	config  *Config
	metrics *Metrics
	logger  *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics records every execution into m.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

func NewEngine(config *Config, opts ...EngineOption) *Engine {
	config = configOrDefault(config)

	errnie.Info(
		"NewEngine - workers %v, tolerance %v, strict %v",
		config.Workers,
		config.Tolerance,
		config.Strict,
	)

	e := &Engine{
		config: config,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() *Config { return e.config }

func (e *Engine) Metrics() *Metrics { return e.metrics }

/*
Execute runs c once on a fresh |0…0⟩ register and an empty classical
register, drawing every random outcome from src.

Steps run strictly in order. A gate step whose condition does not match the
classical register is skipped; measurements always run. An error means an
internal invariant broke (a collapse onto a zero-probability outcome, or
normalization drift under Strict) and the partial result is returned with
it.
*/
func (e *Engine) Execute(c *Circuit, src Source) (*Result, error) {
	startTime := time.Now()
	result, err := e.execute(c, src)
	if e.metrics != nil {
		e.metrics.recordShot(startTime, result.Stats, err == nil)
	}
	return result, err
}

func (e *Engine) execute(c *Circuit, src Source) (*Result, error) {
	result := &Result{Register: NewRegister(c.numSlots)}

	state, err := NewStateVector(c.numQubits, e.config)
	if err != nil {
		return result, err
	}
	result.State = state

	for i, step := range c.steps {
		if err := e.executeStep(result, step, src); err != nil {
			return result, fmt.Errorf("step %d (%v): %w", i, step.Kind, err)
		}
	}
	return result, nil
}

func (e *Engine) executeStep(result *Result, step Step, src Source) error {
	state, register := result.State, result.Register

	switch step.Kind {
	case StepGate:
		if cond := step.Condition; cond != nil && register.Word(cond.Slots...) != cond.Value {
			result.Stats.GatesSkipped++
			return nil
		}
		if err := state.ApplyGate(step.Gate, step.Qubits...); err != nil {
			return err
		}
		result.Stats.GatesApplied++

		if every := e.config.CheckEvery; every > 0 && result.Stats.GatesApplied%every == 0 {
			return e.checkDrift(state)
		}

	case StepMeasure:
		for _, q := range step.Qubits {
			if err := state.rotateInto(step.Basis, q); err != nil {
				return err
			}
		}
		outcome, err := state.Measure(src, step.Qubits...)
		if err != nil {
			return err
		}
		result.Stats.Measurements++
		return record(register, step.Slots, outcome)

	case StepPeek:
		outcome, err := state.Peek(src, step.Qubits...)
		if err != nil {
			return err
		}
		result.Stats.Measurements++
		return record(register, step.Slots, outcome)

	case StepReset:
		outcome, err := state.Measure(src, step.Qubits...)
		if err != nil {
			return err
		}
		result.Stats.Measurements++
		if outcome == 1 {
			return state.ApplyGate(X(), step.Qubits...)
		}

	case StepResetAll:
		state.Reset()

	case StepBarrier:
	}
	return nil
}

// checkDrift enforces the normalization invariant: an error under Strict,
// otherwise a warning and a renormalization.
func (e *Engine) checkDrift(state *StateVector) error {
	err := state.CheckNormalization()
	if err == nil || e.config.Strict {
		return err
	}
	e.logger.Warn("renormalizing drifted state", "norm", state.Norm(), "tolerance", e.config.Tolerance)
	state.Renormalize()
	return nil
}

// record writes bit t of outcome to slots[t].
func record(register *Register, slots []int, outcome uint64) error {
	for t, slot := range slots {
		if err := register.Set(slot, outcome>>t&1 == 1); err != nil {
			return err
		}
	}
	return nil
}

type sampleOptions struct {
	memory bool
	states bool
}

// SampleOption configures repeated execution.
type SampleOption func(*sampleOptions)

// WithMemory keeps every shot's register key, in shot order.
func WithMemory() SampleOption {
	return func(o *sampleOptions) {
		o.memory = true
	}
}

// WithStates keeps every shot's final state, in shot order. Memory grows
// with shots × 2^N.
func WithStates() SampleOption {
	return func(o *sampleOptions) {
		o.states = true
	}
}

/*
Sample executes c shots times and returns the histogram of classical
register outcomes.

Shot i draws from NewSource(seed, i), so the histogram depends only on the
circuit, the seed and the shot count, never on how shots were spread over
workers. Cancelling ctx stops new shots from starting; shots already running
complete, and the histogram of completed shots is returned together with
the context error.
*/
func (e *Engine) Sample(ctx context.Context, c *Circuit, shots int, seed uint64, opts ...SampleOption) (*Histogram, error) {
	if shots < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidShots, shots)
	}

	var options sampleOptions
	for _, opt := range opts {
		opt(&options)
	}

	workers := max(1, min(e.config.Workers, shots))
	e.logger.Debug("sampling circuit", "shots", shots, "workers", workers, "steps", c.Len())

	pool := NewPool(ctx, e, c, workers, shots, options)

	startTime := time.Now()
	for shot := 0; shot < shots; shot++ {
		if !pool.Schedule(Job{Shot: shot, Seed: seed, StartTime: startTime}) {
			break
		}
	}

	histogram, err := pool.Close()
	if err == nil && histogram.Total() < shots {
		err = ctx.Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		e.logger.Error("sampling failed", "err", err, "completed", histogram.Total())
	}

	e.logger.Debug("sampling finished", "completed", histogram.Total(), "elapsed", time.Since(startTime))
	return histogram, err
}
