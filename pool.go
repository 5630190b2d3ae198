package qsim

import (
	"context"

	"golang.org/x/sync/errgroup"
)

/*
Pool runs the shots of one sampling batch over a fixed set of workers.

Jobs flow through a buffered channel; each worker executes its shots on
its own register and random stream and keeps a private histogram that is
merged into the shared result when the worker stops. The circuit is only
ever read. The first worker error cancels the batch.
*/
type Pool struct {
	ctx        context.Context
	cancel     context.CancelFunc
	group      *errgroup.Group
	jobs       chan Job
	engine     *Engine
	circuit    *Circuit
	options    sampleOptions
	result     *Histogram
	workerList []*Worker

	// Indexed by shot; every index is written by exactly one worker.
	memory []uint64
	states []*StateVector
	done   []bool
}

func NewPool(ctx context.Context, engine *Engine, circuit *Circuit, workers, shots int, options sampleOptions) *Pool {
	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	p := &Pool{
		ctx:     ctx,
		cancel:  cancel,
		group:   group,
		jobs:    make(chan Job, workers*10),
		engine:  engine,
		circuit: circuit,
		options: options,
		result:  NewHistogram(circuit.numSlots),
	}

	if options.memory {
		p.memory = make([]uint64, shots)
	}
	if options.states {
		p.states = make([]*StateVector, shots)
	}
	if options.memory || options.states {
		p.done = make([]bool, shots)
	}

	for i := 0; i < workers; i++ {
		p.startWorker(i)
	}

	return p
}

// Schedule hands a shot to the workers. It returns false once the batch has
// been cancelled; no further shots should be scheduled then.
func (p *Pool) Schedule(job Job) bool {
	if p.ctx.Err() != nil {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	case <-p.ctx.Done():
		return false
	}
}

// Close stops accepting shots, waits for the workers and returns the merged
// histogram together with the first worker error.
func (p *Pool) Close() (*Histogram, error) {
	close(p.jobs)
	err := p.group.Wait()
	p.cancel()

	for shot, ok := range p.done {
		if !ok {
			continue
		}
		if p.memory != nil {
			p.result.memory = append(p.result.memory, p.memory[shot])
		}
		if p.states != nil {
			p.result.states = append(p.result.states, p.states[shot])
		}
	}

	return p.result, err
}

func (p *Pool) startWorker(id int) {
	worker := &Worker{
		id:      id,
		pool:    p,
		partial: NewHistogram(p.circuit.numSlots),
	}
	p.workerList = append(p.workerList, worker)

	p.group.Go(worker.run)
	p.engine.logger.Debug("started worker", "id", id)
}

func (p *Pool) store(shot int, result *Result) {
	if p.done == nil {
		return
	}
	if p.memory != nil {
		p.memory[shot] = result.Register.Key()
	}
	if p.states != nil {
		p.states[shot] = result.State
	}
	p.done[shot] = true
}
