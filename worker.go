package qsim

import "fmt"

// Worker executes shots from its pool until the job channel closes or the
// batch is cancelled.
type Worker struct {
	id        int
	pool      *Pool
	partial   *Histogram
	processed int
}

func (w *Worker) run() error {
	defer w.pool.result.Merge(w.partial)

	for {
		select {
		case <-w.pool.ctx.Done():
			return nil
		case job, ok := <-w.pool.jobs:
			if !ok {
				return nil
			}
			// A cancelled batch starts no new shots, even ones already queued.
			if w.pool.ctx.Err() != nil {
				return nil
			}
			if err := w.processJob(job); err != nil {
				w.pool.engine.logger.Error("shot failed", "worker", w.id, "shot", job.Shot, "err", err)
				return err
			}
		}
	}
}

func (w *Worker) processJob(job Job) error {
	result, err := w.pool.engine.Execute(w.pool.circuit, job.Source())
	if err != nil {
		return fmt.Errorf("shot %d: %w", job.Shot, err)
	}

	w.partial.Add(result.Register.Key())
	w.pool.store(job.Shot, result)
	w.processed++
	return nil
}
