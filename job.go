package qsim

import "time"

// Job is one shot of a sampling batch.
type Job struct {
	Shot      int
	Seed      uint64
	StartTime time.Time
}

// Source returns the random stream owned by this shot.
func (j Job) Source() Source {
	return NewSource(j.Seed, uint64(j.Shot))
}
