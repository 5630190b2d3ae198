package qsim

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

/*
Histogram accumulates classical register outcomes over repeated runs.

Keys are Register.Key values: slot 0 is the least significant bit. Workers
fill private histograms and Merge them into the shared one, so the mutex is
only contended at merge time.
*/
type Histogram struct {
	mu     sync.RWMutex
	slots  int
	counts map[uint64]int
	total  int
	memory []uint64
	states []*StateVector
}

func NewHistogram(slots int) *Histogram {
	return &Histogram{
		slots:  slots,
		counts: make(map[uint64]int),
	}
}

func (h *Histogram) Add(key uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.counts[key]++
	h.total++
}

// Merge folds other's counts into h.
func (h *Histogram) Merge(other *Histogram) {
	other.mu.RLock()
	defer other.mu.RUnlock()

	h.mu.Lock()
	defer h.mu.Unlock()

	for key, n := range other.counts {
		h.counts[key] += n
	}
	h.total += other.total
}

func (h *Histogram) Count(key uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.counts[key]
}

func (h *Histogram) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.total
}

// Frequency is Count(key)/Total, or 0 for an empty histogram.
func (h *Histogram) Frequency(key uint64) float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.total == 0 {
		return 0
	}
	return float64(h.counts[key]) / float64(h.total)
}

func (h *Histogram) Counts() map[uint64]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return maps.Clone(h.counts)
}

// Keys returns the observed outcomes in ascending order.
func (h *Histogram) Keys() []uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Sorted(maps.Keys(h.counts))
}

// Strings keys the counts by bit string, slot 0 right-most.
func (h *Histogram) Strings() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]int, len(h.counts))
	for key, n := range h.counts {
		out[fmt.Sprintf("%0*b", h.slots, key)] = n
	}
	return out
}

// Vec returns a dense 2^slots vector of counts. Only sensible for small
// registers.
func (h *Histogram) Vec() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]int, 1<<min(h.slots, 24))
	for key, n := range h.counts {
		if key < uint64(len(out)) {
			out[key] = n
		}
	}
	return out
}

// Memory is the per-shot register key, in shot order, when sampling kept it.
func (h *Histogram) Memory() []uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.memory)
}

// States holds the final state of every shot, in shot order, when sampling
// kept them.
func (h *Histogram) States() []*StateVector {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.states)
}
