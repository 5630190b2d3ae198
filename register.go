package qsim

import (
	"fmt"
	"strings"
)

// Register is the classical register filled by measurements. Slots start
// unset; an unset slot reads as 0 when slots are combined into a word.
type Register struct {
	bits []bool
	set  []bool
}

func NewRegister(slots int) *Register {
	return &Register{
		bits: make([]bool, slots),
		set:  make([]bool, slots),
	}
}

func (r *Register) Len() int { return len(r.bits) }

func (r *Register) Set(slot int, bit bool) error {
	if slot < 0 || slot >= len(r.bits) {
		return fmt.Errorf("%w: slot %d, register has %d", ErrInvalidSlot, slot, len(r.bits))
	}
	r.bits[slot] = bit
	r.set[slot] = true
	return nil
}

// Bit returns the value of a slot and whether a measurement has written it.
func (r *Register) Bit(slot int) (bool, bool) {
	if slot < 0 || slot >= len(r.bits) {
		return false, false
	}
	return r.bits[slot], r.set[slot]
}

// Word packs the listed slots into an integer, the first slot being the
// least significant bit.
func (r *Register) Word(slots ...int) uint64 {
	var w uint64
	for i, slot := range slots {
		if bit, _ := r.Bit(slot); bit {
			w |= 1 << i
		}
	}
	return w
}

// Key packs the whole register, slot 0 being the least significant bit.
// Only the first 64 slots contribute; use String for wider registers.
func (r *Register) Key() uint64 {
	var w uint64
	for slot := 0; slot < len(r.bits) && slot < 64; slot++ {
		if r.bits[slot] {
			w |= 1 << slot
		}
	}
	return w
}

// String renders the register with slot 0 as the right-most character.
func (r *Register) String() string {
	var b strings.Builder
	for slot := len(r.bits) - 1; slot >= 0; slot-- {
		if r.bits[slot] {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func (r *Register) Clone() *Register {
	return &Register{
		bits: append([]bool(nil), r.bits...),
		set:  append([]bool(nil), r.set...),
	}
}
