package qsim

import "errors"

// Construction errors are returned before any state is touched. Execution
// errors indicate a broken internal contract and are never retried.
var (
	ErrInvalidSize            = errors.New("invalid register size")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrInvalidTarget          = errors.New("duplicate qubit in target list")
	ErrArityMismatch          = errors.New("gate arity does not match target count")
	ErrNonUnitaryGate         = errors.New("matrix is not unitary")
	ErrZeroProbabilityOutcome = errors.New("outcome has zero probability")
	ErrNormalizationDrift     = errors.New("state norm drifted beyond tolerance")
	ErrInvalidSlot            = errors.New("classical slot out of range")
	ErrInvalidShots           = errors.New("shot count must be positive")
)
