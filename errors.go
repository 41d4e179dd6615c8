package freqsketch

import "errors"

// Errors reported by the sketches and the top-k selector. Callers match them with
// errors.Is; the returned errors wrap these with the offending values.
var (
	ErrInvalidParameter   = errors.New("freqsketch: invalid parameter")
	ErrDuplicateKey       = errors.New("freqsketch: duplicate key")
	ErrEmptyStructure     = errors.New("freqsketch: empty structure")
	ErrCapacityExceeded   = errors.New("freqsketch: capacity exceeded")
	ErrInvariantViolation = errors.New("freqsketch: invariant violation")
)
