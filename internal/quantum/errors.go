package quantum

import "errors"

// Domain errors for variational Monte Carlo operations.
var (
	// ErrForcesNotImplemented indicates a gradient request that the
	// library deliberately does not support: forces of a plain operator
	// against a mixed variational state. Callers must use a
	// super-operator instead.
	ErrForcesNotImplemented = errors.New("quantum: forces for operators on mixed states are not implemented")

	// ErrChunkedNotSupported indicates chunked evaluation was requested
	// on a path that has no chunked implementation.
	ErrChunkedNotSupported = errors.New("quantum: chunked evaluation not supported for this operator")

	// ErrInvalidConfig indicates a configuration with invalid values or
	// values outside the local Hilbert space.
	ErrInvalidConfig = errors.New("quantum: invalid configuration (NaN, Inf or non-local value)")

	// ErrDimensionMismatch indicates mismatched configuration/operator
	// or parameter-vector dimensions.
	ErrDimensionMismatch = errors.New("quantum: dimension mismatch")

	// ErrNotConverged indicates an iterative solver stopped before
	// reaching its tolerance.
	ErrNotConverged = errors.New("quantum: iterative solver did not converge")
)

// SweepError wraps an error with sampling context.
type SweepError struct {
	Sweep   int
	Chain   int
	Wrapped error
}

func (e *SweepError) Error() string {
	return e.Wrapped.Error()
}

func (e *SweepError) Unwrap() error {
	return e.Wrapped
}
