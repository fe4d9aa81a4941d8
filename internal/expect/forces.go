package expect

import (
	"fmt"

	"github.com/san-kum/vmclab/internal/estimator"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Forces is the result of an expectation-and-gradient estimation: the
// Monte Carlo statistics of the expectation value and the force vector
//
//	f_k = <conj(O_k) E_loc> - <conj(O_k)> <E_loc>
//
// where O_k is the log-derivative of the ansatz.
type Forces struct {
	Stats estimator.Stats
	Grad  []complex128

	// Ders holds the per-sample log-derivative rows when requested via
	// WithDerivatives; preconditioners like stochastic reconfiguration
	// need them. Nil otherwise.
	Ders [][]complex128
}

type options struct {
	chunkSize int
	chunkSet  bool
	keepDers  bool
}

type Option func(*options)

// WithChunkSize bounds how many samples have their log-derivatives in
// memory at once. The size must be positive; leave the option off for
// unchunked evaluation.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
		o.chunkSet = true
	}
}

// WithDerivatives retains the full log-derivative matrix on the result.
// Incompatible with chunking, which exists to avoid exactly that
// allocation.
func WithDerivatives() Option {
	return func(o *options) { o.keepDers = true }
}

// ExpectAndForces estimates the expectation value of op against the
// state and its gradient with respect to the variational parameters.
//
// The supported combinations are selected explicitly on the state kind,
// the operator kind, and chunking:
//
//   - mixed state, plain operator: not implemented, whatever the chunk
//     size. Use a super-operator.
//   - mixed state, super-operator, no chunking: forwarded unchanged to
//     [ExpectAndForcesNoChunk].
//   - mixed state, super-operator, chunked: no chunked path exists.
//   - pure state, plain operator: supported, chunked or not.
//   - pure state, super-operator: a kind mismatch.
func ExpectAndForces(st *State, op quantum.Operator, opts ...Option) (*Forces, error) {
	o, err := parseOptions(opts)
	if err != nil {
		return nil, err
	}

	_, isSuper := op.(quantum.SuperOperator)

	switch {
	case st.mixed && !isSuper:
		return nil, quantum.ErrForcesNotImplemented
	case st.mixed && !o.chunkSet:
		if o.keepDers {
			return expectAndForcesKeep(st, op)
		}
		return ExpectAndForcesNoChunk(st, op)
	case st.mixed:
		return nil, quantum.ErrChunkedNotSupported
	case isSuper:
		return nil, fmt.Errorf("expect: super-operator against a pure state: %w", quantum.ErrDimensionMismatch)
	default:
		if o.keepDers {
			return expectAndForcesKeep(st, op)
		}
		return expectAndForces(st, op, o.chunkSize)
	}
}

func parseOptions(opts []Option) (options, error) {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	if o.chunkSet && o.chunkSize <= 0 {
		return o, fmt.Errorf("expect: chunk size must be positive, got %d", o.chunkSize)
	}
	if o.chunkSet && o.keepDers {
		return o, fmt.Errorf("expect: cannot keep derivatives with chunked evaluation")
	}
	return o, nil
}

// ExpectAndForcesNoChunk is the chunking-agnostic estimation routine.
// It draws the state's sample budget and accumulates the expectation
// and forces in one pass over all samples.
func ExpectAndForcesNoChunk(st *State, op quantum.Operator) (*Forces, error) {
	return expectAndForces(st, op, 0)
}

// Expect estimates only the expectation value of op against the state.
// It accepts the same options as [ExpectAndForces] under the same
// dispatch rules; with no derivative matrix to hold, chunking does not
// change the estimate.
func Expect(st *State, op quantum.Operator, opts ...Option) (estimator.Stats, error) {
	o, err := parseOptions(opts)
	if err != nil {
		return estimator.Stats{}, err
	}
	if o.keepDers {
		return estimator.Stats{}, fmt.Errorf("expect: derivatives are only produced by ExpectAndForces")
	}

	_, isSuper := op.(quantum.SuperOperator)
	switch {
	case st.mixed && !isSuper:
		return estimator.Stats{}, quantum.ErrForcesNotImplemented
	case st.mixed && o.chunkSet:
		return estimator.Stats{}, quantum.ErrChunkedNotSupported
	case !st.mixed && isSuper:
		return estimator.Stats{}, fmt.Errorf("expect: super-operator against a pure state: %w", quantum.ErrDimensionMismatch)
	}

	b := st.draw()
	locals := estimator.LocalValues(op, st.Machine(), b.configs, b.logvals)
	stats := estimator.FromChains(b.byChain(locals))
	st.release(b)
	return stats, nil
}

// expectAndForces runs the shared estimation loop. chunkSize zero means
// all samples in one chunk; any positive chunk size yields the same
// estimate while only holding one chunk of log-derivatives at a time.
func expectAndForces(st *State, op quantum.Operator, chunkSize int) (*Forces, error) {
	return estimate(st, op, chunkSize, false)
}

// expectAndForcesKeep is the unchunked loop with the log-derivative
// matrix retained on the result.
func expectAndForcesKeep(st *State, op quantum.Operator) (*Forces, error) {
	return estimate(st, op, 0, true)
}

func estimate(st *State, op quantum.Operator, chunkSize int, keep bool) (*Forces, error) {
	b := st.draw()
	mach := st.Machine()
	nSamples := len(b.configs)
	nParams := mach.NumParams()

	locals := estimator.LocalValues(op, mach, b.configs, b.logvals)
	stats := estimator.FromChains(b.byChain(locals))

	if chunkSize <= 0 || chunkSize > nSamples {
		chunkSize = nSamples
	}

	var ders [][]complex128
	if keep {
		ders = make([][]complex128, 0, nSamples)
	}

	sumO := make([]complex128, nParams)
	sumOE := make([]complex128, nParams)
	for start := 0; start < nSamples; start += chunkSize {
		end := start + chunkSize
		if end > nSamples {
			end = nSamples
		}
		for i := start; i < end; i++ {
			der := mach.DerLog(b.configs[i])
			if keep {
				ders = append(ders, der)
			}
			for k := 0; k < nParams; k++ {
				oc := conj(der[k])
				sumO[k] += oc
				sumOE[k] += oc * locals[i]
			}
		}
	}

	invN := complex(1/float64(nSamples), 0)
	grad := make([]complex128, nParams)
	for k := 0; k < nParams; k++ {
		grad[k] = sumOE[k]*invN - sumO[k]*invN*stats.Mean
	}

	st.release(b)
	return &Forces{Stats: stats, Grad: grad, Ders: ders}, nil
}

func conj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}
