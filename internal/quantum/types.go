package quantum

import "math"

// Config is one configuration of local quantum numbers, e.g. a row of
// spins in the sigma-z basis.
type Config []float64

func (c Config) Clone() Config {
	out := make(Config, len(c))
	copy(out, c)
	return out
}

func (c Config) IsValid() bool {
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Operator is an observable or generator with sparse structure: for a
// configuration v it yields all configurations v' with <v|O|v'> != 0
// together with those matrix elements. By convention the first returned
// connection is v itself carrying the diagonal element.
type Operator interface {
	// Conn appends the connected configurations and matrix elements of v.
	Conn(v Config) ([]Config, []complex128)
	// Sites returns the number of sites the operator acts on.
	Sites() int
}

// SuperOperator acts on doubled (row, col) configurations of a vectorized
// density matrix rather than on pure-state configurations.
type SuperOperator interface {
	Operator
	// ActsOnDoubled marks the operator as living on the doubled space.
	ActsOnDoubled()
}

// Machine is a parameterized ansatz for the log-amplitude of a quantum
// state: LogVal(v) = log psi(v).
type Machine interface {
	LogVal(v Config) complex128
	// LogValDiff returns log psi(vNew) - log psi(vOld).
	LogValDiff(vOld, vNew Config) complex128
	// DerLog returns the gradient of log psi(v) with respect to the
	// variational parameters, in the flat parameter order.
	DerLog(v Config) []complex128
	NumParams() int
	Params() []complex128
	SetParams(p []complex128) error
	NumVisible() int
}

// MixedMachine is a Machine over doubled configurations, representing the
// log of a density operator element log rho(r, c).
type MixedMachine interface {
	Machine
	// Mixed marks the machine as a density-operator ansatz.
	Mixed()
}

// Rule proposes a Metropolis transition: it writes a candidate
// configuration derived from src into dst. Implementations must not
// modify src.
type Rule interface {
	Propose(dst, src Config, rng Rand)
	Name() string
}

// Rand is the subset of *rand.Rand the samplers need; it keeps rules
// testable with scripted sequences.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// Estimator accumulates a running statistic over Monte Carlo sweeps.
type Estimator interface {
	Name() string
	Observe(v Config, logpsi complex128)
	Value() float64
	Reset()
}

// Observer is notified after every sampler sweep.
type Observer interface {
	OnSweep(sweep int, configs []Config, logvals []complex128)
}
