// Package quantum provides core primitives for variational Monte Carlo.
//
// The package defines the fundamental interfaces and types for stochastic
// estimation over parameterized quantum states:
//
//   - [Config]: vector of local quantum numbers (one spin configuration)
//   - [Operator]: observable/generator with sparse connected elements
//   - [SuperOperator]: operator on vectorized density matrices
//   - [Machine]: parameterized log-amplitude (the variational ansatz)
//   - [Rule]: Metropolis transition proposal
//   - [Estimator]: per-sweep running estimator
//
// # Example
//
//	h := operator.NewIsing(hi, 1.0, 0.5, true)
//	m := machine.NewRBM(hi, 8, 42)
//	s := sampler.NewMetropolis(hi, m, sampler.NewLocalRule(), 16, 42)
//
// # Thread Safety
//
// Machines and samplers are NOT thread-safe. For independent restarts,
// use the driver's Ensemble type which manages per-run copies.
package quantum
