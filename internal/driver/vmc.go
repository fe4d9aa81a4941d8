package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/vmclab/internal/estimator"
	"github.com/san-kum/vmclab/internal/expect"
	"github.com/san-kum/vmclab/internal/optim"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Config controls one optimization run.
type Config struct {
	Iterations     int
	Thermalization int
	ChunkSize      int
	Seed           int64
}

func DefaultConfig() Config {
	return Config{
		Iterations:     200,
		Thermalization: 0, // 0 means one sweep per site
	}
}

// Result collects the history of an optimization run.
type Result struct {
	Energies    []estimator.Stats
	Acceptance  []float64
	Estimators  map[string]float64
	FinalParams []complex128
	Iterations  int
	Errors      []error
}

// VMC drives variational optimization: sample the state, estimate the
// operator expectation and its forces, update the parameters, repeat.
type VMC struct {
	st  *expect.State
	op  quantum.Operator
	opt optim.Optimizer
	sr  *optim.SR

	estimators []quantum.Estimator
	observers  []quantum.Observer
	progress   ProgressFunc
}

// ProgressFunc is called after every completed iteration.
type ProgressFunc func(it int, stats estimator.Stats, acceptance float64)

func New(st *expect.State, op quantum.Operator, opt optim.Optimizer) *VMC {
	return &VMC{
		st:         st,
		op:         op,
		opt:        opt,
		estimators: make([]quantum.Estimator, 0),
		observers:  make([]quantum.Observer, 0),
	}
}

// SetSR enables stochastic reconfiguration preconditioning of the
// forces before the optimizer step.
func (d *VMC) SetSR(sr *optim.SR) { d.sr = sr }

func (d *VMC) AddEstimator(e quantum.Estimator) { d.estimators = append(d.estimators, e) }
func (d *VMC) AddObserver(o quantum.Observer)   { d.observers = append(d.observers, o) }
func (d *VMC) SetProgress(fn ProgressFunc)      { d.progress = fn }

func (d *VMC) State() *expect.State { return d.st }

func (d *VMC) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := d.validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.Thermalization > 0 {
		d.st.SetThermalization(cfg.Thermalization)
	}

	result := &Result{
		Energies:   make([]estimator.Stats, 0, cfg.Iterations),
		Acceptance: make([]float64, 0, cfg.Iterations),
		Estimators: make(map[string]float64),
		Errors:     make([]error, 0),
	}

	for _, e := range d.estimators {
		e.Reset()
	}

	mach := d.st.Machine()

	for it := 0; it < cfg.Iterations; it++ {
		select {
		case <-ctx.Done():
			result.FinalParams = mach.Params()
			return result, ctx.Err()
		default:
		}

		forces, err := d.estimateForces(cfg)
		if err != nil {
			result.FinalParams = mach.Params()
			return result, fmt.Errorf("iteration %d: %w", it, err)
		}

		step := forces.Grad
		if d.sr != nil {
			dp, srErr := d.sr.Solve(forces.Ders, forces.Grad)
			if srErr != nil {
				if !errors.Is(srErr, quantum.ErrNotConverged) {
					result.FinalParams = mach.Params()
					return result, fmt.Errorf("iteration %d: %w", it, srErr)
				}
				// Fall back to the raw gradient for this step.
				result.Errors = append(result.Errors, &quantum.SweepError{Sweep: it, Wrapped: srErr})
			} else {
				step = dp
			}
		}

		if err := mach.SetParams(d.opt.Update(mach.Params(), step)); err != nil {
			result.FinalParams = mach.Params()
			return result, fmt.Errorf("iteration %d: %w", it, err)
		}

		d.observe(it)

		acc := d.st.Sampler().AcceptanceRate()
		result.Energies = append(result.Energies, forces.Stats)
		result.Acceptance = append(result.Acceptance, acc)
		result.Iterations++

		if d.progress != nil {
			d.progress(it, forces.Stats, acc)
		}
	}

	for _, e := range d.estimators {
		result.Estimators[e.Name()] = e.Value()
	}
	result.FinalParams = mach.Params()
	return result, nil
}

func (d *VMC) estimateForces(cfg Config) (*expect.Forces, error) {
	opts := make([]expect.Option, 0, 2)
	if d.sr != nil {
		opts = append(opts, expect.WithDerivatives())
	} else if cfg.ChunkSize > 0 {
		opts = append(opts, expect.WithChunkSize(cfg.ChunkSize))
	}
	return expect.ExpectAndForces(d.st, d.op, opts...)
}

func (d *VMC) observe(it int) {
	if len(d.estimators) == 0 && len(d.observers) == 0 {
		return
	}
	configs, logvals := d.st.Sampler().Current()
	for _, e := range d.estimators {
		for j, v := range configs {
			e.Observe(v, logvals[j])
		}
	}
	for _, o := range d.observers {
		o.OnSweep(it, configs, logvals)
	}
}

func (d *VMC) validateConfig(cfg Config) error {
	if cfg.Iterations <= 0 {
		return fmt.Errorf("driver: iterations must be positive, got %d", cfg.Iterations)
	}
	if cfg.ChunkSize < 0 {
		return fmt.Errorf("driver: chunk size must be positive, got %d", cfg.ChunkSize)
	}
	if d.opt == nil {
		return fmt.Errorf("driver: optimizer is required")
	}
	if d.op == nil {
		return fmt.Errorf("driver: operator is required")
	}
	return nil
}
