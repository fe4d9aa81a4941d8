package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/driver"
	"github.com/san-kum/vmclab/internal/expect"
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/optim"
	"github.com/san-kum/vmclab/internal/quantum"
	"github.com/san-kum/vmclab/internal/sampler"
)

// Experiment wires a configuration into a runnable variational
// optimization: hilbert space, operator, machine, sampler, driver.
type Experiment struct {
	cfg *config.Config
	reg *Registry
	vmc *driver.VMC
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, reg: NewRegistry()}
}

func (e *Experiment) Setup() error {
	cfg := e.cfg

	hi, err := hilbert.Spin(cfg.Sites)
	if err != nil {
		return err
	}

	op, err := e.reg.GetOperator(cfg, hi)
	if err != nil {
		return err
	}

	// Super-operators sample the doubled (row, col) space.
	sampleSpace := hi
	if _, super := op.(quantum.SuperOperator); super {
		sampleSpace = hilbert.Doubled(hi)
	}

	mach, err := e.reg.GetMachine(cfg, hi)
	if err != nil {
		return err
	}

	rule, err := e.reg.GetRule(cfg, sampleSpace)
	if err != nil {
		return err
	}

	smp, err := sampler.NewMetropolis(sampleSpace, mach, rule, cfg.Chains, cfg.Seed)
	if err != nil {
		return err
	}

	perChain := cfg.Samples / cfg.Chains
	if perChain < 1 {
		return fmt.Errorf("experiment: %d samples over %d chains leaves no samples per chain",
			cfg.Samples, cfg.Chains)
	}
	st, err := expect.NewState(smp, perChain)
	if err != nil {
		return err
	}

	params := cfg.GetOptimizerParams()
	opt, err := e.reg.GetOptimizer(cfg.Optimizer, params)
	if err != nil {
		return err
	}

	e.vmc = driver.New(st, op, opt)
	if params["shift"] > 0 {
		e.vmc.SetSR(optim.NewSR(params["shift"]))
	}
	for _, est := range e.reg.DefaultEstimators(op, mach, smp, cfg.Sites) {
		e.vmc.AddEstimator(est)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*driver.Result, error) {
	if e.vmc == nil {
		return nil, fmt.Errorf("experiment not set up")
	}
	return e.vmc.Run(ctx, driver.Config{
		Iterations:     e.cfg.Iterations,
		Thermalization: e.cfg.Sites,
		ChunkSize:      e.cfg.ChunkSize,
		Seed:           e.cfg.Seed,
	})
}

// Driver exposes the underlying driver for attaching observers.
func (e *Experiment) Driver() *driver.VMC {
	if e.vmc == nil {
		return nil
	}
	return e.vmc
}
