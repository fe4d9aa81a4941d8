package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/estimator"
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/machine"
	"github.com/san-kum/vmclab/internal/operator"
	"github.com/san-kum/vmclab/internal/optim"
	"github.com/san-kum/vmclab/internal/quantum"
	"github.com/san-kum/vmclab/internal/sampler"
)

type Registry struct {
	operators  map[string]func(cfg *config.Config, hi *hilbert.Space) (quantum.Operator, error)
	machines   map[string]func(cfg *config.Config, hi *hilbert.Space) (quantum.Machine, error)
	rules      map[string]func(cfg *config.Config, hi *hilbert.Space) quantum.Rule
	optimizers map[string]func(params map[string]float64) optim.Optimizer
}

func NewRegistry() *Registry {
	r := &Registry{
		operators:  make(map[string]func(*config.Config, *hilbert.Space) (quantum.Operator, error)),
		machines:   make(map[string]func(*config.Config, *hilbert.Space) (quantum.Machine, error)),
		rules:      make(map[string]func(*config.Config, *hilbert.Space) quantum.Rule),
		optimizers: make(map[string]func(map[string]float64) optim.Optimizer),
	}

	r.operators["ising"] = func(cfg *config.Config, hi *hilbert.Space) (quantum.Operator, error) {
		return operator.NewIsing(hi, cfg.Lattice.Coupling, cfg.Lattice.Field, cfg.Periodic), nil
	}
	r.operators["heisenberg"] = func(cfg *config.Config, hi *hilbert.Space) (quantum.Operator, error) {
		return operator.NewHeisenberg(hi, cfg.Lattice.Coupling, cfg.Periodic), nil
	}
	r.operators["lindblad"] = func(cfg *config.Config, hi *hilbert.Space) (quantum.Operator, error) {
		if cfg.Lattice.Decay <= 0 {
			return nil, fmt.Errorf("lindblad model needs a positive decay rate, got %v", cfg.Lattice.Decay)
		}
		h := operator.NewIsing(hi, cfg.Lattice.Coupling, cfg.Lattice.Field, cfg.Periodic)
		g := complex(math.Sqrt(cfg.Lattice.Decay), 0)
		jumps := make([]*operator.Local, hi.Size())
		for i := range jumps {
			j := operator.NewLocal(hi)
			if err := j.AddTerm([]int{i}, [][]complex128{{0, g}, {0, 0}}); err != nil {
				return nil, err
			}
			jumps[i] = j
		}
		return operator.NewLiouvillian(hi, h, jumps), nil
	}

	r.machines["rbm"] = func(cfg *config.Config, hi *hilbert.Space) (quantum.Machine, error) {
		return machine.NewRBM(hi, cfg.Hidden, cfg.Seed), nil
	}
	r.machines["jastrow"] = func(cfg *config.Config, hi *hilbert.Space) (quantum.Machine, error) {
		return machine.NewJastrow(hi, cfg.Seed), nil
	}
	r.machines["ndm"] = func(cfg *config.Config, hi *hilbert.Space) (quantum.Machine, error) {
		return machine.NewNDM(hi, cfg.Hidden, cfg.Mixing, cfg.Seed), nil
	}

	r.rules["local"] = func(cfg *config.Config, hi *hilbert.Space) quantum.Rule {
		return sampler.NewLocalRule(hi)
	}
	r.rules["exchange"] = func(cfg *config.Config, hi *hilbert.Space) quantum.Rule {
		return sampler.NewExchangeRule(cfg.Periodic)
	}

	r.optimizers["sgd"] = func(params map[string]float64) optim.Optimizer {
		return optim.NewSGD(params["rate"], params["momentum"])
	}
	r.optimizers["adagrad"] = func(params map[string]float64) optim.Optimizer {
		return optim.NewAdaGrad(params["rate"])
	}

	return r
}

func (r *Registry) GetOperator(cfg *config.Config, hi *hilbert.Space) (quantum.Operator, error) {
	fn, ok := r.operators[cfg.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", cfg.Model)
	}
	return fn(cfg, hi)
}

func (r *Registry) GetMachine(cfg *config.Config, hi *hilbert.Space) (quantum.Machine, error) {
	fn, ok := r.machines[cfg.Machine]
	if !ok {
		return nil, fmt.Errorf("unknown machine: %s", cfg.Machine)
	}
	return fn(cfg, hi)
}

func (r *Registry) GetRule(cfg *config.Config, hi *hilbert.Space) (quantum.Rule, error) {
	fn, ok := r.rules[cfg.Sampler]
	if !ok {
		return nil, fmt.Errorf("unknown sampler rule: %s", cfg.Sampler)
	}
	return fn(cfg, hi), nil
}

func (r *Registry) GetOptimizer(name string, params map[string]float64) (optim.Optimizer, error) {
	fn, ok := r.optimizers[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer: %s", name)
	}
	return fn(params), nil
}

func (r *Registry) ListModels() []string     { return sortedKeys(r.operators) }
func (r *Registry) ListMachines() []string   { return sortedKeys(r.machines) }
func (r *Registry) ListRules() []string      { return sortedKeys(r.rules) }
func (r *Registry) ListOptimizers() []string { return sortedKeys(r.optimizers) }

func (r *Registry) DefaultEstimators(op quantum.Operator, mach quantum.Machine, rates estimator.RateSource, sites int) []quantum.Estimator {
	ests := []quantum.Estimator{
		estimator.NewEnergy(op, mach),
		estimator.NewVariance(op, mach),
		estimator.NewAcceptanceRate(rates),
		estimator.NewMagnetization(),
		estimator.NewAbsMagnetization(),
	}
	if sites >= 2 {
		ests = append(ests, estimator.NewCorrelation(sites/2))
	}
	return ests
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
