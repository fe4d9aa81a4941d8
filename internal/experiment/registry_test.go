package experiment

import (
	"context"
	"testing"
	"time"

	"github.com/san-kum/vmclab/internal/config"
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sites = 3
	cfg.Hidden = 2
	cfg.Chains = 2
	cfg.Samples = 16
	cfg.Iterations = 5
	cfg.Seed = 7
	return cfg
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if got := r.ListModels(); len(got) != 3 {
		t.Errorf("models = %v, want ising, heisenberg, lindblad", got)
	}
	if got := r.ListMachines(); len(got) != 3 {
		t.Errorf("machines = %v, want rbm, jastrow, ndm", got)
	}
	if got := r.ListRules(); len(got) != 2 {
		t.Errorf("rules = %v, want local, exchange", got)
	}
	if got := r.ListOptimizers(); len(got) != 2 {
		t.Errorf("optimizers = %v, want sgd, adagrad", got)
	}
}

func TestRegistryUnknownNames(t *testing.T) {
	r := NewRegistry()
	hi, _ := hilbert.Spin(2)

	cfg := testConfig()
	cfg.Model = "bogus"
	if _, err := r.GetOperator(cfg, hi); err == nil {
		t.Error("expected error for unknown model")
	}
	cfg = testConfig()
	cfg.Machine = "bogus"
	if _, err := r.GetMachine(cfg, hi); err == nil {
		t.Error("expected error for unknown machine")
	}
	cfg = testConfig()
	cfg.Sampler = "bogus"
	if _, err := r.GetRule(cfg, hi); err == nil {
		t.Error("expected error for unknown sampler rule")
	}
	if _, err := r.GetOptimizer("bogus", nil); err == nil {
		t.Error("expected error for unknown optimizer")
	}
}

func TestRegistryLindbladIsSuper(t *testing.T) {
	r := NewRegistry()
	hi, _ := hilbert.Spin(2)
	cfg := testConfig()
	cfg.Model = "lindblad"
	cfg.Lattice.Decay = 0.5

	op, err := r.GetOperator(cfg, hi)
	if err != nil {
		t.Fatalf("GetOperator: %v", err)
	}
	if _, ok := op.(quantum.SuperOperator); !ok {
		t.Error("lindblad model should build a super-operator")
	}
	if op.Sites() != 4 {
		t.Errorf("liouvillian sites = %d, want doubled 4", op.Sites())
	}
}

func TestRegistryLindbladNeedsDecay(t *testing.T) {
	r := NewRegistry()
	hi, _ := hilbert.Spin(2)
	cfg := testConfig()
	cfg.Model = "lindblad"
	cfg.Lattice.Decay = 0

	if _, err := r.GetOperator(cfg, hi); err == nil {
		t.Error("expected error for zero decay rate")
	}
}

func TestExperimentRun(t *testing.T) {
	e := New(testConfig())
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := e.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Energies) != 5 {
		t.Errorf("got %d energy records, want 5", len(res.Energies))
	}
	if len(res.Estimators) == 0 {
		t.Error("default estimators missing from result")
	}
	for _, name := range []string{"energy", "variance", "acceptance", "magnetization", "abs_magnetization", "correlation"} {
		if _, ok := res.Estimators[name]; !ok {
			t.Errorf("estimator %q missing from result", name)
		}
	}
	if acc := res.Estimators["acceptance"]; acc <= 0 || acc > 1 {
		t.Errorf("acceptance estimator = %v, want in (0, 1]", acc)
	}
}

func TestExperimentRunMixed(t *testing.T) {
	cfg := testConfig()
	cfg.Sites = 2
	cfg.Model = "lindblad"
	cfg.Machine = "ndm"
	cfg.Mixing = 2
	cfg.Lattice.Decay = 0.3
	cfg.Iterations = 3
	cfg.ChunkSize = 0
	cfg.OptimParams.Shift = 0

	e := New(cfg)
	if err := e.Setup(); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Energies) != 3 {
		t.Errorf("got %d energy records, want 3", len(res.Energies))
	}
}

func TestExperimentMachineMismatch(t *testing.T) {
	cfg := testConfig()
	cfg.Model = "lindblad"
	cfg.Machine = "rbm" // pure-state ansatz cannot cover the doubled space
	cfg.Lattice.Decay = 0.3

	if err := New(cfg).Setup(); err == nil {
		t.Error("expected setup error for pure machine on open system")
	}
}

func TestExperimentRunBeforeSetup(t *testing.T) {
	if _, err := New(testConfig()).Run(context.Background()); err == nil {
		t.Error("expected error when running before setup")
	}
}
