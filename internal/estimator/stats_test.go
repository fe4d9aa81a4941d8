package estimator

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/machine"
	"github.com/san-kum/vmclab/internal/operator"
	"github.com/san-kum/vmclab/internal/quantum"
)

func TestStatsConstantSeries(t *testing.T) {
	chains := [][]complex128{
		{2, 2, 2, 2, 2, 2, 2, 2},
		{2, 2, 2, 2, 2, 2, 2, 2},
	}
	s := FromChains(chains)

	if s.Mean != 2 {
		t.Errorf("mean: got %v, expected 2", s.Mean)
	}
	if s.Variance != 0 {
		t.Errorf("variance: got %f, expected 0", s.Variance)
	}
	if s.ErrorOfMean != 0 {
		t.Errorf("error: got %f, expected 0", s.ErrorOfMean)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := FromChains(nil)
	if s.Mean != 0 || s.Variance != 0 {
		t.Errorf("empty input should give zero stats, got %+v", s)
	}
}

func TestStatsIIDGaussian(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	chains := make([][]complex128, 4)
	for j := range chains {
		chains[j] = make([]complex128, 4096)
		for i := range chains[j] {
			chains[j][i] = complex(3.0+rng.NormFloat64(), 0)
		}
	}

	s := FromChains(chains)

	if math.Abs(real(s.Mean)-3.0) > 0.05 {
		t.Errorf("mean: got %v, expected ~3.0", s.Mean)
	}
	if math.Abs(s.Variance-1.0) > 0.08 {
		t.Errorf("variance: got %f, expected ~1.0", s.Variance)
	}
	// iid samples: error of mean ~ sqrt(var/N), Rhat ~ 1.
	want := math.Sqrt(1.0 / float64(4*4096))
	if s.ErrorOfMean > 3*want || s.ErrorOfMean == 0 {
		t.Errorf("error of mean: got %f, expected ~%f", s.ErrorOfMean, want)
	}
	if s.Rhat < 0.95 || s.Rhat > 1.1 {
		t.Errorf("Rhat for iid chains: got %f, expected ~1", s.Rhat)
	}
}

func TestStatsRhatDetectsDisagreement(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	chains := make([][]complex128, 2)
	for j := range chains {
		offset := float64(j) * 10 // chains stuck in different modes
		chains[j] = make([]complex128, 512)
		for i := range chains[j] {
			chains[j][i] = complex(offset+0.1*rng.NormFloat64(), 0)
		}
	}

	s := FromChains(chains)
	if s.Rhat < 2 {
		t.Errorf("Rhat should flag disagreeing chains, got %f", s.Rhat)
	}
}

// With h=0 the Ising Hamiltonian is diagonal, so the local energy of any
// configuration is its classical energy, independent of the machine.
func TestLocalValueDiagonalOperator(t *testing.T) {
	hi, _ := hilbert.Spin(4)
	op := operator.NewIsing(hi, 1.0, 0.0, true)
	m := machine.NewRBM(hi, 3, 2)

	v := quantum.Config{1, 1, 1, 1}
	got := LocalValue(op, m, v, m.LogVal(v))

	if cmplx.Abs(got-complex(-4, 0)) > 1e-10 {
		t.Errorf("local energy: got %v, expected -4", got)
	}
}

func TestLocalValuesMatchesSequential(t *testing.T) {
	hi, _ := hilbert.Spin(6)
	op := operator.NewIsing(hi, 1.0, 0.8, true)
	m := machine.NewRBM(hi, 4, 3)
	rng := rand.New(rand.NewSource(9))

	configs := make([]quantum.Config, 200)
	logvals := make([]complex128, 200)
	for i := range configs {
		configs[i] = make(quantum.Config, hi.Size())
		hi.RandomConfig(configs[i], rng)
		logvals[i] = m.LogVal(configs[i])
	}

	batch := LocalValues(op, m, configs, logvals)
	for i := range configs {
		want := LocalValue(op, m, configs[i], logvals[i])
		if cmplx.Abs(batch[i]-want) > 1e-12 {
			t.Fatalf("sample %d: batch %v, sequential %v", i, batch[i], want)
		}
	}
}

func TestMagnetizationEstimator(t *testing.T) {
	e := NewMagnetization()

	e.Observe(quantum.Config{1, 1, 1, 1}, 0)
	e.Observe(quantum.Config{-1, -1, -1, -1}, 0)

	if e.Value() != 0 {
		t.Errorf("expected zero mean magnetization, got %f", e.Value())
	}

	e.Reset()
	e.Observe(quantum.Config{1, 1, -1, 1}, 0)
	if math.Abs(e.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", e.Value())
	}
}
