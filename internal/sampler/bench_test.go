package sampler

import (
	"testing"

	"github.com/san-kum/vmclab/internal/estimator"
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/machine"
	"github.com/san-kum/vmclab/internal/operator"
)

func benchSampler(b *testing.B, sites, hiddenUnits, numChains int) *Metropolis {
	hi, err := hilbert.Spin(sites)
	if err != nil {
		b.Fatal(err)
	}
	mach := machine.NewRBM(hi, hiddenUnits, 1)
	smp, err := NewMetropolis(hi, mach, NewLocalRule(hi), numChains, 1)
	if err != nil {
		b.Fatal(err)
	}
	smp.Reset()
	return smp
}

func BenchmarkSweep8(b *testing.B) {
	smp := benchSampler(b, 8, 8, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		smp.Sweep()
	}
}

func BenchmarkSweep16(b *testing.B) {
	smp := benchSampler(b, 16, 16, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		smp.Sweep()
	}
}

func BenchmarkSweep16Chains8(b *testing.B) {
	smp := benchSampler(b, 16, 16, 8)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		smp.Sweep()
	}
}

func BenchmarkLocalEnergy16(b *testing.B) {
	hi, err := hilbert.Spin(16)
	if err != nil {
		b.Fatal(err)
	}
	mach := machine.NewRBM(hi, 16, 1)
	op := operator.NewIsing(hi, 1.0, 1.0, true)
	smp, err := NewMetropolis(hi, mach, NewLocalRule(hi), 1, 1)
	if err != nil {
		b.Fatal(err)
	}
	smp.Reset()
	configs, logvals := smp.Current()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		estimator.LocalValue(op, mach, configs[0], logvals[0])
	}
}
