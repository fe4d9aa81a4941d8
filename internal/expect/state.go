package expect

import (
	"fmt"

	"github.com/san-kum/vmclab/internal/quantum"
	"github.com/san-kum/vmclab/internal/sampler"
)

// State is a sampled variational state: a machine together with the
// Metropolis sampler that draws from it and the sampling budget. A
// State is mixed when its machine is a density-operator ansatz; the
// kind decides which estimation paths are available.
type State struct {
	smp             *sampler.Metropolis
	samplesPerChain int
	thermalization  int
	mixed           bool
	pool            *quantum.ConfigPool
}

func NewState(smp *sampler.Metropolis, samplesPerChain int) (*State, error) {
	if samplesPerChain < 1 {
		return nil, fmt.Errorf("expect: samples per chain must be positive, got %d", samplesPerChain)
	}
	_, mixed := smp.Machine().(quantum.MixedMachine)
	return &State{
		smp:             smp,
		samplesPerChain: samplesPerChain,
		thermalization:  smp.Hilbert().Size(),
		mixed:           mixed,
		pool:            quantum.NewConfigPool(smp.Machine().NumVisible()),
	}, nil
}

func (st *State) Mixed() bool                    { return st.mixed }
func (st *State) Machine() quantum.Machine       { return st.smp.Machine() }
func (st *State) Sampler() *sampler.Metropolis   { return st.smp }
func (st *State) SamplesPerChain() int           { return st.samplesPerChain }
func (st *State) SetThermalization(sweeps int)   { st.thermalization = sweeps }

// batch holds drawn samples, chain-major: sample i of chain j lives at
// index j*perChain + i.
type batch struct {
	configs  []quantum.Config
	logvals  []complex128
	chains   int
	perChain int
}

// draw refreshes cached log-values (parameters may have moved since the
// last draw), thermalizes, then collects one sample per chain per sweep.
func (st *State) draw() *batch {
	st.smp.Refresh()
	for i := 0; i < st.thermalization; i++ {
		st.smp.Sweep()
	}

	chains := st.smp.Chains()
	b := &batch{
		configs:  make([]quantum.Config, chains*st.samplesPerChain),
		logvals:  make([]complex128, chains*st.samplesPerChain),
		chains:   chains,
		perChain: st.samplesPerChain,
	}
	for i := 0; i < st.samplesPerChain; i++ {
		st.smp.Sweep()
		configs, logvals := st.smp.Current()
		for j := 0; j < chains; j++ {
			c := st.pool.Get()
			copy(c, configs[j])
			b.configs[j*st.samplesPerChain+i] = c
			b.logvals[j*st.samplesPerChain+i] = logvals[j]
		}
	}
	return b
}

// release returns a batch's scratch configurations to the pool. The
// batch must not be used afterwards.
func (st *State) release(b *batch) {
	for _, c := range b.configs {
		st.pool.Put(c)
	}
	b.configs = nil
}

// byChain reshapes a flat per-sample series into per-chain series.
func (b *batch) byChain(flat []complex128) [][]complex128 {
	out := make([][]complex128, b.chains)
	for j := 0; j < b.chains; j++ {
		out[j] = flat[j*b.perChain : (j+1)*b.perChain]
	}
	return out
}
