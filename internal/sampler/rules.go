package sampler

import (
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// LocalRule proposes a new value for a single random site, uniformly
// over the local states other than the current one. Local states are
// kept sorted; drawing an index in [0, d-2] and skipping over the
// current value keeps the proposal uniform without rejection.
type LocalRule struct {
	localStates []float64
}

func NewLocalRule(hi *hilbert.Space) *LocalRule {
	return &LocalRule{localStates: hi.LocalStates()}
}

func (r *LocalRule) Name() string { return "local" }

func (r *LocalRule) Propose(dst, src quantum.Config, rng quantum.Rand) {
	copy(dst, src)
	site := rng.Intn(len(src))
	idx := rng.Intn(len(r.localStates) - 1)
	if r.localStates[idx] >= src[site] {
		idx++
	}
	dst[site] = r.localStates[idx]
}

// ExchangeRule swaps the values of a random pair of neighbouring sites.
// It preserves total magnetization, which keeps sampling inside a fixed
// symmetry sector.
type ExchangeRule struct {
	periodic bool
}

func NewExchangeRule(periodic bool) *ExchangeRule {
	return &ExchangeRule{periodic: periodic}
}

func (r *ExchangeRule) Name() string { return "exchange" }

func (r *ExchangeRule) Propose(dst, src quantum.Config, rng quantum.Rand) {
	copy(dst, src)
	n := len(src)
	bonds := n - 1
	if r.periodic {
		bonds = n
	}
	i := rng.Intn(bonds)
	j := (i + 1) % n
	dst[i], dst[j] = dst[j], dst[i]
}
