package operator

import (
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Ising is the transverse-field Ising Hamiltonian on a chain:
//
//	H = -J sum_i sz_i sz_{i+1} - h sum_i sx_i
//
// in the sigma-z basis, where each configuration entry is the sz
// eigenvalue (+1 or -1). The sx term connects each configuration to the
// ones obtained by flipping a single spin.
type Ising struct {
	hi       *hilbert.Space
	J        float64
	H        float64
	Periodic bool
}

func NewIsing(hi *hilbert.Space, j, h float64, periodic bool) *Ising {
	return &Ising{hi: hi, J: j, H: h, Periodic: periodic}
}

func (o *Ising) Hilbert() *hilbert.Space { return o.hi }
func (o *Ising) Sites() int              { return o.hi.Size() }

func (o *Ising) Conn(v quantum.Config) ([]quantum.Config, []complex128) {
	n := len(v)
	configs := make([]quantum.Config, 0, n+1)
	mels := make([]complex128, 0, n+1)

	diag := 0.0
	bonds := n - 1
	if o.Periodic {
		bonds = n
	}
	for i := 0; i < bonds; i++ {
		diag += v[i] * v[(i+1)%n]
	}

	configs = append(configs, v.Clone())
	mels = append(mels, complex(-o.J*diag, 0))

	for i := 0; i < n; i++ {
		flipped := v.Clone()
		flipped[i] = -flipped[i]
		configs = append(configs, flipped)
		mels = append(mels, complex(-o.H, 0))
	}

	return configs, mels
}
