package operator

import (
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Heisenberg is the spin-1/2 Heisenberg Hamiltonian on a chain:
//
//	H = J sum_i [ sz_i sz_{i+1} + 2 (s+_i s-_{i+1} + s-_i s+_{i+1}) ]
//
// in the sigma-z basis. The exchange term connects a configuration to
// the ones with a pair of unequal neighbouring spins swapped.
type Heisenberg struct {
	hi       *hilbert.Space
	J        float64
	Periodic bool
}

func NewHeisenberg(hi *hilbert.Space, j float64, periodic bool) *Heisenberg {
	return &Heisenberg{hi: hi, J: j, Periodic: periodic}
}

func (o *Heisenberg) Hilbert() *hilbert.Space { return o.hi }
func (o *Heisenberg) Sites() int              { return o.hi.Size() }

func (o *Heisenberg) Conn(v quantum.Config) ([]quantum.Config, []complex128) {
	n := len(v)
	bonds := n - 1
	if o.Periodic {
		bonds = n
	}

	configs := make([]quantum.Config, 0, bonds+1)
	mels := make([]complex128, 0, bonds+1)

	diag := 0.0
	for i := 0; i < bonds; i++ {
		diag += v[i] * v[(i+1)%n]
	}
	configs = append(configs, v.Clone())
	mels = append(mels, complex(o.J*diag, 0))

	for i := 0; i < bonds; i++ {
		j := (i + 1) % n
		if v[i] == v[j] {
			continue
		}
		swapped := v.Clone()
		swapped[i], swapped[j] = swapped[j], swapped[i]
		configs = append(configs, swapped)
		mels = append(mels, complex(2*o.J, 0))
	}

	return configs, mels
}
