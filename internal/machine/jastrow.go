package machine

import (
	"fmt"
	"math/rand"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Jastrow is a two-body Jastrow factor:
//
//	log psi(v) = sum_{i<j} J_ij v_i v_j
//
// with a symmetric coupling matrix stored as the strict upper triangle.
type Jastrow struct {
	n int
	j []complex128 // upper triangle, row-major
}

func NewJastrow(hi *hilbert.Space, seed int64) *Jastrow {
	n := hi.Size()
	m := &Jastrow{n: n, j: make([]complex128, n*(n-1)/2)}
	rng := rand.New(rand.NewSource(seed))
	for i := range m.j {
		m.j[i] = smallGaussian(rng)
	}
	return m
}

func (m *Jastrow) NumVisible() int { return m.n }
func (m *Jastrow) NumParams() int  { return len(m.j) }

func (m *Jastrow) LogVal(v quantum.Config) complex128 {
	var out complex128
	k := 0
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			out += m.j[k] * complex(v[i]*v[j], 0)
			k++
		}
	}
	return out
}

func (m *Jastrow) LogValDiff(vOld, vNew quantum.Config) complex128 {
	return m.LogVal(vNew) - m.LogVal(vOld)
}

func (m *Jastrow) DerLog(v quantum.Config) []complex128 {
	out := make([]complex128, len(m.j))
	k := 0
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			out[k] = complex(v[i]*v[j], 0)
			k++
		}
	}
	return out
}

func (m *Jastrow) Params() []complex128 {
	return append([]complex128(nil), m.j...)
}

func (m *Jastrow) SetParams(p []complex128) error {
	if len(p) != len(m.j) {
		return fmt.Errorf("machine: got %d parameters, jastrow has %d: %w",
			len(p), len(m.j), quantum.ErrDimensionMismatch)
	}
	copy(m.j, p)
	return nil
}
