package operator

import (
	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Liouvillian is the generator of a Lindblad master equation as a
// super-operator on the vectorized density matrix:
//
//	L[rho] = -i [H, rho] + sum_k ( J_k rho J_k† - 1/2 {J_k†J_k, rho} )
//
// It acts on doubled configurations (r, c), where r indexes the row and
// c the column of rho. The Hamiltonian may be any operator on the base
// space; jump operators must be Local so that J†J can be formed.
type Liouvillian struct {
	hi    *hilbert.Space
	h     quantum.Operator
	jumps []*Local
	jdagj []*Local
}

func NewLiouvillian(hi *hilbert.Space, h quantum.Operator, jumps []*Local) *Liouvillian {
	jd := make([]*Local, len(jumps))
	for i, j := range jumps {
		jd[i] = j.DaggerMul()
	}
	return &Liouvillian{hi: hilbert.Doubled(hi), h: h, jumps: jumps, jdagj: jd}
}

func (o *Liouvillian) Hilbert() *hilbert.Space { return o.hi }
func (o *Liouvillian) Sites() int              { return o.hi.Size() }

// ActsOnDoubled marks Liouvillian as a super-operator.
func (o *Liouvillian) ActsOnDoubled() {}

func (o *Liouvillian) Conn(v quantum.Config) ([]quantum.Config, []complex128) {
	row, col := o.hi.Halves(v)

	acc := newConnAccumulator(v)

	// -i H acting from the left: (r, c) -> (r', c).
	hr, hm := o.h.Conn(row)
	for k := range hr {
		acc.add(join(hr[k], col), complex(0, -1)*hm[k])
	}

	// +i H acting from the right: (r, c) -> (r, c'), conjugated elements.
	hc, hcm := o.h.Conn(col)
	for k := range hc {
		acc.add(join(row, hc[k]), complex(0, 1)*conj(hcm[k]))
	}

	for ki, j := range o.jumps {
		// J rho J†: cross product of row and column connections.
		jr, jrm := j.Conn(row)
		jc, jcm := j.Conn(col)
		for a := range jr {
			if jrm[a] == 0 {
				continue
			}
			for b := range jc {
				if jcm[b] == 0 {
					continue
				}
				acc.add(join(jr[a], jc[b]), jrm[a]*conj(jcm[b]))
			}
		}

		// -1/2 anticommutator of J†J.
		dr, drm := o.jdagj[ki].Conn(row)
		for a := range dr {
			if drm[a] == 0 {
				continue
			}
			acc.add(join(dr[a], col), complex(-0.5, 0)*drm[a])
		}
		dc, dcm := o.jdagj[ki].Conn(col)
		for a := range dc {
			if dcm[a] == 0 {
				continue
			}
			acc.add(join(row, dc[a]), complex(-0.5, 0)*conj(dcm[a]))
		}
	}

	return acc.configs, acc.mels
}

func join(row, col quantum.Config) quantum.Config {
	out := make(quantum.Config, len(row)+len(col))
	copy(out, row)
	copy(out[len(row):], col)
	return out
}

// connAccumulator folds repeated diagonal contributions into the first
// slot so the Conn convention (connection 0 is the diagonal) holds.
type connAccumulator struct {
	base    quantum.Config
	configs []quantum.Config
	mels    []complex128
}

func newConnAccumulator(v quantum.Config) *connAccumulator {
	return &connAccumulator{
		base:    v,
		configs: []quantum.Config{v.Clone()},
		mels:    []complex128{0},
	}
}

func (a *connAccumulator) add(vp quantum.Config, mel complex128) {
	if mel == 0 {
		return
	}
	if configsEqual(vp, a.base) {
		a.mels[0] += mel
		return
	}
	a.configs = append(a.configs, vp)
	a.mels = append(a.mels, mel)
}

func configsEqual(a, b quantum.Config) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
