package machine

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// NDM is a neural density matrix: an ansatz for log rho(r, c) over
// doubled configurations, built from a complex RBM part S applied to
// each half and a real mixing layer coupling the halves:
//
//	log rho(r, c) = S(r) + conj(S(c)) + sum_k log cosh(u_k + sum_i U_ki (r_i + c_i))
//
// The structure keeps the ansatz Hermitian: log rho(c, r) is the complex
// conjugate of log rho(r, c). Mixing parameters are real; imaginary
// parts passed through SetParams are discarded to preserve Hermiticity.
//
// DerLog returns the derivative with respect to the real part of each
// parameter, which is the quantity the force estimator needs for this
// non-holomorphic ansatz.
type NDM struct {
	n  int // base (undoubled) sites
	mh int // hidden units of the pure part
	mx int // mixing units

	a []complex128
	b []complex128
	w [][]complex128

	u  []float64
	uw [][]float64
}

func NewNDM(hi *hilbert.Space, hidden, mixing int, seed int64) *NDM {
	n := hi.Size()
	m := &NDM{
		n:  n,
		mh: hidden,
		mx: mixing,
		a:  make([]complex128, n),
		b:  make([]complex128, hidden),
		w:  make([][]complex128, hidden),
		u:  make([]float64, mixing),
		uw: make([][]float64, mixing),
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range m.a {
		m.a[i] = smallGaussian(rng)
	}
	for j := range m.b {
		m.b[j] = smallGaussian(rng)
		m.w[j] = make([]complex128, n)
		for i := range m.w[j] {
			m.w[j][i] = smallGaussian(rng)
		}
	}
	for k := range m.u {
		m.u[k] = 0.01 * rng.NormFloat64()
		m.uw[k] = make([]float64, n)
		for i := range m.uw[k] {
			m.uw[k][i] = 0.01 * rng.NormFloat64()
		}
	}
	return m
}

// Mixed marks NDM as a density-operator ansatz.
func (m *NDM) Mixed() {}

func (m *NDM) NumVisible() int { return 2 * m.n }

func (m *NDM) NumParams() int {
	return m.n + m.mh + m.mh*m.n + m.mx + m.mx*m.n
}

func (m *NDM) halves(v quantum.Config) (row, col quantum.Config) {
	return v[:m.n], v[m.n:]
}

func (m *NDM) pureTheta(half quantum.Config, j int) complex128 {
	t := m.b[j]
	for i, x := range half {
		t += m.w[j][i] * complex(x, 0)
	}
	return t
}

func (m *NDM) pureLog(half quantum.Config) complex128 {
	var out complex128
	for i, x := range half {
		out += m.a[i] * complex(x, 0)
	}
	for j := 0; j < m.mh; j++ {
		out += logCosh(m.pureTheta(half, j))
	}
	return out
}

func (m *NDM) mixPhi(row, col quantum.Config, k int) float64 {
	t := m.u[k]
	for i := 0; i < m.n; i++ {
		t += m.uw[k][i] * (row[i] + col[i])
	}
	return t
}

func (m *NDM) LogVal(v quantum.Config) complex128 {
	row, col := m.halves(v)
	out := m.pureLog(row) + cmplx.Conj(m.pureLog(col))
	for k := 0; k < m.mx; k++ {
		out += complex(realLogCosh(m.mixPhi(row, col, k)), 0)
	}
	return out
}

func realLogCosh(x float64) float64 {
	if x < 0 {
		x = -x
	}
	return x - math.Ln2 + math.Log1p(math.Exp(-2*x))
}

func (m *NDM) LogValDiff(vOld, vNew quantum.Config) complex128 {
	return m.LogVal(vNew) - m.LogVal(vOld)
}

func (m *NDM) DerLog(v quantum.Config) []complex128 {
	row, col := m.halves(v)
	out := make([]complex128, 0, m.NumParams())

	for i := 0; i < m.n; i++ {
		out = append(out, complex(row[i]+col[i], 0))
	}

	tr := make([]complex128, m.mh)
	tc := make([]complex128, m.mh)
	for j := 0; j < m.mh; j++ {
		tr[j] = cmplx.Tanh(m.pureTheta(row, j))
		tc[j] = cmplx.Conj(cmplx.Tanh(m.pureTheta(col, j)))
		out = append(out, tr[j]+tc[j])
	}
	for j := 0; j < m.mh; j++ {
		for i := 0; i < m.n; i++ {
			out = append(out, tr[j]*complex(row[i], 0)+tc[j]*complex(col[i], 0))
		}
	}

	tm := make([]float64, m.mx)
	for k := 0; k < m.mx; k++ {
		tm[k] = math.Tanh(m.mixPhi(row, col, k))
		out = append(out, complex(tm[k], 0))
	}
	for k := 0; k < m.mx; k++ {
		for i := 0; i < m.n; i++ {
			out = append(out, complex(tm[k]*(row[i]+col[i]), 0))
		}
	}

	return out
}

func (m *NDM) Params() []complex128 {
	out := make([]complex128, 0, m.NumParams())
	out = append(out, m.a...)
	out = append(out, m.b...)
	for j := 0; j < m.mh; j++ {
		out = append(out, m.w[j]...)
	}
	for k := 0; k < m.mx; k++ {
		out = append(out, complex(m.u[k], 0))
	}
	for k := 0; k < m.mx; k++ {
		for i := 0; i < m.n; i++ {
			out = append(out, complex(m.uw[k][i], 0))
		}
	}
	return out
}

func (m *NDM) SetParams(p []complex128) error {
	if len(p) != m.NumParams() {
		return fmt.Errorf("machine: got %d parameters, ndm has %d: %w",
			len(p), m.NumParams(), quantum.ErrDimensionMismatch)
	}
	off := 0
	copy(m.a, p[off:off+m.n])
	off += m.n
	copy(m.b, p[off:off+m.mh])
	off += m.mh
	for j := 0; j < m.mh; j++ {
		copy(m.w[j], p[off:off+m.n])
		off += m.n
	}
	for k := 0; k < m.mx; k++ {
		m.u[k] = real(p[off])
		off++
	}
	for k := 0; k < m.mx; k++ {
		for i := 0; i < m.n; i++ {
			m.uw[k][i] = real(p[off])
			off++
		}
	}
	return nil
}
