package machine

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// RBM is a restricted Boltzmann machine ansatz with complex parameters:
//
//	log psi(v) = sum_i a_i v_i + sum_j log cosh(b_j + sum_i w_ji v_i)
//
// Parameters are exposed flat in the order [a, b, w (row-major)].
type RBM struct {
	n int // visible units
	m int // hidden units
	a []complex128
	b []complex128
	w [][]complex128
}

func NewRBM(hi *hilbert.Space, hidden int, seed int64) *RBM {
	n := hi.Size()
	r := &RBM{
		n: n,
		m: hidden,
		a: make([]complex128, n),
		b: make([]complex128, hidden),
		w: make([][]complex128, hidden),
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range r.a {
		r.a[i] = smallGaussian(rng)
	}
	for j := range r.b {
		r.b[j] = smallGaussian(rng)
		r.w[j] = make([]complex128, n)
		for i := range r.w[j] {
			r.w[j][i] = smallGaussian(rng)
		}
	}
	return r
}

func smallGaussian(rng *rand.Rand) complex128 {
	return complex(0.01*rng.NormFloat64(), 0.01*rng.NormFloat64())
}

// logCosh is an overflow-safe log cosh: z - ln 2 + log(1 + exp(-2z)),
// using evenness to keep the real part non-negative.
func logCosh(z complex128) complex128 {
	if real(z) < 0 {
		z = -z
	}
	return z - complex(math.Ln2, 0) + cmplx.Log(1+cmplx.Exp(-2*z))
}

func (r *RBM) NumVisible() int { return r.n }
func (r *RBM) NumHidden() int  { return r.m }
func (r *RBM) NumParams() int  { return r.n + r.m + r.n*r.m }

func (r *RBM) theta(v quantum.Config, j int) complex128 {
	t := r.b[j]
	for i, x := range v {
		t += r.w[j][i] * complex(x, 0)
	}
	return t
}

func (r *RBM) LogVal(v quantum.Config) complex128 {
	var out complex128
	for i, x := range v {
		out += r.a[i] * complex(x, 0)
	}
	for j := 0; j < r.m; j++ {
		out += logCosh(r.theta(v, j))
	}
	return out
}

// LogValDiff takes a single-site flip through the hidden activations
// directly: the two log-cosh sums share theta_j up to one weight term,
// so the visible-bias part reduces to one site. Anything other than a
// one-site change falls back to the full recompute.
func (r *RBM) LogValDiff(vOld, vNew quantum.Config) complex128 {
	if len(vOld) != r.n || len(vNew) != r.n {
		return r.LogVal(vNew) - r.LogVal(vOld)
	}
	flip := -1
	for i := range vOld {
		if vOld[i] != vNew[i] {
			if flip >= 0 {
				return r.LogVal(vNew) - r.LogVal(vOld)
			}
			flip = i
		}
	}
	if flip < 0 {
		return 0
	}
	d := complex(vNew[flip]-vOld[flip], 0)
	out := r.a[flip] * d
	for j := 0; j < r.m; j++ {
		t := r.theta(vOld, j)
		out += logCosh(t+r.w[j][flip]*d) - logCosh(t)
	}
	return out
}

func (r *RBM) DerLog(v quantum.Config) []complex128 {
	out := make([]complex128, r.NumParams())
	for i, x := range v {
		out[i] = complex(x, 0)
	}
	off := r.n
	tanhs := make([]complex128, r.m)
	for j := 0; j < r.m; j++ {
		tanhs[j] = cmplx.Tanh(r.theta(v, j))
		out[off+j] = tanhs[j]
	}
	off += r.m
	for j := 0; j < r.m; j++ {
		for i, x := range v {
			out[off+j*r.n+i] = tanhs[j] * complex(x, 0)
		}
	}
	return out
}

func (r *RBM) Params() []complex128 {
	out := make([]complex128, 0, r.NumParams())
	out = append(out, r.a...)
	out = append(out, r.b...)
	for j := 0; j < r.m; j++ {
		out = append(out, r.w[j]...)
	}
	return out
}

func (r *RBM) SetParams(p []complex128) error {
	if len(p) != r.NumParams() {
		return fmt.Errorf("machine: got %d parameters, rbm has %d: %w",
			len(p), r.NumParams(), quantum.ErrDimensionMismatch)
	}
	copy(r.a, p[:r.n])
	copy(r.b, p[r.n:r.n+r.m])
	off := r.n + r.m
	for j := 0; j < r.m; j++ {
		copy(r.w[j], p[off+j*r.n:off+(j+1)*r.n])
	}
	return nil
}
