package optim

import (
	"fmt"
	"math"

	"github.com/san-kum/vmclab/internal/quantum"
)

// SR implements stochastic reconfiguration (natural gradient): instead
// of stepping along the raw force f, it steps along the solution of
//
//	(S + shift*I) dp = f
//
// where S is the quantum geometric tensor estimated from the sampled
// log-derivatives, S_kl = <conj(O_k) O_l> - conj(<O_k>)<O_l>.
//
// The system is solved matrix-free by conjugate gradient; S is never
// materialized, only its action on a vector.
type SR struct {
	Shift   float64
	Tol     float64
	MaxIter int
}

func NewSR(shift float64) *SR {
	return &SR{Shift: shift, Tol: 1e-6, MaxIter: 200}
}

// Solve returns dp with (S + shift*I) dp = f, with S estimated from the
// per-sample log-derivative rows.
func (s *SR) Solve(ders [][]complex128, f []complex128) ([]complex128, error) {
	n := len(ders)
	if n == 0 {
		return nil, fmt.Errorf("optim: sr needs samples, got none")
	}
	p := len(f)
	for _, d := range ders {
		if len(d) != p {
			return nil, fmt.Errorf("optim: log-derivative row has %d entries, force has %d: %w",
				len(d), p, quantum.ErrDimensionMismatch)
		}
	}

	mean := make([]complex128, p)
	for _, d := range ders {
		for k := 0; k < p; k++ {
			mean[k] += d[k]
		}
	}
	invN := complex(1/float64(n), 0)
	for k := 0; k < p; k++ {
		mean[k] *= invN
	}

	// apply computes (S + shift*I) x via two passes over the samples.
	apply := func(x []complex128) []complex128 {
		out := make([]complex128, p)
		for _, d := range ders {
			var t complex128
			for l := 0; l < p; l++ {
				t += (d[l] - mean[l]) * x[l]
			}
			for k := 0; k < p; k++ {
				out[k] += conj(d[k]-mean[k]) * t
			}
		}
		sh := complex(s.Shift, 0)
		for k := 0; k < p; k++ {
			out[k] = out[k]*invN + sh*x[k]
		}
		return out
	}

	return conjGrad(apply, f, s.Tol, s.MaxIter)
}

// conjGrad solves A x = b for Hermitian positive definite A.
func conjGrad(apply func([]complex128) []complex128, b []complex128, tol float64, maxIter int) ([]complex128, error) {
	p := len(b)
	x := make([]complex128, p)
	r := append([]complex128(nil), b...)
	d := append([]complex128(nil), b...)

	rs := dotReal(r, r)
	bNorm := math.Sqrt(dotReal(b, b))
	if bNorm == 0 {
		return x, nil
	}

	for it := 0; it < maxIter; it++ {
		if math.Sqrt(rs) <= tol*bNorm {
			return x, nil
		}
		ad := apply(d)
		alpha := rs / dotReal(d, ad)
		for k := 0; k < p; k++ {
			x[k] += complex(alpha, 0) * d[k]
			r[k] -= complex(alpha, 0) * ad[k]
		}
		rsNew := dotReal(r, r)
		beta := rsNew / rs
		for k := 0; k < p; k++ {
			d[k] = r[k] + complex(beta, 0)*d[k]
		}
		rs = rsNew
	}

	if math.Sqrt(rs) <= tol*bNorm {
		return x, nil
	}
	return x, fmt.Errorf("optim: cg residual %.3e after %d iterations: %w",
		math.Sqrt(rs)/bNorm, maxIter, quantum.ErrNotConverged)
}

func dotReal(a, b []complex128) float64 {
	acc := 0.0
	for k := range a {
		acc += real(conj(a[k]) * b[k])
	}
	return acc
}

func conj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}
