package operator

import (
	"math/cmplx"
	"testing"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

func dissipativeIsing(t *testing.T, sites int) (*hilbert.Space, *Liouvillian) {
	t.Helper()
	hi, err := hilbert.Spin(sites)
	if err != nil {
		t.Fatal(err)
	}
	h := NewIsing(hi, 1.0, 0.5, false)
	jumps := make([]*Local, 0, sites)
	for i := 0; i < sites; i++ {
		j, err := SigmaMinus(hi, i)
		if err != nil {
			t.Fatal(err)
		}
		jumps = append(jumps, j)
	}
	return hi, NewLiouvillian(hi, h, jumps)
}

func TestLiouvillianIsSuperOperator(t *testing.T) {
	_, lind := dissipativeIsing(t, 2)

	var op quantum.Operator = lind
	if _, ok := op.(quantum.SuperOperator); !ok {
		t.Fatal("Liouvillian must satisfy SuperOperator")
	}
	if lind.Hilbert().Size() != 4 {
		t.Errorf("doubled space should have 4 sites, got %d", lind.Hilbert().Size())
	}
	if !lind.Hilbert().IsDoubled() {
		t.Error("Liouvillian space should be doubled")
	}
}

// Tr(L rho) = 0 for every rho: summing the rows of the dense Liouvillian
// that correspond to diagonal (r, r) configurations must give zero in
// every column.
func TestLiouvillianTracePreserving(t *testing.T) {
	_, lind := dissipativeIsing(t, 2)
	doubled := lind.Hilbert()

	mat := dense(doubled, lind)
	states := doubled.States()

	n := len(states)
	colSums := make([]complex128, n)
	for _, v := range states {
		row, col := doubled.Halves(v)
		if !configsEqual(row, col) {
			continue
		}
		r := doubled.Index(v)
		for j := 0; j < n; j++ {
			colSums[j] += mat[r][j]
		}
	}

	for j, s := range colSums {
		if cmplx.Abs(s) > 1e-10 {
			t.Errorf("column %d: diagonal rows sum to %v, expected 0", j, s)
		}
	}
}

// L rho must stay Hermitian when rho is: L_{(rc),(r'c')} equals the
// conjugate of L_{(cr),(c'r')}.
func TestLiouvillianHermiticityStructure(t *testing.T) {
	_, lind := dissipativeIsing(t, 2)
	doubled := lind.Hilbert()
	states := doubled.States()
	mat := dense(doubled, lind)

	swap := func(v quantum.Config) quantum.Config {
		row, col := doubled.Halves(v)
		return join(col, row)
	}

	for _, v := range states {
		for _, vp := range states {
			a := mat[doubled.Index(v)][doubled.Index(vp)]
			b := mat[doubled.Index(swap(v))][doubled.Index(swap(vp))]
			if cmplx.Abs(a-cmplx.Conj(b)) > 1e-10 {
				t.Fatalf("Hermiticity structure broken at %v -> %v: %v vs conj(%v)", v, vp, a, b)
			}
		}
	}
}

func TestDaggerMul(t *testing.T) {
	hi, _ := hilbert.Spin(1)
	j, _ := SigmaMinus(hi, 0)
	jd := j.DaggerMul()

	// sigma+ sigma- is the projector onto up: diag(0, 1).
	mat := dense(hi, jd)
	if cmplx.Abs(mat[0][0]) > 1e-12 || cmplx.Abs(mat[1][1]-1) > 1e-12 {
		t.Errorf("sigma+sigma- should be diag(0,1), got %v", mat)
	}
	if cmplx.Abs(mat[0][1]) > 1e-12 || cmplx.Abs(mat[1][0]) > 1e-12 {
		t.Errorf("sigma+sigma- should be diagonal, got %v", mat)
	}
}

func TestLocalTermValidation(t *testing.T) {
	hi, _ := hilbert.Spin(2)
	o := NewLocal(hi)

	if err := o.AddTerm([]int{0}, [][]complex128{{0}}); err == nil {
		t.Error("expected dimension error for 1x1 block on a spin site")
	}
	if err := o.AddTerm([]int{5}, [][]complex128{{0, 0}, {0, 0}}); err == nil {
		t.Error("expected error for out-of-range site")
	}
}
