package optim

import (
	"math/cmplx"
	"testing"
)

func TestSGDUpdate(t *testing.T) {
	o := NewSGD(0.1, 0)
	params := []complex128{1, complex(0, 1)}
	grad := []complex128{2, complex(0, 2)}

	got := o.Update(params, grad)

	want := []complex128{0.8, complex(0, 0.8)}
	for k := range want {
		if cmplx.Abs(got[k]-want[k]) > 1e-12 {
			t.Errorf("param %d: got %v, expected %v", k, got[k], want[k])
		}
	}
}

func TestSGDMomentumAccumulates(t *testing.T) {
	o := NewSGD(0.1, 0.9)
	params := []complex128{0}
	grad := []complex128{1}

	p1 := o.Update(params, grad)
	p2 := o.Update(p1, grad)

	// First step -0.1, second step -0.9*0.1 - 0.1 = -0.19.
	if cmplx.Abs(p1[0]-complex(-0.1, 0)) > 1e-12 {
		t.Errorf("first step: got %v", p1[0])
	}
	if cmplx.Abs(p2[0]-complex(-0.29, 0)) > 1e-12 {
		t.Errorf("second step: got %v", p2[0])
	}
}

func TestAdaGradDampsRepeatedDirections(t *testing.T) {
	o := NewAdaGrad(0.5)
	params := []complex128{0}
	grad := []complex128{1}

	p1 := o.Update(params, grad)
	step1 := cmplx.Abs(p1[0] - params[0])

	p2 := o.Update(p1, grad)
	step2 := cmplx.Abs(p2[0] - p1[0])

	if step2 >= step1 {
		t.Errorf("second step %f should be smaller than first %f", step2, step1)
	}
}

func TestSRSolveDiagonalTensor(t *testing.T) {
	// Centered rows (+-e1, +-e2) give S = diag(0.5, 0.5), so the
	// solution of S dp = f is 2f.
	ders := [][]complex128{
		{1, 0},
		{-1, 0},
		{0, 1},
		{0, -1},
	}
	f := []complex128{complex(1, 0.5), complex(-2, 0)}

	sr := NewSR(0)
	dp, err := sr.Solve(ders, f)
	if err != nil {
		t.Fatal(err)
	}

	for k := range f {
		want := 2 * f[k]
		if cmplx.Abs(dp[k]-want) > 1e-8 {
			t.Errorf("dp[%d]: got %v, expected %v", k, dp[k], want)
		}
	}
}

func TestSRShiftRegularizes(t *testing.T) {
	// Same tensor with shift 0.5: (0.5 + 0.5) dp = f.
	ders := [][]complex128{
		{1, 0},
		{-1, 0},
		{0, 1},
		{0, -1},
	}
	f := []complex128{4, 2}

	sr := NewSR(0.5)
	dp, err := sr.Solve(ders, f)
	if err != nil {
		t.Fatal(err)
	}

	if cmplx.Abs(dp[0]-4) > 1e-8 || cmplx.Abs(dp[1]-2) > 1e-8 {
		t.Errorf("got %v, expected [4 2]", dp)
	}
}

func TestSRValidation(t *testing.T) {
	sr := NewSR(0.01)

	if _, err := sr.Solve(nil, []complex128{1}); err == nil {
		t.Error("expected error for empty samples")
	}
	if _, err := sr.Solve([][]complex128{{1, 2}}, []complex128{1}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestSRZeroForce(t *testing.T) {
	ders := [][]complex128{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	f := []complex128{0, 0}

	sr := NewSR(0.01)
	dp, err := sr.Solve(ders, f)
	if err != nil {
		t.Fatal(err)
	}
	if dp[0] != 0 || dp[1] != 0 {
		t.Errorf("zero force should give zero step, got %v", dp)
	}
}
