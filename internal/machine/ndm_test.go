package machine

import (
	"math/cmplx"
	"testing"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

func TestNDMIsMixedMachine(t *testing.T) {
	hi, _ := hilbert.Spin(3)
	var m quantum.Machine = NewNDM(hi, 2, 2, 5)

	if _, ok := m.(quantum.MixedMachine); !ok {
		t.Fatal("NDM must satisfy MixedMachine")
	}
	if m.NumVisible() != 6 {
		t.Errorf("NDM over 3 sites should see 6 visible units, got %d", m.NumVisible())
	}
}

func TestNDMHermitian(t *testing.T) {
	hi, _ := hilbert.Spin(3)
	m := NewNDM(hi, 2, 2, 5)

	r := quantum.Config{1, -1, 1}
	c := quantum.Config{-1, -1, 1}

	rc := append(append(quantum.Config{}, r...), c...)
	cr := append(append(quantum.Config{}, c...), r...)

	a := m.LogVal(rc)
	b := m.LogVal(cr)

	if cmplx.Abs(a-cmplx.Conj(b)) > 1e-12 {
		t.Errorf("log rho(r,c) = %v not conjugate of log rho(c,r) = %v", a, b)
	}
}

func TestNDMDerLogMatchesNumerical(t *testing.T) {
	hi, _ := hilbert.Spin(2)
	m := NewNDM(hi, 2, 1, 9)

	v := quantum.Config{1, -1, -1, 1}
	der := m.DerLog(v)
	if len(der) != m.NumParams() {
		t.Fatalf("DerLog length %d, expected %d", len(der), m.NumParams())
	}

	// NDM is not holomorphic; DerLog is defined as the derivative with
	// respect to the real part of each parameter.
	for k := 0; k < m.NumParams(); k++ {
		num := numericalDer(m, v, k, 1e-6)
		if cmplx.Abs(der[k]-num) > 1e-5 {
			t.Errorf("param %d: DerLog %v, numerical %v", k, der[k], num)
		}
	}
}

func TestNDMParamsRoundTrip(t *testing.T) {
	hi, _ := hilbert.Spin(2)
	m := NewNDM(hi, 2, 2, 3)

	p := m.Params()
	if len(p) != m.NumParams() {
		t.Fatalf("Params length %d, expected %d", len(p), m.NumParams())
	}

	if err := m.SetParams(p); err != nil {
		t.Fatal(err)
	}

	// Imaginary parts in the mixing block are discarded.
	p[len(p)-1] = complex(0.25, 0.75)
	if err := m.SetParams(p); err != nil {
		t.Fatal(err)
	}
	got := m.Params()
	if got[len(p)-1] != complex(0.25, 0) {
		t.Errorf("mixing parameter kept imaginary part: %v", got[len(p)-1])
	}
}
