package operator

import (
	"fmt"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Local is a generic operator assembled from dense blocks, each acting
// on a small tuple of sites. Blocks are indexed in the basis of sorted
// local states; element [r][c] is <r|A|c> on the acting sites.
type Local struct {
	hi    *hilbert.Space
	terms []localTerm
}

type localTerm struct {
	sites []int
	mat   [][]complex128
}

func NewLocal(hi *hilbert.Space) *Local {
	return &Local{hi: hi}
}

// AddTerm registers a dense block acting on the given site tuple. The
// matrix must be d^k by d^k where d is the local dimension and k the
// number of sites.
func (o *Local) AddTerm(sites []int, mat [][]complex128) error {
	dim := 1
	for range sites {
		dim *= o.hi.LocalDim()
	}
	if len(mat) != dim {
		return fmt.Errorf("operator: block is %dx%d, acting on %d sites needs %dx%d: %w",
			len(mat), len(mat), len(sites), dim, dim, quantum.ErrDimensionMismatch)
	}
	for _, s := range sites {
		if s < 0 || s >= o.hi.Size() {
			return fmt.Errorf("operator: site %d outside space of size %d", s, o.hi.Size())
		}
	}
	cp := make([]int, len(sites))
	copy(cp, sites)
	m := make([][]complex128, len(mat))
	for i, row := range mat {
		if len(row) != dim {
			return fmt.Errorf("operator: block row %d has %d columns, expected %d: %w",
				i, len(row), dim, quantum.ErrDimensionMismatch)
		}
		m[i] = append([]complex128(nil), row...)
	}
	o.terms = append(o.terms, localTerm{sites: cp, mat: m})
	return nil
}

func (o *Local) Hilbert() *hilbert.Space { return o.hi }
func (o *Local) Sites() int              { return o.hi.Size() }

// localIndex maps the configuration values at the acting sites to the
// row index of the block.
func (o *Local) localIndex(v quantum.Config, sites []int) int {
	d := o.hi.LocalDim()
	ls := o.hi.LocalStates()
	idx := 0
	for _, s := range sites {
		j := 0
		for k, x := range ls {
			if x == v[s] {
				j = k
				break
			}
		}
		idx = idx*d + j
	}
	return idx
}

// applyIndex writes the configuration values encoded by col into dst at
// the acting sites.
func (o *Local) applyIndex(dst quantum.Config, sites []int, col int) {
	d := o.hi.LocalDim()
	ls := o.hi.LocalStates()
	for i := len(sites) - 1; i >= 0; i-- {
		dst[sites[i]] = ls[col%d]
		col /= d
	}
}

func (o *Local) Conn(v quantum.Config) ([]quantum.Config, []complex128) {
	configs := []quantum.Config{v.Clone()}
	mels := []complex128{0}

	for _, t := range o.terms {
		row := o.localIndex(v, t.sites)
		for col, mel := range t.mat[row] {
			if mel == 0 {
				continue
			}
			if col == row {
				mels[0] += mel
				continue
			}
			vp := v.Clone()
			o.applyIndex(vp, t.sites, col)
			configs = append(configs, vp)
			mels = append(mels, mel)
		}
	}

	return configs, mels
}

// DaggerMul builds the operator with every block A replaced by A†A,
// acting on the same sites. Cross terms between blocks on different
// sites are not generated, so the result is exact only for single-term
// operators (the usual shape of a jump operator).
func (o *Local) DaggerMul() *Local {
	out := NewLocal(o.hi)
	for _, t := range o.terms {
		dim := len(t.mat)
		m := make([][]complex128, dim)
		for i := range m {
			m[i] = make([]complex128, dim)
		}
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				var acc complex128
				for k := 0; k < dim; k++ {
					// (A†A)_{rc} = sum_k conj(A_{kr}) A_{kc}
					acc += conj(t.mat[k][r]) * t.mat[k][c]
				}
				m[r][c] = acc
			}
		}
		out.terms = append(out.terms, localTerm{sites: append([]int(nil), t.sites...), mat: m})
	}
	return out
}

func conj(z complex128) complex128 {
	return complex(real(z), -imag(z))
}

// SigmaX builds the Pauli-x operator on one site of a spin space.
func SigmaX(hi *hilbert.Space, site int) (*Local, error) {
	o := NewLocal(hi)
	err := o.AddTerm([]int{site}, [][]complex128{
		{0, 1},
		{1, 0},
	})
	return o, err
}

// SigmaZ builds the Pauli-z operator on one site of a spin space.
func SigmaZ(hi *hilbert.Space, site int) (*Local, error) {
	o := NewLocal(hi)
	err := o.AddTerm([]int{site}, [][]complex128{
		{-1, 0},
		{0, 1},
	})
	return o, err
}

// SigmaMinus builds the lowering operator |down><up| on one site.
func SigmaMinus(hi *hilbert.Space, site int) (*Local, error) {
	o := NewLocal(hi)
	err := o.AddTerm([]int{site}, [][]complex128{
		{0, 1},
		{0, 0},
	})
	return o, err
}
