package hilbert

import (
	"fmt"
	"sort"

	"github.com/san-kum/vmclab/internal/quantum"
)

// Space is a discrete Hilbert space: n sites, each carrying one of a
// fixed set of local quantum numbers.
type Space struct {
	sites       int
	localStates []float64
	doubled     bool
}

// New builds a Space with the given number of sites and local states.
// Local states are kept sorted; samplers rely on that.
func New(sites int, localStates []float64) (*Space, error) {
	if sites < 1 {
		return nil, fmt.Errorf("hilbert: invalid system size: %d; expected >=1", sites)
	}
	if len(localStates) == 0 {
		return nil, fmt.Errorf("hilbert: invalid local states: []")
	}
	ls := make([]float64, len(localStates))
	copy(ls, localStates)
	sort.Float64s(ls)
	return &Space{sites: sites, localStates: ls}, nil
}

// Spin builds the spin-1/2 space with local states {-1, +1}.
func Spin(sites int) (*Space, error) {
	return New(sites, []float64{-1, 1})
}

// Doubled builds the row-by-column product space used by density-matrix
// ansatze and super-operators: 2n sites, same local states.
func Doubled(s *Space) *Space {
	ls := make([]float64, len(s.localStates))
	copy(ls, s.localStates)
	return &Space{sites: 2 * s.sites, localStates: ls, doubled: true}
}

func (s *Space) Size() int              { return s.sites }
func (s *Space) LocalStates() []float64 { return s.localStates }
func (s *Space) LocalDim() int          { return len(s.localStates) }
func (s *Space) IsDoubled() bool        { return s.doubled }

// Halves splits a doubled configuration into its row and column parts.
// The returned slices alias v.
func (s *Space) Halves(v quantum.Config) (row, col quantum.Config) {
	n := s.sites / 2
	return v[:n], v[n:]
}

// RandomConfig fills dst with uniformly random local states.
func (s *Space) RandomConfig(dst quantum.Config, rng quantum.Rand) {
	for i := range dst {
		dst[i] = s.localStates[rng.Intn(len(s.localStates))]
	}
}

// Contains reports whether x is one of the local states.
func (s *Space) Contains(x float64) bool {
	i := sort.SearchFloat64s(s.localStates, x)
	return i < len(s.localStates) && s.localStates[i] == x
}

// Check validates a configuration against the space.
func (s *Space) Check(v quantum.Config) error {
	if len(v) != s.sites {
		return fmt.Errorf("hilbert: configuration has %d sites, space has %d: %w",
			len(v), s.sites, quantum.ErrDimensionMismatch)
	}
	if !v.IsValid() {
		return quantum.ErrInvalidConfig
	}
	for _, x := range v {
		if !s.Contains(x) {
			return quantum.ErrInvalidConfig
		}
	}
	return nil
}

// States enumerates every configuration of the space in lexicographic
// order. Intended for exact checks on small systems only.
func (s *Space) States() []quantum.Config {
	d := len(s.localStates)
	total := 1
	for i := 0; i < s.sites; i++ {
		total *= d
	}
	out := make([]quantum.Config, 0, total)
	idx := make([]int, s.sites)
	for k := 0; k < total; k++ {
		v := make(quantum.Config, s.sites)
		for i, j := range idx {
			v[i] = s.localStates[j]
		}
		out = append(out, v)
		for i := s.sites - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < d {
				break
			}
			idx[i] = 0
		}
	}
	return out
}

// Index returns the lexicographic index of v within States().
func (s *Space) Index(v quantum.Config) int {
	d := len(s.localStates)
	idx := 0
	for _, x := range v {
		j := sort.SearchFloat64s(s.localStates, x)
		idx = idx*d + j
	}
	return idx
}
