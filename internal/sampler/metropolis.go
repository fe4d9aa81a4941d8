package sampler

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/vmclab/internal/hilbert"
	"github.com/san-kum/vmclab/internal/quantum"
)

// Metropolis runs a batch of independent Metropolis-Hastings chains over
// a Hilbert space, sampling configurations with probability proportional
// to |psi(v)|^2 of the attached machine.
//
// Each chain keeps its own generator so runs are reproducible per seed
// regardless of chain count.
type Metropolis struct {
	hi   *hilbert.Space
	mach quantum.Machine
	rule quantum.Rule

	chains   int
	current  []quantum.Config
	proposed []quantum.Config
	logvals  []complex128
	rngs     []*rand.Rand
	seed     int64

	accepted  int64
	proposals int64
}

func NewMetropolis(hi *hilbert.Space, mach quantum.Machine, rule quantum.Rule, chains int, seed int64) (*Metropolis, error) {
	if chains < 1 {
		return nil, fmt.Errorf("sampler: invalid batch size: %d; expected >=1", chains)
	}
	if mach.NumVisible() != hi.Size() {
		return nil, fmt.Errorf("sampler: machine sees %d sites, space has %d: %w",
			mach.NumVisible(), hi.Size(), quantum.ErrDimensionMismatch)
	}

	s := &Metropolis{
		hi:       hi,
		mach:     mach,
		rule:     rule,
		chains:   chains,
		current:  make([]quantum.Config, chains),
		proposed: make([]quantum.Config, chains),
		logvals:  make([]complex128, chains),
		rngs:     make([]*rand.Rand, chains),
		seed:     seed,
	}
	for j := 0; j < chains; j++ {
		s.current[j] = make(quantum.Config, hi.Size())
		s.proposed[j] = make(quantum.Config, hi.Size())
		s.rngs[j] = rand.New(rand.NewSource(seed + int64(j)))
	}
	s.Reset()
	return s, nil
}

func (s *Metropolis) Chains() int              { return s.chains }
func (s *Metropolis) Hilbert() *hilbert.Space  { return s.hi }
func (s *Metropolis) Machine() quantum.Machine { return s.mach }
func (s *Metropolis) Rule() quantum.Rule       { return s.rule }
func (s *Metropolis) Seed() int64              { return s.seed }

// Reset randomizes every chain and recomputes cached log-values.
// Acceptance counters restart.
func (s *Metropolis) Reset() {
	for j := 0; j < s.chains; j++ {
		s.hi.RandomConfig(s.current[j], s.rngs[j])
		s.logvals[j] = s.mach.LogVal(s.current[j])
	}
	s.accepted = 0
	s.proposals = 0
}

// Refresh recomputes cached log-values without moving the chains. Call
// it after the machine's parameters change.
func (s *Metropolis) Refresh() {
	for j := 0; j < s.chains; j++ {
		s.logvals[j] = s.mach.LogVal(s.current[j])
	}
}

// Next advances every chain by one proposal, accepting with probability
// min(1, |psi(v')/psi(v)|^2).
func (s *Metropolis) Next() {
	for j := 0; j < s.chains; j++ {
		s.rule.Propose(s.proposed[j], s.current[j], s.rngs[j])
		diff := s.mach.LogValDiff(s.current[j], s.proposed[j])

		p := math.Exp(2 * real(diff))
		if p > 1 {
			p = 1
		}
		s.proposals++
		if s.rngs[j].Float64() < p {
			s.current[j], s.proposed[j] = s.proposed[j], s.current[j]
			s.logvals[j] += diff
			s.accepted++
		}
	}
}

// Sweep advances every chain by one proposal per site.
func (s *Metropolis) Sweep() {
	for i := 0; i < s.hi.Size(); i++ {
		s.Next()
	}
}

// Current exposes the chain configurations and their log-values. The
// returned slices alias sampler state; callers must copy what they keep.
func (s *Metropolis) Current() ([]quantum.Config, []complex128) {
	return s.current, s.logvals
}

// AcceptanceRate is the fraction of accepted proposals since Reset.
func (s *Metropolis) AcceptanceRate() float64 {
	if s.proposals == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.proposals)
}
