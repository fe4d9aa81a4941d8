package estimator

import (
	"math"

	"github.com/san-kum/vmclab/internal/quantum"
)

// Magnetization tracks the running mean of the per-site magnetization
// of observed configurations.
type Magnetization struct {
	sum     float64
	samples int
}

func NewMagnetization() *Magnetization { return &Magnetization{} }

func (e *Magnetization) Name() string { return "magnetization" }

func (e *Magnetization) Observe(v quantum.Config, logpsi complex128) {
	s := 0.0
	for _, x := range v {
		s += x
	}
	e.sum += s / float64(len(v))
	e.samples++
}

func (e *Magnetization) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Magnetization) Reset() {
	e.sum = 0
	e.samples = 0
}

// AbsMagnetization tracks |m|, the order parameter that survives
// symmetric sampling of the two ferromagnetic sectors.
type AbsMagnetization struct {
	sum     float64
	samples int
}

func NewAbsMagnetization() *AbsMagnetization { return &AbsMagnetization{} }

func (e *AbsMagnetization) Name() string { return "abs_magnetization" }

func (e *AbsMagnetization) Observe(v quantum.Config, logpsi complex128) {
	s := 0.0
	for _, x := range v {
		s += x
	}
	e.sum += math.Abs(s) / float64(len(v))
	e.samples++
}

func (e *AbsMagnetization) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *AbsMagnetization) Reset() {
	e.sum = 0
	e.samples = 0
}

// Correlation tracks the two-point function <v_0 v_d> at distance d.
type Correlation struct {
	distance int
	sum      float64
	samples  int
}

func NewCorrelation(distance int) *Correlation {
	return &Correlation{distance: distance}
}

func (e *Correlation) Name() string { return "correlation" }

func (e *Correlation) Observe(v quantum.Config, logpsi complex128) {
	if e.distance >= len(v) {
		return
	}
	e.sum += v[0] * v[e.distance]
	e.samples++
}

func (e *Correlation) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Correlation) Reset() {
	e.sum = 0
	e.samples = 0
}

// Energy tracks the running mean of the local energy of observed
// configurations.
type Energy struct {
	op      quantum.Operator
	m       quantum.Machine
	sum     float64
	samples int
}

func NewEnergy(op quantum.Operator, m quantum.Machine) *Energy {
	return &Energy{op: op, m: m}
}

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(v quantum.Config, logpsi complex128) {
	e.sum += real(LocalValue(e.op, e.m, v, logpsi))
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Energy) Reset() {
	e.sum = 0
	e.samples = 0
}

// Variance tracks the variance of the local energy over observed
// configurations, accumulated with Welford's recurrence.
type Variance struct {
	op      quantum.Operator
	m       quantum.Machine
	mean    float64
	m2      float64
	samples int
}

func NewVariance(op quantum.Operator, m quantum.Machine) *Variance {
	return &Variance{op: op, m: m}
}

func (e *Variance) Name() string { return "variance" }

func (e *Variance) Observe(v quantum.Config, logpsi complex128) {
	x := real(LocalValue(e.op, e.m, v, logpsi))
	e.samples++
	delta := x - e.mean
	e.mean += delta / float64(e.samples)
	e.m2 += delta * (x - e.mean)
}

func (e *Variance) Value() float64 {
	if e.samples < 2 {
		return 0
	}
	return e.m2 / float64(e.samples)
}

func (e *Variance) Reset() {
	e.mean = 0
	e.m2 = 0
	e.samples = 0
}

// RateSource reports a running Metropolis acceptance fraction.
type RateSource interface {
	AcceptanceRate() float64
}

// AcceptanceRate averages the sampler acceptance fraction over
// observations. Configurations are ignored.
type AcceptanceRate struct {
	src     RateSource
	sum     float64
	samples int
}

func NewAcceptanceRate(src RateSource) *AcceptanceRate {
	return &AcceptanceRate{src: src}
}

func (e *AcceptanceRate) Name() string { return "acceptance" }

func (e *AcceptanceRate) Observe(v quantum.Config, logpsi complex128) {
	e.sum += e.src.AcceptanceRate()
	e.samples++
}

func (e *AcceptanceRate) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *AcceptanceRate) Reset() {
	e.sum = 0
	e.samples = 0
}
