package estimator

import (
	"math"
	"math/cmplx"
)

// Stats summarizes a Monte Carlo estimate.
type Stats struct {
	Mean        complex128
	Variance    float64 // E|x - mean|^2 over all samples
	ErrorOfMean float64 // binned standard error
	TauCorr     float64 // integrated autocorrelation time estimate
	Rhat        float64 // split-chain convergence diagnostic
}

const statsBins = 16

// FromChains computes statistics from per-chain series of local values.
// The binned error absorbs autocorrelation within each chain; Rhat
// compares within-chain and between-chain spread of the real parts.
func FromChains(chains [][]complex128) Stats {
	var s Stats
	total := 0
	for _, c := range chains {
		total += len(c)
	}
	if total == 0 {
		return s
	}

	var sum complex128
	for _, c := range chains {
		for _, x := range c {
			sum += x
		}
	}
	s.Mean = sum / complex(float64(total), 0)

	for _, c := range chains {
		for _, x := range c {
			d := cmplx.Abs(x - s.Mean)
			s.Variance += d * d
		}
	}
	s.Variance /= float64(total)

	s.ErrorOfMean = binnedError(chains, s.Mean)

	if s.Variance > 0 {
		// tau from the ratio of binned to naive error.
		naive := s.Variance / float64(total)
		s.TauCorr = 0.5 * (s.ErrorOfMean*s.ErrorOfMean/naive - 1)
		if s.TauCorr < 0 {
			s.TauCorr = 0
		}
	}

	s.Rhat = splitRhat(chains)
	return s
}

func binnedError(chains [][]complex128, mean complex128) float64 {
	binMeans := make([]complex128, 0, statsBins*len(chains))
	for _, c := range chains {
		binSize := len(c) / statsBins
		if binSize < 1 {
			binSize = 1
		}
		for start := 0; start+binSize <= len(c); start += binSize {
			var bs complex128
			for _, x := range c[start : start+binSize] {
				bs += x
			}
			binMeans = append(binMeans, bs/complex(float64(binSize), 0))
		}
	}
	if len(binMeans) < 2 {
		return 0
	}
	varBins := 0.0
	for _, b := range binMeans {
		d := cmplx.Abs(b - mean)
		varBins += d * d
	}
	varBins /= float64(len(binMeans) - 1)
	return math.Sqrt(varBins / float64(len(binMeans)))
}

// splitRhat is the Gelman-Rubin diagnostic over the real parts, with
// each chain split in two to detect non-stationarity.
func splitRhat(chains [][]complex128) float64 {
	var halves [][]float64
	for _, c := range chains {
		if len(c) < 4 {
			continue
		}
		mid := len(c) / 2
		a := make([]float64, mid)
		b := make([]float64, len(c)-mid)
		for i := 0; i < mid; i++ {
			a[i] = real(c[i])
		}
		for i := mid; i < len(c); i++ {
			b[i-mid] = real(c[i])
		}
		halves = append(halves, a, b)
	}
	if len(halves) < 2 {
		return 1
	}

	n := len(halves[0])
	for _, h := range halves {
		if len(h) < n {
			n = len(h)
		}
	}
	if n < 2 {
		return 1
	}

	m := len(halves)
	means := make([]float64, m)
	vars := make([]float64, m)
	grand := 0.0
	for k, h := range halves {
		for i := 0; i < n; i++ {
			means[k] += h[i]
		}
		means[k] /= float64(n)
		grand += means[k]
		for i := 0; i < n; i++ {
			d := h[i] - means[k]
			vars[k] += d * d
		}
		vars[k] /= float64(n - 1)
	}
	grand /= float64(m)

	b := 0.0
	for _, mu := range means {
		d := mu - grand
		b += d * d
	}
	b *= float64(n) / float64(m-1)

	w := 0.0
	for _, v := range vars {
		w += v
	}
	w /= float64(m)
	if w == 0 {
		return 1
	}

	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}
