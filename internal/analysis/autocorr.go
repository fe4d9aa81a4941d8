package analysis

// Autocorrelation computes the normalized autocorrelation function of a
// series up to maxLag. Lag zero is always 1. Correlated Markov chain
// output decays slowly; the decay rate sets how uncertain the sample
// mean really is.
func Autocorrelation(data []float64, maxLag int) []float64 {
	n := len(data)
	if n == 0 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	var c0 float64
	for _, v := range data {
		d := v - mean
		c0 += d * d
	}

	acf := make([]float64, maxLag+1)
	if c0 == 0 {
		acf[0] = 1
		return acf
	}

	for lag := 0; lag <= maxLag; lag++ {
		var c float64
		for i := 0; i+lag < n; i++ {
			c += (data[i] - mean) * (data[i+lag] - mean)
		}
		acf[lag] = c / c0
	}
	return acf
}

// IntegratedTime estimates the integrated autocorrelation time by
// summing the autocorrelation function until it first turns negative.
func IntegratedTime(data []float64) float64 {
	acf := Autocorrelation(data, len(data)/2)
	tau := 0.5
	for lag := 1; lag < len(acf); lag++ {
		if acf[lag] <= 0 {
			break
		}
		tau += acf[lag]
	}
	return 2 * tau
}
