package estimator

import (
	"math/cmplx"

	"github.com/san-kum/vmclab/internal/quantum"
)

// LocalValue computes the local estimator of an operator at one
// configuration:
//
//	O_loc(v) = sum_k <v|O|v'_k> * psi(v'_k) / psi(v)
//
// logv is the cached log psi(v); the ratio is taken in log space so only
// differences are exponentiated.
func LocalValue(op quantum.Operator, m quantum.Machine, v quantum.Config, logv complex128) complex128 {
	configs, mels := op.Conn(v)
	var acc complex128
	for k := range configs {
		if mels[k] == 0 {
			continue
		}
		acc += mels[k] * cmplx.Exp(m.LogVal(configs[k])-logv)
	}
	return acc
}

// LocalValues evaluates the local estimator over a batch of samples,
// splitting the work across goroutines for large batches.
func LocalValues(op quantum.Operator, m quantum.Machine, configs []quantum.Config, logvals []complex128) []complex128 {
	out := make([]complex128, len(configs))
	quantum.ParallelFor(len(configs), 64, func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = LocalValue(op, m, configs[i], logvals[i])
		}
	})
	return out
}
