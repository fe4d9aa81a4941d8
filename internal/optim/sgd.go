package optim

import "math"

// Optimizer updates variational parameters from an estimated force
// (gradient) vector and returns the new parameter vector.
type Optimizer interface {
	Update(params, grad []complex128) []complex128
	Name() string
}

// SGD is plain stochastic gradient descent with optional momentum.
type SGD struct {
	LearningRate float64
	Momentum     float64
	vel          []complex128
}

func NewSGD(lr, momentum float64) *SGD {
	return &SGD{LearningRate: lr, Momentum: momentum}
}

func (o *SGD) Name() string { return "sgd" }

func (o *SGD) Update(params, grad []complex128) []complex128 {
	if o.vel == nil || len(o.vel) != len(params) {
		o.vel = make([]complex128, len(params))
	}
	out := make([]complex128, len(params))
	lr := complex(o.LearningRate, 0)
	mom := complex(o.Momentum, 0)
	for k := range params {
		o.vel[k] = mom*o.vel[k] - lr*grad[k]
		out[k] = params[k] + o.vel[k]
	}
	return out
}

// AdaGrad scales each step by the accumulated squared gradient, so
// noisy directions get damped over the run.
type AdaGrad struct {
	LearningRate float64
	Eps          float64
	acc          []float64
}

func NewAdaGrad(lr float64) *AdaGrad {
	return &AdaGrad{LearningRate: lr, Eps: 1e-8}
}

func (o *AdaGrad) Name() string { return "adagrad" }

func (o *AdaGrad) Update(params, grad []complex128) []complex128 {
	if o.acc == nil || len(o.acc) != len(params) {
		o.acc = make([]float64, len(params))
	}
	out := make([]complex128, len(params))
	for k := range params {
		g2 := real(grad[k])*real(grad[k]) + imag(grad[k])*imag(grad[k])
		o.acc[k] += g2
		step := o.LearningRate / math.Sqrt(o.acc[k]+o.Eps)
		out[k] = params[k] - complex(step, 0)*grad[k]
	}
	return out
}
