// Package optim implements first-order optimizers over scalar parameters whose
// gradients come from an autodiff tape.
//
// This package provides:
//   - Parameter: a named scalar with its gradient
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize: the record / propagate / step loop
//
// Example usage:
//
//	params := []*optim.Parameter{{Name: "x", Value: 1}, {Name: "y", Value: 2}}
//	opt := optim.NewAdam(params, optim.AdamConfig{LR: 0.05})
//
//	res, err := optim.Minimize(tape, params, func(p []autodiff.Number) autodiff.Number {
//	    return p[0].SubF(3).Square().Add(p[1].AddF(1).Square())
//	}, opt, optim.MinimizeConfig{MaxIter: 2000, Tolerance: 1e-8})
package optim

// Parameter is a scalar being optimized.
type Parameter struct {
	Name  string
	Value float64
	Grad  float64
}

// ZeroGrad clears the gradient.
func (p *Parameter) ZeroGrad() {
	p.Grad = 0
}

// Optimizer is the base interface for all optimization algorithms.
//
// An optimizer is bound to its parameters at construction. All optimizers
// must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Clear gradients before next iteration
//   - GetLR: Get current learning rate (for monitoring/scheduling)
type Optimizer interface {
	// Step applies the current gradients to all parameters.
	Step()

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// Values returns the current values of params.
func Values(params []*Parameter) []float64 {
	out := make([]float64, len(params))
	for i, p := range params {
		out[i] = p.Value
	}
	return out
}
