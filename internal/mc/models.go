package mc

import "github.com/born-ml/adjoint/internal/autodiff"

// GBM holds the parameters of a Black-Scholes diffusion.
type GBM struct {
	Spot     float64
	Vol      float64
	Rate     float64
	Maturity float64
}

// GBMParams names the entries of GBM.Params, in order.
var GBMParams = []string{"spot", "vol", "rate", "maturity"}

// Params returns the parameter vector consumed by EuropeanCalls.
func (m GBM) Params() []float64 {
	return []float64{m.Spot, m.Vol, m.Rate, m.Maturity}
}

// EuropeanCalls returns a one-step payoff discounting max(S_T - K, 0) for
// each strike, where S_T is simulated exactly from one Gaussian draw.
func EuropeanCalls[T autodiff.Scalar[T]](strikes []float64) Payoff[T] {
	return func(p []T, gauss []float64, out []T) {
		spot, vol, rate, mat := p[0], p[1], p[2], p[3]
		drift := rate.Sub(vol.Square().MulF(0.5)).Mul(mat)
		diffusion := vol.Mul(mat.Sqrt()).MulF(gauss[0])
		terminal := spot.Mul(drift.Add(diffusion).Exp())
		df := rate.Mul(mat).Neg().Exp()
		for i, k := range strikes {
			out[i] = df.Mul(terminal.SubF(k).MaxF(0))
		}
	}
}
