// Package analytics provides closed-form option pricing formulas written once
// over autodiff.Scalar, so the same code prices on float64 and records on a
// tape for sensitivities.
package analytics

import (
	"github.com/born-ml/adjoint/internal/autodiff"
)

// Epsilon is the standard deviation below which options price at intrinsic.
const Epsilon = 2e-14

// mertonTerms is the number of jump terms summed by Merton.
const mertonTerms = 10

// NormalPDF is the standard normal density, flat zero beyond ten deviations.
func NormalPDF[T autodiff.Scalar[T]](x T) T {
	if x.LessF(-10) || x.GreaterF(10) {
		return x.Constant(0)
	}
	return x.NormalPDF()
}

// NormalCDF is the standard normal distribution function, flat beyond ten
// deviations.
func NormalCDF[T autodiff.Scalar[T]](x T) T {
	if x.LessF(-10) {
		return x.Constant(0)
	}
	if x.GreaterF(10) {
		return x.Constant(1)
	}
	return x.NormalCDF()
}

// BlackScholes returns the undiscounted price of a call on a forward.
func BlackScholes[T autodiff.Scalar[T]](fwd, strike, vol, mat T) T {
	std := vol.Mul(mat.Sqrt())
	if !std.GreaterF(Epsilon) {
		return fwd.Sub(strike).MaxF(0)
	}
	d2 := fwd.Div(strike).Log().Div(std).Sub(std.MulF(0.5))
	d1 := d2.Add(std)
	return fwd.Mul(NormalCDF(d1)).Sub(strike.Mul(NormalCDF(d2)))
}

// Bachelier returns the undiscounted price of a call under normal dynamics.
func Bachelier[T autodiff.Scalar[T]](fwd, strike, vol, mat T) T {
	std := vol.Mul(mat.Sqrt())
	if !std.GreaterF(Epsilon) {
		return fwd.Sub(strike).MaxF(0)
	}
	m := fwd.Sub(strike)
	d := m.Div(std)
	return m.Mul(NormalCDF(d)).Add(std.Mul(NormalPDF(d)))
}

// Merton returns the price of a call under lognormal jump-diffusion, as a
// Poisson mixture of Black-Scholes prices truncated after ten jumps.
func Merton[T autodiff.Scalar[T]](spot, strike, vol, mat, intensity, meanJump, stdJump T) T {
	varJump := stdJump.Square()
	mv2 := meanJump.Add(varJump.MulF(0.5))
	comp := intensity.Mul(mv2.Exp().SubF(1))
	variance := vol.Square()
	intensityT := intensity.Mul(mat)
	noJump := intensityT.Neg().Exp()

	fact := 1.0
	iT := spot.Constant(1)
	result := spot.Constant(0)
	for n := 0; n < mertonTerms; n++ {
		fn := float64(n)
		s := spot.Mul(mv2.MulF(fn).Sub(comp.Mul(mat)).Exp())
		v := variance.Add(varJump.MulF(fn).Div(mat)).Sqrt()
		prob := noJump.Mul(iT).DivF(fact)
		result = result.Add(prob.Mul(BlackScholes(s, strike, v, mat)))
		fact *= fn + 1
		iT = iT.Mul(intensityT)
	}
	return result
}

// BlackScholesKO returns the price of an up-and-out call with continuous
// monitoring. The barrier must lie above the strike.
func BlackScholesKO[T autodiff.Scalar[T]](spot, rate, div, strike, barrier, mat, vol T) T {
	std := vol.Mul(mat.Sqrt())
	fwdFact := rate.Sub(div).Mul(mat).Exp()
	fwd := spot.Mul(fwdFact)
	disc := rate.Neg().Mul(mat).Exp()
	v := rate.Sub(div).Sub(vol.Square().MulF(0.5))
	d2 := spot.Div(barrier).Log().Add(v.Mul(mat)).Div(std)
	d2Prime := barrier.Div(spot).Log().Add(v.Mul(mat)).Div(std)

	gap := barrier.Sub(strike)
	reflected := fwdFact.Mul(barrier.Square()).Div(spot)
	power := barrier.Div(spot).Pow(v.MulF(2).Div(vol.Square()))

	direct := BlackScholes(fwd, strike, vol, mat).
		Sub(BlackScholes(fwd, barrier, vol, mat)).
		Sub(gap.Mul(NormalCDF(d2)))
	image := BlackScholes(reflected, strike, vol, mat).
		Sub(BlackScholes(reflected, barrier, vol, mat)).
		Sub(gap.Mul(NormalCDF(d2Prime)))
	return disc.Mul(direct.Sub(power.Mul(image)))
}
