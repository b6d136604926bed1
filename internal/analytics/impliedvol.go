package analytics

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/parallel"
	"github.com/hashicorp/go-multierror"
)

// Errors returned by ImpliedVol.
var (
	ErrPriceOutOfBounds = errors.New("price outside no-arbitrage bounds")
	ErrNoConvergence    = errors.New("implied volatility did not converge")
)

const (
	ivMaxIterations = 100
	ivTolerance     = 1e-12
	ivMaxVol        = 10.0
)

// vegaTape is sized for one Black-Scholes recording.
var vegaTape = autodiff.Config{
	NodeBlockSize:    64,
	DataBlockSize:    128,
	AdjointBlockSize: 1,
	MaxArity:         2,
}

// ImpliedVol returns the Black-Scholes volatility matching an undiscounted call
// price. It runs Newton iterations with the vega taken from a tape, falling
// back to bisection whenever a step leaves the bracketing interval.
func ImpliedVol(fwd, strike, mat, price float64) (float64, error) {
	intrinsic := math.Max(fwd-strike, 0)
	if !(price > intrinsic && price < fwd) || mat <= 0 {
		return 0, fmt.Errorf("%w: price %g, intrinsic %g, forward %g", ErrPriceOutOfBounds, price, intrinsic, fwd)
	}

	tape := autodiff.MustNewTape(vegaTape)
	f := func(in []autodiff.Number) autodiff.Number {
		return BlackScholes(autodiff.Const(fwd), autodiff.Const(strike), in[0], autodiff.Const(mat))
	}

	lo, hi := 0.0, ivMaxVol
	vol := math.Sqrt(2 * math.Abs(math.Log(fwd/strike)) / mat)
	if vol < 0.05 || vol > 2 {
		vol = 0.2
	}
	tol := ivTolerance * math.Max(1, price)
	for i := 0; i < ivMaxIterations; i++ {
		v, g := autodiff.Gradient(tape, []float64{vol}, f)
		diff := v - price
		if math.Abs(diff) < tol {
			return vol, nil
		}
		if diff > 0 {
			hi = vol
		} else {
			lo = vol
		}
		next := vol - diff/g[0]
		if g[0] <= 0 || !(next > lo && next < hi) {
			next = 0.5 * (lo + hi)
		}
		if hi-lo < ivTolerance {
			return next, nil
		}
		vol = next
	}
	return 0, fmt.Errorf("%w after %d iterations (fwd %g, strike %g, price %g)", ErrNoConvergence, ivMaxIterations, fwd, strike, price)
}

// Quote is a call price for one strike and maturity on a forward.
type Quote struct {
	Forward  float64
	Strike   float64
	Maturity float64
	Price    float64
}

// ImpliedVols solves every quote, in parallel when cfg allows it. Failed quotes
// are left at zero and reported together in the returned error.
func ImpliedVols(quotes []Quote, cfg parallel.Config) ([]float64, error) {
	vols := make([]float64, len(quotes))
	errs := make([]error, len(quotes))
	parallel.For(len(quotes), func(i int) {
		q := quotes[i]
		vols[i], errs[i] = ImpliedVol(q.Forward, q.Strike, q.Maturity, q.Price)
	}, cfg)

	var merr *multierror.Error
	for i, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("quote %d: %w", i, err))
		}
	}
	return vols, merr.ErrorOrNil()
}
