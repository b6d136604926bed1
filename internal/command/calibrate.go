package command

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/born-ml/adjoint/internal/analytics"
	"github.com/born-ml/adjoint/internal/archive"
	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/optim"
)

// CalibrateCommand solves for the Black-Scholes volatility matching a price.
type CalibrateCommand struct {
	Meta
}

type calibrateOutput struct {
	ID         string  `json:"id,omitempty"`
	Optimizer  string  `json:"optimizer"`
	Vol        float64 `json:"vol"`
	Iterations int     `json:"iterations,omitempty"`
	Residual   float64 `json:"residual"`
}

func (c *CalibrateCommand) Run(args []string) int {
	var (
		price, fwd, strike, mat float64
		method, db              string
		maxIter                 int
	)
	f := c.flagSet("calibrate")
	f.Float64Var(&price, "price", 0, "")
	f.Float64Var(&fwd, "forward", 100, "")
	f.Float64Var(&strike, "strike", 100, "")
	f.Float64Var(&mat, "mat", 1, "")
	f.StringVar(&method, "optimizer", "newton", "")
	f.IntVar(&maxIter, "max-iter", 5000, "")
	f.StringVar(&db, "archive", "", "")
	if err := f.Parse(args); err != nil {
		return c.errorf("Error parsing command-line flags: %s\n\n%s", err, c.Help())
	}

	out := calibrateOutput{Optimizer: strings.ToLower(method)}
	switch out.Optimizer {
	case "newton":
		vol, err := analytics.ImpliedVol(fwd, strike, mat, price)
		if err != nil {
			return c.errorf("Error calibrating: %s", err)
		}
		out.Vol = vol
	case "adam":
		if _, err := analytics.ImpliedVol(fwd, strike, mat, price); err != nil && !isNoConvergence(err) {
			return c.errorf("Error calibrating: %s", err)
		}
		params := []*optim.Parameter{{Name: "log_vol", Value: math.Log(0.2)}}
		opt := optim.NewAdam(params, optim.AdamConfig{LR: 0.01})
		objective := func(p []autodiff.Number) autodiff.Number {
			vol := p[0].Exp()
			model := analytics.BlackScholes(autodiff.Const(fwd), autodiff.Const(strike), vol, autodiff.Const(mat))
			return model.SubF(price).Square()
		}
		tape := autodiff.MustNewTape(autodiff.DefaultConfig())
		res, err := optim.Minimize(tape, params, objective, opt, optim.MinimizeConfig{
			MaxIter: maxIter,
			Logger:  c.log(),
		})
		if err != nil {
			return c.errorf("Error calibrating: %s", err)
		}
		out.Vol = math.Exp(params[0].Value)
		out.Iterations = res.Iterations
	default:
		return c.errorf("Unknown optimizer %q: expected newton or adam", method)
	}
	out.Residual = analytics.BlackScholes[autodiff.Float](
		autodiff.Float(fwd), autodiff.Float(strike), autodiff.Float(out.Vol), autodiff.Float(mat)).Value() - price

	run := &archive.Run{
		Kind:          "calibrate",
		Value:         out.Vol,
		Inputs:        map[string]float64{"price": price, "forward": fwd, "strike": strike, "maturity": mat},
		Sensitivities: map[string]float64{},
	}
	if err := c.archive(context.Background(), db, run); err != nil {
		return c.errorf("Error archiving run: %s", err)
	}
	if db != "" {
		out.ID = run.ID.String()
	}
	return c.output(out)
}

// isNoConvergence reports whether the Newton pre-check failed only on
// convergence, leaving the price itself admissible.
func isNoConvergence(err error) bool {
	return errors.Is(err, analytics.ErrNoConvergence)
}

func (c *CalibrateCommand) Help() string {
	return strings.TrimSpace(`
Usage: adjoint calibrate [options]

  Finds the Black-Scholes volatility reproducing an undiscounted call price.
  The newton optimizer iterates on the tape vega; adam minimizes the squared
  pricing error over the log-volatility.

Options:

  -price=p          Call price to match.
  -forward=100      Forward price.
  -strike=100       Strike.
  -mat=1            Maturity in years.
  -optimizer=newton newton or adam.
  -max-iter=5000    Iteration budget of adam.
  -archive=path     Save the run to this SQLite archive.
`)
}

func (c *CalibrateCommand) Synopsis() string {
	return "Calibrate an implied volatility"
}
