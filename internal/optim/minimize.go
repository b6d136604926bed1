package optim

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/logging"
	"github.com/hashicorp/go-hclog"
)

// ErrNotConverged is returned when Minimize runs out of iterations.
var ErrNotConverged = errors.New("optimization did not converge")

// Objective records the function to minimize on the tape of its arguments.
type Objective func(params []autodiff.Number) autodiff.Number

// MinimizeConfig controls the optimization loop.
type MinimizeConfig struct {
	MaxIter   int          // Iteration budget (default: 1000)
	Tolerance float64      // Stop when every |gradient| is below (default: 1e-8)
	Logger    hclog.Logger // Progress at trace level (default: null logger)
}

// Result summarizes a minimization.
type Result struct {
	Iterations int
	Objective  float64
	Converged  bool
}

// Minimize drives opt until the gradient of objective vanishes. Every
// iteration re-records the objective on t at the current parameter values,
// propagates, stores the adjoints as gradients and steps. opt must be bound to
// params.
func Minimize(t *autodiff.Tape, params []*Parameter, objective Objective, opt Optimizer, cfg MinimizeConfig) (Result, error) {
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = 1000
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = 1e-8
	}
	log := logging.OrNull(cfg.Logger)

	var res Result
	for res.Iterations = 0; res.Iterations < cfg.MaxIter; res.Iterations++ {
		value, grad := autodiff.Gradient(t, Values(params), objective)
		res.Objective = value
		if math.IsNaN(value) {
			return res, fmt.Errorf("objective is NaN at iteration %d", res.Iterations)
		}

		norm := 0.0
		for i, p := range params {
			p.Grad = grad[i]
			norm = math.Max(norm, math.Abs(grad[i]))
		}
		if res.Iterations%100 == 0 {
			log.Trace("minimize", "iteration", res.Iterations, "objective", value, "gradient", norm)
		}
		if norm < cfg.Tolerance {
			res.Converged = true
			log.Debug("converged", "iterations", res.Iterations, "objective", value)
			return res, nil
		}
		opt.Step()
		opt.ZeroGrad()
	}
	return res, fmt.Errorf("%w after %d iterations (objective %g)", ErrNotConverged, cfg.MaxIter, res.Objective)
}
