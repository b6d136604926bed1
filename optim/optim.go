// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/born-ml/adjoint/internal/optim"
)

// Parameter is a scalar being optimized.
type Parameter = optim.Parameter

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(params, optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD(params []*Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
//
// Example:
//
//	optimizer := optim.NewAdam(params, optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	})
func NewAdam(params []*Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// Minimization

// Objective records the function to minimize.
type Objective = optim.Objective

// MinimizeConfig controls the optimization loop.
type MinimizeConfig = optim.MinimizeConfig

// Result summarizes a minimization.
type Result = optim.Result

// ErrNotConverged is returned when Minimize runs out of iterations.
var ErrNotConverged = optim.ErrNotConverged

// Minimize drives opt until the gradient of objective vanishes.
func Minimize(t *autodiff.Tape, params []*Parameter, objective Objective, opt Optimizer, cfg MinimizeConfig) (Result, error) {
	return optim.Minimize(t, params, objective, opt, cfg)
}

// Values returns the current values of params.
func Values(params []*Parameter) []float64 {
	return optim.Values(params)
}
