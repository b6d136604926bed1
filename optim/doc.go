// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides first-order optimizers driven by tape gradients.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Minimize: record, propagate and step until the gradient vanishes
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/adjoint/autodiff"
//	    "github.com/born-ml/adjoint/optim"
//	)
//
//	func main() {
//	    tape := autodiff.MustNewTape(autodiff.DefaultConfig())
//	    params := []*optim.Parameter{{Name: "log_vol", Value: math.Log(0.2)}}
//
//	    optimizer := optim.NewAdam(params, optim.AdamConfig{LR: 0.01})
//	    res, err := optim.Minimize(tape, params, objective, optimizer, optim.MinimizeConfig{
//	        MaxIter:   5000,
//	        Tolerance: 1e-8,
//	    })
//	}
//
// # Optimization Loop Pattern
//
// Minimize runs, per iteration:
//
//	// 1. Rewind the tape and put the parameters on it
//	// 2. Record the objective
//	// 3. Propagate and copy adjoints into Parameter.Grad
//	// 4. optimizer.Step(), optimizer.ZeroGrad()
package optim
