// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode algorithmic differentiation of scalar
// code.
//
// Operations on Numbers are recorded on a Tape. Propagating from a result
// fills the adjoint, the derivative of the result, of every recorded input.
//
// Example:
//
//	import "github.com/born-ml/adjoint/autodiff"
//
//	func main() {
//	    tape := autodiff.MustNewTape(autodiff.DefaultConfig())
//
//	    spot := tape.Variable(100)
//	    vol := tape.Variable(0.2)
//	    price := model(spot, vol) // any code written against autodiff.Scalar
//
//	    price.PropagateToStart()
//	    fmt.Println(spot.Adjoint(), vol.Adjoint()) // delta, vega
//	}
//
// Model code written as func F[T autodiff.Scalar[T]](...) T runs on Number to
// get sensitivities and on Float to get plain values.
package autodiff

import (
	"github.com/born-ml/adjoint/internal/autodiff"
)

// Tape records operations for reverse-mode differentiation.
type Tape = autodiff.Tape

// Config controls the storage layout and adjoint shape of a Tape.
type Config = autodiff.Config

// Position is a snapshot of a tape's cursors.
type Position = autodiff.Position

// State describes the record/rewind lifecycle of a tape.
type State = autodiff.State

// Tape states.
const (
	Empty             = autodiff.Empty
	Recording         = autodiff.Recording
	Marked            = autodiff.Marked
	RecordingPastMark = autodiff.RecordingPastMark
)

// Number is a float64 recording the operations it takes part in.
type Number = autodiff.Number

// Float is a float64 satisfying Scalar without recording.
type Float = autodiff.Float

// Scalar is the numeric type model code is written against.
type Scalar[T any] = autodiff.Scalar[T]

// DefaultConfig returns a single-adjoint configuration with default block sizes.
func DefaultConfig() Config {
	return autodiff.DefaultConfig()
}

// MultiConfig returns a multi-adjoint configuration with n results per sweep.
func MultiConfig(n int) Config {
	return autodiff.MultiConfig(n)
}

// NewTape creates an empty tape.
func NewTape(cfg Config) (*Tape, error) {
	return autodiff.NewTape(cfg)
}

// MustNewTape is NewTape that panics on an invalid config.
func MustNewTape(cfg Config) *Tape {
	return autodiff.MustNewTape(cfg)
}

// Const returns an off-tape Number.
func Const(v float64) Number {
	return autodiff.Const(v)
}

// PutOnTape puts every number on t.
func PutOnTape(t *Tape, xs ...*Number) {
	autodiff.PutOnTape(t, xs...)
}

// Sum returns the sum of xs as a single node.
func Sum(xs ...Number) Number {
	return autodiff.Sum(xs...)
}

// WeightedSum returns sum(ws[i] * xs[i]) as a single node.
func WeightedSum(ws []float64, xs []Number) Number {
	return autodiff.WeightedSum(ws, xs)
}

// Gradient rewinds t, records f at xs and returns its value and gradient.
//
// Example:
//
//	v, g := autodiff.Gradient(tape, []float64{1, 2}, func(in []autodiff.Number) autodiff.Number {
//	    return in[0].Mul(in[1]).Exp()
//	})
func Gradient(t *Tape, xs []float64, f func(in []Number) Number) (float64, []float64) {
	return autodiff.Gradient(t, xs, f)
}
