// Package autodiff implements reverse-mode algorithmic differentiation of
// scalar float64 code.
//
// Architecture:
//   - Tape: owns every recorded node in block arenas, addressed by index
//   - Number: a value plus the index of its node on a tape
//   - Scalar: generic substitution point so model code runs on Number or Float
//   - Sweeps: adjoints propagate newest-to-oldest over a range of nodes
//
// A tape records in single-adjoint mode (one adjoint per node) or in
// multi-adjoint mode, where every node carries NumResults adjoints and one
// sweep differentiates several results at once.
//
// Usage:
//
//	tape := autodiff.MustNewTape(autodiff.DefaultConfig())
//	x := tape.Variable(3)
//	y := tape.Variable(4)
//	z := x.Mul(y).Add(x.Exp())
//	z.PropagateToStart()
//	fmt.Println(x.Adjoint(), y.Adjoint()) // y + e^x, x
//
// Checkpointing: record the inputs, call Mark, then for every scenario record
// the scenario, call PropagateToMark on its result and RewindToMark. The
// adjoints of the inputs accumulate over all scenarios; a final
// PropagateMarkToStart carries them through the setup.
package autodiff
