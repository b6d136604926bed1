package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-10

// smallConfig uses tiny blocks so tests cross block boundaries.
func smallConfig() autodiff.Config {
	return autodiff.Config{
		NodeBlockSize:    16,
		DataBlockSize:    32,
		AdjointBlockSize: 8,
		MaxArity:         8,
		NumResults:       1,
	}
}

func newTape(t *testing.T) *autodiff.Tape {
	t.Helper()
	tape, err := autodiff.NewTape(smallConfig())
	require.NoError(t, err)
	return tape
}

// TestNumber_BinaryOps checks value and adjoints of every binary operator with
// both operands on tape and with either operand constant.
func TestNumber_BinaryOps(t *testing.T) {
	const x0, y0 = 3.0, 2.0
	tests := []struct {
		name   string
		op     func(x, y autodiff.Number) autodiff.Number
		value  float64
		dx, dy float64
	}{
		{"Add", autodiff.Number.Add, 5, 1, 1},
		{"Sub", autodiff.Number.Sub, 1, 1, -1},
		{"Mul", autodiff.Number.Mul, 6, 2, 3},
		{"Div", autodiff.Number.Div, 1.5, 0.5, -0.75},
		{"Pow", autodiff.Number.Pow, 9, 6, 9 * math.Log(3)},
		{"Max", autodiff.Number.Max, 3, 1, 0},
		{"Min", autodiff.Number.Min, 2, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := newTape(t)

			x, y := tape.Variable(x0), tape.Variable(y0)
			z := tt.op(x, y)
			assert.InDelta(t, tt.value, z.Value(), tol)
			z.PropagateToStart()
			assert.InDelta(t, tt.dx, x.Adjoint(), tol)
			assert.InDelta(t, tt.dy, y.Adjoint(), tol)
			tape.Rewind()

			x = tape.Variable(x0)
			z = tt.op(x, autodiff.Const(y0))
			assert.InDelta(t, tt.value, z.Value(), tol)
			z.PropagateToStart()
			assert.InDelta(t, tt.dx, x.Adjoint(), tol)
			tape.Rewind()

			y = tape.Variable(y0)
			z = tt.op(autodiff.Const(x0), y)
			assert.InDelta(t, tt.value, z.Value(), tol)
			z.PropagateToStart()
			assert.InDelta(t, tt.dy, y.Adjoint(), tol)
		})
	}
}

func TestNumber_FloatOperandOps(t *testing.T) {
	const x0, c = 3.0, 2.0
	tests := []struct {
		name  string
		op    func(x autodiff.Number, c float64) autodiff.Number
		value float64
		dx    float64
	}{
		{"AddF", autodiff.Number.AddF, 5, 1},
		{"SubF", autodiff.Number.SubF, 1, 1},
		{"RSubF", autodiff.Number.RSubF, -1, -1},
		{"MulF", autodiff.Number.MulF, 6, 2},
		{"DivF", autodiff.Number.DivF, 1.5, 0.5},
		{"RDivF", autodiff.Number.RDivF, 2.0 / 3, -2.0 / 9},
		{"PowF", autodiff.Number.PowF, 9, 6},
		{"RPowF", autodiff.Number.RPowF, 8, 8 * math.Ln2},
		{"MaxF", autodiff.Number.MaxF, 3, 1},
		{"MinF", autodiff.Number.MinF, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := newTape(t)
			x := tape.Variable(x0)
			z := tt.op(x, c)
			assert.InDelta(t, tt.value, z.Value(), tol)
			assert.Equal(t, 2, tape.Len(), "a constant operand records a single node")
			z.PropagateToStart()
			assert.InDelta(t, tt.dx, x.Adjoint(), tol)

			off := tt.op(autodiff.Const(x0), c)
			assert.False(t, off.OnTape())
			assert.InDelta(t, tt.value, off.Value(), tol)
		})
	}
}

func TestNumber_UnaryOps(t *testing.T) {
	const x0 = 0.7
	pdf := math.Exp(-0.5*x0*x0) / math.Sqrt(2*math.Pi)
	tests := []struct {
		name  string
		op    func(x autodiff.Number) autodiff.Number
		x     float64
		value float64
		dx    float64
	}{
		{"Neg", autodiff.Number.Neg, x0, -x0, -1},
		{"Exp", autodiff.Number.Exp, x0, math.Exp(x0), math.Exp(x0)},
		{"Log", autodiff.Number.Log, x0, math.Log(x0), 1 / x0},
		{"Sqrt", autodiff.Number.Sqrt, x0, math.Sqrt(x0), 0.5 / math.Sqrt(x0)},
		{"Square", autodiff.Number.Square, x0, x0 * x0, 2 * x0},
		{"Abs", autodiff.Number.Abs, x0, x0, 1},
		{"AbsNegative", autodiff.Number.Abs, -x0, x0, -1},
		{"NormalPDF", autodiff.Number.NormalPDF, x0, pdf, -x0 * pdf},
		{"NormalCDF", autodiff.Number.NormalCDF, x0, 0.5 * math.Erfc(-x0/math.Sqrt2), pdf},
		{"Erfc", autodiff.Number.Erfc, x0, math.Erfc(x0), -2 / math.SqrtPi * math.Exp(-x0*x0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := newTape(t)
			x := tape.Variable(tt.x)
			z := tt.op(x)
			assert.InDelta(t, tt.value, z.Value(), tol)
			z.PropagateToStart()
			assert.InDelta(t, tt.dx, x.Adjoint(), tol)

			assert.InDelta(t, tt.value, tt.op(autodiff.Const(tt.x)).Value(), tol)
		})
	}
}

func TestNumber_NormalCDFKnownValues(t *testing.T) {
	assert.InDelta(t, 0.5, autodiff.Const(0).NormalCDF().Value(), tol)
	assert.InDelta(t, 0.8413447460685429, autodiff.Const(1).NormalCDF().Value(), 1e-15)
	assert.InDelta(t, 0.022750131948179195, autodiff.Const(-2).NormalCDF().Value(), 1e-15)
}

func TestNumber_Comparisons(t *testing.T) {
	tape := newTape(t)
	x, y := tape.Variable(1), autodiff.Const(2)
	n := tape.Len()

	assert.True(t, x.Less(y))
	assert.True(t, x.LessEq(y))
	assert.True(t, x.LessF(1.5))
	assert.False(t, x.Greater(y))
	assert.False(t, x.GreaterEq(y))
	assert.True(t, y.GreaterF(1.5))
	assert.True(t, x.Equal(autodiff.Const(1)))
	assert.True(t, x.EqualF(1))
	assert.Equal(t, n, tape.Len(), "comparisons record nothing")
}

func TestNumber_ZeroValue(t *testing.T) {
	var z autodiff.Number
	assert.Equal(t, 0.0, z.Value())
	assert.False(t, z.OnTape())
	assert.Nil(t, z.Tape())
	assert.Equal(t, 0.0, z.Adjoint())
	assert.Nil(t, z.Adjoints())
	assert.Panics(t, func() { z.SetAdjoint(1) })
	assert.Panics(t, func() { z.PropagateToStart() })
}

func TestNumber_ConstantsRecordNothing(t *testing.T) {
	tape := newTape(t)
	x := autodiff.Const(2)
	y := x.Mul(autodiff.Const(3)).Exp().AddF(1)
	assert.False(t, y.OnTape())
	assert.InDelta(t, math.Exp(6)+1, y.Value(), 1e-9)
	assert.Equal(t, 0, tape.Len())
}

func TestNumber_PutOnTape(t *testing.T) {
	tape := newTape(t)
	a, b := autodiff.Const(1), autodiff.Const(2)
	autodiff.PutOnTape(tape, &a, &b)

	assert.True(t, a.OnTape())
	assert.True(t, b.OnTape())
	assert.Same(t, tape, a.Tape())
	assert.Equal(t, 2.0, b.Value())
	assert.Equal(t, 2, tape.Len())
}

func TestNumber_SameOperandTwice(t *testing.T) {
	tape := newTape(t)
	x := tape.Variable(3)
	y := x.Mul(x)
	y.PropagateToStart()
	assert.InDelta(t, 6.0, x.Adjoint(), tol)
}

func TestNumber_Composite(t *testing.T) {
	tape := newTape(t)
	x, y := tape.Variable(0.5), tape.Variable(1.5)

	// f = x*y + exp(x) - log(y) / x
	f := x.Mul(y).Add(x.Exp()).Sub(y.Log().Div(x))
	f.PropagateToStart()

	want := 0.5*1.5 + math.Exp(0.5) - math.Log(1.5)/0.5
	assert.InDelta(t, want, f.Value(), tol)
	assert.InDelta(t, 1.5+math.Exp(0.5)+math.Log(1.5)/0.25, x.Adjoint(), 1e-9)
	assert.InDelta(t, 0.5-1/(1.5*0.5), y.Adjoint(), 1e-9)
}

func TestNumber_String(t *testing.T) {
	assert.Equal(t, "1.5", autodiff.Const(1.5).String())
	assert.Equal(t, "0.25", autodiff.Float(0.25).String())
}

func TestNumber_MixedTapesPanics(t *testing.T) {
	t1, t2 := newTape(t), newTape(t)
	x, y := t1.Variable(1), t2.Variable(2)
	assert.PanicsWithValue(t, "autodiff: operands recorded on different tapes", func() { x.Add(y) })
	assert.Panics(t, func() { autodiff.Sum(x, y) })
}

func TestNumber_StaleAfterRewind(t *testing.T) {
	tape := newTape(t)
	x := tape.Variable(1)
	tape.Rewind()
	assert.Panics(t, func() { x.Adjoint() })
}

func TestNumber_AdjointIndexOutOfRange(t *testing.T) {
	tape := newTape(t)
	x := tape.Variable(1)
	assert.Panics(t, func() { x.AdjointAt(1) })
	assert.Panics(t, func() { x.SetAdjointAt(-1, 0) })
}
