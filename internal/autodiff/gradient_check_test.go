package autodiff_test

import (
	"math"
	"testing"

	"github.com/born-ml/adjoint/internal/autodiff"
	"github.com/stretchr/testify/assert"
)

// Test functions are written once over Scalar and instantiated for both
// Number (adjoints) and Float (finite differences).

func polynomial[T autodiff.Scalar[T]](x, y T) T {
	// 3x³ - 2xy + y²
	return x.PowF(3).MulF(3).Sub(x.Mul(y).MulF(2)).Add(y.Square())
}

func rational[T autodiff.Scalar[T]](x, y T) T {
	return x.Div(y.Square().AddF(1)).RSubF(1)
}

func transcendental[T autodiff.Scalar[T]](x, y T) T {
	return x.Exp().Mul(y.Log()).Add(x.Mul(y).Sqrt())
}

func powers[T autodiff.Scalar[T]](x, y T) T {
	return x.Pow(y).Add(y.RPowF(2)).Add(x.RDivF(1))
}

func piecewise[T autodiff.Scalar[T]](x, y T) T {
	return x.Sub(y).MaxF(0).Add(x.Min(y).Abs())
}

func gaussian[T autodiff.Scalar[T]](x, y T) T {
	return x.NormalCDF().Mul(y.NormalPDF()).Add(x.Erfc())
}

func blackLike[T autodiff.Scalar[T]](x, y T) T {
	sd := y.MulF(math.Sqrt(2.0))
	d := x.DivF(1.1).Log().Div(sd).Add(sd.MulF(0.5))
	return x.Mul(d.NormalCDF()).Sub(d.Sub(sd).NormalCDF().MulF(1.1))
}

// numericalGradient computes the gradient of f at (x, y) with central differences.
func numericalGradient(f func(x, y autodiff.Float) autodiff.Float, x, y, h float64) (dx, dy float64) {
	fx := func(a, b float64) float64 { return f(autodiff.Float(a), autodiff.Float(b)).Value() }
	dx = (fx(x+h, y) - fx(x-h, y)) / (2 * h)
	dy = (fx(x, y+h) - fx(x, y-h)) / (2 * h)
	return dx, dy
}

func TestNumericalGradient(t *testing.T) {
	tests := []struct {
		name   string
		number func(x, y autodiff.Number) autodiff.Number
		float  func(x, y autodiff.Float) autodiff.Float
		x, y   float64
	}{
		{"Polynomial", polynomial[autodiff.Number], polynomial[autodiff.Float], 1.2, -0.7},
		{"Rational", rational[autodiff.Number], rational[autodiff.Float], 0.3, 2.1},
		{"Transcendental", transcendental[autodiff.Number], transcendental[autodiff.Float], 0.9, 1.8},
		{"Powers", powers[autodiff.Number], powers[autodiff.Float], 1.4, 0.6},
		{"Piecewise", piecewise[autodiff.Number], piecewise[autodiff.Float], 1.5, -0.5},
		{"Gaussian", gaussian[autodiff.Number], gaussian[autodiff.Float], 0.4, -1.1},
		{"BlackLike", blackLike[autodiff.Number], blackLike[autodiff.Float], 1.0, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := newTape(t)
			x, y := tape.Variable(tt.x), tape.Variable(tt.y)
			z := tt.number(x, y)
			z.PropagateToStart()

			assert.InDelta(t, tt.float(autodiff.Float(tt.x), autodiff.Float(tt.y)).Value(), z.Value(), 1e-12,
				"Number and Float evaluate the same function")

			dx, dy := numericalGradient(tt.float, tt.x, tt.y, 1e-6)
			assert.InDelta(t, dx, x.Adjoint(), 1e-6*math.Max(1, math.Abs(dx)))
			assert.InDelta(t, dy, y.Adjoint(), 1e-6*math.Max(1, math.Abs(dy)))
		})
	}
}

func TestScalar_Helpers(t *testing.T) {
	assert.Equal(t, []autodiff.Float{1, 2}, autodiff.Floats([]float64{1, 2}))
	assert.Equal(t, []float64{1, 2}, autodiff.Values(autodiff.Constants([]float64{1, 2})))
	assert.Equal(t, 2.5, autodiff.Float(0).Constant(2.5).Value())
	assert.False(t, autodiff.Number{}.Constant(2.5).OnTape())
}

func TestGradient(t *testing.T) {
	tape := newTape(t)
	f := func(in []autodiff.Number) autodiff.Number {
		return polynomial(in[0], in[1])
	}

	for round := 0; round < 3; round++ {
		v, g := autodiff.Gradient(tape, []float64{1.2, -0.7}, f)
		assert.InDelta(t, polynomial(autodiff.Float(1.2), autodiff.Float(-0.7)).Value(), v, 1e-12)
		// d/dx = 9x² - 2y, d/dy = -2x + 2y
		assert.InDelta(t, 9*1.44+1.4, g[0], 1e-9)
		assert.InDelta(t, -2.4-1.4, g[1], 1e-9)
	}

	v, g := autodiff.Gradient(tape, []float64{1}, func([]autodiff.Number) autodiff.Number {
		return autodiff.Const(4)
	})
	assert.Equal(t, 4.0, v)
	assert.Equal(t, []float64{0}, g)
}
