package autodiff

import "math"

// Scalar is the numeric type model code is written against. Number records
// operations for differentiation; Float evaluates the same code on plain
// float64 with no recording.
//
// Model code is written once as a generic function over T Scalar[T]:
//
//	func Forward[T Scalar[T]](s, k T) T {
//		return s.Sub(k).MaxF(0)
//	}
type Scalar[T any] interface {
	Value() float64
	Constant(c float64) T

	Add(y T) T
	Sub(y T) T
	Mul(y T) T
	Div(y T) T
	Pow(y T) T
	Max(y T) T
	Min(y T) T

	AddF(c float64) T
	SubF(c float64) T
	RSubF(c float64) T
	MulF(c float64) T
	DivF(c float64) T
	RDivF(c float64) T
	PowF(c float64) T
	RPowF(c float64) T
	MaxF(c float64) T
	MinF(c float64) T

	Neg() T
	Exp() T
	Log() T
	Sqrt() T
	Square() T
	Abs() T
	NormalPDF() T
	NormalCDF() T
	Erfc() T

	Less(y T) bool
	LessF(c float64) bool
	Greater(y T) bool
	GreaterF(c float64) bool
}

var (
	_ Scalar[Number] = Number{}
	_ Scalar[Float]  = Float(0)
)

// Constant returns an off-tape Number. It lets generic code build literals.
func (Number) Constant(c float64) Number {
	return Number{value: c}
}

// Float is a float64 satisfying Scalar.
type Float float64

func (x Float) Value() float64         { return float64(x) }
func (Float) Constant(c float64) Float { return Float(c) }

func (x Float) Add(y Float) Float { return x + y }
func (x Float) Sub(y Float) Float { return x - y }
func (x Float) Mul(y Float) Float { return x * y }
func (x Float) Div(y Float) Float { return x / y }
func (x Float) Pow(y Float) Float { return Float(math.Pow(float64(x), float64(y))) }

func (x Float) Max(y Float) Float {
	if x > y {
		return x
	}
	return y
}

func (x Float) Min(y Float) Float {
	if x < y {
		return x
	}
	return y
}

func (x Float) AddF(c float64) Float  { return x + Float(c) }
func (x Float) SubF(c float64) Float  { return x - Float(c) }
func (x Float) RSubF(c float64) Float { return Float(c) - x }
func (x Float) MulF(c float64) Float  { return x * Float(c) }
func (x Float) DivF(c float64) Float  { return x / Float(c) }
func (x Float) RDivF(c float64) Float { return Float(c) / x }
func (x Float) PowF(c float64) Float  { return Float(math.Pow(float64(x), c)) }
func (x Float) RPowF(c float64) Float { return Float(math.Pow(c, float64(x))) }
func (x Float) MaxF(c float64) Float  { return x.Max(Float(c)) }
func (x Float) MinF(c float64) Float  { return x.Min(Float(c)) }

func (x Float) Neg() Float       { return -x }
func (x Float) Exp() Float       { return Float(math.Exp(float64(x))) }
func (x Float) Log() Float       { return Float(math.Log(float64(x))) }
func (x Float) Sqrt() Float      { return Float(math.Sqrt(float64(x))) }
func (x Float) Square() Float    { return x * x }
func (x Float) Abs() Float       { return Float(math.Abs(float64(x))) }
func (x Float) NormalPDF() Float { return Float(normalPDF(float64(x))) }
func (x Float) NormalCDF() Float { return Float(normalCDF(float64(x))) }
func (x Float) Erfc() Float      { return Float(math.Erfc(float64(x))) }

func (x Float) Less(y Float) bool       { return x < y }
func (x Float) LessF(c float64) bool    { return float64(x) < c }
func (x Float) Greater(y Float) bool    { return x > y }
func (x Float) GreaterF(c float64) bool { return float64(x) > c }

func (x Float) String() string { return Number{value: float64(x)}.String() }

// Floats converts float64 values to Float.
func Floats(xs []float64) []Float {
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

// Constants converts float64 values to off-tape Numbers.
func Constants(xs []float64) []Number {
	out := make([]Number, len(xs))
	for i, x := range xs {
		out[i] = Number{value: x}
	}
	return out
}

// Values extracts the values of xs.
func Values[T Scalar[T]](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.Value()
	}
	return out
}
