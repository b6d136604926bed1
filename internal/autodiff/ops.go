package autodiff

import "math"

// record2 records a binary operation whose value and local derivatives are
// already computed. Off-tape operands are dropped from the node.
func record2(a, b Number, v, da, db float64) Number {
	switch {
	case a.tape == nil && b.tape == nil:
		return Number{value: v}
	case b.tape == nil:
		return a.tape.unary(a, v, da)
	case a.tape == nil:
		return b.tape.unary(b, v, db)
	}
	return a.tape.binary(a, b, v, da, db)
}

// record1 records a unary operation.
func (x Number) record1(v, d float64) Number {
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, d)
}

// Add returns x + y.
func (x Number) Add(y Number) Number {
	return record2(x, y, x.value+y.value, 1, 1)
}

// Sub returns x - y.
func (x Number) Sub(y Number) Number {
	return record2(x, y, x.value-y.value, 1, -1)
}

// Mul returns x * y.
func (x Number) Mul(y Number) Number {
	return record2(x, y, x.value*y.value, y.value, x.value)
}

// Div returns x / y.
func (x Number) Div(y Number) Number {
	v := x.value / y.value
	if x.tape == nil && y.tape == nil {
		return Number{value: v}
	}
	inv := 1 / y.value
	return record2(x, y, v, inv, -x.value*inv*inv)
}

// Pow returns x raised to y. The derivative with respect to x is y*x^y/x,
// undefined at x = 0.
func (x Number) Pow(y Number) Number {
	v := math.Pow(x.value, y.value)
	switch {
	case x.tape == nil && y.tape == nil:
		return Number{value: v}
	case y.tape == nil:
		return x.tape.unary(x, v, y.value*v/x.value)
	case x.tape == nil:
		return y.tape.unary(y, v, math.Log(x.value)*v)
	}
	return x.tape.binary(x, y, v, y.value*v/x.value, math.Log(x.value)*v)
}

// Max returns the larger of x and y. On a tie the derivative goes to y.
func (x Number) Max(y Number) Number {
	if x.value > y.value {
		return record2(x, y, x.value, 1, 0)
	}
	return record2(x, y, y.value, 0, 1)
}

// Min returns the smaller of x and y. On a tie the derivative goes to y.
func (x Number) Min(y Number) Number {
	if x.value < y.value {
		return record2(x, y, x.value, 1, 0)
	}
	return record2(x, y, y.value, 0, 1)
}

// AddF returns x + c.
func (x Number) AddF(c float64) Number { return x.record1(x.value+c, 1) }

// SubF returns x - c.
func (x Number) SubF(c float64) Number { return x.record1(x.value-c, 1) }

// RSubF returns c - x.
func (x Number) RSubF(c float64) Number { return x.record1(c-x.value, -1) }

// MulF returns x * c.
func (x Number) MulF(c float64) Number { return x.record1(x.value*c, c) }

// DivF returns x / c.
func (x Number) DivF(c float64) Number { return x.record1(x.value/c, 1/c) }

// RDivF returns c / x.
func (x Number) RDivF(c float64) Number {
	v := c / x.value
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, -v/x.value)
}

// PowF returns x raised to c.
func (x Number) PowF(c float64) Number {
	v := math.Pow(x.value, c)
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, c*v/x.value)
}

// RPowF returns c raised to x.
func (x Number) RPowF(c float64) Number {
	v := math.Pow(c, x.value)
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, math.Log(c)*v)
}

// MaxF returns the larger of x and c.
func (x Number) MaxF(c float64) Number {
	if x.value > c {
		return x.record1(x.value, 1)
	}
	return x.record1(c, 0)
}

// MinF returns the smaller of x and c.
func (x Number) MinF(c float64) Number {
	if x.value < c {
		return x.record1(x.value, 1)
	}
	return x.record1(c, 0)
}

// Neg returns -x.
func (x Number) Neg() Number { return x.record1(-x.value, -1) }

// Exp returns e^x.
func (x Number) Exp() Number {
	v := math.Exp(x.value)
	return x.record1(v, v)
}

// Log returns the natural logarithm of x.
func (x Number) Log() Number {
	return x.record1(math.Log(x.value), 1/x.value)
}

// Sqrt returns the square root of x.
func (x Number) Sqrt() Number {
	v := math.Sqrt(x.value)
	return x.record1(v, 0.5/v)
}

// Square returns x * x as a single node.
func (x Number) Square() Number {
	return x.record1(x.value*x.value, 2*x.value)
}

// Abs returns |x|. The derivative at 0 is -1.
func (x Number) Abs() Number {
	if x.value > 0 {
		return x.record1(x.value, 1)
	}
	return x.record1(-x.value, -1)
}

// NormalPDF returns the standard normal density at x.
func (x Number) NormalPDF() Number {
	v := normalPDF(x.value)
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, -x.value*v)
}

// NormalCDF returns the standard normal cumulative distribution at x.
func (x Number) NormalCDF() Number {
	v := normalCDF(x.value)
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, normalPDF(x.value))
}

// Erfc returns the complementary error function of x.
func (x Number) Erfc() Number {
	v := math.Erfc(x.value)
	if x.tape == nil {
		return Number{value: v}
	}
	return x.tape.unary(x, v, -2/math.SqrtPi*math.Exp(-x.value*x.value))
}

// Comparisons look at values only and record nothing.

// Less reports x < y.
func (x Number) Less(y Number) bool { return x.value < y.value }

// LessF reports x < c.
func (x Number) LessF(c float64) bool { return x.value < c }

// LessEq reports x <= y.
func (x Number) LessEq(y Number) bool { return x.value <= y.value }

// Greater reports x > y.
func (x Number) Greater(y Number) bool { return x.value > y.value }

// GreaterF reports x > c.
func (x Number) GreaterF(c float64) bool { return x.value > c }

// GreaterEq reports x >= y.
func (x Number) GreaterEq(y Number) bool { return x.value >= y.value }

// Equal reports x == y.
func (x Number) Equal(y Number) bool { return x.value == y.value }

// EqualF reports x == c.
func (x Number) EqualF(c float64) bool { return x.value == c }

const invSqrt2Pi = 0.3989422804014327

func normalPDF(x float64) float64 {
	return invSqrt2Pi * math.Exp(-0.5*x*x)
}

func normalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}
