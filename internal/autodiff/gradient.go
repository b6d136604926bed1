package autodiff

// Gradient rewinds t, records f at xs and returns its value and the gradient
// with respect to every input. t must be in single-adjoint mode.
func Gradient(t *Tape, xs []float64, f func(in []Number) Number) (float64, []float64) {
	t.Rewind()
	in := make([]Number, len(xs))
	for i, x := range xs {
		in[i] = t.Variable(x)
	}
	y := f(in)
	grad := make([]float64, len(xs))
	if !y.OnTape() {
		return y.value, grad
	}
	y.PropagateToStart()
	for i, x := range in {
		grad[i] = x.Adjoint()
	}
	return y.value, grad
}
