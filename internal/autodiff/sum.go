package autodiff

import "fmt"

// Sum returns the sum of xs as a single node whose arity is the number of
// on-tape operands. Off-tape operands only contribute to the value. More
// on-tape operands than the tape's MaxArity are folded into partial sums.
func Sum(xs ...Number) Number {
	return WeightedSum(nil, xs)
}

// WeightedSum returns sum(ws[i] * xs[i]) as a single node. A nil ws weighs
// every operand 1.
func WeightedSum(ws []float64, xs []Number) Number {
	if ws != nil && len(ws) != len(xs) {
		panic(fmt.Sprintf("autodiff: %d weights for %d operands", len(ws), len(xs)))
	}
	var (
		v float64
		t *Tape
		m int
	)
	for i, x := range xs {
		v += weight(ws, i) * x.value
		if x.tape == nil {
			continue
		}
		if t == nil {
			t = x.tape
		} else if t != x.tape {
			panic(errMixedTapes)
		}
		m++
	}
	if t == nil {
		return Number{value: v}
	}
	if m > t.cfg.MaxArity {
		return t.foldSum(ws, xs)
	}

	idx := t.recordNode(m)
	node := t.nodes.At(idx)
	ders := t.ders.Slice(node.ders, m)
	args := t.args.Slice(node.args, m)
	k := 0
	for i, x := range xs {
		if x.tape == nil {
			continue
		}
		ders[k] = weight(ws, i)
		args[k] = t.slot(x.node)
		k++
	}
	return Number{value: v, tape: t, node: idx}
}

// foldSum splits a sum too wide for one node into partial sums of at most
// MaxArity operands each.
func (t *Tape) foldSum(ws []float64, xs []Number) Number {
	w := t.cfg.MaxArity
	partials := make([]Number, 0, (len(xs)+w-1)/w)
	for lo := 0; lo < len(xs); lo += w {
		hi := min(lo+w, len(xs))
		var chunk []float64
		if ws != nil {
			chunk = ws[lo:hi]
		}
		partials = append(partials, WeightedSum(chunk, xs[lo:hi]))
	}
	return Sum(partials...)
}

func weight(ws []float64, i int) float64 {
	if ws == nil {
		return 1
	}
	return ws[i]
}
