package autodiff

import (
	"fmt"
	"strconv"
)

const errMixedTapes = "autodiff: operands recorded on different tapes"

// Number is a float64 that records the operations it takes part in.
//
// A Number whose tape is nil is a constant: arithmetic on constants records
// nothing and costs the same as plain float64 arithmetic. The zero Number is
// the constant 0. A Number is put on a tape with Tape.Variable or PutOnTape;
// every Number derived from an on-tape operand is recorded on the same tape.
//
// A Number is only meaningful while its node is retained by the tape. After a
// rewind past its node it must be recomputed.
type Number struct {
	value float64
	tape  *Tape
	node  int
}

// Const returns an off-tape Number.
func Const(v float64) Number {
	return Number{value: v}
}

// Variable records a leaf node holding v.
func (t *Tape) Variable(v float64) Number {
	return Number{value: v, tape: t, node: t.recordNode(0)}
}

// PutOnTape replaces x with a leaf of t holding the same value.
func (x *Number) PutOnTape(t *Tape) {
	*x = t.Variable(x.value)
}

// PutOnTape puts every number on t.
func PutOnTape(t *Tape, xs ...*Number) {
	for _, x := range xs {
		x.PutOnTape(t)
	}
}

// Value returns the numeric value.
func (x Number) Value() float64 {
	return x.value
}

// Float64 is an alias for Value.
func (x Number) Float64() float64 {
	return x.value
}

// OnTape reports whether the number is recorded.
func (x Number) OnTape() bool {
	return x.tape != nil
}

// Tape returns the tape the number is recorded on, or nil.
func (x Number) Tape() *Tape {
	return x.tape
}

// Node returns the index of the number's node. Only meaningful when OnTape.
func (x Number) Node() int {
	return x.node
}

func (x Number) mustTape() *Tape {
	if x.tape == nil {
		panic("autodiff: number is not on tape")
	}
	if x.node >= x.tape.nodes.Size() {
		panic(fmt.Sprintf("autodiff: node %d was discarded by a rewind", x.node))
	}
	return x.tape
}

// Adjoint returns the first adjoint of the number. Off-tape numbers have
// a zero adjoint.
func (x Number) Adjoint() float64 {
	if x.tape == nil {
		return 0
	}
	t := x.mustTape()
	if t.cfg.Multi {
		return *t.adjoints.At(t.nodes.At(x.node).adjs)
	}
	return t.nodes.At(x.node).adjoint
}

// AdjointAt returns the j-th adjoint of the number.
func (x Number) AdjointAt(j int) float64 {
	if x.tape == nil {
		return 0
	}
	return *x.adjointRef(j)
}

// Adjoints returns a copy of all adjoints of the number.
func (x Number) Adjoints() []float64 {
	if x.tape == nil {
		return nil
	}
	t := x.mustTape()
	if !t.cfg.Multi {
		return []float64{t.nodes.At(x.node).adjoint}
	}
	out := make([]float64, t.cfg.NumResults)
	copy(out, t.adjoints.Slice(t.nodes.At(x.node).adjs, t.cfg.NumResults))
	return out
}

// SetAdjoint sets the first adjoint of the number.
func (x Number) SetAdjoint(v float64) {
	*x.adjointRef(0) = v
}

// SetAdjointAt sets the j-th adjoint of the number.
func (x Number) SetAdjointAt(j int, v float64) {
	*x.adjointRef(j) = v
}

func (x Number) adjointRef(j int) *float64 {
	t := x.mustTape()
	if j < 0 || j >= t.cfg.NumResults {
		panic(fmt.Sprintf("autodiff: adjoint index %d out of range [0, %d)", j, t.cfg.NumResults))
	}
	node := t.nodes.At(x.node)
	if !t.cfg.Multi {
		return &node.adjoint
	}
	return t.adjoints.At(node.adjs + j)
}

// PropagateToStart seeds the number's adjoint with 1 and propagates it to
// every node on the tape. Single-adjoint mode only.
func (x Number) PropagateToStart() {
	t := x.mustTape()
	t.mustSingle("PropagateToStart")
	t.nodes.At(x.node).adjoint = 1
	t.sweep(x.node+1, 0)
}

// PropagateToMark seeds the number's adjoint with 1 and propagates it to the
// nodes recorded after the mark. Nodes before the mark accumulate adjoints but
// are not swept; see Tape.PropagateMarkToStart. Single-adjoint mode only.
func (x Number) PropagateToMark() {
	t := x.mustTape()
	t.mustSingle("PropagateToMark")
	t.nodes.At(x.node).adjoint = 1
	t.sweep(x.node+1, t.nodes.Index(t.nodes.Mark()))
}

// PropagateSeedsToStart sets the number's adjoints to seeds and propagates
// them to every node on the tape. Multi-adjoint mode only.
func (x Number) PropagateSeedsToStart(seeds []float64) {
	t := x.setSeeds("PropagateSeedsToStart", seeds)
	t.sweep(x.node+1, 0)
}

// PropagateSeedsToMark is PropagateSeedsToStart stopping at the mark.
func (x Number) PropagateSeedsToMark(seeds []float64) {
	t := x.setSeeds("PropagateSeedsToMark", seeds)
	t.sweep(x.node+1, t.nodes.Index(t.nodes.Mark()))
}

func (x Number) setSeeds(op string, seeds []float64) *Tape {
	t := x.mustTape()
	t.mustMulti(op)
	if len(seeds) != t.cfg.NumResults {
		panic(fmt.Sprintf("autodiff: %d seeds for %d adjoints per node", len(seeds), t.cfg.NumResults))
	}
	copy(t.adjoints.Slice(t.nodes.At(x.node).adjs, t.cfg.NumResults), seeds)
	return t
}

// String formats the value.
func (x Number) String() string {
	return strconv.FormatFloat(x.value, 'g', -1, 64)
}
