package autodiff

// Node is one recorded elementary operation.
//
// A node of arity n owns a run of n local derivatives in the tape's derivative
// arena and a run of n parent slots in the parent arena. A parent slot is an
// index into the tape's adjoint storage: the parent node's index in
// single-adjoint mode, the parent's first multi-adjoint slot in multi mode.
// Nodes never own their parents; the tape owns all storage.
type Node struct {
	n       int     // arity
	adjoint float64 // single-adjoint accumulator
	ders    int     // first local derivative
	args    int     // first parent slot
	adjs    int     // first multi-adjoint slot
}

// Arity returns the number of operands recorded by the node.
func (n *Node) Arity() int {
	return n.n
}

// propagateOne pushes the node's adjoint to its parents.
// Nodes with a zero adjoint are skipped.
func (n *Node) propagateOne(t *Tape) {
	if n.n == 0 || n.adjoint == 0 {
		return
	}
	adj := n.adjoint
	ders := t.ders.Slice(n.ders, n.n)
	args := t.args.Slice(n.args, n.n)
	for i, d := range ders {
		t.nodes.At(args[i]).adjoint += adj * d
	}
}

// propagateAll is propagateOne for every result of a multi-adjoint sweep.
func (n *Node) propagateAll(t *Tape) {
	if n.n == 0 {
		return
	}
	m := t.cfg.NumResults
	own := t.adjoints.Slice(n.adjs, m)
	if allZero(own) {
		return
	}
	ders := t.ders.Slice(n.ders, n.n)
	args := t.args.Slice(n.args, n.n)
	for i, d := range ders {
		parent := t.adjoints.Slice(args[i], m)
		for j, a := range own {
			parent[j] += d * a
		}
	}
}

func allZero(xs []float64) bool {
	for _, x := range xs {
		if x != 0 {
			return false
		}
	}
	return true
}
