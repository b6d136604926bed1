package autodiff

import (
	"fmt"

	"github.com/born-ml/adjoint/internal/arena"
)

// State describes where a tape is in its record/rewind lifecycle.
type State int

// Tape states.
const (
	Empty             State = iota // nothing recorded, no mark
	Recording                      // nodes recorded, no mark
	Marked                         // mark held at the current cursor
	RecordingPastMark              // nodes recorded beyond the mark
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Recording:
		return "recording"
	case Marked:
		return "marked"
	case RecordingPastMark:
		return "recording past mark"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Position is a snapshot of the cursors of every arena of a tape.
type Position struct {
	nodes    arena.Position
	ders     arena.Position
	args     arena.Position
	adjoints arena.Position
}

// Tape records operations on Numbers and propagates adjoints back through them.
//
// Usage:
//
//	tape := MustNewTape(DefaultConfig())
//	x := tape.Variable(2)
//	y := x.Mul(x).AddF(1)
//	y.PropagateToStart()
//	fmt.Println(x.Adjoint()) // dy/dx = 2x = 4
//
// A tape is not safe for concurrent use. Each goroutine records on its own tape.
type Tape struct {
	cfg Config

	nodes    *arena.BlockList[Node]
	ders     *arena.BlockList[float64]
	args     *arena.BlockList[int]
	adjoints *arena.BlockList[float64]
}

// NewTape creates an empty tape. Zero fields of cfg take their defaults.
func NewTape(cfg Config) (*Tape, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tape config: %w", err)
	}
	return &Tape{
		cfg:      cfg,
		nodes:    arena.New[Node](cfg.NodeBlockSize),
		ders:     arena.New[float64](cfg.DataBlockSize),
		args:     arena.New[int](cfg.DataBlockSize),
		adjoints: arena.New[float64](cfg.AdjointBlockSize),
	}, nil
}

// MustNewTape is NewTape that panics on an invalid config.
func MustNewTape(cfg Config) *Tape {
	t, err := NewTape(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// Config returns the tape configuration.
func (t *Tape) Config() Config {
	return t.cfg
}

// Multi reports whether the tape records multiple adjoints per node.
func (t *Tape) Multi() bool {
	return t.cfg.Multi
}

// NumResults returns the number of adjoints per node.
func (t *Tape) NumResults() int {
	return t.cfg.NumResults
}

// SetNumResults switches the adjoint shape of the tape and returns a function
// that restores the previous shape. Both the switch and the restore rewind the
// tape, since nodes recorded under one shape cannot be swept under another.
//
//	restore := tape.SetNumResults(true, 3)
//	defer restore()
func (t *Tape) SetNumResults(multi bool, n int) (restore func()) {
	prevMulti, prevN := t.cfg.Multi, t.cfg.NumResults
	t.setShape(multi, n)
	return func() { t.setShape(prevMulti, prevN) }
}

func (t *Tape) setShape(multi bool, n int) {
	cfg := t.cfg
	cfg.Multi = multi
	cfg.NumResults = n
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("autodiff: invalid adjoint shape: %v", err))
	}
	t.cfg = cfg
	t.Rewind()
}

// recordNode appends a node of arity n and returns its index. The node's
// derivative and parent runs are reserved but left for the caller to fill.
// In multi mode its adjoint slots are zeroed.
func (t *Tape) recordNode(n int) int {
	if n > t.cfg.MaxArity {
		panic(fmt.Sprintf("autodiff: node arity %d exceeds maximum %d", n, t.cfg.MaxArity))
	}
	idx := t.nodes.EmplaceBack()
	node := t.nodes.At(idx)
	*node = Node{n: n}
	if t.cfg.Multi {
		node.adjs = t.adjoints.EmplaceBackMulti(t.cfg.NumResults)
		clear(t.adjoints.Slice(node.adjs, t.cfg.NumResults))
	}
	if n > 0 {
		node.ders = t.ders.EmplaceBackMulti(n)
		node.args = t.args.EmplaceBackMulti(n)
	}
	return idx
}

// slot returns the adjoint slot of node idx as stored in a child's parent run.
func (t *Tape) slot(idx int) int {
	if t.cfg.Multi {
		return t.nodes.At(idx).adjs
	}
	return idx
}

// unary records a node with a single on-tape parent.
func (t *Tape) unary(x Number, v, d float64) Number {
	idx := t.recordNode(1)
	node := t.nodes.At(idx)
	*t.ders.At(node.ders) = d
	*t.args.At(node.args) = t.slot(x.node)
	return Number{value: v, tape: t, node: idx}
}

// binary records a node with two on-tape parents.
func (t *Tape) binary(a, b Number, v, da, db float64) Number {
	if b.tape != t {
		panic(errMixedTapes)
	}
	idx := t.recordNode(2)
	node := t.nodes.At(idx)
	ders := t.ders.Slice(node.ders, 2)
	args := t.args.Slice(node.args, 2)
	ders[0], ders[1] = da, db
	args[0], args[1] = t.slot(a.node), t.slot(b.node)
	return Number{value: v, tape: t, node: idx}
}

// Mark records the current cursors. Nodes recorded before the mark survive
// RewindToMark. A previous mark is overwritten.
func (t *Tape) Mark() {
	t.nodes.SetMark()
	t.ders.SetMark()
	t.args.SetMark()
	t.adjoints.SetMark()
}

// HasMark reports whether a mark is held.
func (t *Tape) HasMark() bool {
	return t.nodes.HasMark()
}

// MarkPosition returns the held mark. Panics if there is none.
func (t *Tape) MarkPosition() Position {
	return Position{
		nodes:    t.nodes.Mark(),
		ders:     t.ders.Mark(),
		args:     t.args.Mark(),
		adjoints: t.adjoints.Mark(),
	}
}

// RewindToMark discards every node recorded after the mark.
// Panics if no mark is set.
func (t *Tape) RewindToMark() {
	if !t.HasMark() {
		panic("autodiff: rewind to mark with no mark set")
	}
	t.nodes.RewindToMark()
	t.ders.RewindToMark()
	t.args.RewindToMark()
	t.adjoints.RewindToMark()
}

// Rewind discards every node and the mark. Storage is kept for reuse.
func (t *Tape) Rewind() {
	t.nodes.Rewind()
	t.ders.Rewind()
	t.args.Rewind()
	t.adjoints.Rewind()
}

// Clear discards every node and the mark and releases the storage.
func (t *Tape) Clear() {
	t.nodes.Clear()
	t.ders.Clear()
	t.args.Clear()
	t.adjoints.Clear()
}

// Position returns the current cursors.
func (t *Tape) Position() Position {
	return Position{
		nodes:    t.nodes.Position(),
		ders:     t.ders.Position(),
		args:     t.args.Position(),
		adjoints: t.adjoints.Position(),
	}
}

// StartPosition returns the position of an empty tape.
func (t *Tape) StartPosition() Position {
	return Position{}
}

// RewindTo discards every node recorded after p.
func (t *Tape) RewindTo(p Position) {
	t.nodes.RewindTo(p.nodes)
	t.ders.RewindTo(p.ders)
	t.args.RewindTo(p.args)
	t.adjoints.RewindTo(p.adjoints)
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return t.nodes.Size()
}

// DataLen returns the number of derivative slots consumed, including
// remainders skipped at block boundaries.
func (t *Tape) DataLen() int {
	return t.ders.Size()
}

// State returns the lifecycle state of the tape.
func (t *Tape) State() State {
	size := t.nodes.Size()
	if !t.HasMark() {
		if size == 0 {
			return Empty
		}
		return Recording
	}
	if size == t.nodes.Index(t.nodes.Mark()) {
		return Marked
	}
	return RecordingPastMark
}

// ResetAdjoints zeroes the adjoint of every retained node.
func (t *Tape) ResetAdjoints() {
	if t.cfg.Multi {
		t.adjoints.Zero()
		return
	}
	for i, n := 0, t.nodes.Size(); i < n; i++ {
		t.nodes.At(i).adjoint = 0
	}
}

// Evaluate propagates adjoints over the nodes between to (inclusive) and
// from (exclusive), newest first. Seeds must already be in place.
func (t *Tape) Evaluate(from, to Position) {
	t.sweep(t.nodes.Index(from.nodes), t.nodes.Index(to.nodes))
}

// PropagateMarkToStart propagates the adjoints accumulated on the nodes
// before the mark down to the start of the tape.
func (t *Tape) PropagateMarkToStart() {
	t.sweep(t.nodes.Index(t.nodes.Mark()), 0)
}

// PropagateResults seeds the j-th adjoint of results[j] with 1 and propagates
// all of them in one sweep down to to. Requires multi mode with at least
// len(results) adjoints per node. Results that are not on this tape are
// skipped.
func (t *Tape) PropagateResults(results []Number, to Position) {
	t.mustMulti("PropagateResults")
	if len(results) > t.cfg.NumResults {
		panic(fmt.Sprintf("autodiff: %d results on a tape with %d adjoints per node", len(results), t.cfg.NumResults))
	}
	from := -1
	for j, r := range results {
		if r.tape == nil {
			continue
		}
		if r.tape != t {
			panic(errMixedTapes)
		}
		*t.adjoints.At(t.nodes.At(r.node).adjs + j) = 1
		from = max(from, r.node)
	}
	if from < 0 {
		return
	}
	t.sweep(from+1, t.nodes.Index(to.nodes))
}

// sweep walks node indices in [to, from) in reverse.
func (t *Tape) sweep(from, to int) {
	if t.cfg.Multi {
		for i := from - 1; i >= to; i-- {
			t.nodes.At(i).propagateAll(t)
		}
		return
	}
	for i := from - 1; i >= to; i-- {
		t.nodes.At(i).propagateOne(t)
	}
}

func (t *Tape) mustSingle(op string) {
	if t.cfg.Multi {
		panic(fmt.Sprintf("autodiff: %s requires single-adjoint mode", op))
	}
}

func (t *Tape) mustMulti(op string) {
	if !t.cfg.Multi {
		panic(fmt.Sprintf("autodiff: %s requires multi-adjoint mode", op))
	}
}
