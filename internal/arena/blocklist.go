// Package arena provides the block-based allocator underlying the tape.
//
// A BlockList hands out elements from a list of fixed-capacity blocks. Elements
// are addressed by a stable integer index and are never moved once allocated,
// so indices stay valid while the list keeps growing. Rewinding only moves the
// cursor back; retained blocks are reused by later allocations, which lets a
// tape be re-recorded millions of times without going back to the heap.
//
// A BlockList is owned by a single goroutine. There is no locking.
package arena

import "fmt"

// Position is a cursor into a BlockList: the next free slot.
type Position struct {
	Block  int
	Offset int
}

// BlockList is an append-only sequence of T backed by fixed-size blocks.
type BlockList[T any] struct {
	blocks    [][]T
	blockSize int

	curr int // index of the block holding the cursor
	next int // next free slot inside blocks[curr]

	mark    Position
	hasMark bool
}

// New creates a BlockList with the given block capacity.
// The first block is allocated eagerly.
func New[T any](blockSize int) *BlockList[T] {
	if blockSize <= 0 {
		panic(fmt.Sprintf("arena: block size must be positive, got %d", blockSize))
	}
	l := &BlockList[T]{blockSize: blockSize}
	l.newBlock()
	return l
}

func (l *BlockList[T]) newBlock() {
	l.blocks = append(l.blocks, make([]T, l.blockSize))
	l.curr = len(l.blocks) - 1
	l.next = 0
}

// nextBlock moves the cursor to the start of the following block,
// reusing a retained block when there is one.
func (l *BlockList[T]) nextBlock() {
	if l.curr == len(l.blocks)-1 {
		l.newBlock()
		return
	}
	l.curr++
	l.next = 0
}

// BlockSize returns the capacity of every block.
func (l *BlockList[T]) BlockSize() int {
	return l.blockSize
}

// Blocks returns the number of blocks currently held, used or not.
func (l *BlockList[T]) Blocks() int {
	return len(l.blocks)
}

// EmplaceBack allocates one element and returns its index.
func (l *BlockList[T]) EmplaceBack() int {
	if l.next == l.blockSize {
		l.nextBlock()
	}
	idx := l.curr*l.blockSize + l.next
	l.next++
	return idx
}

// EmplaceBackMulti allocates k contiguous elements and returns the index of
// the first one. A run never straddles two blocks: when the current block has
// fewer than k free slots its remainder is skipped.
//
// Panics if k exceeds the block size.
func (l *BlockList[T]) EmplaceBackMulti(k int) int {
	if k < 0 || k > l.blockSize {
		panic(fmt.Sprintf("arena: contiguous run of %d elements does not fit in a block of %d", k, l.blockSize))
	}
	if l.blockSize-l.next < k {
		l.nextBlock()
	}
	idx := l.curr*l.blockSize + l.next
	l.next += k
	return idx
}

// At returns a pointer to the element at index i.
func (l *BlockList[T]) At(i int) *T {
	return &l.blocks[i/l.blockSize][i%l.blockSize]
}

// Slice returns the k elements starting at index i. The run must have been
// obtained from a single EmplaceBackMulti call.
func (l *BlockList[T]) Slice(i, k int) []T {
	b, off := i/l.blockSize, i%l.blockSize
	return l.blocks[b][off : off+k : off+k]
}

// Position returns the current cursor.
func (l *BlockList[T]) Position() Position {
	return Position{Block: l.curr, Offset: l.next}
}

// Index converts a position to the index of the slot it points at.
func (l *BlockList[T]) Index(p Position) int {
	return p.Block*l.blockSize + p.Offset
}

// Size returns the number of slots consumed since the last Rewind or Clear,
// including remainders skipped by EmplaceBackMulti.
func (l *BlockList[T]) Size() int {
	return l.curr*l.blockSize + l.next
}

// SetMark records the current cursor. Any previous mark is overwritten.
func (l *BlockList[T]) SetMark() {
	l.mark = l.Position()
	l.hasMark = true
}

// HasMark reports whether a mark is held.
func (l *BlockList[T]) HasMark() bool {
	return l.hasMark
}

// Mark returns the held mark. Panics if there is none.
func (l *BlockList[T]) Mark() Position {
	if !l.hasMark {
		panic("arena: no mark set")
	}
	return l.mark
}

// Rewind moves the cursor back to the first slot and drops the mark.
// Blocks are retained for reuse.
func (l *BlockList[T]) Rewind() {
	l.curr, l.next = 0, 0
	l.hasMark = false
}

// RewindToMark moves the cursor back to the held mark.
// Panics if no mark is set.
func (l *BlockList[T]) RewindToMark() {
	if !l.hasMark {
		panic("arena: rewind to mark with no mark set")
	}
	l.curr, l.next = l.mark.Block, l.mark.Offset
}

// RewindTo moves the cursor back to p, which must not be ahead of the
// current cursor. A mark ahead of p is dropped.
func (l *BlockList[T]) RewindTo(p Position) {
	if l.Index(p) > l.Size() || p.Offset > l.blockSize || p.Block < 0 || p.Offset < 0 {
		panic(fmt.Sprintf("arena: cannot rewind to %+v from %+v", p, l.Position()))
	}
	l.curr, l.next = p.Block, p.Offset
	if l.hasMark && l.Index(l.mark) > l.Index(p) {
		l.hasMark = false
	}
}

// Clear releases every block and starts over with a single fresh one.
func (l *BlockList[T]) Clear() {
	clear(l.blocks)
	l.blocks = l.blocks[:0]
	l.newBlock()
	l.hasMark = false
}

// Zero resets every retained element to its zero value.
func (l *BlockList[T]) Zero() {
	for _, b := range l.blocks {
		clear(b)
	}
}
