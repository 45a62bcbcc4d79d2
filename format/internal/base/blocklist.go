package base

// BlockStatePos is one occupied cell of a structure.
type BlockStatePos struct {
	Pos   BlockPos
	Block *BlockData
}

// BlockList is an ordered collection of occupied cells. Insertion order is
// preserved and duplicates are kept as separate entries. Free headroom in
// front of the first element makes batch prepends cheap.
type BlockList struct {
	buf  []BlockStatePos
	head int
}

// NewBlockList creates an empty list with room for capacity appends.
func NewBlockList(capacity int) *BlockList {
	return &BlockList{buf: make([]BlockStatePos, 0, capacity)}
}

// Add appends a cell.
func (l *BlockList) Add(pos BlockPos, block *BlockData) {
	l.buf = append(l.buf, BlockStatePos{Pos: pos, Block: block})
}

// Len returns the number of cells.
func (l *BlockList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.buf) - l.head
}

// Elements returns the cells in order. The slice aliases the list.
func (l *BlockList) Elements() []BlockStatePos {
	if l == nil {
		return nil
	}
	return l.buf[l.head:]
}

// At returns the i-th cell.
func (l *BlockList) At(i int) BlockStatePos {
	return l.buf[l.head+i]
}

// ReserveFront makes sure at least n cells can be prepended without moving
// the existing entries again.
func (l *BlockList) ReserveFront(n int) {
	if l.head >= n {
		return
	}
	grow := n - l.head
	buf := make([]BlockStatePos, len(l.buf)+grow, cap(l.buf)+grow)
	copy(buf[l.head+grow:], l.buf[l.head:])
	l.buf = buf
	l.head += grow
}

// BulkPrepend inserts batch in front of the existing cells, keeping the
// order of both.
func (l *BlockList) BulkPrepend(batch []BlockStatePos) {
	if len(batch) == 0 {
		return
	}
	l.ReserveFront(len(batch))
	l.head -= len(batch)
	copy(l.buf[l.head:], batch)
}

// Clone returns a copy of the list. Block references are shared.
func (l *BlockList) Clone() *BlockList {
	c := NewBlockList(l.Len())
	c.buf = append(c.buf, l.Elements()...)
	return c
}
