package base

import "math"

// Bounds is an inclusive box of block positions.
type Bounds struct {
	Min, Max BlockPos
}

var emptyBounds = Bounds{
	Min: BlockPos{math.MaxInt32, math.MaxInt32, math.MaxInt32},
	Max: BlockPos{math.MinInt32, math.MinInt32, math.MinInt32},
}

// Empty reports whether b contains no positions.
func (b Bounds) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows b to contain p.
func (b Bounds) Extend(p BlockPos) Bounds {
	return Bounds{
		Min: BlockPos{min(b.Min.X, p.X), min(b.Min.Y, p.Y), min(b.Min.Z, p.Z)},
		Max: BlockPos{max(b.Max.X, p.X), max(b.Max.Y, p.Y), max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Empty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Size returns the extent of b, or a zero size if it is empty.
func (b Bounds) Size() Size {
	if b.Empty() {
		return Size{}
	}
	return Size{
		Width:  b.Max.X - b.Min.X + 1,
		Height: b.Max.Y - b.Min.Y + 1,
		Length: b.Max.Z - b.Min.Z + 1,
	}
}

// Extent returns the size of b, failing when an axis spans more blocks
// than an int32 can count.
func (b Bounds) Extent() (Size, error) {
	if b.Empty() {
		return Size{}, nil
	}
	var out [3]int32
	for i, span := range [3]int64{
		int64(b.Max.X) - int64(b.Min.X) + 1,
		int64(b.Max.Y) - int64(b.Min.Y) + 1,
		int64(b.Max.Z) - int64(b.Min.Z) + 1,
	} {
		if span > math.MaxInt32 {
			return Size{}, InvalidFormat("structure spans %d blocks on one axis", span)
		}
		out[i] = int32(span)
	}
	return Size{Width: out[0], Height: out[1], Length: out[2]}, nil
}

// Contains reports whether p lies inside b.
func (b Bounds) Contains(p BlockPos) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// BoundsOf computes the box of every position in l. Each worker folds its
// own part and the partial boxes are combined afterwards, so the result does
// not depend on the worker count. ok is false for an empty list.
func BoundsOf(l *BlockList, workers int) (b Bounds, ok bool) {
	elems := l.Elements()
	if len(elems) == 0 {
		return emptyBounds, false
	}
	parts, _ := Split(len(elems), workers)
	partial := make([]Bounds, parts)
	Parallel(len(elems), workers, func(part, lo, hi int) {
		acc := emptyBounds
		for _, e := range elems[lo:hi] {
			acc = acc.Extend(e.Pos)
		}
		partial[part] = acc
	})
	b = emptyBounds
	for _, p := range partial {
		b = b.Union(p)
	}
	return b, true
}
