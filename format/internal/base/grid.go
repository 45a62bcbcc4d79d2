package base

import (
	"math"
	"sync/atomic"
)

// MaxVolume is the largest number of cells a dense grid may hold.
const MaxVolume = math.MaxInt32

// Grid is a dense y-z-x box of cells anchored at Origin.
type Grid struct {
	Origin                BlockPos
	Width, Height, Length int
}

// NewGrid returns the grid of w*h*l cells whose minimum corner is (x, y, z).
// Every cell must have int32 coordinates and the volume may not exceed
// MaxVolume.
func NewGrid(x, y, z, w, h, l int64) (Grid, error) {
	if w <= 0 || h <= 0 || l <= 0 {
		return Grid{}, InvalidFormat("invalid dimensions: %dx%dx%d", w, h, l)
	}
	if w > MaxVolume || h > MaxVolume || l > MaxVolume || w*h > MaxVolume || w*h*l > MaxVolume {
		return Grid{}, InvalidFormat("structure too large: %dx%dx%d exceeds %d cells", w, h, l, MaxVolume)
	}
	for _, axis := range [3][2]int64{{x, w}, {y, h}, {z, l}} {
		if axis[0] < math.MinInt32 || axis[0]+axis[1]-1 > math.MaxInt32 {
			return Grid{}, InvalidFormat("box at (%d,%d,%d) of %dx%dx%d leaves the block coordinate range", x, y, z, w, h, l)
		}
	}
	return Grid{
		Origin: BlockPos{X: int32(x), Y: int32(y), Z: int32(z)},
		Width:  int(w),
		Height: int(h),
		Length: int(l),
	}, nil
}

// GridOf returns the grid covering b.
func GridOf(b Bounds) (Grid, error) {
	if b.Empty() {
		return Grid{}, InvalidFormat("empty structure")
	}
	return NewGrid(
		int64(b.Min.X), int64(b.Min.Y), int64(b.Min.Z),
		int64(b.Max.X)-int64(b.Min.X)+1,
		int64(b.Max.Y)-int64(b.Min.Y)+1,
		int64(b.Max.Z)-int64(b.Min.Z)+1,
	)
}

// Size returns the extent of g.
func (g Grid) Size() Size {
	return Size{Width: int32(g.Width), Height: int32(g.Height), Length: int32(g.Length)}
}

// Volume returns the number of cells in g.
func (g Grid) Volume() int {
	if g.Width <= 0 || g.Height <= 0 || g.Length <= 0 {
		return 0
	}
	return g.Width * g.Height * g.Length
}

// Index returns the flattened y-z-x index of p. Individual axes are not
// checked; callers compare the result against Volume.
func (g Grid) Index(p BlockPos) int {
	x := int(p.X - g.Origin.X)
	y := int(p.Y - g.Origin.Y)
	z := int(p.Z - g.Origin.Z)
	return y*g.Width*g.Length + z*g.Width + x
}

// Pos returns the position of the cell at a flattened index.
func (g Grid) Pos(i int) BlockPos {
	layer := g.Width * g.Length
	y := i / layer
	z := (i % layer) / g.Width
	x := i % g.Width
	return BlockPos{g.Origin.X + int32(x), g.Origin.Y + int32(y), g.Origin.Z + int32(z)}
}

// Fill resolves every element of l to its palette index and stores it in a
// dense array of g.Volume() cells, in parallel. Cells nothing maps to keep
// index 0. Elements whose flattened index falls outside the grid are
// dropped. When several elements share a cell the one latest in list order
// wins regardless of scheduling, so the output does not depend on workers.
func Fill(g Grid, l *BlockList, p *Palette, workers int) []int32 {
	elems := l.Elements()
	// owner[i] holds 1 + the list index of the element written to cell i.
	owner := make([]atomic.Int64, g.Volume())
	Parallel(len(elems), workers, func(_, lo, hi int) {
		for j := lo; j < hi; j++ {
			i := g.Index(elems[j].Pos)
			if i < 0 || i >= len(owner) {
				continue
			}
			claim(&owner[i], int64(j)+1)
		}
	})

	out := make([]int32, len(owner))
	Parallel(len(owner), workers, func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			j := owner[i].Load()
			if j == 0 {
				continue
			}
			if idx := p.Index(elems[j-1].Block); idx >= 0 {
				out[i] = int32(idx)
			}
		}
	})
	return out
}

// claim raises v to n unless it already holds a larger value.
func claim(v *atomic.Int64, n int64) {
	for {
		cur := v.Load()
		if cur >= n || v.CompareAndSwap(cur, n) {
			return
		}
	}
}
