package litematica

import "github.com/oriumgames/pile/schemconv/format/internal/base"

// Pad returns a copy of the block list with a one block air margin on the
// horizontal perimeter, and the grid that covers it.
//
// The minimum corner is the occupied minimum shifted by -1 on x and z. The
// far corner comes from the declared size, not the occupied extent, so
// blocks beyond the declared size can land in the margin. A structure
// without a declared size uses its occupied extent. Boxes over
// base.MaxVolume cells are rejected.
func Pad(data *base.SchematicData, workers int) (_ *base.BlockList, _ base.Grid, err error) {
	bounds, ok := base.BoundsOf(data.Blocks, workers)
	if !ok {
		return nil, base.Grid{}, base.InvalidFormat("empty structure")
	}
	size := data.Size
	if size.Width <= 0 || size.Height <= 0 || size.Length <= 0 {
		if size, err = bounds.Extent(); err != nil {
			return nil, base.Grid{}, err
		}
	}
	grid, err := base.NewGrid(
		int64(bounds.Min.X)-1, int64(bounds.Min.Y), int64(bounds.Min.Z)-1,
		int64(size.Width)+2, int64(size.Height), int64(size.Length)+2,
	)
	if err != nil {
		return nil, base.Grid{}, err
	}

	shell := airShell(grid, workers)
	blocks := base.NewBlockList(0)
	blocks.ReserveFront(len(shell) + data.Blocks.Len())
	blocks.BulkPrepend(data.Blocks.Elements())
	blocks.BulkPrepend(shell)
	return blocks, grid, nil
}

// airShell lists the perimeter cells of every layer of g, one layer after
// the other. Layers are built concurrently.
func airShell(g base.Grid, workers int) []base.BlockStatePos {
	lo := g.Origin
	hi := base.BlockPos{X: lo.X + int32(g.Width-1), Z: lo.Z + int32(g.Length-1)}
	layers := make([][]base.BlockStatePos, g.Height)
	base.ForEach(g.Height, workers, func(i int) {
		layers[i] = layerShell(lo, hi, lo.Y+int32(i))
	})

	n := 0
	for _, l := range layers {
		n += len(l)
	}
	shell := make([]base.BlockStatePos, 0, n)
	for _, l := range layers {
		shell = append(shell, l...)
	}
	return shell
}

func layerShell(lo, hi base.BlockPos, y int32) []base.BlockStatePos {
	cells := make([]base.BlockStatePos, 0, 2*int(hi.X-lo.X+hi.Z-lo.Z))
	add := func(x, z int32) {
		cells = append(cells, base.BlockStatePos{Pos: base.BlockPos{X: x, Y: y, Z: z}, Block: base.Air})
	}
	for z := lo.Z + 1; z < hi.Z; z++ {
		add(lo.X, z)
		add(hi.X, z)
	}
	for x := lo.X + 1; x < hi.X; x++ {
		add(x, lo.Z)
		add(x, hi.Z)
	}
	add(lo.X, lo.Z)
	add(lo.X, hi.Z)
	add(hi.X, lo.Z)
	add(hi.X, hi.Z)
	return cells
}
