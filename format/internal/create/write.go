package create

import (
	"io"
	"maps"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// Document is the NBT layout of a structure file.
type Document struct {
	DataVersion int32               `nbt:"DataVersion"`
	Size        []int32             `nbt:"size"`
	Palette     []base.PaletteEntry `nbt:"palette"`
	Blocks      []Block             `nbt:"blocks"`
	Entities    []Entity            `nbt:"entities"`
}

// Block is one entry of the blocks list.
type Block struct {
	State int32          `nbt:"state"`
	Pos   []int32        `nbt:"pos"`
	NBT   map[string]any `nbt:"nbt,omitempty"`
}

// Entity is one entry of the entities list.
type Entity struct {
	Pos      []float64      `nbt:"pos"`
	BlockPos []int32        `nbt:"blockPos"`
	NBT      map[string]any `nbt:"nbt"`
}

// Build lays the structure out relative to its occupied minimum corner.
// With opts.FillAir every unoccupied cell of the box gets an explicit air
// entry after the occupied ones. Tile entities are attached to the block at
// their position.
func Build(data *base.SchematicData, opts base.Options) (*Document, error) {
	bounds, ok := base.BoundsOf(data.Blocks, opts.Workers)
	if !ok {
		return nil, base.InvalidFormat("empty structure")
	}
	origin := bounds.Min
	size, err := bounds.Extent()
	if err != nil {
		return nil, err
	}

	blocks := data.Blocks
	if opts.FillAir {
		if blocks, err = withAir(data.Blocks, bounds); err != nil {
			return nil, err
		}
	}
	palette := base.BuildPalette(blocks)
	tiles := data.TileEntityMap()

	doc := &Document{
		DataVersion: opts.DataVersionFor(data),
		Size:        []int32{size.Width, size.Height, size.Length},
		Palette:     palette.Entries(),
		Blocks:      make([]Block, 0, blocks.Len()),
		Entities:    make([]Entity, 0, len(data.Entities)),
	}
	for _, e := range blocks.Elements() {
		rel := e.Pos.Sub(origin)
		b := Block{
			State: int32(palette.Index(e.Block)),
			Pos:   []int32{rel.X, rel.Y, rel.Z},
		}
		if te, ok := tiles[e.Pos]; ok {
			b.NBT = tileNBT(te)
		}
		doc.Blocks = append(doc.Blocks, b)
	}

	for _, ent := range data.Entities {
		rel := ent.BlockPos.Sub(origin)
		nbt := maps.Clone(ent.Data)
		if nbt == nil {
			nbt = make(map[string]any)
		}
		nbt["id"] = ent.ID
		doc.Entities = append(doc.Entities, Entity{
			Pos:      []float64{ent.Pos[0] - float64(origin.X), ent.Pos[1] - float64(origin.Y), ent.Pos[2] - float64(origin.Z)},
			BlockPos: []int32{rel.X, rel.Y, rel.Z},
			NBT:      nbt,
		})
	}
	return doc, nil
}

// Write builds the document and writes it gzip compressed.
func Write(w io.Writer, data *base.SchematicData, opts base.Options) error {
	doc, err := Build(data, opts)
	if err != nil {
		return err
	}
	return base.WriteGzipNBT(w, doc)
}

// withAir returns a copy of l followed by air for every cell of b that no
// element occupies, in y-z-x order.
func withAir(l *base.BlockList, b base.Bounds) (*base.BlockList, error) {
	grid, err := base.GridOf(b)
	if err != nil {
		return nil, err
	}
	occupied := make([]bool, grid.Volume())
	for _, e := range l.Elements() {
		occupied[grid.Index(e.Pos)] = true
	}

	out := base.NewBlockList(len(occupied))
	for _, e := range l.Elements() {
		out.Add(e.Pos, e.Block)
	}
	for i, set := range occupied {
		if !set {
			out.Add(grid.Pos(i), base.Air)
		}
	}
	return out, nil
}

func tileNBT(te base.TileEntity) map[string]any {
	m := te.Clone().Data
	if te.ID != "" {
		m["id"] = te.ID
	}
	return m
}
