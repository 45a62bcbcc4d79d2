// Package sponge reads and writes Sponge schematics (.schem), the format
// WorldEdit uses, in versions 2 and 3.
package sponge

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// DefaultVersion is the version written when none is requested.
const DefaultVersion = 3

// Metadata is the optional metadata compound.
type Metadata struct {
	Name        string `nbt:"Name,omitempty"`
	Author      string `nbt:"Author,omitempty"`
	Date        int64  `nbt:"Date,omitempty"`
	Description string `nbt:"Description,omitempty"`
}

// Read decodes a version 2 or 3 schematic.
func Read(r io.Reader) (*base.SchematicData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, base.IOFailure("read data", err)
	}
	data, err := base.Gunzip(raw)
	if err != nil {
		return nil, err
	}

	var head struct {
		Version   int32 `nbt:"Version"`
		Schematic struct {
			Version int32 `nbt:"Version"`
		} `nbt:"Schematic"`
	}
	if err := base.DecodeNBT(data, &head); err != nil {
		return nil, err
	}
	switch {
	case head.Schematic.Version == 3:
		var root v3Root
		if err := base.DecodeNBT(data, &root); err != nil {
			return nil, err
		}
		return root.Schematic.Structure()
	case head.Version == 2:
		var doc V2Document
		if err := base.DecodeNBT(data, &doc); err != nil {
			return nil, err
		}
		return doc.Structure()
	default:
		return nil, fmt.Errorf("%w: sponge version %d", base.ErrUnsupportedVersion, max(head.Version, head.Schematic.Version))
	}
}

// Write writes data as a schematic of opts.Version (2 or 3, default 3).
func Write(w io.Writer, data *base.SchematicData, opts base.Options) error {
	switch opts.Version {
	case 0, 3:
		doc, err := BuildV3(data, opts)
		if err != nil {
			return err
		}
		return base.WriteGzipNBT(w, v3Root{Schematic: *doc})
	case 2:
		doc, err := BuildV2(data, opts)
		if err != nil {
			return err
		}
		return base.WriteGzipNBT(w, doc)
	default:
		return fmt.Errorf("%w: sponge version %d", base.ErrUnsupportedVersion, opts.Version)
	}
}

type v3Root struct {
	Schematic V3Document `nbt:"Schematic"`
}

// layout is the grid, palette and encoded cells shared by both versions.
type layout struct {
	grid    base.Grid
	palette *base.Palette
	keys    map[string]int32
	data    []byte
}

// encode normalises the structure to its occupied minimum corner and
// encodes every cell as a VarInt palette index with air at index 0.
func encode(data *base.SchematicData, workers int) (layout, error) {
	bounds, ok := base.BoundsOf(data.Blocks, workers)
	if !ok {
		return layout{}, base.InvalidFormat("empty structure")
	}
	grid, err := base.GridOf(bounds)
	if err != nil {
		return layout{}, err
	}
	if grid.Width > math.MaxUint16 || grid.Height > math.MaxUint16 || grid.Length > math.MaxUint16 {
		return layout{}, base.InvalidFormat("structure too large: %dx%dx%d", grid.Width, grid.Height, grid.Length)
	}

	palette := base.NewPaletteWithAir()
	for _, e := range data.Blocks.Elements() {
		palette.Add(e.Block)
	}
	keys := make(map[string]int32, palette.Len())
	for i, b := range palette.Blocks() {
		if _, ok := keys[b.String()]; ok {
			return layout{}, base.InvalidFormat("block state %q is ambiguous as a palette key", b.String())
		}
		keys[b.String()] = int32(i)
	}
	cells := base.Fill(grid, data.Blocks, palette, workers)
	return layout{grid: grid, palette: palette, keys: keys, data: base.EncodeVarIntArray(cells)}, nil
}

func (l layout) offset() []int32 {
	return []int32{l.grid.Origin.X, l.grid.Origin.Y, l.grid.Origin.Z}
}

// blockEntities encodes tile entities with positions relative to the grid.
// flat selects the version 2 shape, where extra data sits next to Pos and Id
// instead of under Data.
func (l layout) blockEntities(tiles []base.TileEntity, flat bool) []map[string]any {
	out := make([]map[string]any, 0, len(tiles))
	for _, te := range tiles {
		m := make(map[string]any)
		if flat {
			m = te.Clone().Data
		} else if len(te.Data) > 0 {
			m["Data"] = te.Clone().Data
		}
		rel := te.Pos.Sub(l.grid.Origin)
		m["Pos"] = []int32{rel.X, rel.Y, rel.Z}
		m["Id"] = te.ID
		out = append(out, m)
	}
	return out
}

func (l layout) entities(ents []base.Entity, flat bool) []map[string]any {
	out := make([]map[string]any, 0, len(ents))
	origin := mgl64.Vec3{float64(l.grid.Origin.X), float64(l.grid.Origin.Y), float64(l.grid.Origin.Z)}
	for _, e := range ents {
		m := make(map[string]any)
		if flat {
			maps.Copy(m, e.Data)
		} else if len(e.Data) > 0 {
			m["Data"] = maps.Clone(e.Data)
		}
		rel := e.Pos.Sub(origin)
		m["Pos"] = []float64{rel[0], rel[1], rel[2]}
		m["Id"] = e.ID
		out = append(out, m)
	}
	return out
}

// decode rebuilds a structure from a grid of VarInt palette indices. Air
// cells are skipped; positions are made absolute with the offset.
func decode(width, height, length uint16, offset []int32, palette map[string]int32, blockData []byte) (*base.SchematicData, error) {
	if width == 0 || height == 0 || length == 0 {
		return nil, base.InvalidFormat("invalid dimensions: %dx%dx%d", width, height, length)
	}
	origin := offsetOf(offset)
	grid, err := base.NewGrid(int64(origin.X), int64(origin.Y), int64(origin.Z), int64(width), int64(height), int64(length))
	if err != nil {
		return nil, err
	}

	size := 0
	for _, id := range palette {
		size = max(size, int(id)+1)
	}
	states := make([]*base.BlockData, size)
	for _, key := range slices.Sorted(maps.Keys(palette)) {
		id := palette[key]
		if id < 0 {
			return nil, base.InvalidFormat("negative palette id %d for %q", id, key)
		}
		states[id] = base.ParseBlockData(key)
	}

	cells, err := base.DecodeVarIntArray(blockData, grid.Volume())
	if err != nil {
		return nil, err
	}

	data := base.NewSchematicData(len(cells))
	data.Size = base.Size{Width: int32(width), Height: int32(height), Length: int32(length)}
	for i, id := range cells {
		block, err := base.Lookup(states, int64(id))
		if err != nil {
			return nil, err
		}
		if block == nil {
			return nil, base.InvalidFormat("palette has no entry for id %d", id)
		}
		if block.IsAir() {
			continue
		}
		data.Blocks.Add(grid.Pos(i), block)
	}
	return data, nil
}

func readBlockEntities(data *base.SchematicData, origin base.BlockPos, list []map[string]any) {
	for _, m := range list {
		var rel base.BlockPos
		if pos, ok := base.Ints(m["Pos"]); ok && len(pos) >= 3 {
			rel = base.BlockPos{X: int32(pos[0]), Y: int32(pos[1]), Z: int32(pos[2])}
		}
		id, _ := m["Id"].(string)
		extra, ok := base.Compound(m["Data"])
		if !ok {
			extra = base.Without(m, "Pos", "Id")
		}
		data.TileEntities = append(data.TileEntities, base.TileEntity{Pos: origin.Add(rel), ID: id, Data: extra})
	}
}

func readEntities(data *base.SchematicData, origin base.BlockPos, list []map[string]any) {
	for _, m := range list {
		var pos mgl64.Vec3
		if p, ok := base.List(m["Pos"]); ok && len(p) >= 3 {
			for i := range 3 {
				pos[i], _ = base.Float(p[i])
			}
		}
		pos = pos.Add(mgl64.Vec3{float64(origin.X), float64(origin.Y), float64(origin.Z)})
		id, _ := m["Id"].(string)
		extra, ok := base.Compound(m["Data"])
		if !ok {
			extra = base.Without(m, "Pos", "Id")
		}
		data.Entities = append(data.Entities, base.Entity{ID: id, Pos: pos, BlockPos: base.BlockPosOf(pos), Data: extra})
	}
}

func offsetOf(offset []int32) base.BlockPos {
	if len(offset) < 3 {
		return base.BlockPos{}
	}
	return base.BlockPos{X: offset[0], Y: offset[1], Z: offset[2]}
}

func metadata(opts base.Options) Metadata {
	return Metadata{Name: opts.Name, Author: opts.Author, Date: opts.Timestamp, Description: opts.Description}
}
