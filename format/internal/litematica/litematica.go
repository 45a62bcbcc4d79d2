// Package litematica reads and writes Litematica .litematic files.
package litematica

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

const (
	// DefaultVersion is the schematic version written when none is requested.
	DefaultVersion = 6
	// DefaultSubVersion is the sub-version written when none is requested.
	DefaultSubVersion = 1
	// RegionName names the single region written by Build.
	RegionName = "null"

	defaultName        = "null"
	defaultAuthor      = "www.mcschematic.top"
	defaultDescription = "来自蓝图站www.mcschematic.top自动转换,不保留实体"
)

// Vec3 is an integer x, y, z compound.
type Vec3 struct {
	X int32 `nbt:"x"`
	Y int32 `nbt:"y"`
	Z int32 `nbt:"z"`
}

// Document is the NBT layout of a .litematic file.
type Document struct {
	Version              int32             `nbt:"Version"`
	SubVersion           int32             `nbt:"SubVersion,omitempty"`
	MinecraftDataVersion int32             `nbt:"MinecraftDataVersion"`
	Metadata             Metadata          `nbt:"Metadata"`
	Regions              map[string]Region `nbt:"Regions"`
}

// Metadata describes the whole schematic.
type Metadata struct {
	Name          string `nbt:"Name"`
	Author        string `nbt:"Author"`
	Description   string `nbt:"Description"`
	TimeCreated   int64  `nbt:"TimeCreated"`
	TimeModified  int64  `nbt:"TimeModified"`
	RegionCount   int32  `nbt:"RegionCount"`
	TotalBlocks   int32  `nbt:"TotalBlocks"`
	TotalVolume   int32  `nbt:"TotalVolume"`
	EnclosingSize Vec3   `nbt:"EnclosingSize"`
}

// Region is one box of blocks. A negative Size component means the box
// extends from Position towards negative coordinates.
type Region struct {
	Position          Vec3                `nbt:"Position"`
	Size              Vec3                `nbt:"Size"`
	BlockStatePalette []base.PaletteEntry `nbt:"BlockStatePalette"`
	BlockStates       []int64             `nbt:"BlockStates,array"`
	TileEntities      []map[string]any    `nbt:"TileEntities"`
	Entities          []map[string]any    `nbt:"Entities"`
}

func supportedVersion(v int32) bool {
	return v == 6 || v == 7
}

// Read decodes a .litematic file. Every region is read; positions are made
// absolute using the region position, and air cells are skipped.
func Read(r io.Reader) (*base.SchematicData, error) {
	var doc Document
	if err := base.ReadGzipNBT(r, &doc); err != nil {
		return nil, err
	}
	return FromDocument(&doc)
}

// FromDocument converts a decoded document to a structure.
func FromDocument(doc *Document) (*base.SchematicData, error) {
	if !supportedVersion(doc.Version) {
		return nil, fmt.Errorf("%w: litematica version %d", base.ErrUnsupportedVersion, doc.Version)
	}
	if len(doc.Regions) == 0 {
		return nil, base.InvalidFormat("no regions found in litematica file")
	}

	data := base.NewSchematicData(0)
	data.DataVersion = doc.MinecraftDataVersion

	var extent base.Bounds
	for i, name := range slices.Sorted(maps.Keys(doc.Regions)) {
		b, err := readRegion(data, doc.Regions[name])
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		if i == 0 {
			extent = b
		} else {
			extent = extent.Union(b)
		}
	}

	size := doc.Metadata.EnclosingSize
	if size.X > 0 && size.Y > 0 && size.Z > 0 {
		data.Size = base.Size{Width: size.X, Height: size.Y, Length: size.Z}
	} else {
		data.Size = extent.Size()
	}
	return data, nil
}

func readRegion(data *base.SchematicData, region Region) (base.Bounds, error) {
	grid, err := regionGrid(region)
	if err != nil {
		return base.Bounds{}, err
	}
	origin := grid.Origin
	box := base.Bounds{Min: origin, Max: grid.Pos(grid.Volume() - 1)}

	palette := make([]*base.BlockData, len(region.BlockStatePalette))
	for i, p := range region.BlockStatePalette {
		palette[i] = base.NewBlockData(base.BlockID(p.Name), p.Properties)
	}

	states := base.UnpackTight(region.BlockStates, base.BitsPerEntry(len(palette)), grid.Volume())
	for i, state := range states {
		block, err := base.Lookup(palette, int64(state))
		if err != nil {
			return box, err
		}
		if block.IsAir() {
			continue
		}
		data.Blocks.Add(grid.Pos(i), block)
	}

	for _, te := range region.TileEntities {
		var rel base.BlockPos
		if v, ok := base.Int(te["x"]); ok {
			rel.X = int32(v)
		}
		if v, ok := base.Int(te["y"]); ok {
			rel.Y = int32(v)
		}
		if v, ok := base.Int(te["z"]); ok {
			rel.Z = int32(v)
		}
		id, _ := te["id"].(string)
		data.TileEntities = append(data.TileEntities, base.TileEntity{
			Pos:  origin.Add(rel),
			ID:   id,
			Data: base.Without(te, "x", "y", "z", "id"),
		})
	}

	for _, e := range region.Entities {
		var pos mgl64.Vec3
		if list, ok := base.List(e["Pos"]); ok && len(list) >= 3 {
			for i := range 3 {
				pos[i], _ = base.Float(list[i])
			}
		}
		pos = pos.Add(mgl64.Vec3{float64(origin.X), float64(origin.Y), float64(origin.Z)})
		id, _ := e["id"].(string)
		data.Entities = append(data.Entities, base.Entity{
			ID:       id,
			Pos:      pos,
			BlockPos: base.BlockPosOf(pos),
			Data:     base.Without(e, "Pos", "id"),
		})
	}
	return box, nil
}

// regionGrid returns the cells of a region. A negative size extends the
// region towards negative coordinates from its position.
func regionGrid(region Region) (base.Grid, error) {
	axis := func(pos, size int32) (int64, int64) {
		if size < 0 {
			return int64(pos) + int64(size) + 1, -int64(size)
		}
		return int64(pos), int64(size)
	}
	x, w := axis(region.Position.X, region.Size.X)
	y, h := axis(region.Position.Y, region.Size.Y)
	z, l := axis(region.Position.Z, region.Size.Z)
	return base.NewGrid(x, y, z, w, h, l)
}
