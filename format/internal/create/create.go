// Package create reads and writes vanilla structure files, the format the
// Create mod schematic table and structure blocks produce.
package create

import (
	"fmt"
	"io"
	"math"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// Read decodes a gzip compressed structure file. Blocks are appended in file
// order; tile entities and entities are not read.
func Read(r io.Reader) (*base.SchematicData, error) {
	var root map[string]any
	if err := base.ReadGzipNBT(r, &root); err != nil {
		return nil, err
	}
	if root == nil {
		return nil, base.InvalidFormat("root is not a compound")
	}
	return FromNBT(root)
}

// FromNBT builds the structure from an already decoded root compound.
func FromNBT(root map[string]any) (*base.SchematicData, error) {
	blocks, err := requiredList(root, "blocks")
	if err != nil {
		return nil, err
	}
	sizeTag, err := requiredList(root, "size")
	if err != nil {
		return nil, err
	}
	paletteTag, err := requiredList(root, "palette")
	if err != nil {
		return nil, err
	}
	if _, err := requiredList(root, "entities"); err != nil {
		return nil, err
	}

	size, err := vec3(sizeTag)
	if err != nil {
		return nil, fmt.Errorf("size: %w", err)
	}
	palette, err := base.ParsePalette(paletteTag)
	if err != nil {
		return nil, fmt.Errorf("parse palette: %w", err)
	}

	data := base.NewSchematicData(len(blocks))
	data.Size = base.Size{Width: size.X, Height: size.Y, Length: size.Z}
	if v, ok := base.Int(root["DataVersion"]); ok {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, base.InvalidFormat("data version %d out of range", v)
		}
		data.DataVersion = int32(v)
	}

	for i, entry := range blocks {
		pos, block, err := parseBlock(entry, palette)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		data.Blocks.Add(pos, block)
	}
	return data, nil
}

func parseBlock(entry any, palette []*base.BlockData) (base.BlockPos, *base.BlockData, error) {
	block, ok := base.Compound(entry)
	if !ok {
		return base.BlockPos{}, nil, base.InvalidFormat("block entry is not a compound")
	}

	rawPos, ok := block["pos"]
	if !ok {
		return base.BlockPos{}, nil, base.InvalidFormat("missing pos field")
	}
	coords, ok := base.List(rawPos)
	if !ok {
		return base.BlockPos{}, nil, base.InvalidFormat("invalid pos type %T", rawPos)
	}
	pos, err := vec3(coords)
	if err != nil {
		return base.BlockPos{}, nil, err
	}

	rawState, ok := block["state"]
	if !ok {
		return base.BlockPos{}, nil, base.InvalidFormat("missing state field")
	}
	state, ok := base.Int(rawState)
	if !ok {
		return base.BlockPos{}, nil, base.InvalidFormat("state id must be an integer, got %T", rawState)
	}
	data, err := base.Lookup(palette, state)
	if err != nil {
		return base.BlockPos{}, nil, err
	}
	return pos, data, nil
}

// requiredList returns root[key] as a list. A present key with an empty
// value counts as an empty list.
func requiredList(root map[string]any, key string) ([]any, error) {
	v, ok := root[key]
	if !ok {
		return nil, base.InvalidFormat("missing %s field", key)
	}
	if v == nil {
		return nil, nil
	}
	list, ok := base.List(v)
	if !ok {
		return nil, base.InvalidFormat("%s is not a list", key)
	}
	return list, nil
}

// vec3 reads exactly three integer coordinates. Non-integer elements are
// skipped before counting; values outside the int32 range are rejected.
func vec3(list []any) (base.BlockPos, error) {
	coords := make([]int32, 0, 3)
	for _, v := range list {
		n, ok := base.Int(v)
		if !ok {
			continue
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return base.BlockPos{}, base.InvalidFormat("coordinate %d out of range", n)
		}
		coords = append(coords, int32(n))
	}
	if len(coords) != 3 {
		return base.BlockPos{}, base.InvalidFormat("position requires 3 coordinates, got %d", len(coords))
	}
	return base.BlockPos{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
