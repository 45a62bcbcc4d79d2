package schemconv

import (
	"maps"
	"sync"
	_ "unsafe"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/oriumgames/crocon"
	"github.com/sandertv/gophertunnel/minecraft/protocol"

	"github.com/oriumgames/pile/schemconv/format"
)

// Structure wraps converted schematic data and implements world.Structure.
// It can be placed in a Dragonfly world using world.BuildStructure; Java
// block states are translated to Bedrock with crocon.
type Structure struct {
	data   *format.SchematicData
	bounds format.Bounds
	blocks map[format.BlockPos]*format.BlockData
	tiles  map[format.BlockPos]format.TileEntity
}

// converter is created on first use; building its tables is expensive.
var converter = sync.OnceValues(crocon.NewConverter)

// NewStructure indexes data relative to its occupied minimum corner.
func NewStructure(data *format.SchematicData) *Structure {
	s := &Structure{
		data:   data,
		blocks: make(map[format.BlockPos]*format.BlockData, data.Blocks.Len()),
		tiles:  data.TileEntityMap(),
	}
	s.bounds, _ = format.BoundsOf(data.Blocks, 0)
	for _, e := range data.Blocks.Elements() {
		s.blocks[e.Pos] = e.Block
	}
	return s
}

// Dimensions implements world.Structure.
func (s *Structure) Dimensions() [3]int {
	size := s.bounds.Size()
	return [3]int{int(size.Width), int(size.Height), int(size.Length)}
}

// At implements world.Structure.
// Blocks that cannot be converted are placed as air.
func (s *Structure) At(x, y, z int, _ func(x, y, z int) world.Block) (world.Block, world.Liquid) {
	pos := s.bounds.Min.Add(format.BlockPos{X: int32(x), Y: int32(y), Z: int32(z)})
	state, ok := s.blocks[pos]
	if !ok || state.IsAir() {
		return block.Air{}, nil
	}

	fromVersion := format.GameVersion(s.data.DataVersion)
	if fromVersion == "" {
		return block.Air{}, nil
	}
	c, err := converter()
	if err != nil {
		return block.Air{}, nil
	}
	req := crocon.ConversionRequest{
		FromVersion: fromVersion,
		ToVersion:   protocol.CurrentVersion,
		FromEdition: crocon.JavaEdition,
		ToEdition:   crocon.BedrockEdition,
	}

	states := make(map[string]any, len(state.Properties()))
	for _, p := range state.Properties() {
		states[p.Key] = p.Value
	}
	b, err := c.ConvertBlock(crocon.BlockRequest{
		ConversionRequest: req,
		Block:             crocon.Block{ID: string(state.ID), States: states},
	})
	if err != nil {
		return block.Air{}, nil
	}

	// Filter invalid properties
	validProps := blockProperties[b.ID]
	for k := range b.States {
		if _, ok := validProps[k]; !ok {
			delete(b.States, k)
		}
	}

	ret, ok := world.BlockByName(b.ID, b.States)
	if !ok {
		return block.Air{}, nil
	}

	if nbter, ok := ret.(world.NBTer); ok {
		te, ok := s.tiles[pos]
		if !ok {
			ret = nbter.DecodeNBT(map[string]any{}).(world.Block)
		} else {
			from := crocon.BlockEntity(maps.Clone(te.Data))
			if from == nil {
				from = crocon.BlockEntity{}
			}
			from["id"] = te.ID

			be, err := c.ConvertBlockEntity(crocon.BlockEntityRequest{
				ConversionRequest: req,
				BlockEntity:       from,
			})
			if err != nil {
				return block.Air{}, nil
			}
			m, ok := any(be).(*map[string]any)
			if !ok || m == nil {
				return block.Air{}, nil
			}
			tag, ok := (*m)["tag"].(map[string]any)
			if !ok {
				return block.Air{}, nil
			}
			return nbter.DecodeNBT(tag).(world.Block), nil
		}
	}

	var liquid world.Liquid
	if v, _ := state.Property("waterlogged"); v == "true" {
		liquid = block.Water{}
	}
	return ret, liquid
}

// Data returns the underlying schematic data.
func (s *Structure) Data() *format.SchematicData {
	return s.data
}

// Origin returns the world position of the structure's minimum corner.
func (s *Structure) Origin() format.BlockPos {
	return s.bounds.Min
}

// blockProperties is linked from dragonfly to validate block properties.
//
//go:linkname blockProperties github.com/df-mc/dragonfly/server/world.blockProperties
var blockProperties map[string]map[string]any
