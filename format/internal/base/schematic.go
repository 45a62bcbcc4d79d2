package base

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Size is the declared extent of a structure in blocks.
type Size struct {
	Width, Height, Length int32
}

// Volume returns Width*Height*Length.
func (s Size) Volume() int {
	return int(s.Width) * int(s.Height) * int(s.Length)
}

// TileEntity is block entity data attached to a position.
type TileEntity struct {
	Pos  BlockPos
	ID   string         // e.g., "minecraft:chest"
	Data map[string]any // NBT data (excluding position and id)
}

// Clone creates a deep copy of the TileEntity.
func (te TileEntity) Clone() TileEntity {
	data := make(map[string]any, len(te.Data))
	for k, v := range te.Data {
		data[k] = deepCopy(v)
	}
	te.Data = data
	return te
}

// Entity represents a movable entity.
type Entity struct {
	ID       string         // e.g., "minecraft:armor_stand"
	Pos      mgl64.Vec3     // Exact position
	BlockPos BlockPos       // Containing block
	Data     map[string]any // NBT data (excluding positions and id)
}

// BlockPosOf returns the block containing an exact position.
func BlockPosOf(v mgl64.Vec3) BlockPos {
	return BlockPos{X: int32(math.Floor(v[0])), Y: int32(math.Floor(v[1])), Z: int32(math.Floor(v[2]))}
}

// SchematicData is the format independent representation handed from an
// importer to an exporter. It is built once, read by one exporter and
// dropped; exporters never modify it.
type SchematicData struct {
	Blocks       *BlockList
	Size         Size
	TileEntities []TileEntity
	Entities     []Entity
	DataVersion  int32
}

// NewSchematicData creates an empty structure with the given block capacity.
func NewSchematicData(capacity int) *SchematicData {
	return &SchematicData{
		Blocks:       NewBlockList(capacity),
		TileEntities: make([]TileEntity, 0),
		Entities:     make([]Entity, 0),
	}
}

// TileEntityMap indexes tile entities by position. Later entries win.
func (s *SchematicData) TileEntityMap() map[BlockPos]TileEntity {
	m := make(map[BlockPos]TileEntity, len(s.TileEntities))
	for _, te := range s.TileEntities {
		m[te.Pos] = te
	}
	return m
}

// Options carries the per-target parameters of an export.
type Options struct {
	Version     int    // Target format version; 0 selects the exporter default
	SubVersion  int    // Target format sub-version; 0 selects the exporter default
	FillAir     bool   // Write explicit air for every unoccupied cell
	Workers     int    // Parallel workers; 0 uses GOMAXPROCS
	DataVersion int32  // Minecraft data version; 0 keeps the source or exporter default
	Name        string // Structure name written into metadata
	Author      string
	Description string
	Timestamp   int64 // Unix milliseconds written into metadata timestamps
}

// DataVersionFor picks the data version to write for data: the option if
// set, then the source's, then DefaultDataVersion.
func (o Options) DataVersionFor(data *SchematicData) int32 {
	switch {
	case o.DataVersion != 0:
		return o.DataVersion
	case data != nil && data.DataVersion != 0:
		return data.DataVersion
	default:
		return DefaultDataVersion
	}
}

// deepCopy performs a deep copy of interface{} values.
func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = deepCopy(v)
		}
		return m
	case []any:
		out := make([]any, len(val))
		for i, v := range val {
			out[i] = deepCopy(v)
		}
		return out
	case []byte:
		b := make([]byte, len(val))
		copy(b, val)
		return b
	default:
		return v
	}
}
