package format

import "github.com/oriumgames/pile/schemconv/format/internal/base"

type (
	// SchematicData is the format independent structure every importer
	// produces and every exporter consumes.
	SchematicData = base.SchematicData
	// Options carries the per-target export parameters.
	Options = base.Options

	BlockID       = base.BlockID
	BlockPos      = base.BlockPos
	BlockData     = base.BlockData
	BlockList     = base.BlockList
	BlockStatePos = base.BlockStatePos
	Property      = base.Property
	Size          = base.Size
	Bounds        = base.Bounds
	TileEntity    = base.TileEntity
	Entity        = base.Entity

	// PaletteIndexError reports a block state id without a palette entry.
	PaletteIndexError = base.PaletteIndexError
)

var (
	ErrIO                     = base.ErrIO
	ErrInvalidFormat          = base.ErrInvalidFormat
	ErrPaletteIndexOutOfRange = base.ErrPaletteIndexOutOfRange
	ErrUnsupportedTarget      = base.ErrUnsupportedTarget
	ErrUnsupportedVersion     = base.ErrUnsupportedVersion
)

// Air is the shared air block.
var Air = base.Air

// NewBlockData creates a block description. The property map is copied.
func NewBlockData(id BlockID, props map[string]string) *BlockData {
	return base.NewBlockData(id, props)
}

// ParseBlockData parses a state string such as "minecraft:oak_log[axis=y]".
func ParseBlockData(s string) *BlockData {
	return base.ParseBlockData(s)
}

// NewSchematicData creates an empty structure.
func NewSchematicData(capacity int) *SchematicData {
	return base.NewSchematicData(capacity)
}

// BoundsOf returns the occupied box of a block list.
func BoundsOf(l *BlockList, workers int) (Bounds, bool) {
	return base.BoundsOf(l, workers)
}

// GameVersion returns the release name for a data version.
func GameVersion(dataVersion int32) string {
	return base.GameVersion(dataVersion)
}
