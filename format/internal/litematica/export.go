package litematica

import (
	"fmt"
	"io"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// Build converts a structure to a single region document. The structure
// gets an air margin (see Pad), is flattened to a y-z-x grid and packed with
// tight packing. Tile entities and entities are not written.
func Build(data *base.SchematicData, opts base.Options) (*Document, error) {
	version := int32(opts.Version)
	if version == 0 {
		version = DefaultVersion
	}
	if !supportedVersion(version) {
		return nil, fmt.Errorf("%w: litematica version %d", base.ErrUnsupportedVersion, version)
	}
	subVersion := int32(opts.SubVersion)
	if subVersion == 0 {
		subVersion = DefaultSubVersion
	}

	blocks, grid, err := Pad(data, opts.Workers)
	if err != nil {
		return nil, err
	}
	palette := base.BuildPalette(blocks)
	cells := base.Fill(grid, blocks, palette, opts.Workers)
	states := base.PackTight(cells, base.BitsPerEntry(palette.Len()), opts.Workers)

	size := Vec3{X: int32(grid.Width), Y: int32(grid.Height), Z: int32(grid.Length)}
	region := Region{
		Size:              size,
		BlockStatePalette: palette.Entries(),
		BlockStates:       states,
		TileEntities:      []map[string]any{},
		Entities:          []map[string]any{},
	}

	return &Document{
		Version:              version,
		SubVersion:           subVersion,
		MinecraftDataVersion: opts.DataVersionFor(nil),
		Metadata: Metadata{
			Name:          or(opts.Name, defaultName),
			Author:        or(opts.Author, defaultAuthor),
			Description:   or(opts.Description, defaultDescription),
			TimeCreated:   opts.Timestamp,
			TimeModified:  opts.Timestamp,
			RegionCount:   1,
			TotalBlocks:   int32(countSolid(data.Blocks)),
			TotalVolume:   int32(grid.Volume()),
			EnclosingSize: size,
		},
		Regions: map[string]Region{RegionName: region},
	}, nil
}

// Write builds the document and writes it gzip compressed.
func Write(w io.Writer, data *base.SchematicData, opts base.Options) error {
	doc, err := Build(data, opts)
	if err != nil {
		return err
	}
	return base.WriteGzipNBT(w, doc)
}

func countSolid(l *base.BlockList) int {
	n := 0
	for _, e := range l.Elements() {
		if !e.Block.IsAir() {
			n++
		}
	}
	return n
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
