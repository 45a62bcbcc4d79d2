package sponge

import (
	"fmt"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// V2Document is the root compound of a version 2 schematic.
type V2Document struct {
	Version       int32            `nbt:"Version"`
	DataVersion   int32            `nbt:"DataVersion"`
	Metadata      Metadata         `nbt:"Metadata"`
	Width         int16            `nbt:"Width"`
	Height        int16            `nbt:"Height"`
	Length        int16            `nbt:"Length"`
	Offset        []int32          `nbt:"Offset,array"`
	PaletteMax    int32            `nbt:"PaletteMax"`
	Palette       map[string]int32 `nbt:"Palette"`
	BlockData     []byte           `nbt:"BlockData,array"`
	BlockEntities []map[string]any `nbt:"BlockEntities"`
	Entities      []map[string]any `nbt:"Entities,omitempty"`
}

// BuildV2 converts a structure to a version 2 document.
func BuildV2(data *base.SchematicData, opts base.Options) (*V2Document, error) {
	l, err := encode(data, opts.Workers)
	if err != nil {
		return nil, err
	}
	return &V2Document{
		Version:       2,
		DataVersion:   opts.DataVersionFor(data),
		Metadata:      metadata(opts),
		Width:         int16(l.grid.Width),
		Height:        int16(l.grid.Height),
		Length:        int16(l.grid.Length),
		Offset:        l.offset(),
		PaletteMax:    int32(l.palette.Len()),
		Palette:       l.keys,
		BlockData:     l.data,
		BlockEntities: l.blockEntities(data.TileEntities, true),
		Entities:      l.entities(data.Entities, true),
	}, nil
}

// Structure converts the document to a structure.
func (d *V2Document) Structure() (*base.SchematicData, error) {
	if d.Version != 2 {
		return nil, fmt.Errorf("%w: expected sponge version 2, got %d", base.ErrUnsupportedVersion, d.Version)
	}
	data, err := decode(uint16(d.Width), uint16(d.Height), uint16(d.Length), d.Offset, d.Palette, d.BlockData)
	if err != nil {
		return nil, err
	}
	data.DataVersion = d.DataVersion
	origin := offsetOf(d.Offset)
	readBlockEntities(data, origin, d.BlockEntities)
	readEntities(data, origin, d.Entities)
	return data, nil
}
