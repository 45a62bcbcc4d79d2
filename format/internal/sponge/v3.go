package sponge

import (
	"fmt"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// V3Document is the Schematic compound of a version 3 schematic.
type V3Document struct {
	Version     int32    `nbt:"Version"`
	DataVersion int32    `nbt:"DataVersion"`
	Metadata    Metadata `nbt:"Metadata"`
	Width       int16    `nbt:"Width"`
	Height      int16    `nbt:"Height"`
	Length      int16    `nbt:"Length"`
	Offset      []int32  `nbt:"Offset,array"`
	Blocks      struct {
		Palette       map[string]int32 `nbt:"Palette"`
		Data          []byte           `nbt:"Data,array"`
		BlockEntities []map[string]any `nbt:"BlockEntities"`
	} `nbt:"Blocks"`
	Entities []map[string]any `nbt:"Entities,omitempty"`
}

// BuildV3 converts a structure to a version 3 document.
func BuildV3(data *base.SchematicData, opts base.Options) (*V3Document, error) {
	l, err := encode(data, opts.Workers)
	if err != nil {
		return nil, err
	}
	doc := &V3Document{
		Version:     3,
		DataVersion: opts.DataVersionFor(data),
		Metadata:    metadata(opts),
		Width:       int16(l.grid.Width),
		Height:      int16(l.grid.Height),
		Length:      int16(l.grid.Length),
		Offset:      l.offset(),
		Entities:    l.entities(data.Entities, false),
	}
	doc.Blocks.Palette = l.keys
	doc.Blocks.Data = l.data
	doc.Blocks.BlockEntities = l.blockEntities(data.TileEntities, false)
	return doc, nil
}

// Structure converts the document to a structure.
func (d *V3Document) Structure() (*base.SchematicData, error) {
	if d.Version != 3 {
		return nil, fmt.Errorf("%w: expected sponge version 3, got %d", base.ErrUnsupportedVersion, d.Version)
	}
	data, err := decode(uint16(d.Width), uint16(d.Height), uint16(d.Length), d.Offset, d.Blocks.Palette, d.Blocks.Data)
	if err != nil {
		return nil, err
	}
	data.DataVersion = d.DataVersion
	origin := offsetOf(d.Offset)
	readBlockEntities(data, origin, d.Blocks.BlockEntities)
	readEntities(data, origin, d.Entities)
	return data, nil
}
