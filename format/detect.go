package format

import (
	"bytes"
	"encoding/binary"

	"github.com/oriumgames/pile/schemconv/format/internal/axiom"
	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

// Detect identifies the format of a schematic file from its contents.
func Detect(data []byte) (Target, error) {
	if len(data) < 2 {
		return 0, base.InvalidFormat("insufficient data for format detection")
	}

	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return Gadgets, nil
	}

	if len(data) >= 4 && binary.BigEndian.Uint32(data) == axiom.Magic {
		return Axiom, nil
	}

	// Check for gzip magic (structure, Litematica, Sponge)
	if data[0] == 0x1F && data[1] == 0x8B {
		return detectGzipFormat(data)
	}
	return 0, base.InvalidFormat("unknown format")
}

func detectGzipFormat(data []byte) (Target, error) {
	raw, err := base.Gunzip(data)
	if err != nil {
		return 0, err
	}
	var root map[string]any
	if err := base.DecodeNBT(raw, &root); err != nil {
		return 0, err
	}

	// Sponge v3 nests everything under "Schematic"
	if _, ok := base.Compound(root["Schematic"]); ok {
		return WorldEdit, nil
	}

	// Litematica has "Version" and "Regions" at root
	if _, ok := base.Compound(root["Regions"]); ok {
		return Litematica, nil
	}

	// Sponge v1/v2 have "Version" and "Palette" at root
	if _, ok := base.Int(root["Version"]); ok {
		if _, ok := root["Palette"]; ok {
			return WorldEdit, nil
		}
	}

	// Structure files have "blocks", "palette" and "size"
	_, hasBlocks := root["blocks"]
	_, hasPalette := root["palette"]
	_, hasSize := root["size"]
	if hasBlocks && hasPalette && hasSize {
		return Create, nil
	}
	return 0, base.InvalidFormat("unknown gzip NBT format")
}
