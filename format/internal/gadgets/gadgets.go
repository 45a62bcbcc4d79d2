// Package gadgets reads and writes Building Gadgets template JSON.
package gadgets

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

const (
	// DefaultVersion is the template version written when none is requested.
	DefaultVersion = 1

	// axisLimit bounds every axis of a version 1 template, whose packed
	// positions keep one byte for y and z.
	axisLimit = 256
)

// Template is the JSON document.
type Template struct {
	Version       int            `json:"version"`
	MCDataVersion int32          `json:"mc_data_version"`
	Name          string         `json:"name,omitempty"`
	Author        string         `json:"author,omitempty"`
	Header        Header         `json:"header"`
	Palette       []PaletteEntry `json:"palette"`
	StateList     []int32        `json:"state_list"`
	PosList       []int32        `json:"pos_list,omitempty"`
}

// Header carries the box and the number of non-air blocks.
type Header struct {
	Bounds     Bounds `json:"bounds"`
	BlockCount int    `json:"block_count"`
}

// Bounds is the inclusive box of the template in world coordinates.
type Bounds struct {
	Min Pos `json:"min"`
	Max Pos `json:"max"`
}

// Pos is a JSON block position.
type Pos struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
	Z int32 `json:"z"`
}

// PaletteEntry is one block state.
type PaletteEntry struct {
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Pack encodes a position relative to the minimum corner.
func Pack(rel base.BlockPos) int32 {
	return (rel.X&0xFF)<<16 | (rel.Y&0xFF)<<8 | rel.Z&0xFF
}

// Unpack decodes a packed relative position.
func Unpack(v int32) base.BlockPos {
	return base.BlockPos{X: (v >> 16) & 0xFF, Y: (v >> 8) & 0xFF, Z: v & 0xFF}
}

// Build converts a structure to a template of opts.Version (1 or 2).
// Version 1 lists every block with a packed position; version 2 stores a
// dense y-z-x grid with air at palette index 0.
func Build(data *base.SchematicData, opts base.Options) (*Template, error) {
	version := opts.Version
	if version == 0 {
		version = DefaultVersion
	}
	if version != 1 && version != 2 {
		return nil, fmt.Errorf("%w: gadgets version %d", base.ErrUnsupportedVersion, version)
	}

	bounds, ok := base.BoundsOf(data.Blocks, opts.Workers)
	if !ok {
		return nil, base.InvalidFormat("empty structure")
	}
	t := &Template{
		Version:       version,
		MCDataVersion: opts.DataVersionFor(data),
		Name:          opts.Name,
		Author:        opts.Author,
		Header: Header{
			Bounds: Bounds{Min: toPos(bounds.Min), Max: toPos(bounds.Max)},
		},
	}
	for _, e := range data.Blocks.Elements() {
		if !e.Block.IsAir() {
			t.Header.BlockCount++
		}
	}

	var palette *base.Palette
	switch version {
	case 1:
		size, err := bounds.Extent()
		if err != nil {
			return nil, err
		}
		if size.Width > axisLimit || size.Height > axisLimit || size.Length > axisLimit {
			return nil, base.InvalidFormat("structure %dx%dx%d exceeds %d blocks on an axis", size.Width, size.Height, size.Length, axisLimit)
		}
		palette = base.BuildPalette(data.Blocks)
		t.StateList = make([]int32, 0, data.Blocks.Len())
		t.PosList = make([]int32, 0, data.Blocks.Len())
		for _, e := range data.Blocks.Elements() {
			t.StateList = append(t.StateList, int32(palette.Index(e.Block)))
			t.PosList = append(t.PosList, Pack(e.Pos.Sub(bounds.Min)))
		}
	case 2:
		grid, err := base.GridOf(bounds)
		if err != nil {
			return nil, err
		}
		palette = base.NewPaletteWithAir()
		for _, e := range data.Blocks.Elements() {
			palette.Add(e.Block)
		}
		t.StateList = base.Fill(grid, data.Blocks, palette, opts.Workers)
	}

	t.Palette = make([]PaletteEntry, palette.Len())
	for i, b := range palette.Blocks() {
		t.Palette[i] = PaletteEntry{Name: string(b.ID), Properties: b.PropertyMap()}
	}
	return t, nil
}

// Write builds the template and writes it as JSON.
func Write(w io.Writer, data *base.SchematicData, opts base.Options) error {
	t, err := Build(data, opts)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(w).Encode(t); err != nil {
		return base.IOFailure("write template", err)
	}
	return nil
}

// Read decodes a version 1 or 2 template.
func Read(r io.Reader) (*base.SchematicData, error) {
	var t Template
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, base.InvalidFormat("decode json: %v", err)
	}
	return t.Structure()
}

// Structure converts the template to a structure with absolute positions.
func (t *Template) Structure() (*base.SchematicData, error) {
	palette := make([]*base.BlockData, len(t.Palette))
	for i, p := range t.Palette {
		palette[i] = base.NewBlockData(base.BlockID(p.Name), p.Properties)
	}
	lo := fromPos(t.Header.Bounds.Min)
	hi := fromPos(t.Header.Bounds.Max)
	box := base.Bounds{Min: lo, Max: hi}

	data := base.NewSchematicData(len(t.StateList))
	data.DataVersion = t.MCDataVersion
	size, err := box.Extent()
	if err != nil {
		return nil, err
	}
	data.Size = size

	switch t.Version {
	case 1:
		if len(t.PosList) != len(t.StateList) {
			return nil, base.InvalidFormat("%d positions for %d states", len(t.PosList), len(t.StateList))
		}
		for i, state := range t.StateList {
			block, err := base.Lookup(palette, int64(state))
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", i, err)
			}
			data.Blocks.Add(lo.Add(Unpack(t.PosList[i])), block)
		}
	case 2:
		grid, err := base.GridOf(box)
		if err != nil {
			return nil, err
		}
		if len(t.StateList) != grid.Volume() {
			return nil, base.InvalidFormat("%d states for a %dx%dx%d box", len(t.StateList), grid.Width, grid.Height, grid.Length)
		}
		for i, state := range t.StateList {
			block, err := base.Lookup(palette, int64(state))
			if err != nil {
				return nil, fmt.Errorf("cell %d: %w", i, err)
			}
			if !block.IsAir() {
				data.Blocks.Add(grid.Pos(i), block)
			}
		}
	default:
		return nil, fmt.Errorf("%w: gadgets version %d", base.ErrUnsupportedVersion, t.Version)
	}
	return data, nil
}

func toPos(p base.BlockPos) Pos {
	return Pos{X: p.X, Y: p.Y, Z: p.Z}
}

func fromPos(p Pos) base.BlockPos {
	return base.BlockPos{X: p.X, Y: p.Y, Z: p.Z}
}
