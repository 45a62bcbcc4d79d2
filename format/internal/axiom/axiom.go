// Package axiom reads and writes Axiom blueprints (.bp): a magic number
// followed by a length-prefixed NBT header, an optional PNG thumbnail and
// gzip compressed block data stored as 16x16x16 chunk sections.
package axiom

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"maps"
	"math"
	"math/bits"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

const (
	Magic uint32 = 0x0AE5BB36

	chunkSize   = 16
	chunkArea   = chunkSize * chunkSize
	chunkVolume = chunkSize * chunkArea

	// Cells no block was placed in.
	emptyBlock base.BlockID = "minecraft:structure_void"
)

// Header is the uncompressed NBT header of a blueprint.
type Header struct {
	Version         int32    `nbt:"Version"`
	Name            string   `nbt:"Name,omitempty"`
	Author          string   `nbt:"Author,omitempty"`
	Tags            []string `nbt:"Tags,omitempty"`
	ThumbnailYaw    float32  `nbt:"ThumbnailYaw,omitempty"`
	ThumbnailPitch  float32  `nbt:"ThumbnailPitch,omitempty"`
	LockedThumbnail bool     `nbt:"LockedThumbnail,omitempty"`
	BlockCount      int32    `nbt:"BlockCount"`
	ContainsAir     bool     `nbt:"ContainsAir"`
}

// BlockData is the compressed body of a blueprint.
type BlockData struct {
	DataVersion   int32            `nbt:"DataVersion"`
	BlockRegion   []Chunk          `nbt:"BlockRegion"`
	BlockEntities []map[string]any `nbt:"BlockEntities,omitempty"`
	Entities      []map[string]any `nbt:"Entities,omitempty"`
}

// Chunk is one 16x16x16 section at chunk coordinates X, Y, Z.
type Chunk struct {
	X           int32       `nbt:"X"`
	Y           int32       `nbt:"Y"`
	Z           int32       `nbt:"Z"`
	BlockStates BlockStates `nbt:"BlockStates"`
}

type BlockStates struct {
	Palette []base.PaletteEntry `nbt:"palette"`
	Data    []int64             `nbt:"data,array"`
}

// bitsPerBlock is the section packing width: never less than 4.
func bitsPerBlock(n int) int {
	return max(bits.Len(uint(max(n, 1)-1)), 4)
}

func isEmpty(b *base.BlockData) bool {
	return b.IsAir() || b.ID == emptyBlock
}

// Read decodes a blueprint. Structure void and air cells are skipped.
func Read(r io.Reader) (*base.SchematicData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, base.IOFailure("read data", err)
	}
	br := bytes.NewReader(raw)

	var magic uint32
	if err := binary.Read(br, binary.BigEndian, &magic); err != nil {
		return nil, base.InvalidFormat("read magic: %v", err)
	}
	if magic != Magic {
		return nil, base.InvalidFormat("invalid magic: expected 0x%X, got 0x%X", Magic, magic)
	}
	headerBuf, err := section(br, "header")
	if err != nil {
		return nil, err
	}
	var header Header
	if err := base.DecodeNBT(headerBuf, &header); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if _, err := section(br, "thumbnail"); err != nil {
		return nil, err
	}
	body, err := section(br, "block data")
	if err != nil {
		return nil, err
	}
	unzipped, err := base.Gunzip(body)
	if err != nil {
		return nil, err
	}
	var doc BlockData
	if err := base.DecodeNBT(unzipped, &doc); err != nil {
		return nil, fmt.Errorf("block data: %w", err)
	}
	return doc.Structure()
}

// section reads one length-prefixed part of the file.
func section(r *bytes.Reader, name string) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return nil, base.InvalidFormat("read %s length: %v", name, err)
	}
	if int64(n) > int64(r.Len()) {
		return nil, base.InvalidFormat("%s length %d exceeds remaining %d bytes", name, n, r.Len())
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, base.InvalidFormat("read %s: %v", name, err)
	}
	return buf, nil
}

// Structure converts the decoded body into the intermediate representation.
func (d *BlockData) Structure() (*base.SchematicData, error) {
	data := base.NewSchematicData(0)
	data.DataVersion = d.DataVersion

	for _, c := range d.BlockRegion {
		if len(c.BlockStates.Palette) == 0 {
			continue
		}
		palette := make([]*base.BlockData, len(c.BlockStates.Palette))
		for i, e := range c.BlockStates.Palette {
			id := base.AirID
			if e.Name != "" {
				id = base.BlockID(e.Name)
			}
			palette[i] = base.NewBlockData(id, e.Properties)
		}

		origin := base.BlockPos{X: c.X * chunkSize, Y: c.Y * chunkSize, Z: c.Z * chunkSize}
		for i, id := range base.UnpackAligned(c.BlockStates.Data, bitsPerBlock(len(palette)), chunkVolume) {
			block, err := base.Lookup(palette, int64(id))
			if err != nil {
				return nil, fmt.Errorf("chunk %d,%d,%d: %w", c.X, c.Y, c.Z, err)
			}
			if isEmpty(block) {
				continue
			}
			local := base.BlockPos{X: int32(i % chunkSize), Y: int32(i / chunkArea), Z: int32(i / chunkSize % chunkSize)}
			data.Blocks.Add(origin.Add(local), block)
		}
	}

	for _, m := range d.BlockEntities {
		pos, ok := blockPos(m)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		data.TileEntities = append(data.TileEntities, base.TileEntity{Pos: pos, ID: id, Data: base.Without(m, "x", "y", "z", "id")})
	}
	for _, m := range d.Entities {
		var pos mgl64.Vec3
		if p, ok := base.List(m["Pos"]); ok && len(p) >= 3 {
			for i := range 3 {
				pos[i], _ = base.Float(p[i])
			}
		}
		id, _ := m["id"].(string)
		data.Entities = append(data.Entities, base.Entity{ID: id, Pos: pos, BlockPos: base.BlockPosOf(pos), Data: base.Without(m, "id", "Pos")})
	}

	if b, ok := base.BoundsOf(data.Blocks, 0); ok {
		size, err := b.Extent()
		if err != nil {
			return nil, err
		}
		data.Size = size
	}
	return data, nil
}

func blockPos(m map[string]any) (base.BlockPos, bool) {
	x, okX := base.Int(m["x"])
	y, okY := base.Int(m["y"])
	z, okZ := base.Int(m["z"])
	return base.BlockPos{X: int32(x), Y: int32(y), Z: int32(z)}, okX && okY && okZ
}

type chunkKey struct {
	X, Y, Z int32
}

func (k chunkKey) compare(o chunkKey) int {
	switch {
	case k.Y != o.Y:
		return int(k.Y) - int(o.Y)
	case k.Z != o.Z:
		return int(k.Z) - int(o.Z)
	default:
		return int(k.X) - int(o.X)
	}
}

// chunkOf splits a position into its chunk and the index inside it.
func chunkOf(p base.BlockPos) (chunkKey, int) {
	cx, lx := floorDiv(p.X)
	cy, ly := floorDiv(p.Y)
	cz, lz := floorDiv(p.Z)
	return chunkKey{X: cx, Y: cy, Z: cz}, int(ly)*chunkArea + int(lz)*chunkSize + int(lx)
}

func floorDiv(v int32) (q, r int32) {
	q, r = v/chunkSize, v%chunkSize
	if r < 0 {
		q--
		r += chunkSize
	}
	return q, r
}

// Build lays the structure out in chunk sections at its world positions.
// Sections are packed concurrently.
func Build(data *base.SchematicData, opts base.Options) (*Header, *BlockData, error) {
	if _, ok := base.BoundsOf(data.Blocks, opts.Workers); !ok {
		return nil, nil, base.InvalidFormat("empty structure")
	}

	// Later entries win, so cells are resolved before counting.
	cells := make(map[base.BlockPos]*base.BlockData, data.Blocks.Len())
	for _, e := range data.Blocks.Elements() {
		cells[e.Pos] = e.Block
	}
	chunks := make(map[chunkKey][]*base.BlockData)
	var solid int32
	containsAir := false
	for pos, block := range cells {
		if isEmpty(block) {
			containsAir = true
			continue
		}
		key, i := chunkOf(pos)
		c, ok := chunks[key]
		if !ok {
			c = make([]*base.BlockData, chunkVolume)
			chunks[key] = c
		}
		c[i] = block
		solid++
	}
	keys := slices.SortedFunc(maps.Keys(chunks), chunkKey.compare)

	region := make([]Chunk, len(keys))
	base.ForEach(len(keys), opts.Workers, func(i int) {
		region[i] = packChunk(keys[i], chunks[keys[i]])
	})
	if len(region) == 0 {
		region = append(region, packChunk(chunkKey{}, make([]*base.BlockData, chunkVolume)))
	}

	name := opts.Name
	if name == "" {
		name = "Converted Blueprint"
	}
	header := &Header{
		Version:     1,
		Name:        name,
		Author:      opts.Author,
		Tags:        []string{"converted"},
		BlockCount:  solid,
		ContainsAir: containsAir || solid == 0,
	}
	body := &BlockData{
		DataVersion:   opts.DataVersionFor(data),
		BlockRegion:   region,
		BlockEntities: blockEntities(data.TileEntities),
		Entities:      entities(data.Entities),
	}
	return header, body, nil
}

func packChunk(key chunkKey, cells []*base.BlockData) Chunk {
	palette := base.NewPalette()
	palette.Add(base.NewBlockData(emptyBlock, nil))
	ids := make([]int32, chunkVolume)
	for i, b := range cells {
		if b != nil {
			ids[i] = int32(palette.Add(b))
		}
	}
	return Chunk{
		X: key.X,
		Y: key.Y,
		Z: key.Z,
		BlockStates: BlockStates{
			Palette: palette.Entries(),
			Data:    base.PackAligned(ids, bitsPerBlock(palette.Len())),
		},
	}
}

func blockEntities(tiles []base.TileEntity) []map[string]any {
	out := make([]map[string]any, 0, len(tiles))
	for _, te := range tiles {
		m := te.Clone().Data
		if m == nil {
			m = make(map[string]any)
		}
		m["x"], m["y"], m["z"] = te.Pos.X, te.Pos.Y, te.Pos.Z
		if te.ID != "" {
			m["id"] = te.ID
		}
		out = append(out, m)
	}
	return out
}

func entities(ents []base.Entity) []map[string]any {
	out := make([]map[string]any, 0, len(ents))
	for _, e := range ents {
		m := make(map[string]any, len(e.Data)+2)
		maps.Copy(m, e.Data)
		m["Pos"] = []float64{e.Pos[0], e.Pos[1], e.Pos[2]}
		if e.ID != "" {
			m["id"] = e.ID
		}
		out = append(out, m)
	}
	return out
}

// Write writes data as a blueprint without a thumbnail.
func Write(w io.Writer, data *base.SchematicData, opts base.Options) error {
	header, body, err := Build(data, opts)
	if err != nil {
		return err
	}
	headerBuf, err := base.EncodeNBT(header)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	var bodyBuf bytes.Buffer
	if err := base.WriteGzipNBT(&bodyBuf, body); err != nil {
		return fmt.Errorf("block data: %w", err)
	}
	if int64(bodyBuf.Len()) > math.MaxUint32 {
		return base.InvalidFormat("block data too large: %d bytes", bodyBuf.Len())
	}

	var out bytes.Buffer
	_ = binary.Write(&out, binary.BigEndian, Magic)
	_ = binary.Write(&out, binary.BigEndian, uint32(len(headerBuf)))
	out.Write(headerBuf)
	_ = binary.Write(&out, binary.BigEndian, uint32(0))
	_ = binary.Write(&out, binary.BigEndian, uint32(bodyBuf.Len()))
	out.Write(bodyBuf.Bytes())
	if _, err := w.Write(out.Bytes()); err != nil {
		return base.IOFailure("write blueprint", err)
	}
	return nil
}
