package create

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

type listBlock struct {
	State int32   `nbt:"state"`
	Pos   []int32 `nbt:"pos"`
}

type arrayBlock struct {
	State int32   `nbt:"state"`
	Pos   []int32 `nbt:"pos,array"`
}

type statelessBlock struct {
	Pos []int32 `nbt:"pos"`
}

type longBlock struct {
	State int32   `nbt:"state"`
	Pos   []int64 `nbt:"pos"`
}

type nameState struct {
	State string  `nbt:"state"`
	Pos   []int32 `nbt:"pos"`
}

type source[B any] struct {
	DataVersion int32               `nbt:"DataVersion,omitempty"`
	Size        []int32             `nbt:"size"`
	Palette     []base.PaletteEntry `nbt:"palette"`
	Blocks      []B                 `nbt:"blocks"`
	Entities    []map[string]any    `nbt:"entities"`
}

type noPalette struct {
	Size     []int32          `nbt:"size"`
	Blocks   []listBlock      `nbt:"blocks"`
	Entities []map[string]any `nbt:"entities"`
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, base.WriteGzipNBT(&buf, v))
	return buf.Bytes()
}

var testPalette = []base.PaletteEntry{
	{Name: "minecraft:stone"},
	{Name: "minecraft:oak_log", Properties: map[string]string{"axis": "y"}},
}

func TestReadListPositions(t *testing.T) {
	doc := source[listBlock]{
		DataVersion: 3700,
		Size:        []int32{2, 1, 1},
		Palette:     testPalette,
		Blocks: []listBlock{
			{State: 1, Pos: []int32{1, 0, 0}},
			{State: 0, Pos: []int32{0, 0, 0}},
		},
	}
	data, err := Read(bytes.NewReader(encode(t, doc)))
	require.NoError(t, err)

	assert.Equal(t, base.Size{Width: 2, Height: 1, Length: 1}, data.Size)
	assert.Equal(t, int32(3700), data.DataVersion)
	require.Equal(t, 2, data.Blocks.Len())
	assert.Equal(t, base.BlockPos{X: 1}, data.Blocks.At(0).Pos)
	assert.Equal(t, "minecraft:oak_log[axis=y]", data.Blocks.At(0).Block.Key())
	assert.Equal(t, "minecraft:stone", data.Blocks.At(1).Block.Key())
	assert.Empty(t, data.TileEntities)
}

func TestReadArrayPositions(t *testing.T) {
	doc := source[arrayBlock]{
		Size:    []int32{1, 1, 1},
		Palette: testPalette,
		Blocks:  []arrayBlock{{State: 0, Pos: []int32{4, 5, 6}}},
	}
	data, err := Read(bytes.NewReader(encode(t, doc)))
	require.NoError(t, err)
	require.Equal(t, 1, data.Blocks.Len())
	assert.Equal(t, base.BlockPos{X: 4, Y: 5, Z: 6}, data.Blocks.At(0).Pos)
}

func TestReadSharesPaletteEntries(t *testing.T) {
	doc := source[listBlock]{
		Size:    []int32{2, 1, 1},
		Palette: testPalette,
		Blocks:  []listBlock{{State: 0, Pos: []int32{0, 0, 0}}, {State: 0, Pos: []int32{1, 0, 0}}},
	}
	data, err := Read(bytes.NewReader(encode(t, doc)))
	require.NoError(t, err)
	assert.Same(t, data.Blocks.At(0).Block, data.Blocks.At(1).Block)
}

func TestReadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  any
		want error
	}{
		{
			name: "missing palette",
			doc:  noPalette{Size: []int32{1, 1, 1}, Blocks: []listBlock{{Pos: []int32{0, 0, 0}}}},
			want: base.ErrInvalidFormat,
		},
		{
			name: "two element pos",
			doc: source[listBlock]{
				Size: []int32{1, 1, 1}, Palette: testPalette,
				Blocks: []listBlock{{State: 0, Pos: []int32{0, 0}}},
			},
			want: base.ErrInvalidFormat,
		},
		{
			name: "pos beyond int32",
			doc: source[longBlock]{
				Size: []int32{1, 1, 1}, Palette: testPalette,
				Blocks: []longBlock{{State: 0, Pos: []int64{0, 1 << 40, 0}}},
			},
			want: base.ErrInvalidFormat,
		},
		{
			name: "missing state",
			doc: source[statelessBlock]{
				Size: []int32{1, 1, 1}, Palette: testPalette,
				Blocks: []statelessBlock{{Pos: []int32{0, 0, 0}}},
			},
			want: base.ErrInvalidFormat,
		},
		{
			name: "string state",
			doc: source[nameState]{
				Size: []int32{1, 1, 1}, Palette: testPalette,
				Blocks: []nameState{{State: "stone", Pos: []int32{0, 0, 0}}},
			},
			want: base.ErrInvalidFormat,
		},
		{
			name: "state out of range",
			doc: source[listBlock]{
				Size: []int32{1, 1, 1}, Palette: testPalette,
				Blocks: []listBlock{{State: 2, Pos: []int32{0, 0, 0}}},
			},
			want: base.ErrPaletteIndexOutOfRange,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Read(bytes.NewReader(encode(t, tt.doc)))
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, data)
		})
	}
}

func TestReadNotGzip(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a structure")))
	assert.ErrorIs(t, err, base.ErrIO)
}

func TestFromNBTMissingSize(t *testing.T) {
	_, err := FromNBT(map[string]any{"blocks": []any{}, "palette": []any{}, "entities": []any{}})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)
	assert.ErrorContains(t, err, "size")
}

func sample() *base.SchematicData {
	stone := base.NewBlockData("minecraft:stone", nil)
	chest := base.NewBlockData("minecraft:chest", map[string]string{"facing": "east"})
	data := base.NewSchematicData(3)
	data.Size = base.Size{Width: 2, Height: 1, Length: 2}
	data.Blocks.Add(base.BlockPos{X: 10, Y: 64, Z: -5}, stone)
	data.Blocks.Add(base.BlockPos{X: 11, Y: 64, Z: -4}, chest)
	data.TileEntities = append(data.TileEntities, base.TileEntity{
		Pos:  base.BlockPos{X: 11, Y: 64, Z: -4},
		ID:   "minecraft:chest",
		Data: map[string]any{"Lock": ""},
	})
	return data
}

func TestBuildShiftsToMinCorner(t *testing.T) {
	doc, err := Build(sample(), base.Options{})
	require.NoError(t, err)

	assert.Equal(t, []int32{2, 1, 2}, doc.Size)
	assert.Equal(t, base.DefaultDataVersion, doc.DataVersion)
	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, []int32{0, 0, 0}, doc.Blocks[0].Pos)
	assert.Equal(t, []int32{1, 0, 1}, doc.Blocks[1].Pos)
	assert.Nil(t, doc.Blocks[0].NBT)
	assert.Equal(t, map[string]any{"Lock": "", "id": "minecraft:chest"}, doc.Blocks[1].NBT)
	assert.Equal(t, []base.PaletteEntry{
		{Name: "minecraft:stone"},
		{Name: "minecraft:chest", Properties: map[string]string{"facing": "east"}},
	}, doc.Palette)
}

func TestBuildFillAir(t *testing.T) {
	doc, err := Build(sample(), base.Options{FillAir: true, DataVersion: 4189})
	require.NoError(t, err)

	assert.Equal(t, int32(4189), doc.DataVersion)
	require.Len(t, doc.Blocks, 4)
	require.Len(t, doc.Palette, 3)
	assert.Equal(t, "minecraft:air", doc.Palette[2].Name)
	assert.Equal(t, []int32{1, 0, 0}, doc.Blocks[2].Pos)
	assert.Equal(t, []int32{0, 0, 1}, doc.Blocks[3].Pos)
	assert.Equal(t, int32(2), doc.Blocks[3].State)
}

func TestBuildFillAirTooLarge(t *testing.T) {
	stone := base.NewBlockData("minecraft:stone", nil)
	data := base.NewSchematicData(2)
	data.Blocks.Add(base.BlockPos{}, stone)
	data.Blocks.Add(base.BlockPos{X: 100000, Y: 383, Z: 100000}, stone)

	_, err := Build(data, base.Options{FillAir: true})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)

	doc, err := Build(data, base.Options{})
	require.NoError(t, err)
	assert.Equal(t, []int32{100001, 384, 100001}, doc.Size)
	assert.Len(t, doc.Blocks, 2)
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(base.NewSchematicData(0), base.Options{})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)
}

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), base.Options{DataVersion: 3953}))

	data, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, int32(3953), data.DataVersion)
	assert.Equal(t, base.Size{Width: 2, Height: 1, Length: 2}, data.Size)
	require.Equal(t, 2, data.Blocks.Len())
	assert.Equal(t, base.BlockPos{X: 1, Y: 0, Z: 1}, data.Blocks.At(1).Pos)
	assert.Equal(t, "minecraft:chest[facing=east]", data.Blocks.At(1).Block.Key())
}
