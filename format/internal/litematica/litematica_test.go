package litematica

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriumgames/pile/schemconv/format/internal/base"
)

var stone = base.NewBlockData("minecraft:stone", nil)

func single() *base.SchematicData {
	data := base.NewSchematicData(1)
	data.Size = base.Size{Width: 1, Height: 1, Length: 1}
	data.Blocks.Add(base.BlockPos{}, stone)
	return data
}

func box(w, h, l int32, at base.BlockPos) *base.SchematicData {
	data := base.NewSchematicData(int(w * h * l))
	data.Size = base.Size{Width: w, Height: h, Length: l}
	log := base.NewBlockData("minecraft:oak_log", map[string]string{"axis": "y"})
	for y := range h {
		for z := range l {
			for x := range w {
				b := stone
				if (x+y+z)%3 == 0 {
					b = log
				}
				data.Blocks.Add(at.Add(base.BlockPos{X: x, Y: y, Z: z}), b)
			}
		}
	}
	return data
}

func cells(t *testing.T, doc *Document) []int32 {
	t.Helper()
	region := doc.Regions[RegionName]
	n := int(region.Size.X * region.Size.Y * region.Size.Z)
	return base.UnpackTight(region.BlockStates, base.BitsPerEntry(len(region.BlockStatePalette)), n)
}

func TestBuildSingleBlock(t *testing.T) {
	doc, err := Build(single(), base.Options{})
	require.NoError(t, err)

	region, ok := doc.Regions[RegionName]
	require.True(t, ok)
	assert.Equal(t, Vec3{X: 3, Y: 1, Z: 3}, region.Size)
	assert.Equal(t, Vec3{}, region.Position)
	assert.Equal(t, []base.PaletteEntry{{Name: "minecraft:air"}, {Name: "minecraft:stone"}}, region.BlockStatePalette)
	assert.Equal(t, []int32{0, 0, 0, 0, 1, 0, 0, 0, 0}, cells(t, doc))
	assert.Empty(t, region.TileEntities)
	assert.NotNil(t, region.TileEntities)

	assert.Equal(t, int32(DefaultVersion), doc.Version)
	assert.Equal(t, int32(DefaultSubVersion), doc.SubVersion)
	assert.Equal(t, base.DefaultDataVersion, doc.MinecraftDataVersion)
	assert.Equal(t, Vec3{X: 3, Y: 1, Z: 3}, doc.Metadata.EnclosingSize)
	assert.Equal(t, int32(1), doc.Metadata.RegionCount)
	assert.Equal(t, int32(1), doc.Metadata.TotalBlocks)
	assert.Equal(t, int32(9), doc.Metadata.TotalVolume)
	assert.Equal(t, "null", doc.Metadata.Name)
	assert.Equal(t, defaultAuthor, doc.Metadata.Author)
	assert.Equal(t, defaultDescription, doc.Metadata.Description)
}

func TestBuildDoesNotModifyInput(t *testing.T) {
	data := single()
	_, err := Build(data, base.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, data.Blocks.Len())
}

func TestPadGeometry(t *testing.T) {
	data := box(4, 3, 2, base.BlockPos{X: -7, Y: 60, Z: 12})
	blocks, grid, err := Pad(data, 4)
	require.NoError(t, err)

	assert.Equal(t, base.BlockPos{X: -8, Y: 60, Z: 11}, grid.Origin)
	assert.Equal(t, 6, grid.Width)
	assert.Equal(t, 3, grid.Height)
	assert.Equal(t, 4, grid.Length)

	perLayer := 2*6 + 2*4 - 4
	shell := blocks.Elements()[:perLayer*grid.Height]
	seen := make(map[base.BlockPos]bool)
	for i, e := range shell {
		assert.Same(t, base.Air, e.Block)
		assert.False(t, seen[e.Pos], "duplicate shell cell %v", e.Pos)
		seen[e.Pos] = true
		onEdge := e.Pos.X == -8 || e.Pos.X == -3 || e.Pos.Z == 11 || e.Pos.Z == 14
		assert.True(t, onEdge, "cell %v is not on the perimeter", e.Pos)
		// Layers are kept in order.
		assert.Equal(t, int32(60+i/perLayer), e.Pos.Y)
	}
	assert.Equal(t, data.Blocks.Elements(), blocks.Elements()[len(shell):])
}

func TestPerimeterIsAir(t *testing.T) {
	data := box(3, 2, 5, base.BlockPos{X: 100, Y: -4, Z: 7})
	doc, err := Build(data, base.Options{})
	require.NoError(t, err)

	region := doc.Regions[RegionName]
	require.Equal(t, Vec3{X: 5, Y: 2, Z: 7}, region.Size)
	require.Equal(t, "minecraft:air", region.BlockStatePalette[0].Name)

	grid := base.Grid{Width: 5, Height: 2, Length: 7}
	for i, c := range cells(t, doc) {
		p := grid.Pos(i)
		edge := p.X == 0 || p.X == 4 || p.Z == 0 || p.Z == 6
		if edge {
			assert.Equal(t, int32(0), c, "perimeter cell %v", p)
		} else {
			assert.NotEqual(t, int32(0), c, "interior cell %v", p)
		}
	}
}

func TestBuildWorkerIndependent(t *testing.T) {
	data := box(13, 7, 9, base.BlockPos{X: 3, Y: 2, Z: 1})
	want, err := Build(data, base.Options{Workers: 1})
	require.NoError(t, err)
	for _, w := range []int{2, 5, 16} {
		got, err := Build(data, base.Options{Workers: w})
		require.NoError(t, err)
		assert.Equal(t, want, got, "workers %d", w)
	}
}

// The margin comes from the declared size, so a structure larger than it
// declares gets no air on the far side and its blocks spill into the margin.
func TestDeclaredSizeUnderPadding(t *testing.T) {
	data := box(4, 1, 1, base.BlockPos{})
	data.Size = base.Size{Width: 2, Height: 1, Length: 1}

	doc, err := Build(data, base.Options{})
	require.NoError(t, err)
	region := doc.Regions[RegionName]
	assert.Equal(t, Vec3{X: 4, Y: 1, Z: 3}, region.Size)

	row := cells(t, doc)[4:8]
	assert.NotEqual(t, int32(0), row[3], "far margin holds a real block")
}

func TestBuildWithoutDeclaredSize(t *testing.T) {
	data := box(2, 3, 1, base.BlockPos{X: 5})
	data.Size = base.Size{}

	doc, err := Build(data, base.Options{})
	require.NoError(t, err)
	assert.Equal(t, Vec3{X: 4, Y: 3, Z: 3}, doc.Regions[RegionName].Size)
}

func TestBuildEmpty(t *testing.T) {
	_, err := Build(base.NewSchematicData(0), base.Options{})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)
}

func TestBuildUnsupportedVersion(t *testing.T) {
	_, err := Build(single(), base.Options{Version: 3})
	assert.ErrorIs(t, err, base.ErrUnsupportedVersion)
}

func TestBuildOptions(t *testing.T) {
	doc, err := Build(single(), base.Options{Version: 7, SubVersion: 2, DataVersion: 3953, Name: "house", Timestamp: 42})
	require.NoError(t, err)
	assert.Equal(t, int32(7), doc.Version)
	assert.Equal(t, int32(2), doc.SubVersion)
	assert.Equal(t, int32(3953), doc.MinecraftDataVersion)
	assert.Equal(t, "house", doc.Metadata.Name)
	assert.Equal(t, int64(42), doc.Metadata.TimeCreated)
}

func TestWriteReadRoundTrip(t *testing.T) {
	data := box(2, 2, 2, base.BlockPos{X: 5, Y: 5, Z: 5})
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, data, base.Options{}))

	got, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, base.Size{Width: 4, Height: 2, Length: 4}, got.Size)
	assert.Equal(t, base.DefaultDataVersion, got.DataVersion)
	require.Equal(t, 8, got.Blocks.Len())

	want := make(map[base.BlockPos]string)
	for _, e := range data.Blocks.Elements() {
		want[e.Pos.Sub(base.BlockPos{X: 4, Y: 5, Z: 4})] = e.Block.Key()
	}
	for _, e := range got.Blocks.Elements() {
		assert.Equal(t, want[e.Pos], e.Block.Key(), "block at %v", e.Pos)
	}
}

func TestFromDocumentNegativeSize(t *testing.T) {
	doc := &Document{
		Version: 6,
		Regions: map[string]Region{
			"r": {
				Position:          Vec3{X: 10, Y: 0, Z: 0},
				Size:              Vec3{X: -2, Y: 1, Z: 1},
				BlockStatePalette: []base.PaletteEntry{{Name: "minecraft:air"}, {Name: "minecraft:stone"}},
				BlockStates:       base.PackTight([]int32{1, 0}, 2, 1),
				TileEntities: []map[string]any{
					{"x": int32(0), "y": int32(0), "z": int32(0), "id": "minecraft:sign", "Text": "hi"},
				},
			},
		},
	}
	data, err := FromDocument(doc)
	require.NoError(t, err)
	require.Equal(t, 1, data.Blocks.Len())
	assert.Equal(t, base.BlockPos{X: 9}, data.Blocks.At(0).Pos)
	assert.Equal(t, base.Size{Width: 2, Height: 1, Length: 1}, data.Size)
	require.Len(t, data.TileEntities, 1)
	assert.Equal(t, base.BlockPos{X: 9}, data.TileEntities[0].Pos)
	assert.Equal(t, map[string]any{"Text": "hi"}, data.TileEntities[0].Data)
}

func TestFromDocumentErrors(t *testing.T) {
	_, err := FromDocument(&Document{Version: 5})
	assert.ErrorIs(t, err, base.ErrUnsupportedVersion)

	_, err = FromDocument(&Document{Version: 6})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)

	_, err = FromDocument(&Document{Version: 6, Regions: map[string]Region{"r": {
		Size:              Vec3{X: 1, Y: 1, Z: 1},
		BlockStatePalette: []base.PaletteEntry{{Name: "minecraft:air"}},
		BlockStates:       []int64{3},
	}}})
	assert.ErrorIs(t, err, base.ErrPaletteIndexOutOfRange)

	_, err = FromDocument(&Document{Version: 6, Regions: map[string]Region{"r": {
		Size:              Vec3{X: 100000, Y: 384, Z: -100000},
		BlockStatePalette: []base.PaletteEntry{{Name: "minecraft:air"}},
	}}})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)
}

func TestPadRejectsOversizedBox(t *testing.T) {
	data := base.NewSchematicData(1)
	data.Size = base.Size{Width: 100000, Height: 384, Length: 100000}
	data.Blocks.Add(base.BlockPos{}, stone)
	_, _, err := Pad(data, 2)
	assert.ErrorIs(t, err, base.ErrInvalidFormat)

	data.Size = base.Size{Width: math.MaxInt32, Height: 1, Length: 1}
	_, _, err = Pad(data, 2)
	assert.ErrorIs(t, err, base.ErrInvalidFormat)

	_, err = Build(data, base.Options{})
	assert.ErrorIs(t, err, base.ErrInvalidFormat)
}
