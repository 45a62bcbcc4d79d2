package base

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockDataCanonicalKey(t *testing.T) {
	a := NewBlockData("minecraft:oak_stairs", map[string]string{"half": "bottom", "facing": "north"})
	b := ParseBlockData("minecraft:oak_stairs[half=bottom,facing=north]")

	assert.Equal(t, "minecraft:oak_stairs[facing=north,half=bottom]", a.Key())
	assert.True(t, a.Equal(b))
	assert.Equal(t, []Property{{"facing", "north"}, {"half", "bottom"}}, b.Properties())

	v, ok := a.Property("half")
	assert.True(t, ok)
	assert.Equal(t, "bottom", v)
	_, ok = a.Property("waterlogged")
	assert.False(t, ok)

	assert.False(t, a.Equal(NewBlockData("minecraft:oak_stairs", nil)))
	assert.Equal(t, "minecraft:stone", NewBlockData("minecraft:stone", map[string]string{}).Key())
}

func TestBlockDataSeparatorsInValues(t *testing.T) {
	joined := NewBlockData("minecraft:sign", map[string]string{"x": "1,y=2"})
	split := NewBlockData("minecraft:sign", map[string]string{"x": "1", "y": "2"})

	assert.False(t, joined.Equal(split))
	assert.NotEqual(t, joined.Key(), split.Key())
	assert.Equal(t, "minecraft:sign[x=1,y=2]", joined.String())
	assert.Equal(t, split.Key(), split.String())

	l := NewBlockList(2)
	l.Add(BlockPos{}, joined)
	l.Add(BlockPos{X: 1}, split)
	p := BuildPalette(l)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, 0, p.Index(joined))
	assert.Equal(t, 1, p.Index(split))

	assert.False(t, NewBlockData(`a\`, nil).Equal(NewBlockData(`a\\`, nil)))
	assert.NotEqual(t,
		NewBlockData("a", map[string]string{"k": "v]"}).Key(),
		NewBlockData("a", map[string]string{"k": "v", "]": ""}).Key())
}

func TestIsAir(t *testing.T) {
	assert.True(t, Air.IsAir())
	assert.True(t, NewBlockData("minecraft:cave_air", nil).IsAir())
	assert.False(t, NewBlockData("minecraft:stone", nil).IsAir())
}

func TestBlockPosLess(t *testing.T) {
	assert.True(t, BlockPos{0, 5, 5}.Less(BlockPos{1, 0, 0}))
	assert.True(t, BlockPos{1, 0, 9}.Less(BlockPos{1, 1, 0}))
	assert.True(t, BlockPos{1, 1, 0}.Less(BlockPos{1, 1, 1}))
	assert.False(t, BlockPos{1, 1, 1}.Less(BlockPos{1, 1, 1}))
}

func TestPaletteFirstSeenOrder(t *testing.T) {
	stone := NewBlockData("minecraft:stone", nil)
	dirt := NewBlockData("minecraft:dirt", nil)

	l := NewBlockList(4)
	l.Add(BlockPos{0, 0, 0}, dirt)
	l.Add(BlockPos{1, 0, 0}, stone)
	l.Add(BlockPos{2, 0, 0}, NewBlockData("minecraft:dirt", nil))
	l.Add(BlockPos{3, 0, 0}, stone)

	p := BuildPalette(l)
	require.Equal(t, 2, p.Len())
	assert.Equal(t, 0, p.Index(dirt))
	assert.Equal(t, 1, p.Index(stone))
	assert.Equal(t, -1, p.Index(Air))
	assert.Same(t, dirt, p.Get(0))
	assert.Nil(t, p.Get(2))
}

func TestPaletteRoundTrip(t *testing.T) {
	blocks := []*BlockData{
		NewBlockData("minecraft:stone", nil),
		NewBlockData("minecraft:oak_log", map[string]string{"axis": "y"}),
		NewBlockData("minecraft:stone", nil),
		Air,
	}
	p := NewPalette()
	for _, b := range blocks {
		p.Add(b)
	}
	for _, b := range blocks {
		assert.True(t, p.Get(p.Index(b)).Equal(b))
	}
	assert.Equal(t, 3, p.Len())
}

func TestParsePalette(t *testing.T) {
	palette, err := ParsePalette([]any{
		map[string]any{"Name": "minecraft:oak_log", "Properties": map[string]any{"axis": "x", "bad": int32(3)}},
		map[string]any{},
	})
	require.NoError(t, err)
	require.Len(t, palette, 2)
	assert.Equal(t, "minecraft:oak_log[axis=x]", palette[0].Key())
	assert.Equal(t, AirID, palette[1].ID)

	_, err = ParsePalette([]any{"minecraft:stone"})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLookup(t *testing.T) {
	palette := []*BlockData{Air}
	b, err := Lookup(palette, 0)
	require.NoError(t, err)
	assert.Same(t, Air, b)

	_, err = Lookup(palette, 1)
	assert.ErrorIs(t, err, ErrPaletteIndexOutOfRange)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	var pe *PaletteIndexError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, int64(1), pe.Index)
	assert.Equal(t, 1, pe.Size)
}

func TestIOFailure(t *testing.T) {
	cause := errors.New("boom")
	err := IOFailure("read", cause)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "read: boom")
}

func TestGameVersion(t *testing.T) {
	assert.Equal(t, "1.20.1", GameVersion(DefaultDataVersion))
	assert.Equal(t, "1.21", GameVersion(3953))
	assert.Equal(t, "", GameVersion(100))
	assert.Equal(t, int32(3465), DataVersionOf("1.20.1"))
}
