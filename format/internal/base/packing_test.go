package base

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBitsPerEntry(t *testing.T) {
	cases := map[int]int{0: 32, 1: 2, 2: 2, 3: 2, 4: 2, 5: 3, 16: 4, 17: 5, 256: 8, 257: 9}
	for n, want := range cases {
		assert.Equal(t, want, BitsPerEntry(n), "palette size %d", n)
	}
}

func TestPackTightRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for b := 2; b <= 32; b++ {
		// 67 entries make every width above 1 straddle at least one word.
		values := make([]int32, 67)
		for i := range values {
			values[i] = int32(rng.Uint64() & (1<<b - 1))
		}
		packed := PackTight(values, b, 4)
		require.Len(t, packed, PackedLen(len(values), b), "width %d", b)
		assert.Equal(t, values, UnpackTight(packed, b, len(values)), "width %d", b)
	}
}

func TestPackTightStraddle(t *testing.T) {
	// With 3 bits, entry 21 covers bits 63..65.
	values := make([]int32, 22)
	values[21] = 0b111
	packed := PackTight(values, 3, 1)
	require.Len(t, packed, 2)
	assert.Equal(t, int64(-1<<63), packed[0])
	assert.Equal(t, int64(0b11), packed[1])
}

func TestPackTightWorkerIndependent(t *testing.T) {
	values := make([]int32, 1000)
	for i := range values {
		values[i] = int32(i % 5)
	}
	want := PackTight(values, 3, 1)
	for _, w := range []int{2, 3, 8, 64} {
		assert.Equal(t, want, PackTight(values, 3, w))
	}
}

func TestPackTightRejectsWidth(t *testing.T) {
	assert.Nil(t, PackTight([]int32{1}, 0, 1))
	assert.Nil(t, PackTight([]int32{1}, 33, 1))
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 127, 128, 255, 16384, 1 << 28, -1}
	data := EncodeVarIntArray(values)
	got, err := DecodeVarIntArray(data, len(values))
	require.NoError(t, err)
	assert.Equal(t, values, got)

	_, err = DecodeVarIntArray([]byte{0x80}, 1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPackAligned(t *testing.T) {
	values := []int32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 0, 9}
	packed := PackAligned(values, 4)
	require.Len(t, packed, 2)
	assert.Equal(t, int64(9), packed[1])
	assert.Equal(t, values, UnpackAligned(packed, 4, len(values)))

	// 5 bit entries leave the top 4 bits of every word unused.
	values = make([]int32, 25)
	for i := range values {
		values[i] = int32(31 - i)
	}
	packed = PackAligned(values, 5)
	require.Len(t, packed, 3)
	for _, w := range packed {
		assert.Zero(t, uint64(w)>>60)
	}
	assert.Equal(t, values, UnpackAligned(packed, 5, len(values)))
	assert.Nil(t, PackAligned(values, 0))
}
