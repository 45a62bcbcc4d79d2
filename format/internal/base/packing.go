package base

import (
	"math/bits"
	"sync/atomic"
)

// BitsPerEntry returns the width of one packed palette index for a palette
// of n entries: the bits needed for n-1, never less than 2. An empty
// palette yields 32.
func BitsPerEntry(n int) int {
	if n <= 0 {
		return 32
	}
	return max(bits.Len(uint(n-1)), 2)
}

// PackedLen returns the number of 64-bit words holding count entries of
// the given width.
func PackedLen(count, bitsPerEntry int) int {
	return (count*bitsPerEntry + 63) / 64
}

// PackTight packs values using Litematica's tight packing: entry i occupies
// bits [i*b, (i+1)*b) of the little-endian bit stream, so an entry may span
// two words. Entries are written concurrently; neighbouring entries sharing
// a word are merged with an atomic or.
func PackTight(values []int32, bitsPerEntry, workers int) []int64 {
	if bitsPerEntry <= 0 || bitsPerEntry > 32 {
		return nil
	}
	words := make([]atomic.Uint64, PackedLen(len(values), bitsPerEntry))
	mask := uint64(1)<<bitsPerEntry - 1
	Parallel(len(values), workers, func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			v := uint64(values[i]) & mask
			bitPos := i * bitsPerEntry
			word, offset := bitPos/64, bitPos%64
			words[word].Or(v << offset)
			if offset+bitsPerEntry > 64 {
				words[word+1].Or(v >> (64 - offset))
			}
		}
	})
	out := make([]int64, len(words))
	for i := range words {
		out[i] = int64(words[i].Load())
	}
	return out
}

// UnpackTight unpacks count entries from a tightly packed long array.
// Entries past the end of longs are read as 0.
func UnpackTight(longs []int64, bitsPerEntry, count int) []int32 {
	values := make([]int32, count)
	if bitsPerEntry <= 0 || bitsPerEntry > 32 {
		return values
	}
	mask := uint64(1)<<bitsPerEntry - 1
	for i := range count {
		bitPos := i * bitsPerEntry
		word, offset := bitPos/64, bitPos%64
		if word >= len(longs) {
			break
		}
		v := uint64(longs[word]) >> offset
		if offset+bitsPerEntry > 64 && word+1 < len(longs) {
			v |= uint64(longs[word+1]) << (64 - offset)
		}
		values[i] = int32(v & mask)
	}
	return values
}

// PackAligned packs values the way chunk sections do: each word holds
// 64/b whole entries and the remaining high bits stay zero.
func PackAligned(values []int32, bitsPerEntry int) []int64 {
	if bitsPerEntry <= 0 || bitsPerEntry > 32 {
		return nil
	}
	perWord := 64 / bitsPerEntry
	mask := uint64(1)<<bitsPerEntry - 1
	out := make([]int64, (len(values)+perWord-1)/perWord)
	for i, v := range values {
		out[i/perWord] |= int64((uint64(v) & mask) << ((i % perWord) * bitsPerEntry))
	}
	return out
}

// UnpackAligned reverses PackAligned. Entries past the end of longs are
// read as 0.
func UnpackAligned(longs []int64, bitsPerEntry, count int) []int32 {
	values := make([]int32, count)
	if bitsPerEntry <= 0 || bitsPerEntry > 32 {
		return values
	}
	perWord := 64 / bitsPerEntry
	mask := uint64(1)<<bitsPerEntry - 1
	for i := range count {
		word := i / perWord
		if word >= len(longs) {
			break
		}
		values[i] = int32(uint64(longs[word]) >> ((i % perWord) * bitsPerEntry) & mask)
	}
	return values
}
