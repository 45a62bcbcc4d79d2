package base

import "errors"

var (
	errVarIntOverflow  = errors.New("varint too long")
	errVarIntTruncated = errors.New("varint extends beyond data")
)

// DecodeVarInt reads a single VarInt from the byte slice.
// Returns the value and the number of bytes read.
func DecodeVarInt(data []byte) (int32, int, error) {
	var value uint32
	for n := 0; ; n++ {
		if n >= len(data) {
			return 0, 0, errVarIntTruncated
		}
		if n >= 5 {
			return 0, 0, errVarIntOverflow
		}
		b := data[n]
		value |= uint32(b&0x7F) << (7 * n)
		if b&0x80 == 0 {
			return int32(value), n + 1, nil
		}
	}
}

// DecodeVarIntArray decodes count VarInts from a byte slice.
func DecodeVarIntArray(data []byte, count int) ([]int32, error) {
	if len(data) < count {
		return nil, InvalidFormat("block data has %d bytes for %d entries", len(data), count)
	}
	values := make([]int32, count)
	offset := 0
	for i := range count {
		val, n, err := DecodeVarInt(data[offset:])
		if err != nil {
			return nil, InvalidFormat("block data entry %d: %v", i, err)
		}
		values[i] = val
		offset += n
	}
	return values, nil
}

// AppendVarInt appends the VarInt encoding of v to buf.
func AppendVarInt(buf []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// EncodeVarIntArray encodes values as consecutive VarInts.
func EncodeVarIntArray(values []int32) []byte {
	buf := make([]byte, 0, len(values))
	for _, v := range values {
		buf = AppendVarInt(buf, v)
	}
	return buf
}
