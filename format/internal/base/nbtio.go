package base

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/oriumgames/nbt"
)

// ReadGzipNBT decompresses r completely and decodes the big endian NBT
// document into v. Stream and decompression failures match ErrIO; a
// document the codec rejects matches ErrInvalidFormat.
func ReadGzipNBT(r io.Reader, v any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return IOFailure("read data", err)
	}
	data, err := Gunzip(raw)
	if err != nil {
		return err
	}
	return DecodeNBT(data, v)
}

// DecodeNBT decodes an uncompressed big endian NBT document into v.
func DecodeNBT(data []byte, v any) error {
	if err := nbt.NewDecoderWithEncoding(bytes.NewReader(data), nbt.BigEndian).Decode(v); err != nil {
		return InvalidFormat("decode nbt: %v", err)
	}
	return nil
}

// EncodeNBT encodes v as an uncompressed big endian NBT document.
func EncodeNBT(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := nbt.NewEncoderWithEncoding(&buf, nbt.BigEndian).Encode(v); err != nil {
		return nil, fmt.Errorf("encode nbt: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteGzipNBT encodes v as big endian NBT and writes it gzip compressed.
func WriteGzipNBT(w io.Writer, v any) error {
	gz := gzip.NewWriter(w)
	if err := nbt.NewEncoderWithEncoding(gz, nbt.BigEndian).Encode(v); err != nil {
		gz.Close()
		return fmt.Errorf("encode nbt: %w", err)
	}
	if err := gz.Close(); err != nil {
		return IOFailure("gzip compress", err)
	}
	return nil
}

// Gunzip returns the decompressed contents of data.
func Gunzip(data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, IOFailure("gzip decompress", err)
	}
	defer gz.Close()
	out, err := io.ReadAll(gz)
	if err != nil {
		return nil, IOFailure("read gzip data", err)
	}
	return out, nil
}
