package base

import (
	"errors"
	"fmt"
)

var (
	// ErrIO reports a failure to open, read or decompress a stream.
	ErrIO = errors.New("io failure")
	// ErrInvalidFormat reports a document that does not have the expected shape.
	ErrInvalidFormat = errors.New("invalid format")
	// ErrPaletteIndexOutOfRange reports a state id without a palette entry.
	ErrPaletteIndexOutOfRange = errors.New("palette index out of range")
	// ErrUnsupportedTarget reports an unknown target format selector.
	ErrUnsupportedTarget = errors.New("unsupported target format")
	// ErrUnsupportedVersion reports an unknown version of a known format.
	ErrUnsupportedVersion = errors.New("unsupported format version")
)

// InvalidFormat returns an error wrapping ErrInvalidFormat with a reason.
func InvalidFormat(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidFormat, fmt.Sprintf(format, args...))
}

// IOFailure wraps err so that it matches both ErrIO and err.
func IOFailure(op string, err error) error {
	return &ioError{op: op, err: err}
}

type ioError struct {
	op  string
	err error
}

func (e *ioError) Error() string {
	return e.op + ": " + e.err.Error()
}

func (e *ioError) Unwrap() []error {
	return []error{ErrIO, e.err}
}

// PaletteIndexError is returned when a block refers to a missing palette slot.
// It matches both ErrPaletteIndexOutOfRange and ErrInvalidFormat.
type PaletteIndexError struct {
	Index int64
	Size  int
}

func (e *PaletteIndexError) Error() string {
	return fmt.Sprintf("%s: state %d, palette has %d entries", ErrPaletteIndexOutOfRange, e.Index, e.Size)
}

func (e *PaletteIndexError) Is(target error) bool {
	return target == ErrPaletteIndexOutOfRange || target == ErrInvalidFormat
}
