package schemconv

import (
	"io"
	"os"
	"path/filepath"

	"github.com/oriumgames/pile/schemconv/format"
)

// Read reads a schematic with auto-format detection.
func Read(r io.Reader) (*Structure, error) {
	s, _, err := format.Read(r)
	if err != nil {
		return nil, err
	}
	return NewStructure(s), nil
}

// ReadFile reads a schematic from a file path.
func ReadFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Convert reads a schematic in any supported format from r and writes it to
// w in the target format.
func Convert(r io.Reader, w io.Writer, target format.Target, opts format.Options) error {
	return format.Convert(r, w, target, opts)
}

// ConvertFile converts the schematic at src and writes it to dst. dst is
// only created once the conversion succeeded.
func ConvertFile(src, dst string, target format.Target, opts format.Options) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	s, _, err := format.Read(in)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(dst), ".schemconv-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	if err := format.Export(f, s, target, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), dst)
}

// Formats returns the supported targets.
func Formats() []format.Target {
	return format.Targets()
}
