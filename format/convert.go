package format

import (
	"bytes"
	"fmt"
	"io"

	"github.com/oriumgames/pile/schemconv/format/internal/axiom"
	"github.com/oriumgames/pile/schemconv/format/internal/base"
	"github.com/oriumgames/pile/schemconv/format/internal/create"
	"github.com/oriumgames/pile/schemconv/format/internal/gadgets"
	"github.com/oriumgames/pile/schemconv/format/internal/litematica"
	"github.com/oriumgames/pile/schemconv/format/internal/sponge"
)

// Importer reads a schematic into the intermediate representation.
type Importer func(io.Reader) (*SchematicData, error)

// Exporter writes the intermediate representation in one format.
type Exporter func(io.Writer, *SchematicData, Options) error

var importers = map[Target]Importer{
	Create:     create.Read,
	Litematica: litematica.Read,
	WorldEdit:  sponge.Read,
	Gadgets:    gadgets.Read,
	Axiom:      axiom.Read,
}

var exporters = map[Target]Exporter{
	Create:     create.Write,
	Litematica: litematica.Write,
	WorldEdit:  sponge.Write,
	Gadgets:    gadgets.Write,
	Axiom:      axiom.Write,
}

// Read reads data from r, detects the schematic format, and returns the
// parsed structure. Data that cannot be identified is read as a structure
// file so that its error describes what is missing.
func Read(r io.Reader) (*SchematicData, Target, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, base.IOFailure("read data", err)
	}

	t, err := Detect(data)
	if err != nil {
		t = Create
	}
	s, err := ReadFormat(bytes.NewReader(data), t)
	if err != nil {
		return nil, t, err
	}
	return s, t, nil
}

// ReadFormat parses data from r as the given format.
func ReadFormat(r io.Reader, t Target) (*SchematicData, error) {
	reader, ok := importers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, t)
	}
	s, err := reader(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", t, err)
	}
	return s, nil
}

// Export writes s in the target format. Nothing is written to w unless the
// whole document was produced.
func Export(w io.Writer, s *SchematicData, t Target, opts Options) error {
	writer, ok := exporters[t]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedTarget, t)
	}
	var buf bytes.Buffer
	if err := writer(&buf, s, opts); err != nil {
		return fmt.Errorf("write %s: %w", t, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return base.IOFailure("write output", err)
	}
	return nil
}

// Convert reads a schematic from r in any supported format and writes it to
// w in the target format. It runs exactly one importer and one exporter and
// writes nothing on failure.
func Convert(r io.Reader, w io.Writer, t Target, opts Options) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedTarget, t)
	}
	s, _, err := Read(r)
	if err != nil {
		return err
	}
	return Export(w, s, t, opts)
}
