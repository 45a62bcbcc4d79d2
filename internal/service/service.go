// Package service converts catalogued schematics between formats.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oriumgames/pile/schemconv/format"
	"github.com/oriumgames/pile/schemconv/internal/catalog"
	"github.com/oriumgames/pile/schemconv/internal/config"
	"github.com/oriumgames/pile/schemconv/internal/store"
)

// Catalog is the part of the catalog the service uses.
type Catalog interface {
	Add(ctx context.Context, s catalog.Schematic) (int64, error)
	Find(ctx context.Context, id int64) (catalog.Schematic, error)
	Delete(ctx context.Context, id int64) error
}

// Files is the part of the file store the service uses.
type Files interface {
	Open(k store.Key) ([]byte, error)
	Save(k store.Key, fn func(io.Writer) error) (int64, error)
}

// Request selects one conversion of a catalogued schematic. Zero versions
// use the configured defaults.
type Request struct {
	ID                int64
	Target            format.Target
	LitematicaVersion int
	WorldEditVersion  int
	GadgetsVersion    int
	FillAir           bool
}

// ImportMeta describes a file added with Import.
type ImportMeta struct {
	Name        string
	Description string
	User        string
	GameVersion string
}

// Converter runs conversions against a catalog and a file store.
type Converter struct {
	catalog  Catalog
	files    Files
	defaults config.DefaultsConfig
	metadata config.MetadataConfig
	workers  int
	log      *slog.Logger
}

// New creates a converter. cfg may be nil.
func New(c Catalog, files Files, cfg *config.Config, log *slog.Logger) *Converter {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Converter{
		catalog:  c,
		files:    files,
		defaults: cfg.Defaults,
		metadata: cfg.Metadata,
		workers:  cfg.GetWorkers(),
		log:      log,
	}
}

func (c *Converter) sourceKey(row catalog.Schematic) (store.Key, error) {
	t, err := format.TargetOf(row.Type)
	if err != nil {
		return store.Key{}, fmt.Errorf("schematic %d: %w", row.ID, err)
	}
	return store.Key{ID: row.ID, Version: row.Version, SubVersion: row.SubType, Type: t}, nil
}

// Convert converts the stored source of req.ID to req.Target and saves the
// result next to it. The output sub-version is the row's sub_type for
// create and litematica, and the requested format version for worldedit
// and gadgets.
func (c *Converter) Convert(ctx context.Context, req Request) (bool, error) {
	if !req.Target.Valid() {
		return false, fmt.Errorf("%w: %s", format.ErrUnsupportedTarget, req.Target)
	}
	row, err := c.catalog.Find(ctx, req.ID)
	if err != nil {
		return false, err
	}
	src, err := c.sourceKey(row)
	if err != nil {
		return false, err
	}
	data, err := c.files.Open(src)
	if err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	opts := c.options(row, req)
	dst := store.Key{ID: row.ID, Version: row.Version, Type: req.Target}
	switch req.Target {
	case format.Create, format.Litematica:
		dst.SubVersion = row.SubType
	case format.WorldEdit, format.Gadgets:
		dst.SubVersion = opts.Version
	}

	start := time.Now()
	c.log.Info("conversion started",
		"id", row.ID, "source", src.Type, "target", req.Target,
		"version", opts.Version, "sub_version", opts.SubVersion, "fill_air", opts.FillAir)

	n, err := c.files.Save(dst, func(w io.Writer) error {
		return format.Convert(bytes.NewReader(data), w, req.Target, opts)
	})
	if err != nil {
		c.log.Error("conversion failed", "id", row.ID, "target", req.Target, "err", err)
		return false, fmt.Errorf("convert %d to %s: %w", row.ID, req.Target, err)
	}
	c.log.Info("conversion finished",
		"id", row.ID, "target", req.Target, "key", dst.String(),
		"bytes", n, "duration", time.Since(start))
	return true, nil
}

func (c *Converter) options(row catalog.Schematic, req Request) format.Options {
	opts := format.Options{
		FillAir:     req.FillAir || c.defaults.FillAir,
		Workers:     c.workers,
		DataVersion: int32(c.defaults.DataVersion),
		Name:        row.Name,
		Author:      c.metadata.Author,
		Description: row.Description,
		Timestamp:   time.Now().UnixMilli(),
	}
	if opts.Description == "" {
		opts.Description = c.metadata.Description
	}
	switch req.Target {
	case format.Litematica:
		opts.Version = pick(req.LitematicaVersion, c.defaults.LitematicaVersion, 6)
		opts.SubVersion = pick(0, c.defaults.LitematicaSubVersion, 1)
	case format.WorldEdit:
		opts.Version = pick(req.WorldEditVersion, c.defaults.WorldEditVersion, 3)
	case format.Gadgets:
		opts.Version = pick(req.GadgetsVersion, c.defaults.GadgetsVersion, 1)
	}
	return opts
}

func pick(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// ConvertData returns the stored source bytes of a catalogued schematic.
func (c *Converter) ConvertData(ctx context.Context, id int64) ([]byte, error) {
	row, err := c.catalog.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	k, err := c.sourceKey(row)
	if err != nil {
		return nil, err
	}
	return c.files.Open(k)
}

// Import validates the schematic file at path, stores it and adds a catalog
// row for it.
func (c *Converter) Import(ctx context.Context, path string, meta ImportMeta) (catalog.Schematic, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalog.Schematic{}, err
	}
	data, t, err := format.Read(bytes.NewReader(raw))
	if err != nil {
		return catalog.Schematic{}, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}

	row := catalog.Schematic{
		Name:        meta.Name,
		Description: meta.Description,
		Type:        int(t),
		Sizes:       Sizes(data, c.workers),
		User:        meta.User,
		IsUpload:    true,
		GameVersion: meta.GameVersion,
	}
	if row.Name == "" {
		row.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if row.GameVersion == "" && data.DataVersion != 0 {
		row.GameVersion = format.GameVersion(data.DataVersion)
	}

	k, err := c.sourceKey(row)
	if err != nil {
		return catalog.Schematic{}, err
	}
	id, err := c.catalog.Add(ctx, row)
	if err != nil {
		return catalog.Schematic{}, err
	}
	row.ID, k.ID = id, id
	if _, err := c.files.Save(k, func(w io.Writer) error {
		_, err := w.Write(raw)
		return err
	}); err != nil {
		if derr := c.catalog.Delete(ctx, id); derr != nil {
			c.log.Warn("rollback catalog row", "id", id, "err", derr)
		}
		return catalog.Schematic{}, err
	}
	c.log.Info("schematic imported", "id", id, "type", t, "sizes", row.Sizes, "bytes", len(raw))
	return c.catalog.Find(ctx, id)
}

// Delete soft-deletes a catalogued schematic. Stored files are kept.
func (c *Converter) Delete(ctx context.Context, id int64) error {
	if err := c.catalog.Delete(ctx, id); err != nil {
		return err
	}
	c.log.Info("schematic deleted", "id", id)
	return nil
}

// Sizes formats the extent of data as WxHxL. The declared size is used when
// set, the occupied box otherwise.
func Sizes(data *format.SchematicData, workers int) string {
	s := data.Size
	if s.Width == 0 || s.Height == 0 || s.Length == 0 {
		if b, ok := format.BoundsOf(data.Blocks, workers); ok {
			s = b.Size()
		}
	}
	return fmt.Sprintf("%dx%dx%d", s.Width, s.Height, s.Length)
}
