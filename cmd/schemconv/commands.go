package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/oriumgames/pile/schemconv"
	"github.com/oriumgames/pile/schemconv/format"
	"github.com/oriumgames/pile/schemconv/internal/service"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		target string
		req    service.Request
	)
	cmd := &cobra.Command{
		Use:   "convert <id>...",
		Short: "Convert catalogued schematics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := format.ParseTarget(target)
			if err != nil {
				return err
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			if len(ids) > 1 {
				bar = progressbar.Default(int64(len(ids)), "converting")
			}
			var failed int
			for _, id := range ids {
				r := req
				r.ID, r.Target = id, t
				if _, err := a.conv.Convert(cmd.Context(), r); err != nil {
					if len(ids) == 1 {
						return err
					}
					failed++
					a.log.Error("convert", "id", id, "err", err)
				}
				if bar != nil {
					_ = bar.Add(1)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", failed, len(ids))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "litematica", "target format (create, litematica, worldedit, gadgets or 1-4)")
	cmd.Flags().IntVar(&req.LitematicaVersion, "litematica-version", 0, "litematica version (6 or 7)")
	cmd.Flags().IntVar(&req.WorldEditVersion, "worldedit-version", 0, "sponge schematic version (2 or 3)")
	cmd.Flags().IntVar(&req.GadgetsVersion, "gadgets-version", 0, "building gadgets template version (1 or 2)")
	cmd.Flags().BoolVar(&req.FillAir, "fill-air", false, "write air for unoccupied cells")
	return cmd
}

func newFileCmd(a *app) *cobra.Command {
	var (
		target string
		opts   format.Options
		dv     int
	)
	cmd := &cobra.Command{
		Use:   "file <in> <out>",
		Short: "Convert a schematic file directly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, out := args[0], args[1]
			t, err := targetFor(target, out)
			if err != nil {
				return err
			}
			opts.Workers = a.cfg.GetWorkers()
			opts.DataVersion = int32(dv)
			if opts.Author == "" {
				opts.Author = a.cfg.Metadata.Author
			}
			if opts.Description == "" {
				opts.Description = a.cfg.Metadata.Description
			}
			if opts.Name == "" {
				opts.Name = strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
			}
			opts.FillAir = opts.FillAir || a.cfg.Defaults.FillAir
			opts.Timestamp = time.Now().UnixMilli()

			start := time.Now()
			if err := schemconv.ConvertFile(in, out, t, opts); err != nil {
				return err
			}
			st, err := os.Stat(out)
			if err != nil {
				return err
			}
			a.log.Info("file converted", "in", in, "out", out, "target", t, "duration", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%s, %s)\n", in, out, t, humanize.Bytes(uint64(st.Size())))
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "target", "t", "", "target format, defaults to the output extension")
	cmd.Flags().IntVar(&opts.Version, "version", 0, "target format version")
	cmd.Flags().IntVar(&opts.SubVersion, "sub-version", 0, "target format sub-version")
	cmd.Flags().BoolVar(&opts.FillAir, "fill-air", false, "write air for unoccupied cells")
	cmd.Flags().IntVar(&dv, "data-version", 0, "minecraft data version to write")
	cmd.Flags().StringVar(&opts.Name, "name", "", "structure name")
	cmd.Flags().StringVar(&opts.Author, "author", "", "structure author")
	cmd.Flags().StringVar(&opts.Description, "description", "", "structure description")
	return cmd
}

// targetFor parses name, or picks the target whose extension out carries.
func targetFor(name, out string) (format.Target, error) {
	if name != "" {
		return format.ParseTarget(name)
	}
	ext := strings.ToLower(filepath.Ext(out))
	for _, t := range format.Targets() {
		if t.Extension() == ext {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: no target for extension %q", format.ErrUnsupportedTarget, ext)
}

func newImportCmd(a *app) *cobra.Command {
	var meta service.ImportMeta
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add a schematic file to the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			row, err := a.conv.Import(cmd.Context(), args[0], meta)
			if err != nil {
				return err
			}
			t, _ := format.TargetOf(row.Type)
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", row.ID, row.Name, t, row.Sizes)
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.Name, "name", "", "catalog name, defaults to the file name")
	cmd.Flags().StringVar(&meta.Description, "description", "", "catalog description")
	cmd.Flags().StringVar(&meta.User, "user", "", "uploading user")
	cmd.Flags().StringVar(&meta.GameVersion, "game-version", "", "game version, defaults to the file's data version")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		filter string
		page   int
		size   int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogued schematics, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			p, err := a.catalog.List(cmd.Context(), filter, page, size)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tSIZE\tGAME\tCREATED")
			for _, s := range p.Data {
				t, _ := format.TargetOf(s.Type)
				created := s.CreatedAt
				if ts, err := time.Parse("2006-01-02 15:04:05.000", s.CreatedAt); err == nil {
					created = humanize.Time(ts)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Name, t, s.Sizes, s.GameVersion, created)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d, %d per page\n", p.Page, p.PageSize)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "match names and descriptions")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&size, "size", "n", 20, "page size (1-100)")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>...",
		Short: "Remove schematics from the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			for _, id := range ids {
				if err := a.conv.Delete(cmd.Context(), id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range schemconv.Formats() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%-10s\t%s\n", int(t), t, t.Extension())
			}
			return nil
		},
	}
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
