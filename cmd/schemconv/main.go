package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/oriumgames/pile/schemconv/internal/catalog"
	"github.com/oriumgames/pile/schemconv/internal/config"
	"github.com/oriumgames/pile/schemconv/internal/service"
	"github.com/oriumgames/pile/schemconv/internal/store"
)

type app struct {
	configPath string
	workers    int

	cfg     *config.Config
	log     *slog.Logger
	catalog *catalog.Catalog
	files   *store.Store
	conv    *service.Converter
}

// load reads the configuration. Commands that use the catalog call open.
func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.workers > 0 {
		cfg.Workers = a.workers
	}
	a.cfg = cfg
	a.log = cfg.Logger()
	slog.SetDefault(a.log)
	return nil
}

func (a *app) open() error {
	cat, err := catalog.Open(a.cfg.GetDatabase())
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	a.catalog = cat
	a.files = store.New(a.cfg.GetDataDir())
	a.conv = service.New(cat, a.files, a.cfg, a.log)
	a.log.Debug("catalog opened", "database", a.cfg.GetDatabase(), "data_dir", a.cfg.GetDataDir())
	return nil
}

func (a *app) close() {
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			a.log.Warn("close catalog", "err", err)
		}
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "schemconv",
		Short:         "Convert Minecraft schematics between formats",
		Long:          "schemconv converts Create structure files, Litematica, WorldEdit and Building Gadgets schematics, and keeps a catalog of imported files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (defaults to $"+config.EnvConfig+")")
	root.PersistentFlags().IntVarP(&a.workers, "workers", "w", 0, "parallel workers, 0 for GOMAXPROCS")

	root.AddCommand(
		newConvertCmd(a),
		newFileCmd(a),
		newImportCmd(a),
		newListCmd(a),
		newRmCmd(a),
		newFormatsCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
