package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rpattn/engtrack/internal/app"
	"github.com/rpattn/engtrack/internal/config"
	"github.com/rpattn/engtrack/pkg/logger"
)

type rootOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "engtrackctl",
		Short:        "Offline tooling for maintenance and training spreadsheets",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", ".", "Directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Record store directory (overrides storage.dir and selects the file driver)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.AddCommand(
		newTemplateCmd(&opts),
		newImportCmd(&opts),
		newExportCmd(&opts),
	)
	return cmd
}

// openServices loads config, applies the flag overrides and builds the
// services over the configured store. The returned func closes the store.
func openServices(ctx context.Context, opts *rootOptions) (app.Services, func(), error) {
	cfg, _, err := config.Load(opts.configPath)
	if err != nil {
		return app.Services{}, nil, err
	}
	if opts.dataDir != "" {
		cfg.Storage = config.StorageConfig{Driver: config.StorageFile, Dir: opts.dataDir}
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	log, err := logger.New(os.Stderr, logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return app.Services{}, nil, err
	}

	storage, err := app.OpenStorage(ctx, cfg, log.Named("storage"))
	if err != nil {
		return app.Services{}, nil, fmt.Errorf("open storage: %w", err)
	}
	services, err := app.NewServices(cfg, storage, log, nil)
	if err != nil {
		storage.Close()
		return app.Services{}, nil, err
	}
	return services, storage.Close, nil
}
