package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/mpgexplorer/dataset"
	"github.com/spektr-org/mpgexplorer/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard",
	Long: `Serves the dashboard page together with its chart, data, export and
map endpoints. The dataset is loaded once and reloaded after the file
changes; with watch enabled, edits are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := dataset.NewLoader(cfg.Columns, logger)
	defer func() { _ = loader.Close() }()

	// Fail fast on a broken dataset rather than on the first request.
	if _, err := loader.Get(ctx, cfg.DataPath); err != nil {
		return err
	}
	if cfg.Watch {
		if err := loader.Watch(ctx, cfg.DataPath); err != nil {
			logger.Warn("dataset watch disabled", zap.Error(err))
		}
	}

	srv, err := server.New(loader, server.Options{
		Addr:            cfg.Server.Addr,
		DataPath:        cfg.DataPath,
		ShutdownTimeout: cfg.GetShutdownTimeout(),
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
