package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"incidentService/internal/components"
	"incidentService/internal/config"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP surface and the command consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		components.SetupLogger("").Error("load config failed", slog.Any("error", err))
		return err
	}
	logger := components.SetupLogger(cfg.Env)
	if cfg.APIKey == "" {
		logger.Warn("API_KEY is empty, reset and admin routes are unprotected")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	comps, err := components.InitComponents(ctx, cfg, logger)
	if err != nil {
		logger.Error("could not init components", slog.Any("error", err))
		return err
	}
	defer func() {
		logger.Info("shutting down the services...")
		comps.ShutdownAll()
	}()

	runErr := comps.Run(ctx)
	if ctx.Err() != nil {
		logger.Info("captured signal, shutdown complete")
	}
	if runErr != nil {
		logger.Error("service stopped with error", slog.Any("error", runErr))
	}
	return runErr
}
