package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vidforge/internal/daemon"
	"vidforge/internal/logging"
	"vidforge/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingest service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			runCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			manager, store, err := buildManager(cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(cfg, manager, logger)
			if srv == nil {
				store.Close()
				return fmt.Errorf("no api bind address configured")
			}

			d, err := daemon.New(cfg, store, manager, srv, logger)
			if err != nil {
				store.Close()
				return err
			}
			defer d.Close()

			if err := d.Start(runCtx); err != nil {
				return err
			}

			<-runCtx.Done()
			logger.Info("vidforge shutting down")
			return nil
		},
	}
}
