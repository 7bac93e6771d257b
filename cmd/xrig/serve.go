package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeusync/xrig/internal/core/observability/log"
	"github.com/zeusync/xrig/internal/server"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve <rig>",
	Short: "Run a rig in real time behind an HTTP server",
	Long:  `Steps the rig at its tick rate and serves /metrics, /snapshot and a /ws frame stream until interrupted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, _, err := loadEngine(cmd, args[0])
		if err != nil {
			return err
		}

		cfg := server.DefaultServerConfig()
		cfg.ListenAddr, _ = cmd.Flags().GetString("addr")
		srv, err := server.NewServer(cfg, engine, engine.Logger())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return engine.Run(ctx, 0, true)
		})
		g.Go(func() error {
			return srv.Start(ctx)
		})

		err = g.Wait()
		if errors.Is(err, context.Canceled) {
			engine.Logger().Info("shutdown complete", log.Int64("frame", engine.Snapshot().Index))
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Address to listen on")
}
