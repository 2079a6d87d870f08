package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nidscore/control"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var packetsPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load signatures and serve the control and metrics endpoints until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags, nil)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			return a.serve(cmd.Context(), packetsPath)
		},
	}

	cmd.Flags().StringVarP(&packetsPath, "packets", "p", "", "Replay file to run once the engine is serving")

	return cmd
}

func (a *app) serve(ctx context.Context, packetsPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsSrv := a.startMetricsServer()

	cs := control.NewServer(a.logger)
	controlErr := make(chan error, 1)
	go func() {
		controlErr <- cs.Serve(a.cfg.Control.Network, a.cfg.Control.Address)
	}()
	cs.SetServing(true)

	if packetsPath != "" {
		if err := a.replay(ctx, packetsPath); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error().Err(err).Str("file", packetsPath).Msg("Replay failed")
		}
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-controlErr:
	}

	a.logger.Info().Msg("Shutting down")
	cs.SetServing(false)
	cs.Stop()

	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if serr := metricsSrv.Shutdown(shutdownCtx); serr != nil && err == nil {
			err = serr
		}
	}

	return err
}

func (a *app) startMetricsServer() *http.Server {
	if a.cfg.Metrics.Listen == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler(a.registry))

	srv := &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	a.logger.Info().Str("address", a.cfg.Metrics.Listen).Msg("Metrics server listening")
	return srv
}
