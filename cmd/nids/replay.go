package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"nidscore/detect"
	"nidscore/replay"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newReplayCmd(flags *globalFlags) *cobra.Command {
	var packetsPath string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Run the packets of a replay file through the engine and log the alerts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if packetsPath == "" {
				return errors.New("packets path is required")
			}

			cfg, err := loadConfig(flags, nil)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.replay(ctx, packetsPath)
		},
	}

	cmd.Flags().StringVarP(&packetsPath, "packets", "p", "", "Path to a replay file")

	return cmd
}

// replay feeds a replay file through a fresh worker pool and waits for it to drain.
func (a *app) replay(ctx context.Context, path string) (err error) {
	pkts, err := replay.Load(path)
	if err != nil {
		return
	}

	pool, alerts, err := a.newPool()
	if err != nil {
		return
	}
	defer func() {
		if cerr := alerts.Close(); err == nil {
			err = cerr
		}
	}()

	a.logger.Info().Str("file", path).Int("packets", len(pkts)).Int("workers", pool.Workers()).Msg("Replaying packets")

	ch := make(chan *detect.Packet)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return replay.Feed(ctx, pkts, ch) })
	g.Go(func() error { return pool.Run(ctx, ch) })

	return g.Wait()
}
