package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/vigil/config"
	"github.com/spiffcs/vigil/internal/constants"
	"github.com/spiffcs/vigil/internal/engine"
	"github.com/spiffcs/vigil/internal/httpapi"
	"github.com/spiffcs/vigil/internal/log"
	"github.com/spiffcs/vigil/internal/scheduler"
	"github.com/spiffcs/vigil/internal/state"
	"github.com/spiffcs/vigil/internal/store"
)

// NewCmdWatch creates the watch command.
func NewCmdWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch repositories until interrupted",
		Long: `Runs watch cycles on the configured schedule until interrupted.
The first cycle fires immediately; a cycle still running when the next
tick arrives is skipped rather than overlapped. With --listen (or
listen_addr in the config) the local notification API is served
alongside.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "Serve the notification API on this address (e.g. 127.0.0.1:7117)")
	cmd.Flags().StringVarP(&opts.Since, "since", "s", "", "Backdate the first checkpoint (e.g. 24h, 7d)")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *Options) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	notifs, err := store.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open notification store: %w", err)
	}
	states, err := state.NewStore()
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	if err := seedCheckpoint(states, opts.Since); err != nil {
		return err
	}

	fetcher, err := newFetcher(ctx, cfg)
	if err != nil {
		return err
	}
	if fetcher == nil {
		log.Warn("no GitHub token configured, cycles will be skipped; run \"vigil auth set-token\"")
	}
	if len(cfg.Repos) == 0 {
		log.Warn("no repositories configured, cycles will be skipped; run \"vigil config init\"")
	}

	eng := engine.New(fetcher, notifs, cfg.RepoRefs(), cfg.GetNotifyFlags())
	hist := openHistory()

	runner := scheduler.New(constants.ScheduleName, func(ctx context.Context) {
		if _, err := runCycleOnce(ctx, eng, states, hist); err != nil {
			log.Error("watch cycle failed", "error", err)
		}
	})
	runner.Schedule(cfg.GetPollInterval())

	fmt.Printf("Watching %d repositories every %s. Press Ctrl+C to stop.\n", len(cfg.Repos), runner.Interval())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		runner.Run(ctx)
		return nil
	})

	listen := opts.Listen
	if listen == "" {
		listen = cfg.ListenAddr
	}
	if listen != "" {
		fmt.Printf("Serving the notification API on http://%s\n", listen)
		api := httpapi.New(notifs)
		g.Go(func() error {
			return api.Serve(ctx, listen)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("Stopped.")
	return nil
}
