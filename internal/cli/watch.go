package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/radaiko/gourmet-cache/internal/cache"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh on a schedule until interrupted",
		Long: `Run the background refresh scheduler until interrupted.

Both cache families are refreshed on the configured cron schedule
(refresh_schedule, default every 30 minutes).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(rootOpts, cmd)
		},
	}

	return cmd
}

func runWatch(opts *RootOptions, cmd *cobra.Command) error {
	app, err := newApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	if err := app.Cache.Initialize(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to load cache", err)
	}

	unsubscribe := app.Cache.OnDataChanged(func(family cache.Family) {
		app.Log.WithField("family", family).Info("cache updated")
	})
	defer unsubscribe()

	sched := cache.NewScheduler(app.Cache, app.Log)
	if err := sched.Start(app.Config.RefreshSchedule); err != nil {
		return WrapExitError(ExitCommandError, "failed to start scheduler", err)
	}
	defer sched.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	fmt.Fprintf(cmd.OutOrStdout(), "Watching on schedule %q. Press Ctrl-C to stop.\n",
		app.Config.RefreshSchedule)

	select {
	case sig := <-sigChan:
		app.Log.WithField("signal", sig).Info("shutting down")
	case <-ctx.Done():
	}

	return nil
}
