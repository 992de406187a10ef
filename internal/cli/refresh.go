package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/radaiko/gourmet-cache/internal/cache"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh billing and menus once",
		Long: `Refresh both cache families from upstream once and exit.

Billing months are walked backwards until persisted history is reached;
the order-window menus are refetched in full.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefresh(rootOpts, cmd)
		},
	}

	return cmd
}

func runRefresh(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	app, err := newApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	cancel := app.Cache.OnDataChanged(func(family cache.Family) {
		formatter.VerboseLog("updated %s", family)
	})
	defer cancel()

	ctx := cmd.Context()
	if err := app.Cache.Initialize(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to load cache", err)
	}
	if err := app.Cache.RefreshBillingMonths(ctx); err != nil {
		return WrapExitError(ExitFailure, "billing refresh failed", err)
	}
	if err := app.Cache.RefreshOrderDays(ctx); err != nil {
		return WrapExitError(ExitFailure, "menu refresh failed", err)
	}

	months := len(app.Cache.BillingMonths())
	days := len(app.Cache.OrderDays())
	if opts.Format == "json" {
		return formatter.Success(map[string]int{
			"billing_months": months,
			"order_days":     days,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Refreshed: %d billing months, %d order days.\n", months, days)
	return nil
}
