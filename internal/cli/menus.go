package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

// MenusOptions holds flags for the menus command.
type MenusOptions struct {
	*RootOptions
	Refresh bool
}

// NewMenusCommand creates the menus command.
func NewMenusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MenusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "menus",
		Short: "Show cached order days",
		Long: `Show the cached order days inside the current order window.

The window runs from today through the Friday after next, the span the
menu service accepts orders for. With --refresh the window is fetched
from upstream first.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenus(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "refresh from upstream before listing")

	return cmd
}

func runMenus(opts *MenusOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	app, err := newApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := cmd.Context()
	if err := app.Cache.Initialize(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to load cache", err)
	}
	if opts.Refresh {
		formatter.VerboseLog("refreshing order days from upstream")
		if err := app.Cache.RefreshOrderDays(ctx); err != nil {
			return WrapExitError(ExitFailure, "menu refresh failed", err)
		}
	}

	days := app.Cache.OrderDays()
	if opts.Format == "json" {
		return formatter.Success(daysPayload(days))
	}

	var buf bytes.Buffer
	renderDays(&buf, days)
	fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return nil
}
