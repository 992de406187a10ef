package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
)

// BillingOptions holds flags for the billing command.
type BillingOptions struct {
	*RootOptions
	Refresh bool
}

// NewBillingCommand creates the billing command.
func NewBillingCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BillingOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Show cached billing months",
		Long: `Show the cached billing history, most recent month first.

With --refresh the upstream feed is consulted first, walking backwards
month by month until already-persisted history is reached.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBilling(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "refresh from upstream before listing")

	return cmd
}

func runBilling(opts *BillingOptions, cmd *cobra.Command) error {
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
		formatter.VerboseLog("refreshing billing months from upstream")
		if err := app.Cache.RefreshBillingMonths(ctx); err != nil {
			return WrapExitError(ExitFailure, "billing refresh failed", err)
		}
	}

	months := app.Cache.BillingMonths()
	if opts.Format == "json" {
		return formatter.Success(billingPayload(months))
	}

	var buf bytes.Buffer
	renderBillingMonths(&buf, months)
	fmt.Fprint(cmd.OutOrStdout(), buf.String())
	return nil
}
