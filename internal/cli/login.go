package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	*RootOptions
	Username string
	Password string
}

// NewLoginCommand creates the login command.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "login <service>",
		Short: "Store credentials for a service",
		Long: `Store credentials for an upstream service (e.g. "gourmet" or
"cafe-plus-co"). Credentials are encrypted with a device-bound key and
kept in the state directory; files copied to another machine will not
decrypt.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "account username (required)")
	cmd.Flags().StringVar(&opts.Password, "password", "", "account password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runLogin(opts *LoginOptions, service string, cmd *cobra.Command) error {
	app, err := newApp(opts.RootOptions)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Vault.Save(service, opts.Username, opts.Password); err != nil {
		return WrapExitError(ExitCommandError, "failed to store credentials", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Stored credentials for %q.\n", service)
	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout <service>",
		Short: "Remove stored credentials for a service",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runLogout(opts *RootOptions, service string, cmd *cobra.Command) error {
	app, err := newApp(opts)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Vault.Delete(service); err != nil {
		return WrapExitError(ExitCommandError, "failed to remove credentials", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed credentials for %q.\n", service)
	return nil
}
